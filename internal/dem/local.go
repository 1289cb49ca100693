package dem

import (
	"fmt"
	"math"
	"os"

	"github.com/openterra/flatarea/internal/geo"
	"github.com/openterra/flatarea/internal/raster"

	"github.com/rs/zerolog/log"
	elevation "github.com/twpayne/go-elevation"
)

// Sampler yields elevations for lon/lat coordinate pairs. Satisfied by the
// go-elevation tile-set services.
type Sampler interface {
	Elevation4326(coords [][]float64) ([]float64, error)
}

// NewLocalService opens a directory of GeoTIFF DEM tiles as a sampler.
// Useful for offline runs against downloaded EU-DEM data.
func NewLocalService(dir string) (Sampler, error) {
	es, err := elevation.NewEUDEMElevationService(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("%w: open local DEM %s: %s", ErrUnavailable, dir, err)
	}
	return es, nil
}

// FetchLocal samples a regular grid over the bounding box from a local DEM.
// Coordinates the sampler cannot resolve become no-data cells; a fully
// unresolvable box fails with ErrCoverageGap.
func FetchLocal(s Sampler, bbox geo.BBox, res Resolution) (*raster.Grid, error) {
	cellSize, err := res.CellSizeDeg()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	cols := int(math.Ceil((bbox.MaxX - bbox.MinX) / cellSize))
	rows := int(math.Ceil((bbox.MaxY - bbox.MinY) / cellSize))
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: degenerate bounding box", ErrCoverageGap)
	}

	coords := make([][]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		y := bbox.MaxY - (float64(r)+0.5)*cellSize
		for c := 0; c < cols; c++ {
			x := bbox.MinX + (float64(c)+0.5)*cellSize
			coords = append(coords, []float64{x, y})
		}
	}

	elevations, err := s.Elevation4326(coords)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	if len(elevations) != rows*cols {
		return nil, fmt.Errorf("%w: sampler returned %d of %d elevations", ErrUnavailable, len(elevations), rows*cols)
	}

	valid := 0
	for _, v := range elevations {
		if !math.IsNaN(v) {
			valid++
		}
	}
	if valid == 0 {
		return nil, fmt.Errorf("%w: no local DEM coverage for bounding box", ErrCoverageGap)
	}

	log.Info().
		Int("rows", rows).
		Int("cols", cols).
		Int("valid_samples", valid).
		Msg("Local DEM sampled")

	return raster.NewGrid(rows, cols, bbox.MinX, bbox.MaxY, cellSize, cellSize, elevations)
}
