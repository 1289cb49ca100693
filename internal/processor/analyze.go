// Package processor runs the flat-area analysis pipeline: slope computation,
// boundary masking and vectorization.
package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openterra/flatarea/internal/geo"
	"github.com/openterra/flatarea/internal/raster"

	"github.com/rs/zerolog/log"
)

// ErrGridMismatch reports an elevation grid that does not cover the boundary,
// which means the fetch and the analysis disagree about the coordinate frame.
var ErrGridMismatch = errors.New("elevation grid does not cover boundary")

// Options are the tunables of one analysis run.
type Options struct {
	SlopeThresholdDegrees float64
}

// Result holds everything one run produced. Regions is empty (not nil-safe
// distinguished) when no flat terrain was found; that is a valid outcome,
// not an error.
type Result struct {
	Regions []geo.Polygon
	Slope   *raster.Grid
	Mask    *raster.Mask
}

// FeatureCollection wraps the regions for serialization.
func (r *Result) FeatureCollection() geo.GeoJSONFeatureCollection {
	return geo.MarshalPolygons(r.Regions)
}

// Empty reports whether the run found no flat terrain.
func (r *Result) Empty() bool {
	return len(r.Regions) == 0
}

// Analyze computes flat-area polygons for a boundary over an elevation grid.
// It is a pure function of its inputs: the grid is only read, and the
// derived slope and mask grids are owned by the returned result.
func Analyze(boundary *geo.Polygon, dem *raster.Grid, opts Options) (*Result, error) {
	if opts.SlopeThresholdDegrees <= 0 {
		return nil, fmt.Errorf("slope threshold must be > 0, got %g", opts.SlopeThresholdDegrees)
	}

	// the grid must at least overlap the boundary, otherwise the caller
	// fetched the wrong area
	gb := dem.Bounds()
	bb := boundary.BoundingBox(0)
	if bb.MinX > gb.MaxX || bb.MaxX < gb.MinX || bb.MinY > gb.MaxY || bb.MaxY < gb.MinY {
		return nil, fmt.Errorf("%w: grid [%g,%g]x[%g,%g], boundary [%g,%g]x[%g,%g]",
			ErrGridMismatch,
			gb.MinX, gb.MaxX, gb.MinY, gb.MaxY,
			bb.MinX, bb.MaxX, bb.MinY, bb.MaxY)
	}

	slope := raster.Slope(dem)
	mask := raster.FlatMask(slope, boundary, opts.SlopeThresholdDegrees)
	regions := raster.Vectorize(mask)

	log.Info().
		Int("rows", dem.Rows).
		Int("cols", dem.Cols).
		Float64("threshold_deg", opts.SlopeThresholdDegrees).
		Int("flat_cells", mask.Count()).
		Int("regions", len(regions)).
		Msg("Flat-area analysis finished")

	return &Result{Regions: regions, Slope: slope, Mask: mask}, nil
}

// SaveGeoJSON marshals the feature collection and writes it to disk,
// creating parent directories as needed.
func SaveGeoJSON(path string, fc geo.GeoJSONFeatureCollection) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}
