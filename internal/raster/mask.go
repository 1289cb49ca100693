package raster

import (
	"math"

	"github.com/openterra/flatarea/internal/geo"
)

// Mask is a boolean grid sharing shape and geocoding with the grid it was
// derived from.
type Mask struct {
	Cells     []bool
	Rows      int
	Cols      int
	OriginX   float64
	OriginY   float64
	CellSizeX float64
	CellSizeY float64
}

// At returns the mask value at (r, c).
func (m *Mask) At(r, c int) bool {
	return m.Cells[r*m.Cols+c]
}

// Count returns the number of true cells.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Cells {
		if v {
			n++
		}
	}
	return n
}

// FlatMask marks cells whose slope is below or at the threshold and whose
// center lies inside the boundary. No-data slope cells are never flat.
// Cell centers exactly on a boundary ring count as inside.
func FlatMask(slope *Grid, boundary *geo.Polygon, thresholdDeg float64) *Mask {
	m := &Mask{
		Cells:     make([]bool, len(slope.Data)),
		Rows:      slope.Rows,
		Cols:      slope.Cols,
		OriginX:   slope.OriginX,
		OriginY:   slope.OriginY,
		CellSizeX: slope.CellSizeX,
		CellSizeY: slope.CellSizeY,
	}

	// quick reject on the boundary's bbox saves point-in-polygon calls
	bbox := boundary.BoundingBox(0)

	for r := 0; r < slope.Rows; r++ {
		for c := 0; c < slope.Cols; c++ {
			v := slope.At(r, c)
			if math.IsNaN(v) || v > thresholdDeg {
				continue
			}
			center := slope.CellCenter(r, c)
			if !bbox.Contains(center) {
				continue
			}
			if boundary.Contains(center) {
				m.Cells[r*m.Cols+c] = true
			}
		}
	}

	return m
}

// Rasterize builds a mask from polygons by testing each cell center of the
// reference grid, the inverse of Vectorize. It exists to cross-check
// vectorized regions against their source mask; the analysis pipeline itself
// never maps polygons back to cells.
func Rasterize(ref *Grid, polys []geo.Polygon) *Mask {
	m := &Mask{
		Cells:     make([]bool, ref.Rows*ref.Cols),
		Rows:      ref.Rows,
		Cols:      ref.Cols,
		OriginX:   ref.OriginX,
		OriginY:   ref.OriginY,
		CellSizeX: ref.CellSizeX,
		CellSizeY: ref.CellSizeY,
	}

	for r := 0; r < ref.Rows; r++ {
		for c := 0; c < ref.Cols; c++ {
			center := ref.CellCenter(r, c)
			for i := range polys {
				if polys[i].Contains(center) {
					m.Cells[r*m.Cols+c] = true
					break
				}
			}
		}
	}

	return m
}
