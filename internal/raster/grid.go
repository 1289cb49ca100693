// Package raster implements elevation grids, slope computation, flat-area
// masking and mask vectorization.
package raster

import (
	"fmt"
	"math"

	"github.com/openterra/flatarea/internal/geo"
)

// Grid is a rectangular raster of float64 samples. OriginX/OriginY is the
// outer corner of the top-left cell; row 0 is the northernmost row, so Y
// decreases as the row index grows. NaN marks no-data cells.
//
// Grids are treated as immutable after construction.
type Grid struct {
	Data      []float64
	Rows      int
	Cols      int
	OriginX   float64
	OriginY   float64
	CellSizeX float64
	CellSizeY float64
}

// NewGrid validates the geometry and wraps the sample slice. The slice is
// owned by the grid afterwards.
func NewGrid(rows, cols int, originX, originY, cellSizeX, cellSizeY float64, data []float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid shape %dx%d: rows and cols must be positive", rows, cols)
	}
	if cellSizeX <= 0 || cellSizeY <= 0 {
		return nil, fmt.Errorf("cell size %gx%g: must be strictly positive", cellSizeX, cellSizeY)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("data length %d does not match %dx%d grid", len(data), rows, cols)
	}

	return &Grid{
		Rows:      rows,
		Cols:      cols,
		OriginX:   originX,
		OriginY:   originY,
		CellSizeX: cellSizeX,
		CellSizeY: cellSizeY,
		Data:      data,
	}, nil
}

// At returns the sample at (r, c). No bounds checking beyond the slice's own.
func (g *Grid) At(r, c int) float64 {
	return g.Data[r*g.Cols+c]
}

// IsNoData reports whether the cell holds the no-data sentinel.
func (g *Grid) IsNoData(r, c int) bool {
	return math.IsNaN(g.At(r, c))
}

// CellCenter returns the world coordinates of the center of cell (r, c).
func (g *Grid) CellCenter(r, c int) geo.Point {
	return geo.Point{
		X: g.OriginX + (float64(c)+0.5)*g.CellSizeX,
		Y: g.OriginY - (float64(r)+0.5)*g.CellSizeY,
	}
}

// CellCorner returns the world coordinates of the top-left corner of cell
// (r, c). r may equal Rows and c may equal Cols to address the grid's
// bottom/right outer corners.
func (g *Grid) CellCorner(r, c int) geo.Point {
	return geo.Point{
		X: g.OriginX + float64(c)*g.CellSizeX,
		Y: g.OriginY - float64(r)*g.CellSizeY,
	}
}

// Bounds returns the outer extent of the grid.
func (g *Grid) Bounds() geo.BBox {
	return geo.BBox{
		MinX: g.OriginX,
		MinY: g.OriginY - float64(g.Rows)*g.CellSizeY,
		MaxX: g.OriginX + float64(g.Cols)*g.CellSizeX,
		MaxY: g.OriginY,
	}
}

// SameShape reports whether two grids share shape and geocoding.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols &&
		g.OriginX == o.OriginX && g.OriginY == o.OriginY &&
		g.CellSizeX == o.CellSizeX && g.CellSizeY == o.CellSizeY
}
