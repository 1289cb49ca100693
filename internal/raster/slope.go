package raster

import "math"

// Slope computes a per-cell terrain slope grid in degrees using Horn's 3x3
// finite-difference method. Border cells and cells whose 3x3 neighborhood
// contains a no-data sample come out as no-data. The result has the same
// shape and geocoding as the input.
//
// The computation is pure and bit-for-bit reproducible for a given grid.
func Slope(dem *Grid) *Grid {
	out := make([]float64, len(dem.Data))
	for i := range out {
		out[i] = math.NaN()
	}

	slope := &Grid{
		Rows:      dem.Rows,
		Cols:      dem.Cols,
		OriginX:   dem.OriginX,
		OriginY:   dem.OriginY,
		CellSizeX: dem.CellSizeX,
		CellSizeY: dem.CellSizeY,
		Data:      out,
	}

	for r := 1; r < dem.Rows-1; r++ {
		for c := 1; c < dem.Cols-1; c++ {
			nw := dem.At(r-1, c-1)
			n := dem.At(r-1, c)
			ne := dem.At(r-1, c+1)
			w := dem.At(r, c-1)
			e := dem.At(r, c+1)
			sw := dem.At(r+1, c-1)
			s := dem.At(r+1, c)
			se := dem.At(r+1, c+1)

			sum := nw + n + ne + w + dem.At(r, c) + e + sw + s + se
			if math.IsNaN(sum) {
				continue
			}

			dzdx := ((ne + 2*e + se) - (nw + 2*w + sw)) / (8 * dem.CellSizeX)
			dzdy := ((sw + 2*s + se) - (nw + 2*n + ne)) / (8 * dem.CellSizeY)

			rad := math.Atan(math.Sqrt(dzdx*dzdx + dzdy*dzdy))
			out[r*dem.Cols+c] = rad * 180 / math.Pi
		}
	}

	return slope
}
