package raster

import (
	"math"
	"testing"
)

func constantGrid(t *testing.T, rows, cols int, value, cellSize float64) *Grid {
	t.Helper()
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = value
	}
	g, err := NewGrid(rows, cols, 0, 0, cellSize, cellSize, data)
	if err != nil {
		t.Fatalf("NewGrid error: %v", err)
	}
	return g
}

func TestNewGridValidation(t *testing.T) {
	if _, err := NewGrid(0, 4, 0, 0, 30, 30, nil); err == nil {
		t.Fatalf("expected error for zero rows")
	}
	if _, err := NewGrid(2, 2, 0, 0, -30, 30, make([]float64, 4)); err == nil {
		t.Fatalf("expected error for negative cell size")
	}
	if _, err := NewGrid(2, 2, 0, 0, 30, 30, make([]float64, 3)); err == nil {
		t.Fatalf("expected error for data length mismatch")
	}
}

func TestSlopeShapeAndBorders(t *testing.T) {
	dem := constantGrid(t, 5, 7, 100, 30)
	slope := Slope(dem)

	if slope.Rows != dem.Rows || slope.Cols != dem.Cols {
		t.Fatalf("shape changed: %dx%d vs %dx%d", slope.Rows, slope.Cols, dem.Rows, dem.Cols)
	}
	if !slope.SameShape(dem) {
		t.Fatalf("geocoding changed")
	}

	for r := 0; r < slope.Rows; r++ {
		for c := 0; c < slope.Cols; c++ {
			border := r == 0 || c == 0 || r == slope.Rows-1 || c == slope.Cols-1
			if border && !slope.IsNoData(r, c) {
				t.Fatalf("border cell (%d,%d) should be no-data, got %v", r, c, slope.At(r, c))
			}
			if !border && slope.IsNoData(r, c) {
				t.Fatalf("interior cell (%d,%d) should have a slope", r, c)
			}
		}
	}
}

func TestSlopeFlatTerrainIsZero(t *testing.T) {
	slope := Slope(constantGrid(t, 6, 6, 250, 10))
	for r := 1; r < 5; r++ {
		for c := 1; c < 5; c++ {
			if v := slope.At(r, c); math.Abs(v) > 1e-12 {
				t.Fatalf("flat terrain slope at (%d,%d) = %v, want 0", r, c, v)
			}
		}
	}
}

func TestSlopeRampMatchesHandComputedValue(t *testing.T) {
	// elevation rises 10 per column at 30 m spacing:
	// dz/dx = (4*10(c+1) - 4*10(c-1)) / (8*30) = 80/240 = 1/3
	data := make([]float64, 25)
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			data[r*5+c] = 10 * float64(c)
		}
	}
	dem, err := NewGrid(5, 5, 0, 0, 30, 30, data)
	if err != nil {
		t.Fatalf("NewGrid error: %v", err)
	}

	want := math.Atan(1.0/3.0) * 180 / math.Pi

	slope := Slope(dem)
	for r := 1; r < 4; r++ {
		for c := 1; c < 4; c++ {
			if got := slope.At(r, c); math.Abs(got-want) > 1e-9 {
				t.Fatalf("ramp slope at (%d,%d) = %v, want %v", r, c, got, want)
			}
		}
	}
}

func TestSlopeNoDataPropagates(t *testing.T) {
	dem := constantGrid(t, 5, 5, 100, 30)
	dem.Data[2*5+2] = math.NaN() // center cell

	slope := Slope(dem)

	// all 3x3 neighborhoods touching (2,2) become no-data
	for r := 1; r < 4; r++ {
		for c := 1; c < 4; c++ {
			if !slope.IsNoData(r, c) {
				t.Fatalf("cell (%d,%d) neighbors no-data but has slope %v", r, c, slope.At(r, c))
			}
		}
	}
}

func TestSlopeDeterministic(t *testing.T) {
	data := make([]float64, 36)
	for i := range data {
		data[i] = float64((i*31)%17) * 3.5
	}
	dem, err := NewGrid(6, 6, 5, 10, 25, 25, data)
	if err != nil {
		t.Fatalf("NewGrid error: %v", err)
	}

	a := Slope(dem)
	b := Slope(dem)
	for i := range a.Data {
		av, bv := a.Data[i], b.Data[i]
		if math.IsNaN(av) && math.IsNaN(bv) {
			continue
		}
		if av != bv {
			t.Fatalf("slope not reproducible at %d: %v vs %v", i, av, bv)
		}
	}
}

func TestCellGeocoding(t *testing.T) {
	g, err := NewGrid(4, 4, 100, 200, 30, 30, make([]float64, 16))
	if err != nil {
		t.Fatalf("NewGrid error: %v", err)
	}

	center := g.CellCenter(0, 0)
	if center.X != 115 || center.Y != 185 {
		t.Fatalf("unexpected cell center %+v", center)
	}

	corner := g.CellCorner(4, 4)
	if corner.X != 220 || corner.Y != 80 {
		t.Fatalf("unexpected outer corner %+v", corner)
	}

	b := g.Bounds()
	if b.MinX != 100 || b.MaxX != 220 || b.MinY != 80 || b.MaxY != 200 {
		t.Fatalf("unexpected bounds %+v", b)
	}
}
