package processor

import (
	"image/color"
	"math"
	"testing"

	"github.com/openterra/flatarea/internal/raster"
)

func TestRenderSlopeOverlayClasses(t *testing.T) {
	// one cell per slope class plus a no-data cell
	data := []float64{
		0, 9, 17,
		25, 33, 41,
		49, 57, 70,
	}
	slope, err := raster.NewGrid(3, 3, 0, 0, 30, 30, data)
	if err != nil {
		t.Fatalf("NewGrid error: %v", err)
	}
	slope.Data[0*3+0] = 0.5 // class 0
	slope.Data[2*3+2] = math.NaN()

	img := RenderSlopeOverlay(slope, 1)
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 3 {
		t.Fatalf("unexpected image size %v", img.Bounds())
	}

	want := []color.NRGBA{
		slopeColors[0], slopeColors[1], slopeColors[2],
		slopeColors[3], slopeColors[4], slopeColors[5],
		slopeColors[6], slopeColors[7],
	}
	for i, w := range want {
		r, c := i/3, i%3
		got := img.At(c, r).(color.NRGBA)
		if got != w {
			t.Fatalf("pixel (%d,%d) = %+v, want %+v", c, r, got, w)
		}
	}

	// no-data stays transparent
	if _, _, _, a := img.At(2, 2).RGBA(); a != 0 {
		t.Fatalf("no-data pixel should be transparent, alpha %d", a)
	}
}

func TestRenderSlopeOverlayClampsSteepSlopes(t *testing.T) {
	data := []float64{80, 90, 120, 200}
	slope, err := raster.NewGrid(2, 2, 0, 0, 30, 30, data)
	if err != nil {
		t.Fatalf("NewGrid error: %v", err)
	}

	img := RenderSlopeOverlay(slope, 1)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := img.At(x, y).(color.NRGBA); got != slopeColors[8] {
				t.Fatalf("pixel (%d,%d) = %+v, want top class", x, y, got)
			}
		}
	}
}

func TestRenderSlopeOverlayScale(t *testing.T) {
	data := make([]float64, 4)
	slope, err := raster.NewGrid(2, 2, 0, 0, 30, 30, data)
	if err != nil {
		t.Fatalf("NewGrid error: %v", err)
	}

	img := RenderSlopeOverlay(slope, 4)
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Fatalf("unexpected scaled size %v", img.Bounds())
	}
}
