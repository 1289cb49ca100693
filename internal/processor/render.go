package processor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/openterra/flatarea/internal/raster"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
)

// slopeColors maps 8-degree slope classes to display colors; the last entry
// covers everything above 64 degrees. No-data cells stay transparent.
var slopeColors = [9]color.NRGBA{
	{173, 216, 230, 255}, // 0-8: light blue
	{144, 238, 144, 255}, // 8-16: light green
	{0, 100, 0, 255},     // 16-24: dark green
	{255, 255, 102, 255}, // 24-32: yellow
	{255, 165, 0, 255},   // 32-40: orange
	{255, 0, 0, 255},     // 40-48: red
	{139, 0, 0, 255},     // 48-56: dark red
	{128, 0, 128, 255},   // 56-64: purple
	{0, 0, 0, 255},       // >64: black
}

// RenderSlopeOverlay rasterizes the slope grid into a classified image, one
// pixel per cell, optionally upscaled by an integer factor for display.
func RenderSlopeOverlay(slope *raster.Grid, scale int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, slope.Cols, slope.Rows))

	for r := 0; r < slope.Rows; r++ {
		for c := 0; c < slope.Cols; c++ {
			v := slope.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			class := int(v / 8)
			if class < 0 {
				class = 0
			}
			if class > 8 {
				class = 8
			}
			img.SetNRGBA(c, r, slopeColors[class])
		}
	}

	if scale <= 1 {
		return img
	}

	dst := image.NewNRGBA(image.Rect(0, 0, slope.Cols*scale, slope.Rows*scale))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// WriteSlopeOverlay encodes the classified slope raster as webp and writes a
// matching ESRI worldfile next to it for georeferencing.
func WriteSlopeOverlay(path string, slope *raster.Grid, scale int) error {
	if scale < 1 {
		scale = 1
	}

	img := RenderSlopeOverlay(slope, scale)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	if err := webp.Encode(f, img, &webp.Options{Lossless: true}); err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}

	return writeWorldfile(worldfilePath(path), slope, scale)
}

// writeWorldfile emits the six-line affine transform. The worldfile
// convention addresses the center of the upper-left pixel.
func writeWorldfile(path string, slope *raster.Grid, scale int) error {
	pxW := slope.CellSizeX / float64(scale)
	pxH := slope.CellSizeY / float64(scale)

	lines := []float64{
		pxW,                     // pixel width
		0,                       // row rotation
		0,                       // column rotation
		-pxH,                    // pixel height, negative for north-up
		slope.OriginX + pxW/2,   // x of upper-left pixel center
		slope.OriginY - pxH/2,   // y of upper-left pixel center
	}

	var sb strings.Builder
	for _, v := range lines {
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		sb.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

func worldfilePath(imgPath string) string {
	ext := filepath.Ext(imgPath)
	return strings.TrimSuffix(imgPath, ext) + ".wld"
}
