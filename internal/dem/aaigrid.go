package dem

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/openterra/flatarea/internal/raster"
)

// DecodeAAIGrid parses an Esri ASCII grid (the OpenTopography AAIGrid output
// format) into an elevation grid. The header keys are case-insensitive;
// ncols, nrows, xllcorner, yllcorner and cellsize are required,
// nodata_value is optional. Sample rows run north to south. NODATA samples
// are normalized to NaN.
func DecodeAAIGrid(r io.Reader) (*raster.Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	header := map[string]float64{}
	nodata := math.NaN()
	hasNodata := false

	var values []float64
	var stErr []string

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		// header lines are "key value" pairs; the first line starting with a
		// numeric token begins the data block
		if len(fields) == 2 && !isNumeric(fields[0]) {
			key := strings.ToLower(fields[0])
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				stErr = append(stErr, fmt.Sprintf("failed to read %q: %v", key, err))
				continue
			}
			if key == "nodata_value" {
				nodata = v
				hasNodata = true
			} else {
				header[key] = v
			}
			continue
		}

		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				stErr = append(stErr, fmt.Sprintf("bad sample %q: %v", f, err))
				continue
			}
			if hasNodata && v == nodata {
				v = math.NaN()
			}
			values = append(values, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("aaigrid read: %w", err)
	}

	for _, key := range []string{"ncols", "nrows", "xllcorner", "yllcorner", "cellsize"} {
		if _, ok := header[key]; !ok {
			stErr = append(stErr, fmt.Sprintf("missing header %q", key))
		}
	}
	if len(stErr) > 0 {
		return nil, fmt.Errorf("aaigrid decode: %s", strings.Join(stErr, "; "))
	}

	cols := int(header["ncols"])
	rows := int(header["nrows"])
	cellSize := header["cellsize"]

	if len(values) != rows*cols {
		return nil, fmt.Errorf("aaigrid decode: %d samples for %dx%d grid", len(values), rows, cols)
	}

	// xllcorner/yllcorner address the lower-left outer corner; the grid
	// origin is the upper-left one
	return raster.NewGrid(
		rows, cols,
		header["xllcorner"],
		header["yllcorner"]+float64(rows)*cellSize,
		cellSize, cellSize,
		values,
	)
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
