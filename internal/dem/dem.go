// Package dem fetches and decodes digital elevation model rasters.
package dem

import (
	"errors"
	"fmt"
)

// Taxonomy for fetch failures. Both are terminal for a run, there is no
// partial-grid processing.
var (
	ErrUnavailable = errors.New("dem unavailable")
	ErrCoverageGap = errors.New("dem coverage gap")
)

// Resolution selects the provider dataset.
type Resolution string

const (
	Res30m Resolution = "30m"
	Res90m Resolution = "90m"
)

// DemType returns the OpenTopography dataset name for the resolution.
func (r Resolution) DemType() (string, error) {
	switch r {
	case Res30m:
		return "SRTMGL1", nil
	case Res90m:
		return "SRTMGL3", nil
	default:
		return "", fmt.Errorf("unknown DEM resolution %q", string(r))
	}
}

// CellSizeDeg returns the nominal cell size in degrees (1 or 3 arc-seconds).
func (r Resolution) CellSizeDeg() (float64, error) {
	switch r {
	case Res30m:
		return 1.0 / 3600.0, nil
	case Res90m:
		return 3.0 / 3600.0, nil
	default:
		return 0, fmt.Errorf("unknown DEM resolution %q", string(r))
	}
}
