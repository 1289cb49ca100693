package geo

import (
	"bytes"
	"fmt"
	"os"
)

// ParseBoundary sniffs the input format (KML or GeoJSON) and parses a
// boundary polygon from it.
func ParseBoundary(data []byte) (*Polygon, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\xef\xbb\xbf")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
	}

	switch trimmed[0] {
	case '<':
		return ParseKMLBoundary(trimmed)
	case '{':
		return ParseGeoJSONBoundary(trimmed)
	default:
		return nil, fmt.Errorf("%w: input is neither KML nor GeoJSON", ErrUnsupportedFormat)
	}
}

// LoadBoundary reads and parses a boundary file.
func LoadBoundary(path string) (*Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBoundary(data)
}
