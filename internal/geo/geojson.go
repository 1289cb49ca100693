package geo

import (
	"encoding/json"
	"fmt"
)

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
	Type       string                 `json:"type" yaml:"type"`
	Geometry   GeoJSONGeometry        `json:"geometry" yaml:"geometry"`
}

// GeoJSONGeometry represents the geometry of a feature. Coordinates are kept
// raw because their nesting depth depends on the geometry type.
type GeoJSONGeometry struct {
	Type        string          `json:"type" yaml:"type"`
	Coordinates json.RawMessage `json:"coordinates" yaml:"coordinates"`
}

// NewPolygonFeature builds a GeoJSON Polygon feature from a polygon,
// enforcing RFC 7946 orientation: outer ring counterclockwise, holes
// clockwise, every ring explicitly closed.
func NewPolygonFeature(pg Polygon, props map[string]interface{}) GeoJSONFeature {
	rings := make([][][]float64, 0, 1+len(pg.Holes))
	rings = append(rings, closedCoords(pg.Outer, true))
	for _, h := range pg.Holes {
		rings = append(rings, closedCoords(h, false))
	}

	raw, _ := json.Marshal(rings)

	return GeoJSONFeature{
		Type:       "Feature",
		Properties: props,
		Geometry:   GeoJSONGeometry{Type: "Polygon", Coordinates: raw},
	}
}

// ParseGeoJSONBoundary extracts a boundary polygon from GeoJSON input.
// Accepted roots: FeatureCollection, Feature, Polygon, MultiPolygon. Only the
// first polygon of a collection or multipolygon is used. The result is
// validated.
func ParseGeoJSONBoundary(data []byte) (*Polygon, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %s", ErrUnsupportedFormat, err)
	}

	var g *GeoJSONGeometry

	switch probe.Type {
	case "FeatureCollection":
		var fc GeoJSONFeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
		}
		for i := range fc.Features {
			if fc.Features[i].Geometry.Type == "Polygon" || fc.Features[i].Geometry.Type == "MultiPolygon" {
				g = &fc.Features[i].Geometry
				break
			}
		}
		if g == nil {
			return nil, fmt.Errorf("%w: no polygon feature in collection", ErrInvalidGeometry)
		}

	case "Feature":
		var f GeoJSONFeature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
		}
		g = &f.Geometry

	case "Polygon", "MultiPolygon":
		var raw GeoJSONGeometry
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
		}
		g = &raw

	default:
		return nil, fmt.Errorf("%w: unexpected GeoJSON type %q", ErrUnsupportedFormat, probe.Type)
	}

	return polygonFromGeometry(g)
}

func polygonFromGeometry(g *GeoJSONGeometry) (*Polygon, error) {
	var rings [][][]float64

	switch g.Type {
	case "Polygon":
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("%w: polygon coordinates: %s", ErrUnsupportedFormat, err)
		}
	case "MultiPolygon":
		var multi [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &multi); err != nil {
			return nil, fmt.Errorf("%w: multipolygon coordinates: %s", ErrUnsupportedFormat, err)
		}
		if len(multi) == 0 {
			return nil, fmt.Errorf("%w: empty multipolygon", ErrInvalidGeometry)
		}
		rings = multi[0]
	default:
		return nil, fmt.Errorf("%w: geometry type %q, expected Polygon", ErrUnsupportedFormat, g.Type)
	}

	if len(rings) == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
	}

	pg := &Polygon{Outer: ringFromCoords(rings[0])}
	for _, rc := range rings[1:] {
		pg.Holes = append(pg.Holes, ringFromCoords(rc))
	}

	if err := pg.Validate(); err != nil {
		return nil, err
	}
	return pg, nil
}

// MarshalPolygons wraps output polygons into a FeatureCollection, one feature
// per connected flat region. An empty input yields a valid collection with
// zero features.
func MarshalPolygons(polys []Polygon) GeoJSONFeatureCollection {
	fc := GeoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]GeoJSONFeature, 0, len(polys)),
	}
	for i, pg := range polys {
		fc.Features = append(fc.Features, NewPolygonFeature(pg, map[string]interface{}{
			"region": i,
		}))
	}
	return fc
}

func ringFromCoords(coords [][]float64) Ring {
	r := make(Ring, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		r = append(r, Point{X: c[0], Y: c[1]})
	}
	return r
}

// closedCoords serializes a ring with the required orientation, appending the
// closing vertex. Rings are stored open internally.
func closedCoords(r Ring, ccw bool) [][]float64 {
	tmp := make(Ring, len(r))
	copy(tmp, r)
	if area := SignedArea(tmp); (area > 0) != ccw && area != 0 {
		Reverse(tmp)
	}

	out := make([][]float64, 0, len(tmp)+1)
	for _, p := range tmp {
		out = append(out, []float64{p.X, p.Y})
	}
	if len(tmp) > 0 {
		out = append(out, []float64{tmp[0].X, tmp[0].Y})
	}
	return out
}
