package geo

import (
	"encoding/json"
	"errors"
	"testing"
)

const geojsonFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "aoi"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [
          [[10.0, 45.0], [10.1, 45.0], [10.1, 45.1], [10.0, 45.1], [10.0, 45.0]],
          [[10.02, 45.02], [10.08, 45.02], [10.08, 45.08], [10.02, 45.08], [10.02, 45.02]]
        ]
      }
    }
  ]
}`

const kmlFixture = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>aoi</name>
      <Polygon>
        <outerBoundaryIs>
          <LinearRing>
            <coordinates>
              10.0,45.0,0 10.1,45.0,0 10.1,45.1,0 10.0,45.1,0 10.0,45.0,0
            </coordinates>
          </LinearRing>
        </outerBoundaryIs>
        <innerBoundaryIs>
          <LinearRing>
            <coordinates>10.02,45.02,0 10.08,45.02,0 10.08,45.08,0 10.02,45.08,0</coordinates>
          </LinearRing>
        </innerBoundaryIs>
      </Polygon>
    </Placemark>
  </Document>
</kml>`

func TestParseGeoJSONBoundary(t *testing.T) {
	pg, err := ParseGeoJSONBoundary([]byte(geojsonFixture))
	if err != nil {
		t.Fatalf("ParseGeoJSONBoundary error: %v", err)
	}
	if len(pg.Outer) != 4 {
		t.Fatalf("expected 4 outer vertices, got %d", len(pg.Outer))
	}
	if len(pg.Holes) != 1 || len(pg.Holes[0]) != 4 {
		t.Fatalf("expected one 4-vertex hole, got %+v", pg.Holes)
	}
}

func TestParseGeoJSONBoundaryBareGeometry(t *testing.T) {
	raw := `{"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`
	pg, err := ParseGeoJSONBoundary([]byte(raw))
	if err != nil {
		t.Fatalf("ParseGeoJSONBoundary error: %v", err)
	}
	if len(pg.Outer) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(pg.Outer))
	}
}

func TestParseGeoJSONBoundaryRejectsPoint(t *testing.T) {
	raw := `{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 2]}}`
	_, err := ParseGeoJSONBoundary([]byte(raw))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseKMLBoundary(t *testing.T) {
	pg, err := ParseKMLBoundary([]byte(kmlFixture))
	if err != nil {
		t.Fatalf("ParseKMLBoundary error: %v", err)
	}
	if len(pg.Outer) != 4 {
		t.Fatalf("expected 4 outer vertices, got %d", len(pg.Outer))
	}
	if len(pg.Holes) != 1 {
		t.Fatalf("expected 1 hole, got %d", len(pg.Holes))
	}
	if pg.Outer[0] != (Point{10.0, 45.0}) {
		t.Fatalf("unexpected first vertex %+v", pg.Outer[0])
	}
}

func TestParseKMLBoundaryNoPolygon(t *testing.T) {
	raw := `<kml xmlns="http://www.opengis.net/kml/2.2"><Document></Document></kml>`
	_, err := ParseKMLBoundary([]byte(raw))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestKMLRoundTrip(t *testing.T) {
	pg, err := ParseKMLBoundary([]byte(kmlFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	data, err := WriteKML([]Polygon{*pg}, "roundtrip")
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	back, err := ParseKMLBoundary(data)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}

	if len(back.Outer) != len(pg.Outer) || len(back.Holes) != len(pg.Holes) {
		t.Fatalf("ring structure changed: %d/%d vs %d/%d",
			len(back.Outer), len(back.Holes), len(pg.Outer), len(pg.Holes))
	}
	for i, p := range pg.Outer {
		if back.Outer[i] != p {
			t.Fatalf("outer vertex %d changed: %+v vs %+v", i, back.Outer[i], p)
		}
	}
}

func TestParseBoundarySniffsFormat(t *testing.T) {
	if _, err := ParseBoundary([]byte(kmlFixture)); err != nil {
		t.Fatalf("KML sniff failed: %v", err)
	}
	if _, err := ParseBoundary([]byte(geojsonFixture)); err != nil {
		t.Fatalf("GeoJSON sniff failed: %v", err)
	}
	if _, err := ParseBoundary([]byte("x,y\n1,2")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for CSV input")
	}
}

func TestMarshalPolygonsOrientation(t *testing.T) {
	// clockwise outer ring, counterclockwise hole: the writer must flip both
	outer := Ring{{0, 0}, {0, 4}, {4, 4}, {4, 0}}
	hole := Ring{{1, 1}, {3, 1}, {3, 3}, {1, 3}}
	fc := MarshalPolygons([]Polygon{{Outer: outer, Holes: []Ring{hole}}})

	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}

	var rings [][][]float64
	if err := json.Unmarshal(fc.Features[0].Geometry.Coordinates, &rings); err != nil {
		t.Fatalf("unmarshal coordinates: %v", err)
	}
	if len(rings) != 2 {
		t.Fatalf("expected 2 rings, got %d", len(rings))
	}

	for i, ring := range rings {
		if ring[0][0] != ring[len(ring)-1][0] || ring[0][1] != ring[len(ring)-1][1] {
			t.Fatalf("ring %d not closed", i)
		}
	}

	if a := shoelace(rings[0]); a <= 0 {
		t.Fatalf("outer ring should be counterclockwise, signed area %v", a)
	}
	if a := shoelace(rings[1]); a >= 0 {
		t.Fatalf("hole ring should be clockwise, signed area %v", a)
	}
}

func TestMarshalPolygonsEmpty(t *testing.T) {
	fc := MarshalPolygons(nil)
	if fc.Type != "FeatureCollection" {
		t.Fatalf("unexpected type %q", fc.Type)
	}
	if fc.Features == nil || len(fc.Features) != 0 {
		t.Fatalf("expected non-nil empty features, got %#v", fc.Features)
	}
}

func shoelace(coords [][]float64) float64 {
	var sum float64
	for i := 0; i+1 < len(coords); i++ {
		sum += coords[i][0]*coords[i+1][1] - coords[i+1][0]*coords[i][1]
	}
	return sum
}
