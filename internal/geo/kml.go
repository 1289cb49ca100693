package geo

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const kmlNamespace = "http://www.opengis.net/kml/2.2"

// Internal structures for KML parsing
type kmlPolygon struct {
	Outer kmlRing   `xml:"outerBoundaryIs>LinearRing"`
	Inner []kmlRing `xml:"innerBoundaryIs>LinearRing"`
}

type kmlRing struct {
	Coordinates string `xml:"coordinates"`
}

// ParseKMLBoundary extracts the first Polygon element found anywhere in a KML
// document, regardless of Folder/Document nesting. The result is validated.
func ParseKMLBoundary(data []byte) (*Polygon, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: not valid KML: %s", ErrUnsupportedFormat, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Polygon" {
			continue
		}

		var kp kmlPolygon
		if err := dec.DecodeElement(&kp, &start); err != nil {
			return nil, fmt.Errorf("%w: polygon element: %s", ErrUnsupportedFormat, err)
		}

		outer, err := parseKMLCoordinates(kp.Outer.Coordinates)
		if err != nil {
			return nil, err
		}

		pg := &Polygon{Outer: outer}
		for _, inner := range kp.Inner {
			hole, err := parseKMLCoordinates(inner.Coordinates)
			if err != nil {
				return nil, err
			}
			pg.Holes = append(pg.Holes, hole)
		}

		if err := pg.Validate(); err != nil {
			return nil, err
		}
		return pg, nil
	}

	return nil, fmt.Errorf("%w: no Polygon element in KML document", ErrUnsupportedFormat)
}

// parseKMLCoordinates parses the whitespace-separated lon,lat[,alt] tuples of
// a <coordinates> element.
func parseKMLCoordinates(s string) (Ring, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	r := make(Ring, 0, len(fields))

	for _, f := range fields {
		parts := strings.Split(f, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: coordinate tuple %q", ErrUnsupportedFormat, f)
		}
		x, err1 := strconv.ParseFloat(parts[0], 64)
		y, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: coordinate tuple %q", ErrUnsupportedFormat, f)
		}
		r = append(r, Point{X: x, Y: y})
	}

	return r, nil
}

// WriteKML serializes polygons to a KML document, one Placemark per polygon.
// Rings are written explicitly closed.
func WriteKML(polys []Polygon, name string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(`<kml xmlns="` + kmlNamespace + `"><Document>`)
	if name != "" {
		buf.WriteString("<name>")
		_ = xml.EscapeText(&buf, []byte(name))
		buf.WriteString("</name>")
	}

	for i, pg := range polys {
		fmt.Fprintf(&buf, `<Placemark><name>region %d</name><Polygon>`, i)
		buf.WriteString("<outerBoundaryIs><LinearRing><coordinates>")
		writeKMLRing(&buf, pg.Outer)
		buf.WriteString("</coordinates></LinearRing></outerBoundaryIs>")
		for _, h := range pg.Holes {
			buf.WriteString("<innerBoundaryIs><LinearRing><coordinates>")
			writeKMLRing(&buf, h)
			buf.WriteString("</coordinates></LinearRing></innerBoundaryIs>")
		}
		buf.WriteString("</Polygon></Placemark>")
	}

	buf.WriteString("</Document></kml>")
	return buf.Bytes(), nil
}

func writeKMLRing(buf *bytes.Buffer, r Ring) {
	for _, p := range r {
		fmt.Fprintf(buf, "%s,%s,0 ",
			strconv.FormatFloat(p.X, 'f', -1, 64),
			strconv.FormatFloat(p.Y, 'f', -1, 64))
	}
	if len(r) > 0 {
		fmt.Fprintf(buf, "%s,%s,0",
			strconv.FormatFloat(r[0].X, 'f', -1, 64),
			strconv.FormatFloat(r[0].Y, 'f', -1, 64))
	}
}
