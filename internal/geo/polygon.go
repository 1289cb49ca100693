// Package geo handles geographic data structures, boundary parsing and
// point-in-polygon tests.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// Taxonomy for boundary loading failures.
var (
	ErrInvalidGeometry   = errors.New("invalid geometry")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Point is a single coordinate pair. X is longitude (or projected easting),
// Y is latitude (or projected northing).
type Point struct {
	X float64
	Y float64
}

// Ring is an ordered sequence of vertices forming a closed loop.
// Rings are stored open: the closing vertex equal to the first one is
// implied and added only on serialization.
type Ring []Point

// Polygon is a single outer ring with optional hole rings. Immutable once
// validated. Used both for the input boundary and for flat-area output.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// BBox is an axis-aligned bounding box.
type BBox struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Expand grows the box by margin on every side. Margin must be >= 0.
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
	}
}

// Contains reports whether p lies within the box, edges included.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Validate checks every ring of the polygon: at least 3 distinct vertices,
// finite coordinates, simple (non-self-intersecting). A trailing vertex equal
// to the first is stripped before checking.
func (pg *Polygon) Validate() error {
	outer, err := normalizeRing(pg.Outer)
	if err != nil {
		return fmt.Errorf("%w: outer ring: %s", ErrInvalidGeometry, err)
	}
	pg.Outer = outer

	for i, h := range pg.Holes {
		hole, err := normalizeRing(h)
		if err != nil {
			return fmt.Errorf("%w: hole ring %d: %s", ErrInvalidGeometry, i, err)
		}
		pg.Holes[i] = hole
	}

	return nil
}

// BoundingBox returns the bounds of the outer ring expanded by margin.
func (pg *Polygon) BoundingBox(margin float64) BBox {
	b := BBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range pg.Outer {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	if margin > 0 {
		b = b.Expand(margin)
	}
	return b
}

// Contains reports whether p is inside the polygon using the even-odd rule
// over the outer ring and all holes. Points exactly on any ring segment or
// vertex count as inside. The test does not depend on ring orientation.
func (pg *Polygon) Contains(p Point) bool {
	if onRing(pg.Outer, p) {
		return true
	}
	for _, h := range pg.Holes {
		if onRing(h, p) {
			return true
		}
	}

	inside := crossesOdd(pg.Outer, p)
	for _, h := range pg.Holes {
		if crossesOdd(h, p) {
			inside = !inside
		}
	}
	return inside
}

// SignedArea returns twice the shoelace area of the ring. Positive means
// counterclockwise in a y-up coordinate system.
func SignedArea(r Ring) float64 {
	var sum float64
	n := len(r)
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum
}

// Reverse flips the vertex order of the ring in place.
func Reverse(r Ring) {
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
}

func normalizeRing(r Ring) (Ring, error) {
	for _, p := range r {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, fmt.Errorf("non-finite coordinate (%v, %v)", p.X, p.Y)
		}
	}

	// strip explicit closing vertex
	if len(r) > 1 && r[0] == r[len(r)-1] {
		r = r[:len(r)-1]
	}

	// drop consecutive duplicates
	out := make(Ring, 0, len(r))
	for _, p := range r {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}

	if len(out) < 3 {
		return nil, fmt.Errorf("fewer than 3 distinct vertices (%d)", len(out))
	}

	if selfIntersects(out) {
		return nil, fmt.Errorf("ring self-intersects")
	}

	return out, nil
}

// selfIntersects tests every non-adjacent segment pair. Rings here are small
// (user-drawn boundaries), quadratic is fine.
func selfIntersects(r Ring) bool {
	n := len(r)
	for i := 0; i < n; i++ {
		a1, a2 := r[i], r[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// skip adjacent segments sharing an endpoint
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1, b2 := r[j], r[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(a1, a2, b1, b2 Point) bool {
	d1 := cross(b1, b2, a1)
	d2 := cross(b1, b2, a2)
	d3 := cross(a1, a2, b1)
	d4 := cross(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// collinear overlaps
	if d1 == 0 && onSegment(b1, b2, a1) {
		return true
	}
	if d2 == 0 && onSegment(b1, b2, a2) {
		return true
	}
	if d3 == 0 && onSegment(a1, a2, b1) {
		return true
	}
	if d4 == 0 && onSegment(a1, a2, b2) {
		return true
	}
	return false
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// onRing reports whether p lies exactly on one of the ring's segments.
func onRing(r Ring, p Point) bool {
	n := len(r)
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		if cross(a, b, p) == 0 && onSegment(a, b, p) {
			return true
		}
	}
	return false
}

// crossesOdd implements the even-odd ray-casting rule for a single ring.
func crossesOdd(r Ring, p Point) bool {
	in := false
	n := len(r)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}
