package raster

import (
	"sort"

	"github.com/openterra/flatarea/internal/geo"
)

// corner addresses a cell-corner vertex: x is a column index 0..Cols,
// y a row index 0..Rows.
type corner struct {
	x, y int
}

type dirEdge struct {
	from, to corner
	owner    int // index of the true cell this edge belongs to
	used     bool
}

// Vectorize traces the true regions of a mask into polygons with holes, in
// the mask's world coordinate reference. Cell corners become vertices,
// adjacent true cells (4-connectivity) merge into one polygon, and enclosed
// false regions become holes. An empty mask yields an empty slice.
//
// Every exposed edge of a true cell is emitted as a directed segment with the
// cell on its left; chaining those segments end to end closes the rings.
// Outer rings come out counterclockwise in world coordinates, holes
// clockwise, matching the GeoJSON writer's expectations.
func Vectorize(m *Mask) []geo.Polygon {
	edges := collectEdges(m)
	if len(edges) == 0 {
		return nil
	}

	// outgoing edge lookup by start vertex; at most two entries per vertex
	// (only at checkerboard corners)
	outgoing := make(map[corner][]int, len(edges))
	for i, e := range edges {
		outgoing[e.from] = append(outgoing[e.from], i)
	}

	type tracedRing struct {
		ring  geo.Ring
		owner int
		area  float64
	}

	var rings []tracedRing

	for start := range edges {
		if edges[start].used {
			continue
		}

		var path []corner
		cur := start
		for {
			e := &edges[cur]
			e.used = true
			path = append(path, e.from)

			next := nextEdge(edges, outgoing, cur)
			if next < 0 || next == start {
				break
			}
			cur = next
		}

		path = dropCollinear(path)
		if len(path) < 4 {
			continue
		}

		ring := make(geo.Ring, len(path))
		for i, v := range path {
			ring[i] = geo.Point{
				X: m.OriginX + float64(v.x)*m.CellSizeX,
				Y: m.OriginY - float64(v.y)*m.CellSizeY,
			}
		}

		rings = append(rings, tracedRing{
			ring:  ring,
			owner: edges[start].owner,
			area:  geo.SignedArea(ring),
		})
	}

	// positive area = outer ring, negative = hole
	var outers []tracedRing
	var holes []tracedRing
	for _, tr := range rings {
		if tr.area > 0 {
			outers = append(outers, tr)
		} else if tr.area < 0 {
			holes = append(holes, tr)
		}
	}

	// smaller outer rings first so holes attach to the innermost container
	sort.Slice(outers, func(i, j int) bool { return outers[i].area < outers[j].area })

	polys := make([]geo.Polygon, len(outers))
	for i, o := range outers {
		polys[i] = geo.Polygon{Outer: o.ring}
	}

	for _, h := range holes {
		// the owner cell of the hole's first edge is a true cell strictly
		// inside the containing outer ring
		oc := h.owner
		center := geo.Point{
			X: m.OriginX + (float64(oc%m.Cols)+0.5)*m.CellSizeX,
			Y: m.OriginY - (float64(oc/m.Cols)+0.5)*m.CellSizeY,
		}
		for i := range polys {
			probe := geo.Polygon{Outer: polys[i].Outer}
			if probe.Contains(center) {
				polys[i].Holes = append(polys[i].Holes, h.ring)
				break
			}
		}
	}

	return polys
}

// collectEdges emits one directed segment per exposed side of each true cell.
// Directions keep the owning cell on the left in grid (y-down) coordinates:
// north side runs west, south side east, west side south, east side north.
func collectEdges(m *Mask) []dirEdge {
	var edges []dirEdge

	at := func(r, c int) bool {
		if r < 0 || r >= m.Rows || c < 0 || c >= m.Cols {
			return false
		}
		return m.Cells[r*m.Cols+c]
	}

	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if !at(r, c) {
				continue
			}
			owner := r*m.Cols + c

			if !at(r-1, c) { // north
				edges = append(edges, dirEdge{from: corner{c + 1, r}, to: corner{c, r}, owner: owner})
			}
			if !at(r+1, c) { // south
				edges = append(edges, dirEdge{from: corner{c, r + 1}, to: corner{c + 1, r + 1}, owner: owner})
			}
			if !at(r, c-1) { // west
				edges = append(edges, dirEdge{from: corner{c, r}, to: corner{c, r + 1}, owner: owner})
			}
			if !at(r, c+1) { // east
				edges = append(edges, dirEdge{from: corner{c + 1, r + 1}, to: corner{c + 1, r}, owner: owner})
			}
		}
	}

	return edges
}

// nextEdge picks the unused continuation of edge cur. At checkerboard
// corners two continuations exist; the left turn (relative to the cell-on-
// the-left convention) keeps diagonally touching regions separate and the
// rings simple.
func nextEdge(edges []dirEdge, outgoing map[corner][]int, cur int) int {
	e := edges[cur]
	candidates := outgoing[e.to]

	best := -1
	bestTurn := 2 // 0 = left, 1 = straight, 2 = right
	dinX := e.to.x - e.from.x
	dinY := e.to.y - e.from.y

	for _, idx := range candidates {
		n := edges[idx]
		if n.used {
			continue
		}
		doutX := n.to.x - n.from.x
		doutY := n.to.y - n.from.y

		crossz := dinX*doutY - dinY*doutX
		turn := 1
		if crossz < 0 {
			turn = 0
		} else if crossz > 0 {
			turn = 2
		}
		if best == -1 || turn < bestTurn {
			best = idx
			bestTurn = turn
		}
	}

	return best
}

func dropCollinear(path []corner) []corner {
	n := len(path)
	if n < 3 {
		return path
	}

	out := make([]corner, 0, n)
	for i := 0; i < n; i++ {
		prev := path[(i-1+n)%n]
		cur := path[i]
		next := path[(i+1)%n]

		d1x, d1y := cur.x-prev.x, cur.y-prev.y
		d2x, d2y := next.x-cur.x, next.y-cur.y
		if d1x*d2y-d1y*d2x == 0 {
			continue
		}
		out = append(out, cur)
	}
	return out
}
