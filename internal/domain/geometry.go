package domain

// Containment uses the standard even-odd ray-casting test. The convention
// for points exactly on an edge follows from the half-open comparisons
// below: a point on a lower or left edge counts as inside, on an upper or
// right edge as outside. The choice is arbitrary but consistent across
// calls, so adjacent catchments sharing an edge never both claim the point
// through the same ring orientation.

// Contains reports whether the geometry contains the point. A polygon
// contains the point when its exterior ring does and no hole does; a
// multipolygon contains it when any constituent polygon does. Degenerate
// rings (fewer than 3 vertices) contain nothing.
func (g *Geometry) Contains(p Coordinate) bool {
	if g == nil {
		return false
	}
	if len(g.Polygon) > 0 {
		return polygonContains(g.Polygon, p)
	}
	for _, poly := range g.MultiPolygon {
		if polygonContains(poly, p) {
			return true
		}
	}
	return false
}

func polygonContains(poly Polygon, p Coordinate) bool {
	if len(poly) == 0 || !ringContains(poly[0], p) {
		return false
	}
	for _, hole := range poly[1:] {
		if ringContains(hole, p) {
			return false
		}
	}
	return true
}

// ringContains runs the even-odd ray cast against a single ring. The ring
// may or may not repeat its first vertex; the wrap-around edge handles the
// open form and the duplicated closing vertex contributes a zero-length
// edge that never toggles parity.
func ringContains(ring Ring, p Coordinate) bool {
	if len(ring) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		vi, vj := ring[i], ring[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lon < (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lon {
			inside = !inside
		}
	}
	return inside
}

// Contains is the four-comparison bounding-box test used by the legacy
// fallback tier. Edges are inclusive.
func (b *BoundingBox) Contains(p Coordinate) bool {
	if b == nil {
		return false
	}
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon &&
		p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}
