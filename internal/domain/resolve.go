package domain

import "errors"

// ErrNoCatchment is returned by ResolvePoint when no catchment contains the
// point under either the geometry tier or the bounding-box fallback tier.
// It is a user-visible "no match", not a fatal condition.
var ErrNoCatchment = errors.New("no catchment found for point")

// ResolvePoint returns the unique catchment governing the point.
//
// Geometry-bearing catchments form the primary tier; the legacy bounding-box
// tier is consulted only when no geometry matches, and the two tiers are
// never mixed. Among multiple matches (overlapping shapes) the smallest
// A_km2 wins, with ties broken by lexicographically smallest id, so repeated
// calls with identical inputs always return the identical catchment.
//
// ResolvePoint is a pure function of its arguments. It never caches; callers
// that cache the catchment collection own the invalidation policy.
func ResolvePoint(p Coordinate, catchments []Catchment) (Catchment, error) {
	var candidates []Catchment
	for _, c := range catchments {
		if c.HasGeometry() && c.Geometry.Contains(p) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		for _, c := range catchments {
			if !c.HasGeometry() && c.Bounds.Contains(p) {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return Catchment{}, ErrNoCatchment
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.AreaKm2 < best.AreaKm2 || (c.AreaKm2 == best.AreaKm2 && c.ID < best.ID) {
			best = c
		}
	}
	return best, nil
}

// FindCatchment returns the catchment with the given id from the collection.
func FindCatchment(id string, catchments []Catchment) (Catchment, bool) {
	for _, c := range catchments {
		if c.ID == id {
			return c, true
		}
	}
	return Catchment{}, false
}
