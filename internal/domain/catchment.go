package domain

// Coordinate is a WGS-84 longitude/latitude pair, in GeoJSON axis order.
type Coordinate struct {
	Lon float64 `json:"lon" bson:"lon"`
	Lat float64 `json:"lat" bson:"lat"`
}

// Ring is an ordered sequence of vertices. GeoJSON rings repeat the first
// vertex at the end; the containment test accepts either form.
type Ring []Coordinate

// Polygon is a GeoJSON-style polygon: ring 0 is the exterior, any further
// rings are holes subtracted from it.
type Polygon []Ring

// MultiPolygon is a collection of polygons; a point is inside the
// multipolygon if any constituent polygon contains it.
type MultiPolygon []Polygon

// Geometry holds a catchment's shape as either a single polygon or a
// multipolygon. Exactly one of the two fields is set for a well-formed
// record; an empty Geometry contains nothing.
type Geometry struct {
	Polygon      Polygon      `json:"polygon,omitempty" bson:"polygon,omitempty"`
	MultiPolygon MultiPolygon `json:"multipolygon,omitempty" bson:"multipolygon,omitempty"`
}

// BoundingBox is the legacy min/max lon-lat rectangle carried by older
// catchment exports that predate full polygon geometry.
type BoundingBox struct {
	MinLon float64 `json:"min_lon" bson:"min_lon"`
	MinLat float64 `json:"min_lat" bson:"min_lat"`
	MaxLon float64 `json:"max_lon" bson:"max_lon"`
	MaxLat float64 `json:"max_lat" bson:"max_lat"`
}

// Catchment is a drainage catchment with hydraulic parameters and an
// optional shape. Records are immutable during simulation and re-created
// wholesale on re-ingestion.
type Catchment struct {
	ID          string       `json:"catchment_id" bson:"catchment_id"`
	Name        string       `json:"name" bson:"name"`
	AreaKm2     float64      `json:"a_km2" bson:"a_km2"`
	RunoffCoeff float64      `json:"c" bson:"c"`
	CapacityM3s float64      `json:"qcap_m3s" bson:"qcap_m3s"`
	Geometry    *Geometry    `json:"geometry,omitempty" bson:"geometry,omitempty"`
	Bounds      *BoundingBox `json:"bounds,omitempty" bson:"bounds,omitempty"`
}

// HasGeometry reports whether the catchment carries usable polygon geometry
// and therefore participates in the primary resolution tier.
func (c Catchment) HasGeometry() bool {
	return c.Geometry != nil && (len(c.Geometry.Polygon) > 0 || len(c.Geometry.MultiPolygon) > 0)
}

// HasBounds reports whether the catchment carries a legacy bounding box.
func (c Catchment) HasBounds() bool {
	return c.Bounds != nil
}

// Resolvable reports whether a point query can ever select this catchment.
func (c Catchment) Resolvable() bool {
	return c.HasGeometry() || c.HasBounds()
}

// Hydraulics returns the catchment's simulation parameters with the default
// risk-curve steepness.
func (c Catchment) Hydraulics() HydraulicParams {
	return HydraulicParams{
		RunoffCoeff: c.RunoffCoeff,
		AreaKm2:     c.AreaKm2,
		CapacityM3s: c.CapacityM3s,
	}
}
