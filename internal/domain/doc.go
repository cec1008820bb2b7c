// Package domain models urban drainage catchments and flood risk simulation.
//
// # Data Source
//
// Catchment records originate from council drainage GIS exports (GeoJSON
// polygons aggregated from pipe networks). The upstream ingestion service
// derives hydraulic parameters per catchment and writes the records to the
// document store; this package consumes them as-is and never repairs or
// re-validates geometry.
//
// # Catchment Conventions
//
// Hydraulic parameters:
//
//	C        runoff coefficient [0..1], heuristically derived from land use
//	         (roofs/roads high, parks low). Treated as a pre-computed input.
//	A_km2    catchment area in square kilometres, always > 0.
//	Qcap_m3s aggregate drainage capacity in m³/s. Zero is legal and means
//	         total loss of capacity (blocked or failed network), not bad data.
//
// Geometry:
//
//	Polygons follow the GeoJSON ring convention: ring 0 is the exterior,
//	subsequent rings are holes. Coordinates are WGS-84 lon/lat pairs.
//	Older exports carry only a bounding box; those catchments are resolvable
//	through the bbox fallback tier. A catchment with neither shape cannot be
//	resolved by point query but can still be simulated by id.
//
// # Hydrologic Model
//
// Runoff uses the Rational Method:
//
//	Q = 0.278 * C * i * A
//
// where i is rainfall intensity in mm/hr and 0.278 converts mm/hr·km² to
// m³/s. Capacity loading L = Q / Qcap feeds a logistic risk curve
//
//	R = 1 / (1 + exp(-k*(L-1)))
//
// centered at L=1 so that R=0.5 exactly when runoff meets capacity. The
// steepness k defaults to 8. Risk is bounded in (0,1); a zero-capacity
// catchment under any rain saturates to R=1 rather than dividing by zero.
//
// Risk bands (half-open, inclusive lower edge):
//
//	[0.0,0.2) very_low | [0.2,0.4) low | [0.4,0.6) medium |
//	[0.6,0.8) high | [0.8,1.0] very_high (raises an alert)
//
// # Rainfall Events
//
// A RainfallEvent is an immutable ordered series of (timestamp, intensity)
// samples with strictly increasing timestamps and non-negative intensities.
// Total rainfall, peak intensity, and duration are derived, never stored
// authoritative values. Event types: design, historical, realtime, forecast.
//
// # ID Generation
//
// Event IDs are deterministic SHA-256 hashes of type|start|end|steps|peak,
// prefixed by the event type. Re-deriving an event from the same observation
// window produces the same ID, which makes ingestion retries and replays
// idempotent downstream.
package domain
