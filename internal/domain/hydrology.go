package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidParameters is returned when simulation inputs violate their
// preconditions: mismatched series lengths, empty series, non-increasing
// timestamps, negative intensities, or out-of-range hydraulic parameters.
// Invalid inputs are always surfaced, never silently repaired.
var ErrInvalidParameters = errors.New("invalid simulation parameters")

const (
	// runoffConversion converts mm/hr·km² to m³/s in the Rational Method.
	runoffConversion = 0.278

	// DefaultSteepness is the logistic risk curve steepness k.
	DefaultSteepness = 8.0

	// saturatedLoading stands in for an infinite loading ratio when a
	// catchment has zero capacity. Kept finite so results stay JSON
	// serializable; the logistic curve saturates to exactly 1.0 at this
	// magnitude in float64.
	saturatedLoading = 1e6
)

// HydraulicParams are the per-catchment inputs to a simulation run.
// A zero Steepness selects DefaultSteepness.
type HydraulicParams struct {
	RunoffCoeff float64 `json:"c"`
	AreaKm2     float64 `json:"a_km2"`
	CapacityM3s float64 `json:"qcap_m3s"`
	Steepness   float64 `json:"-"`
}

// SimulationPoint is one timestep of a simulation run.
type SimulationPoint struct {
	Time          time.Time `json:"t" bson:"t"`
	IntensityMMHr float64   `json:"i" bson:"i"`
	RunoffM3s     float64   `json:"q_runoff" bson:"q_runoff"`
	Loading       float64   `json:"l" bson:"l"`
	Risk          float64   `json:"r" bson:"r"`
}

// SimulationResult is the full risk trajectory for one catchment-event pair.
// The series has exactly one point per input sample; MaxRiskTime is the
// timestamp of the first occurrence of the peak.
type SimulationResult struct {
	CatchmentID     string            `json:"catchment_id" bson:"catchment_id"`
	RainfallEventID string            `json:"rainfall_event_id" bson:"rainfall_event_id"`
	Series          []SimulationPoint `json:"series" bson:"series"`
	MaxRisk         float64           `json:"max_risk" bson:"max_risk"`
	MaxRiskTime     time.Time         `json:"max_risk_time" bson:"max_risk_time"`
}

// RunoffM3s computes Rational Method discharge Q = 0.278 * C * i * A.
func RunoffM3s(c, intensityMMHr, areaKm2 float64) float64 {
	return runoffConversion * c * intensityMMHr * areaKm2
}

// RiskFromLoading maps a capacity loading ratio to logistic risk in (0,1),
// centered so that loading 1.0 yields exactly 0.5.
func RiskFromLoading(loading, steepness float64) float64 {
	return 1.0 / (1.0 + math.Exp(-steepness*(loading-1.0)))
}

// Simulate runs the discharge/loading/risk pipeline over a rainfall series.
//
// It is a pure, deterministic, order-preserving map: no state survives
// between calls and identical inputs reproduce identical output bit for
// bit. The caller fills CatchmentID and RainfallEventID on the result.
func Simulate(rainMMHr []float64, timestamps []time.Time, p HydraulicParams) (SimulationResult, error) {
	if err := validateSimulationInputs(rainMMHr, timestamps, p); err != nil {
		return SimulationResult{}, err
	}

	k := p.Steepness
	if k == 0 {
		k = DefaultSteepness
	}

	series := make([]SimulationPoint, 0, len(rainMMHr))
	maxRisk := -1.0
	var maxRiskTime time.Time

	for i, intensity := range rainMMHr {
		q := RunoffM3s(p.RunoffCoeff, intensity, p.AreaKm2)

		var loading float64
		switch {
		case p.CapacityM3s > 0:
			loading = q / p.CapacityM3s
		case q > 0:
			// Total capacity loss: conceptually infinite loading, clamped
			// risk at the sigmoid's asymptote.
			loading = saturatedLoading
		default:
			loading = 0
		}

		risk := RiskFromLoading(loading, k)
		if risk > maxRisk {
			maxRisk = risk
			maxRiskTime = timestamps[i]
		}

		series = append(series, SimulationPoint{
			Time:          timestamps[i],
			IntensityMMHr: intensity,
			RunoffM3s:     q,
			Loading:       loading,
			Risk:          risk,
		})
	}

	return SimulationResult{
		Series:      series,
		MaxRisk:     maxRisk,
		MaxRiskTime: maxRiskTime,
	}, nil
}

func validateSimulationInputs(rainMMHr []float64, timestamps []time.Time, p HydraulicParams) error {
	if err := validateSeries(rainMMHr, timestamps); err != nil {
		return err
	}
	if p.RunoffCoeff < 0 {
		return fmt.Errorf("%w: negative runoff coefficient %.3f", ErrInvalidParameters, p.RunoffCoeff)
	}
	if p.AreaKm2 <= 0 {
		return fmt.Errorf("%w: non-positive area %.3f km²", ErrInvalidParameters, p.AreaKm2)
	}
	if p.CapacityM3s < 0 {
		return fmt.Errorf("%w: negative capacity %.3f m³/s", ErrInvalidParameters, p.CapacityM3s)
	}
	return nil
}
