package domain

import "time"

// RiskLevel is the categorical severity band for a continuous risk value.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// AlertThreshold is the risk value at and above which an assessment raises
// an alert for the monitoring and dashboard consumers.
const AlertThreshold = 0.8

// Levels lists the bands from lowest to highest, for stable dashboard output.
func Levels() []RiskLevel {
	return []RiskLevel{RiskVeryLow, RiskLow, RiskMedium, RiskHigh, RiskVeryHigh}
}

// ClassifyRisk maps a risk value to its band. Bands are half-open with the
// lower edge inclusive: [0,0.2) [0.2,0.4) [0.4,0.6) [0.6,0.8) [0.8,1].
func ClassifyRisk(r float64) RiskLevel {
	switch {
	case r >= 0.8:
		return RiskVeryHigh
	case r >= 0.6:
		return RiskHigh
	case r >= 0.4:
		return RiskMedium
	case r >= 0.2:
		return RiskLow
	default:
		return RiskVeryLow
	}
}

// IsAlert reports whether a risk value crosses the alert threshold.
func IsAlert(r float64) bool {
	return r >= AlertThreshold
}

// RiskAssessment is the classified outcome of simulating one catchment
// against one rainfall event, shaped for dashboards and alert sinks.
type RiskAssessment struct {
	CatchmentID     string    `json:"catchment_id"`
	CatchmentName   string    `json:"catchment_name"`
	RainfallEventID string    `json:"rainfall_event_id"`
	MaxRisk         float64   `json:"max_risk"`
	MaxRiskTime     time.Time `json:"max_risk_time"`
	Level           RiskLevel `json:"risk_level"`
	Alert           bool      `json:"alert"`

	// Hydraulic parameters echoed for operator context.
	AreaKm2     float64 `json:"a_km2"`
	RunoffCoeff float64 `json:"c"`
	CapacityM3s float64 `json:"qcap_m3s"`
}

// AssessResult classifies a simulation result for the given catchment.
func AssessResult(c Catchment, res SimulationResult) RiskAssessment {
	return RiskAssessment{
		CatchmentID:     c.ID,
		CatchmentName:   c.Name,
		RainfallEventID: res.RainfallEventID,
		MaxRisk:         res.MaxRisk,
		MaxRiskTime:     res.MaxRiskTime,
		Level:           ClassifyRisk(res.MaxRisk),
		Alert:           IsAlert(res.MaxRisk),
		AreaKm2:         c.AreaKm2,
		RunoffCoeff:     c.RunoffCoeff,
		CapacityM3s:     c.CapacityM3s,
	}
}
