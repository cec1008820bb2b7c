package monitor

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// maxAlertsLogged caps how many alert areas appear in the cycle log line;
// the full list still reaches the publisher and the summary consumers.
const maxAlertsLogged = 5

// CycleSummary aggregates one monitoring cycle for dashboards: how many
// catchments landed in each risk band and which ones are alerting.
type CycleSummary struct {
	GeneratedAt         time.Time                `json:"generated_at"`
	RainfallEventID     string                   `json:"rainfall_event_id"`
	EventSeverity       domain.RainfallSeverity  `json:"event_severity"`
	PeakIntensityMMHr   float64                  `json:"peak_intensity_mmhr"`
	CatchmentsEvaluated int                      `json:"catchments_evaluated"`
	Counts              map[domain.RiskLevel]int `json:"counts"`
	Alerts              []domain.RiskAssessment  `json:"alerts"`
}

// Summarize builds a CycleSummary from classified assessments. The input is
// expected in deterministic order; alert order is preserved.
func Summarize(event domain.RainfallEvent, assessments []domain.RiskAssessment, now time.Time) CycleSummary {
	counts := make(map[domain.RiskLevel]int, 5)
	for _, l := range domain.Levels() {
		counts[l] = 0
	}

	var alerts []domain.RiskAssessment
	for _, a := range assessments {
		counts[a.Level]++
		if a.Alert {
			alerts = append(alerts, a)
		}
	}

	return CycleSummary{
		GeneratedAt:         now,
		RainfallEventID:     event.ID,
		EventSeverity:       event.Severity(),
		PeakIntensityMMHr:   event.PeakIntensityMMHr(),
		CatchmentsEvaluated: len(assessments),
		Counts:              counts,
		Alerts:              alerts,
	}
}

// Log writes the summary as a structured log line, listing at most
// maxAlertsLogged alert areas.
func (s CycleSummary) Log(logger *slog.Logger, cycle int) {
	attrs := []any{
		"cycle", cycle,
		"rainfall_event_id", s.RainfallEventID,
		"event_severity", string(s.EventSeverity),
		"peak_intensity_mmhr", s.PeakIntensityMMHr,
		"catchments_evaluated", s.CatchmentsEvaluated,
		"very_high", s.Counts[domain.RiskVeryHigh],
		"high", s.Counts[domain.RiskHigh],
		"medium", s.Counts[domain.RiskMedium],
		"low", s.Counts[domain.RiskLow],
		"very_low", s.Counts[domain.RiskVeryLow],
		"alerts", len(s.Alerts),
	}

	n := len(s.Alerts)
	if n > maxAlertsLogged {
		n = maxAlertsLogged
	}
	for _, a := range s.Alerts[:n] {
		attrs = append(attrs, "alert_"+a.CatchmentID, a.MaxRisk)
	}

	if len(s.Alerts) > 0 {
		logger.Warn("flood risk alerts active", attrs...)
		return
	}
	logger.Info("cycle complete, no alerts", attrs...)
}
