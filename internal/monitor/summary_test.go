package monitor_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/monitor"
)

func TestSummarize(t *testing.T) {
	event := testEvent(t, []float64{12, 35})
	now := time.Date(2024, 4, 26, 3, 0, 0, 0, time.UTC)

	assessments := []domain.RiskAssessment{
		{CatchmentID: "a", MaxRisk: 0.95, Level: domain.RiskVeryHigh, Alert: true},
		{CatchmentID: "b", MaxRisk: 0.85, Level: domain.RiskVeryHigh, Alert: true},
		{CatchmentID: "c", MaxRisk: 0.45, Level: domain.RiskMedium},
		{CatchmentID: "d", MaxRisk: 0.05, Level: domain.RiskVeryLow},
	}

	s := monitor.Summarize(event, assessments, now)

	assert.Equal(t, now, s.GeneratedAt)
	assert.Equal(t, event.ID, s.RainfallEventID)
	assert.Equal(t, domain.SeverityHeavy, s.EventSeverity)
	assert.Equal(t, 35.0, s.PeakIntensityMMHr)
	assert.Equal(t, 4, s.CatchmentsEvaluated)

	wantCounts := map[domain.RiskLevel]int{
		domain.RiskVeryLow:  1,
		domain.RiskLow:      0,
		domain.RiskMedium:   1,
		domain.RiskHigh:     0,
		domain.RiskVeryHigh: 2,
	}
	if diff := cmp.Diff(wantCounts, s.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, s.Alerts, 2)
	assert.Equal(t, "a", s.Alerts[0].CatchmentID, "alert order follows assessment order")
}

func TestSummarize_NoAssessments(t *testing.T) {
	s := monitor.Summarize(testEvent(t, []float64{1}), nil, time.Now())
	assert.Zero(t, s.CatchmentsEvaluated)
	assert.Empty(t, s.Alerts)
	assert.Equal(t, 0, s.Counts[domain.RiskVeryHigh], "all bands present with zero counts")
}
