package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRisk_Bands(t *testing.T) {
	cases := []struct {
		r    float64
		want RiskLevel
	}{
		{0.0, RiskVeryLow},
		{0.19, RiskVeryLow},
		{0.2, RiskLow}, // lower edges are inclusive
		{0.39, RiskLow},
		{0.4, RiskMedium},
		{0.59, RiskMedium},
		{0.6, RiskHigh},
		{0.79, RiskHigh},
		{0.8, RiskVeryHigh},
		{1.0, RiskVeryHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyRisk(tc.r), "r=%v", tc.r)
	}
}

func TestIsAlert(t *testing.T) {
	assert.False(t, IsAlert(0.79))
	assert.True(t, IsAlert(0.8))
	assert.True(t, IsAlert(1.0))
}

func TestAssessResult(t *testing.T) {
	c := Catchment{
		ID: "cat-1", Name: "Riverside", AreaKm2: 2, RunoffCoeff: 0.5, CapacityM3s: 3,
	}
	peak := time.Date(2024, 4, 26, 2, 0, 0, 0, time.UTC)
	res := SimulationResult{
		RainfallEventID: "realtime-abc",
		MaxRisk:         0.85,
		MaxRiskTime:     peak,
	}

	a := AssessResult(c, res)
	assert.Equal(t, "cat-1", a.CatchmentID)
	assert.Equal(t, "Riverside", a.CatchmentName)
	assert.Equal(t, "realtime-abc", a.RainfallEventID)
	assert.Equal(t, RiskVeryHigh, a.Level)
	assert.True(t, a.Alert)
	assert.Equal(t, peak, a.MaxRiskTime)
	assert.Equal(t, 3.0, a.CapacityM3s)
}

func TestLevels_Ordered(t *testing.T) {
	assert.Equal(t, []RiskLevel{RiskVeryLow, RiskLow, RiskMedium, RiskHigh, RiskVeryHigh}, Levels())
}
