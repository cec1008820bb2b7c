package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrNoRainfallEvent is returned by event lookups when no event matches.
var ErrNoRainfallEvent = errors.New("no rainfall event found")

// EventType tags how a rainfall event was produced.
type EventType string

const (
	EventDesign     EventType = "design"
	EventHistorical EventType = "historical"
	EventRealtime   EventType = "realtime"
	EventForecast   EventType = "forecast"
)

// RainfallSeverity is a coarse label for a whole event, derived from peak
// intensity. It is informational only and plays no part in risk scoring.
type RainfallSeverity string

const (
	SeverityDrizzle  RainfallSeverity = "drizzle"
	SeverityLight    RainfallSeverity = "light"
	SeverityModerate RainfallSeverity = "moderate"
	SeverityHeavy    RainfallSeverity = "heavy"
	SeverityExtreme  RainfallSeverity = "extreme"
)

// RainfallEvent is an immutable rainfall intensity time series. Aggregates
// (total, peak, duration) are computed from the series on demand; the series
// itself is the only authoritative data.
type RainfallEvent struct {
	ID          string      `json:"event_id" bson:"event_id"`
	Name        string      `json:"name" bson:"name"`
	Type        EventType   `json:"event_type" bson:"event_type"`
	RainMMHr    []float64   `json:"rain_mmhr" bson:"rain_mmhr"`
	Timestamps  []time.Time `json:"timestamps_utc" bson:"timestamps_utc"`
	Source      string      `json:"source,omitempty" bson:"source,omitempty"`
	GeneratedAt time.Time   `json:"generated_at" bson:"generated_at"`
}

// NewRainfallEvent validates the series and derives a deterministic event id.
// Timestamps must be strictly increasing and intensities non-negative, with
// one intensity per timestamp.
func NewRainfallEvent(name string, typ EventType, rainMMHr []float64, timestamps []time.Time, source string) (RainfallEvent, error) {
	if err := validateSeries(rainMMHr, timestamps); err != nil {
		return RainfallEvent{}, err
	}
	e := RainfallEvent{
		Name:        name,
		Type:        typ,
		RainMMHr:    rainMMHr,
		Timestamps:  timestamps,
		Source:      source,
		GeneratedAt: clock.Now().UTC(),
	}
	e.ID = eventID(e)
	return e, nil
}

// Empty reports whether the event carries no samples. The monitoring loop
// treats an empty event as an idle cycle.
func (e RainfallEvent) Empty() bool {
	return len(e.RainMMHr) == 0
}

// PeakIntensityMMHr returns the maximum intensity in the series.
func (e RainfallEvent) PeakIntensityMMHr() float64 {
	peak := 0.0
	for _, r := range e.RainMMHr {
		if r > peak {
			peak = r
		}
	}
	return peak
}

// Duration returns the span from the first to the last sample.
func (e RainfallEvent) Duration() time.Duration {
	if len(e.Timestamps) < 2 {
		return 0
	}
	return e.Timestamps[len(e.Timestamps)-1].Sub(e.Timestamps[0])
}

// TotalRainfallMM integrates intensity over the sample intervals. The final
// sample is extended by the preceding interval, matching how gauges report a
// trace for the interval ending at each timestamp. Single-sample series
// integrate to zero.
func (e RainfallEvent) TotalRainfallMM() float64 {
	n := len(e.RainMMHr)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n-1; i++ {
		total += e.RainMMHr[i] * e.Timestamps[i+1].Sub(e.Timestamps[i]).Hours()
	}
	last := e.Timestamps[n-1].Sub(e.Timestamps[n-2]).Hours()
	total += e.RainMMHr[n-1] * last
	return total
}

// Severity labels the event by peak intensity using Bureau-style thresholds:
// 2 mm/hr light, 10 moderate, 30 heavy, 50 extreme.
func (e RainfallEvent) Severity() RainfallSeverity {
	peak := e.PeakIntensityMMHr()
	switch {
	case peak >= 50:
		return SeverityExtreme
	case peak >= 30:
		return SeverityHeavy
	case peak >= 10:
		return SeverityModerate
	case peak >= 2:
		return SeverityLight
	default:
		return SeverityDrizzle
	}
}

// eventID produces a deterministic id from the event's key fields.
// Re-deriving an event from the same observation window yields the same id,
// so ingestion retries and replays upsert idempotently downstream.
func eventID(e RainfallEvent) string {
	start := e.Timestamps[0].UTC().Format(time.RFC3339)
	end := e.Timestamps[len(e.Timestamps)-1].UTC().Format(time.RFC3339)
	input := fmt.Sprintf("%s|%s|%s|%d|%g", e.Type, start, end, len(e.RainMMHr), e.PeakIntensityMMHr())
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if e.Type == "" {
		return short
	}
	return string(e.Type) + "-" + short
}

func validateSeries(rainMMHr []float64, timestamps []time.Time) error {
	if len(rainMMHr) == 0 {
		return fmt.Errorf("%w: empty rainfall series", ErrInvalidParameters)
	}
	if len(rainMMHr) != len(timestamps) {
		return fmt.Errorf("%w: %d intensities vs %d timestamps",
			ErrInvalidParameters, len(rainMMHr), len(timestamps))
	}
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return fmt.Errorf("%w: timestamps not strictly increasing at index %d",
				ErrInvalidParameters, i)
		}
	}
	for i, r := range rainMMHr {
		if r < 0 {
			return fmt.Errorf("%w: negative intensity %.3f at index %d",
				ErrInvalidParameters, r, i)
		}
	}
	return nil
}
