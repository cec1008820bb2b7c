package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-engine/internal/adapter/httpapi"
	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/monitor"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockCatchments struct {
	catchments []domain.Catchment
	err        error
}

func (m *mockCatchments) ListCatchments(_ context.Context) ([]domain.Catchment, error) {
	return m.catchments, m.err
}

type mockEvents struct {
	events map[string]domain.RainfallEvent
	latest *domain.RainfallEvent
}

func (m *mockEvents) GetRainfallEvent(_ context.Context, id string) (domain.RainfallEvent, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return domain.RainfallEvent{}, fmt.Errorf("rainfall event %q: %w", id, domain.ErrNoRainfallEvent)
}

func (m *mockEvents) LatestRainfallEvent(_ context.Context) (domain.RainfallEvent, error) {
	if m.latest == nil {
		return domain.RainfallEvent{}, domain.ErrNoRainfallEvent
	}
	return *m.latest, nil
}

type mockSummaries struct {
	summary monitor.CycleSummary
	ok      bool
}

func (m *mockSummaries) LastSummary() (monitor.CycleSummary, bool) { return m.summary, m.ok }

func designEvent(t *testing.T) domain.RainfallEvent {
	t.Helper()
	base := time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)
	e, err := domain.NewRainfallEvent("10-year design storm", domain.EventDesign,
		[]float64{10, 40, 10}, []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)},
		"design fixture")
	require.NoError(t, err)
	return e
}

func perthCatchments() []domain.Catchment {
	return []domain.Catchment{
		{
			ID: "cbd", Name: "CBD Basin", AreaKm2: 2, RunoffCoeff: 0.9, CapacityM3s: 5,
			Bounds: &domain.BoundingBox{MinLon: 115.8, MinLat: -32.0, MaxLon: 115.9, MaxLat: -31.9},
		},
		{
			ID: "hills", Name: "Hills", AreaKm2: 40, RunoffCoeff: 0.3, CapacityM3s: 200,
			Bounds: &domain.BoundingBox{MinLon: 116.0, MinLat: -32.2, MaxLon: 116.3, MaxLat: -31.8},
		},
	}
}

type serverFixture struct {
	srv    *httpapi.Server
	events *mockEvents
}

func newFixture(t *testing.T) *serverFixture {
	t.Helper()
	event := designEvent(t)
	events := &mockEvents{events: map[string]domain.RainfallEvent{"design_10yr": event, event.ID: event}}
	srv := httpapi.NewServer(":0", &mockReadiness{}, &mockCatchments{catchments: perthCatchments()},
		events, nil, httpapi.Options{DefaultEventID: "design_10yr"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &serverFixture{srv: srv, events: events}
}

func doJSON(t *testing.T, srv *httpapi.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, rdr))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newFixture(t).srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		rec := doJSON(t, newFixture(t).srv, http.MethodGet, "/readyz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		srv := httpapi.NewServer(":0", &mockReadiness{err: fmt.Errorf("still warming up")},
			&mockCatchments{}, &mockEvents{}, nil, httpapi.Options{}, slog.Default())
		rec := doJSON(t, srv, http.MethodGet, "/readyz", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "still warming up", body["error"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doJSON(t, newFixture(t).srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestListCatchments(t *testing.T) {
	rec := doJSON(t, newFixture(t).srv, http.MethodGet, "/v1/catchments", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Catchments []domain.Catchment `json:"catchments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Catchments, 2)
}

func TestPointRisk(t *testing.T) {
	t.Run("resolves and classifies", func(t *testing.T) {
		rec := doJSON(t, newFixture(t).srv, http.MethodPost, "/v1/risk/point",
			map[string]float64{"lon": 115.86, "lat": -31.95})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var a domain.RiskAssessment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
		assert.Equal(t, "cbd", a.CatchmentID)
		// Peak 40 mm/hr over C=0.9 A=2 against Qcap=5 loads the channel
		// past capacity.
		assert.Equal(t, domain.RiskVeryHigh, a.Level)
		assert.True(t, a.Alert)
	})

	t.Run("point outside every catchment is 404", func(t *testing.T) {
		rec := doJSON(t, newFixture(t).srv, http.MethodPost, "/v1/risk/point",
			map[string]float64{"lon": 0, "lat": 0})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("out-of-range coordinates are 400", func(t *testing.T) {
		rec := doJSON(t, newFixture(t).srv, http.MethodPost, "/v1/risk/point",
			map[string]float64{"lon": 181, "lat": 0})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		srv := newFixture(t).srv
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/risk/point",
			bytes.NewReader([]byte("{not json"))))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown explicit event is 404", func(t *testing.T) {
		rec := doJSON(t, newFixture(t).srv, http.MethodPost, "/v1/risk/point",
			map[string]any{"lon": 115.86, "lat": -31.95, "event_id": "nope"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("falls back to latest when default event missing", func(t *testing.T) {
		f := newFixture(t)
		event := designEvent(t)
		f.events.events = map[string]domain.RainfallEvent{}
		f.events.latest = &event

		rec := doJSON(t, f.srv, http.MethodPost, "/v1/risk/point",
			map[string]float64{"lon": 115.86, "lat": -31.95})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("no event anywhere is 404", func(t *testing.T) {
		f := newFixture(t)
		f.events.events = map[string]domain.RainfallEvent{}
		f.events.latest = nil

		rec := doJSON(t, f.srv, http.MethodPost, "/v1/risk/point",
			map[string]float64{"lon": 115.86, "lat": -31.95})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSimulate(t *testing.T) {
	t.Run("returns the full series", func(t *testing.T) {
		rec := doJSON(t, newFixture(t).srv, http.MethodPost, "/v1/simulate",
			map[string]string{"catchment_id": "hills"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			Assessment domain.RiskAssessment   `json:"assessment"`
			Result     domain.SimulationResult `json:"result"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "hills", body.Result.CatchmentID)
		assert.Len(t, body.Result.Series, 3)
		assert.Equal(t, body.Result.MaxRisk, body.Assessment.MaxRisk)
	})

	t.Run("missing catchment_id is 400", func(t *testing.T) {
		rec := doJSON(t, newFixture(t).srv, http.MethodPost, "/v1/simulate", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown catchment is 404", func(t *testing.T) {
		rec := doJSON(t, newFixture(t).srv, http.MethodPost, "/v1/simulate",
			map[string]string{"catchment_id": "atlantis"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSummary(t *testing.T) {
	t.Run("no monitor wired", func(t *testing.T) {
		rec := doJSON(t, newFixture(t).srv, http.MethodGet, "/v1/summary", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no cycle yet", func(t *testing.T) {
		srv := httpapi.NewServer(":0", &mockReadiness{}, &mockCatchments{}, &mockEvents{},
			&mockSummaries{}, httpapi.Options{}, slog.Default())
		rec := doJSON(t, srv, http.MethodGet, "/v1/summary", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("serves the last summary", func(t *testing.T) {
		summaries := &mockSummaries{
			summary: monitor.CycleSummary{RainfallEventID: "realtime-abc", CatchmentsEvaluated: 4},
			ok:      true,
		}
		srv := httpapi.NewServer(":0", &mockReadiness{}, &mockCatchments{}, &mockEvents{},
			summaries, httpapi.Options{}, slog.Default())

		rec := doJSON(t, srv, http.MethodGet, "/v1/summary", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got monitor.CycleSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "realtime-abc", got.RainfallEventID)
		assert.Equal(t, 4, got.CatchmentsEvaluated)
	})
}
