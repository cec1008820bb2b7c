// Package httpapi exposes the risk query API alongside the health,
// readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/monitor"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// CatchmentSource supplies the catchment collection for resolution.
type CatchmentSource interface {
	ListCatchments(ctx context.Context) ([]domain.Catchment, error)
}

// EventSource supplies rainfall events for on-demand simulation.
type EventSource interface {
	GetRainfallEvent(ctx context.Context, id string) (domain.RainfallEvent, error)
	LatestRainfallEvent(ctx context.Context) (domain.RainfallEvent, error)
}

// SummarySource exposes the monitoring loop's most recent cycle summary.
type SummarySource interface {
	LastSummary() (monitor.CycleSummary, bool)
}

// Options carry the request-independent simulation settings.
type Options struct {
	DefaultEventID string
	Steepness      float64
}

// Server exposes the risk API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	catchments CatchmentSource
	events     EventSource
	summaries  SummarySource
	opts       Options
	logger     *slog.Logger
}

// NewServer wires the route table. summaries may be nil when the monitoring
// loop is disabled; the summary route then reports 404.
func NewServer(addr string, ready ReadinessChecker, catchments CatchmentSource,
	events EventSource, summaries SummarySource, opts Options, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catchments: catchments,
		events:     events,
		summaries:  summaries,
		opts:       opts,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/catchments", s.handleListCatchments)
	mux.HandleFunc("GET /v1/summary", s.handleSummary)
	mux.HandleFunc("POST /v1/risk/point", s.handlePointRisk)
	mux.HandleFunc("POST /v1/simulate", s.handleSimulate)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleListCatchments(w http.ResponseWriter, r *http.Request) {
	catchments, err := s.catchments.ListCatchments(r.Context())
	if err != nil {
		s.writeError(w, fmt.Errorf("list catchments: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"catchments": catchments})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	if s.summaries == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "monitoring loop disabled"})
		return
	}
	summary, ok := s.summaries.LastSummary()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no monitoring cycle completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type pointRiskRequest struct {
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
	EventID string  `json:"event_id,omitempty"`
}

func (s *Server) handlePointRisk(w http.ResponseWriter, r *http.Request) {
	var req pointRiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Lon < -180 || req.Lon > 180 || req.Lat < -90 || req.Lat > 90 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("coordinates out of range: lon=%g lat=%g", req.Lon, req.Lat),
		})
		return
	}

	catchments, err := s.catchments.ListCatchments(r.Context())
	if err != nil {
		s.writeError(w, fmt.Errorf("list catchments: %w", err))
		return
	}
	catchment, err := domain.ResolvePoint(domain.Coordinate{Lon: req.Lon, Lat: req.Lat}, catchments)
	if err != nil {
		s.writeError(w, err)
		return
	}

	event, err := s.resolveEvent(r.Context(), req.EventID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	assessment, _, err := s.simulate(catchment, event)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

type simulateRequest struct {
	CatchmentID string `json:"catchment_id"`
	EventID     string `json:"rainfall_event_id,omitempty"`
}

type simulateResponse struct {
	Assessment domain.RiskAssessment   `json:"assessment"`
	Result     domain.SimulationResult `json:"result"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.CatchmentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "catchment_id is required"})
		return
	}

	catchments, err := s.catchments.ListCatchments(r.Context())
	if err != nil {
		s.writeError(w, fmt.Errorf("list catchments: %w", err))
		return
	}
	catchment, ok := domain.FindCatchment(req.CatchmentID, catchments)
	if !ok {
		s.writeError(w, fmt.Errorf("catchment %q: %w", req.CatchmentID, domain.ErrNoCatchment))
		return
	}

	event, err := s.resolveEvent(r.Context(), req.EventID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	assessment, result, err := s.simulate(catchment, event)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, simulateResponse{Assessment: assessment, Result: result})
}

// resolveEvent picks the rainfall event for a request: the explicit id if
// given, otherwise the configured default design event, otherwise whatever
// event was most recently generated.
func (s *Server) resolveEvent(ctx context.Context, eventID string) (domain.RainfallEvent, error) {
	if eventID != "" {
		return s.events.GetRainfallEvent(ctx, eventID)
	}
	if s.opts.DefaultEventID != "" {
		event, err := s.events.GetRainfallEvent(ctx, s.opts.DefaultEventID)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, domain.ErrNoRainfallEvent) {
			return domain.RainfallEvent{}, err
		}
	}
	return s.events.LatestRainfallEvent(ctx)
}

func (s *Server) simulate(c domain.Catchment, e domain.RainfallEvent) (domain.RiskAssessment, domain.SimulationResult, error) {
	params := c.Hydraulics()
	params.Steepness = s.opts.Steepness
	result, err := domain.Simulate(e.RainMMHr, e.Timestamps, params)
	if err != nil {
		return domain.RiskAssessment{}, domain.SimulationResult{}, err
	}
	result.CatchmentID = c.ID
	result.RainfallEventID = e.ID
	return domain.AssessResult(c, result), result, nil
}

// writeError maps domain errors onto status codes: invalid input is a 400,
// missing catchments and events are 404s, everything else a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParameters):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNoCatchment), errors.Is(err, domain.ErrNoRainfallEvent):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
