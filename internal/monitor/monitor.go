// Package monitor runs the real-time flood risk assessment loop: fetch the
// latest rainfall observations, simulate every tracked catchment, classify,
// and report. One cycle runs at a time; external calls are the only
// suspension points and cancellation takes effect between cycles.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/observability"
)

// WeatherFetcher retrieves the latest rainfall observation batch as an
// event. An empty event (no samples) means no rain data this cycle, which
// is an idle cycle, not an error.
type WeatherFetcher interface {
	FetchLatest(ctx context.Context) (domain.RainfallEvent, error)
}

// CatchmentSource supplies the catchment collection for a cycle.
type CatchmentSource interface {
	ListCatchments(ctx context.Context) ([]domain.Catchment, error)
}

// AlertPublisher delivers alerting assessments to the downstream sink.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, alerts []domain.RiskAssessment) error
}

// ResultRecorder persists rainfall events and simulation audit records.
// Recording is best-effort; failures are logged and never stop a cycle.
type ResultRecorder interface {
	SaveRainfallEvent(ctx context.Context, e domain.RainfallEvent) error
	SaveSimulation(ctx context.Context, res domain.SimulationResult, notes string) error
}

// State is the monitoring loop's current phase.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateSimulating
	StateReporting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateSimulating:
		return "simulating"
	case StateReporting:
		return "reporting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options tune the monitoring loop.
type Options struct {
	Interval       time.Duration // wait between cycles
	MaxCycles      int           // 0 = run until cancelled
	TopN           int           // 0 = simulate every catchment
	AlertThreshold float64       // risk at or above which an assessment alerts
	Steepness      float64       // risk curve steepness, 0 = domain default
}

// Monitor orchestrates the fetch-simulate-report loop.
type Monitor struct {
	fetcher    WeatherFetcher
	catchments CatchmentSource
	publisher  AlertPublisher // optional
	recorder   ResultRecorder // optional
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	opts       Options

	state atomic.Int32
	ready atomic.Bool

	mu          sync.Mutex
	lastSummary *CycleSummary
}

// New creates a Monitor. publisher and recorder may be nil to disable alert
// publishing and persistence respectively.
func New(fetcher WeatherFetcher, catchments CatchmentSource, publisher AlertPublisher, recorder ResultRecorder,
	logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, opts Options) *Monitor {
	if opts.AlertThreshold == 0 {
		opts.AlertThreshold = domain.AlertThreshold
	}
	return &Monitor{
		fetcher:    fetcher,
		catchments: catchments,
		publisher:  publisher,
		recorder:   recorder,
		logger:     logger,
		metrics:    metrics,
		clock:      clock,
		opts:       opts,
	}
}

// State returns the loop's current phase.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// CheckReadiness returns nil once the loop has completed at least one cycle,
// idle cycles included.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("monitor has not completed a cycle yet")
	}
	return nil
}

// LastSummary returns the most recent cycle summary, if any cycle has
// produced one.
func (m *Monitor) LastSummary() (CycleSummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastSummary == nil {
		return CycleSummary{}, false
	}
	return *m.lastSummary, true
}

// Run executes monitoring cycles until the context is cancelled or the
// cycle bound is reached. Cancellation is honored between cycles; a single
// catchment simulation is never preempted.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started",
		"interval", m.opts.Interval,
		"max_cycles", m.opts.MaxCycles,
		"top_n", m.opts.TopN,
		"alert_threshold", m.opts.AlertThreshold,
	)
	m.metrics.MonitorRunning.Set(1)
	defer m.metrics.MonitorRunning.Set(0)
	defer m.state.Store(int32(StateStopped))

	for cycle := 1; ; cycle++ {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		default:
		}

		m.runCycle(ctx, cycle)

		if m.opts.MaxCycles > 0 && cycle >= m.opts.MaxCycles {
			m.logger.Info("monitor cycle bound reached", "cycles", cycle)
			return nil
		}
		if !m.waitInterval(ctx) {
			m.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		}
	}
}

func (m *Monitor) runCycle(ctx context.Context, cycle int) {
	start := time.Now()
	m.metrics.CyclesTotal.Inc()
	m.state.Store(int32(StateFetching))
	defer m.state.Store(int32(StateIdle))

	fetchStart := time.Now()
	event, err := m.fetcher.FetchLatest(ctx)
	m.metrics.WeatherFetchDuration.Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		// Fetch failure is a skipped cycle, not a crash; the collaborator
		// owns its own retry policy.
		m.logger.Warn("weather fetch failed, skipping cycle", "cycle", cycle, "error", err)
		m.metrics.SkippedCycles.Inc()
		return
	}
	if event.Empty() {
		m.logger.Debug("no rainfall observed, idle cycle", "cycle", cycle)
		m.metrics.IdleCycles.Inc()
		m.ready.Store(true)
		return
	}

	if m.recorder != nil {
		if err := m.recorder.SaveRainfallEvent(ctx, event); err != nil {
			m.logger.Warn("save rainfall event failed", "event_id", event.ID, "error", err)
		}
	}

	m.state.Store(int32(StateSimulating))
	catchments, err := m.catchments.ListCatchments(ctx)
	if err != nil {
		m.logger.Warn("list catchments failed, skipping cycle", "cycle", cycle, "error", err)
		m.metrics.SkippedCycles.Inc()
		return
	}
	selected := Prioritize(catchments, m.opts.TopN)
	if len(selected) == 0 {
		m.logger.Warn("no catchments to evaluate", "cycle", cycle)
		m.ready.Store(true)
		return
	}

	assessments := m.assess(ctx, event, selected)
	m.metrics.CatchmentsEvaluated.Set(float64(len(assessments)))

	m.state.Store(int32(StateReporting))
	summary := Summarize(event, assessments, m.clock.Now().UTC())
	m.report(ctx, cycle, summary)

	m.mu.Lock()
	m.lastSummary = &summary
	m.mu.Unlock()
	m.ready.Store(true)
	m.metrics.CycleDuration.Observe(time.Since(start).Seconds())
}

// assess simulates each selected catchment against the event and returns
// classified results in deterministic order: descending peak risk, then id.
func (m *Monitor) assess(ctx context.Context, event domain.RainfallEvent, catchments []domain.Catchment) []domain.RiskAssessment {
	assessments := make([]domain.RiskAssessment, 0, len(catchments))

	for _, c := range catchments {
		params := c.Hydraulics()
		params.Steepness = m.opts.Steepness

		res, err := domain.Simulate(event.RainMMHr, event.Timestamps, params)
		if err != nil {
			m.logger.Warn("simulation rejected", "catchment_id", c.ID, "error", err)
			m.metrics.SimulationErrors.Inc()
			continue
		}
		res.CatchmentID = c.ID
		res.RainfallEventID = event.ID
		m.metrics.SimulationsRun.Inc()

		a := domain.AssessResult(c, res)
		a.Alert = a.MaxRisk >= m.opts.AlertThreshold
		m.metrics.AssessmentsByLevel.WithLabelValues(string(a.Level)).Inc()
		assessments = append(assessments, a)

		if m.recorder != nil {
			if err := m.recorder.SaveSimulation(ctx, res, "realtime risk assessment - "+string(a.Level)); err != nil {
				m.logger.Warn("save simulation failed", "catchment_id", c.ID, "error", err)
			}
		}
	}

	sort.Slice(assessments, func(i, j int) bool {
		if assessments[i].MaxRisk != assessments[j].MaxRisk {
			return assessments[i].MaxRisk > assessments[j].MaxRisk
		}
		return assessments[i].CatchmentID < assessments[j].CatchmentID
	})
	return assessments
}

func (m *Monitor) report(ctx context.Context, cycle int, summary CycleSummary) {
	if m.publisher != nil && len(summary.Alerts) > 0 {
		if err := m.publisher.PublishAlerts(ctx, summary.Alerts); err != nil {
			m.logger.Error("publish alerts failed", "cycle", cycle, "count", len(summary.Alerts), "error", err)
		} else {
			m.metrics.AlertsEmitted.Add(float64(len(summary.Alerts)))
		}
	}
	summary.Log(m.logger, cycle)
}

// waitInterval sleeps for the configured interval on the injected clock.
// Returns false if the context was cancelled while waiting.
func (m *Monitor) waitInterval(ctx context.Context) bool {
	if m.opts.Interval <= 0 {
		return ctx.Err() == nil
	}
	timer := m.clock.NewTimer(m.opts.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

// Prioritize orders catchments by vulnerability, smallest capacity per unit
// area first, and truncates to topN when topN > 0. Ties break by id so the
// selection is reproducible.
func Prioritize(catchments []domain.Catchment, topN int) []domain.Catchment {
	out := make([]domain.Catchment, len(catchments))
	copy(out, catchments)

	sort.Slice(out, func(i, j int) bool {
		wi := priorityWeight(out[i])
		wj := priorityWeight(out[j])
		if wi != wj {
			return wi < wj
		}
		return out[i].ID < out[j].ID
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// priorityWeight is capacity normalized by area: low capacity over a large
// area floods first.
func priorityWeight(c domain.Catchment) float64 {
	if c.AreaKm2 <= 0 {
		return c.CapacityM3s
	}
	return c.CapacityM3s / c.AreaKm2
}
