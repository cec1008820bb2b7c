package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// flood monitoring loop.
type Metrics struct {
	CyclesTotal      prometheus.Counter
	IdleCycles       prometheus.Counter
	SkippedCycles    prometheus.Counter
	SimulationsRun   prometheus.Counter
	SimulationErrors prometheus.Counter
	AlertsEmitted    prometheus.Counter
	MonitorRunning   prometheus.Gauge

	AssessmentsByLevel *prometheus.CounterVec // label: level={very_low,...,very_high}

	CycleDuration        prometheus.Histogram
	WeatherFetchDuration prometheus.Histogram
	CatchmentsEvaluated  prometheus.Gauge
}

// NewMetrics creates and registers all monitor metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_monitor",
			Name:      "cycles_total",
			Help:      "Total monitoring cycles started.",
		}),
		IdleCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_monitor",
			Name:      "idle_cycles_total",
			Help:      "Cycles skipped because the weather fetch returned no rainfall.",
		}),
		SkippedCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_monitor",
			Name:      "skipped_cycles_total",
			Help:      "Cycles skipped because the weather fetch failed.",
		}),
		SimulationsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_monitor",
			Name:      "simulations_total",
			Help:      "Total per-catchment simulations executed.",
		}),
		SimulationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_monitor",
			Name:      "simulation_errors_total",
			Help:      "Simulations rejected for invalid parameters.",
		}),
		AlertsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_monitor",
			Name:      "alerts_emitted_total",
			Help:      "Risk assessments published to the alert sink.",
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_monitor",
			Name:      "running",
			Help:      "1 when the monitoring loop is active, 0 when shut down.",
		}),
		AssessmentsByLevel: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_monitor",
			Name:      "assessments_total",
			Help:      "Risk assessments by classified level.",
		}, []string{"level"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_monitor",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-simulate-report cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		WeatherFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_monitor",
			Name:      "weather_fetch_duration_seconds",
			Help:      "Weather collaborator request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CatchmentsEvaluated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_monitor",
			Name:      "catchments_evaluated",
			Help:      "Catchments simulated in the most recent cycle.",
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.IdleCycles,
		m.SkippedCycles,
		m.SimulationsRun,
		m.SimulationErrors,
		m.AlertsEmitted,
		m.MonitorRunning,
		m.AssessmentsByLevel,
		m.CycleDuration,
		m.WeatherFetchDuration,
		m.CatchmentsEvaluated,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CyclesTotal:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_monitor", Name: "cycles_total"}),
		IdleCycles:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_monitor", Name: "idle_cycles_total"}),
		SkippedCycles:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_monitor", Name: "skipped_cycles_total"}),
		SimulationsRun:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_monitor", Name: "simulations_total"}),
		SimulationErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_monitor", Name: "simulation_errors_total"}),
		AlertsEmitted:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_monitor", Name: "alerts_emitted_total"}),
		MonitorRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_monitor", Name: "running"}),
		AssessmentsByLevel:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flood_monitor", Name: "assessments_total"}, []string{"level"}),
		CycleDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flood_monitor", Name: "cycle_duration_seconds"}),
		WeatherFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flood_monitor", Name: "weather_fetch_duration_seconds"}),
		CatchmentsEvaluated:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_monitor", Name: "catchments_evaluated"}),
	}
}
