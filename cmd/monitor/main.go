package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-engine/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/flood-risk-engine/internal/adapter/kafka"
	mongoadapter "github.com/couchcryptid/flood-risk-engine/internal/adapter/mongo"
	"github.com/couchcryptid/flood-risk-engine/internal/adapter/weather"
	"github.com/couchcryptid/flood-risk-engine/internal/cache"
	"github.com/couchcryptid/flood-risk-engine/internal/config"
	"github.com/couchcryptid/flood-risk-engine/internal/monitor"
	"github.com/couchcryptid/flood-risk-engine/internal/observability"
)

// staticReady serves readiness when the monitoring loop is disabled and the
// service is query-only.
type staticReady struct{}

func (staticReady) CheckReadiness(_ context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := mongoadapter.Connect(connectCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("mongodb connection failed", "error", err)
		os.Exit(1)
	}

	catchments := cache.NewCatchmentCache(store, cfg.CatchmentCacheTTL)

	// Alert publishing is feature-flagged via ALERTS_ENABLED.
	var publisher monitor.AlertPublisher
	var alertWriter *kafkaadapter.AlertWriter
	if cfg.AlertsEnabled {
		alertWriter = kafkaadapter.NewAlertWriter(cfg, logger)
		publisher = alertWriter
		logger.Info("alert publishing enabled", "topic", cfg.KafkaAlertTopic)
	} else {
		logger.Info("alert publishing disabled")
	}

	var ready httpapi.ReadinessChecker = staticReady{}
	var summaries httpapi.SummarySource
	var m *monitor.Monitor
	if cfg.MonitorEnabled {
		weatherClient, err := weather.NewClient(cfg.WeatherURL, cfg.WeatherToken, cfg.WeatherTimezone,
			cfg.WeatherTimeout, cfg.DefaultLat, cfg.DefaultLon, logger)
		if err != nil {
			logger.Error("weather client setup failed", "error", err)
			os.Exit(1)
		}
		m = monitor.New(weatherClient, catchments, publisher, store, logger, metrics,
			clockwork.NewRealClock(), monitor.Options{
				Interval:       cfg.MonitorInterval,
				MaxCycles:      cfg.MonitorMaxCycles,
				TopN:           cfg.MonitorTopN,
				AlertThreshold: cfg.AlertThreshold,
				Steepness:      cfg.RiskSteepness,
			})
		ready = m
		summaries = m
	} else {
		logger.Info("monitoring loop disabled, serving queries only")
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, ready, catchments, store, summaries, httpapi.Options{
		DefaultEventID: cfg.DefaultEventID,
		Steepness:      cfg.RiskSteepness,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if m != nil {
		go func() {
			if err := m.Run(ctx); err != nil {
				logger.Error("monitor error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if alertWriter != nil {
		if err := alertWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("mongodb disconnect error", "error", err)
	}

	logger.Info("shutdown complete")
}
