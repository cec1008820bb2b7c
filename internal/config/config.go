package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	MongoURI      string
	MongoDatabase string

	KafkaBrokers    []string
	KafkaAlertTopic string
	AlertsEnabled   bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Weather collaborator settings.
	WeatherURL      string
	WeatherToken    string
	WeatherTimeout  time.Duration
	WeatherTimezone string
	DefaultLat      float64
	DefaultLon      float64

	// Monitoring loop settings.
	MonitorEnabled   bool
	MonitorInterval  time.Duration
	MonitorMaxCycles int // 0 = unbounded
	MonitorTopN      int // 0 = exhaustive scan
	AlertThreshold   float64
	RiskSteepness    float64

	// API settings.
	DefaultEventID    string
	CatchmentCacheTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	monitorInterval, err := parseDuration("MONITOR_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CATCHMENT_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	maxCycles, err := parseInt("MONITOR_MAX_CYCLES", 0)
	if err != nil {
		return nil, err
	}
	topN, err := parseInt("MONITOR_TOP_N", 10)
	if err != nil {
		return nil, err
	}

	defaultLat, err := parseFloat("DEFAULT_LAT", -31.95)
	if err != nil {
		return nil, err
	}
	defaultLon, err := parseFloat("DEFAULT_LON", 115.86)
	if err != nil {
		return nil, err
	}
	alertThreshold, err := parseFloat("ALERT_THRESHOLD", 0.8)
	if err != nil {
		return nil, err
	}
	steepness, err := parseFloat("RISK_STEEPNESS", 8.0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MongoURI:      sharedcfg.EnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: sharedcfg.EnvOrDefault("MONGODB_DATABASE", "urban_flooding"),

		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertTopic: sharedcfg.EnvOrDefault("KAFKA_ALERT_TOPIC", "flood-risk-alerts"),
		AlertsEnabled:   os.Getenv("ALERTS_ENABLED") == "true",

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherURL:      sharedcfg.EnvOrDefault("WEATHER_API_URL", "http://localhost:8000/api/v1/weather"),
		WeatherToken:    os.Getenv("WEATHER_API_TOKEN"),
		WeatherTimeout:  weatherTimeout,
		WeatherTimezone: sharedcfg.EnvOrDefault("WEATHER_TIMEZONE", "Australia/Perth"),
		DefaultLat:      defaultLat,
		DefaultLon:      defaultLon,

		MonitorEnabled:   sharedcfg.EnvOrDefault("MONITOR_ENABLED", "true") == "true",
		MonitorInterval:  monitorInterval,
		MonitorMaxCycles: maxCycles,
		MonitorTopN:      topN,
		AlertThreshold:   alertThreshold,
		RiskSteepness:    steepness,

		DefaultEventID:    sharedcfg.EnvOrDefault("DEFAULT_EVENT_ID", "design_10yr"),
		CatchmentCacheTTL: cacheTTL,
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGODB_URI is required")
	}
	if cfg.MonitorEnabled && cfg.WeatherToken == "" {
		return nil, errors.New("WEATHER_API_TOKEN is required when the monitor is enabled")
	}
	if cfg.AlertsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("ALERTS_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.AlertThreshold < 0 || cfg.AlertThreshold > 1 {
		return nil, errors.New("ALERT_THRESHOLD must be within [0,1]")
	}
	if cfg.RiskSteepness <= 0 {
		return nil, errors.New("RISK_STEEPNESS must be positive")
	}
	if cfg.MonitorInterval <= 0 {
		return nil, errors.New("MONITOR_INTERVAL must be positive")
	}

	return cfg, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}
