// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers .env, YAML file and environment on top of New().
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// LogFile, when set, also writes logs to a rotating file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// AppName is reported in logs and the OpenAPI document.
	AppName string `koanf:"app_name"`

	// APIPrefix is prepended to the prediction routes, e.g. "/api/v1".
	APIPrefix string `koanf:"api_prefix"`

	// ModelPath points at the classifier artifact loaded at start-up.
	ModelPath string `koanf:"model_path"`

	// MissingFieldPolicy is "zero" or "strict".
	MissingFieldPolicy string `koanf:"missing_field_policy"`

	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// HistoryBackend selects the prediction history store: memory or sqlite.
	HistoryBackend string `koanf:"history_backend"`

	// HistoryDBPath is the SQLite file used by the sqlite backend.
	HistoryDBPath string `koanf:"history_db_path"`

	// HistorySize bounds the number of retained history records.
	HistorySize int `koanf:"history_size"`

	// QueueSize bounds the in-memory history queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of history writers.
	WorkerCount int `koanf:"worker_count"`

	// MaxBatchSize caps POST /predict/batch.
	MaxBatchSize int `koanf:"max_batch_size"`

	// MaxHistoryLimit caps GET /predictions?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// MetricsEnabled switches Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsRefreshInterval is how often memory and goroutine gauges are sampled.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8000",
		AppName:            "Bank Marketing Prediction API",
		APIPrefix:          "/api/v1",
		ModelPath:          "models/bank_marketing_model.json",
		MissingFieldPolicy: "zero",
		AllowedOrigins:     []string{"*"},
		HistoryBackend:     "memory",
		HistoryDBPath:      "data/predictions.db",
		HistorySize:        1000,
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU(),
		MaxBatchSize:       100,
		MaxHistoryLimit:    100,

		MetricsEnabled:         true,
		MetricsNamespace:       "bank",
		MetricsSubsystem:       "predictor",
		MetricsRefreshInterval: 10 * time.Second,
	}
}
