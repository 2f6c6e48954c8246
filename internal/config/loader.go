package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables that steer loading itself.
const (
	EnvPrefix  = "BANK_"
	EnvConfig  = "BANK_CONFIG"
	EnvEnvFile = "BANK_ENV_FILE"

	defaultEnvFile = ".env"
)

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file (BANK_ENV_FILE, default ".env") exported into the environment
//  3. file (YAML) if BANK_CONFIG is set
//  4. env (prefix BANK_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	envFile := os.Getenv(EnvEnvFile)
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: env file %s: %w", ErrLoadConfig, envFile, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// BANK_QUEUE_SIZE -> queue_size; underscores are kept to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	// Loader controls are not settings.
	k.Delete("config")
	k.Delete("env_file")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.AllowedOrigins = splitList(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// metricNamePart matches a Prometheus namespace or subsystem.
var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ModelPath == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case !strings.HasPrefix(c.APIPrefix, "/"):
		return fmt.Errorf("%w: api_prefix must start with /", ErrInvalidConfig)
	}
	switch c.MissingFieldPolicy {
	case "zero", "strict":
	default:
		return fmt.Errorf("%w: missing_field_policy must be zero or strict, got %q", ErrInvalidConfig, c.MissingFieldPolicy)
	}
	switch c.HistoryBackend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("%w: history_backend must be memory or sqlite, got %q", ErrInvalidConfig, c.HistoryBackend)
	}
	if c.HistoryBackend == "sqlite" && c.HistoryDBPath == "" {
		return fmt.Errorf("%w: history_db_path must not be empty for sqlite", ErrInvalidConfig)
	}
	if !metricNamePart.MatchString(c.MetricsNamespace) || !metricNamePart.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics_namespace and metrics_subsystem must be metric name parts", ErrInvalidConfig)
	}
	if c.MetricsRefreshInterval <= 0 {
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// splitList flattens comma-separated entries and drops blanks, so both
// YAML lists and "a,b" env values work.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
