// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvLogLevel       = "MODELDIFF_LOG_LEVEL"
	EnvLogFormat      = "MODELDIFF_LOG_FORMAT"
	EnvOutputFormat   = "MODELDIFF_OUTPUT_FORMAT"
	EnvOutputCompact  = "MODELDIFF_OUTPUT_COMPACT"
	EnvOutputMaxWidth = "MODELDIFF_OUTPUT_MAX_WIDTH"
	EnvSchemaPaths    = "MODELDIFF_SCHEMA_PATHS"
	EnvWatchDebounce  = "MODELDIFF_WATCH_DEBOUNCE"
	EnvMetricsEnabled = "MODELDIFF_METRICS_ENABLED"
	EnvMetricsAddr    = "MODELDIFF_METRICS_ADDR"
)

// Config is the root configuration structure.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
	Schemas SchemasConfig `yaml:"schemas"`
	Watch   WatchConfig   `yaml:"watch"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// OutputConfig configures how diffs are printed.
type OutputConfig struct {
	Format   string `yaml:"format"` // "table", "json" or "yaml"
	Compact  bool   `yaml:"compact"`
	MaxWidth int    `yaml:"max_width"`
}

// SchemasConfig lists schema files and directories.
type SchemasConfig struct {
	Paths []string `yaml:"paths"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// MetricsConfig configures the Prometheus endpoint served in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(&cfg)
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	MODELDIFF_LOG_LEVEL         - Log level: debug, info, warn, error (default: info)
//	MODELDIFF_LOG_FORMAT        - Log format: json or console (default: console)
//	MODELDIFF_OUTPUT_FORMAT     - Diff output: table, json or yaml (default: table)
//	MODELDIFF_OUTPUT_COMPACT    - Compact JSON output (default: false)
//	MODELDIFF_OUTPUT_MAX_WIDTH  - Truncate table values (default: 0, no limit)
//	MODELDIFF_SCHEMA_PATHS      - Comma separated schema files or directories (default: schemas)
//	MODELDIFF_WATCH_DEBOUNCE    - Delay before re-diffing after a change (default: 100ms)
//	MODELDIFF_METRICS_ENABLED   - Serve /metrics in watch mode (default: false)
//	MODELDIFF_METRICS_ADDR      - Metrics listen address (default: :9090)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	return finish(&cfg)
}

// LoadWithFallback loads from path when the file exists and from the
// environment otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

func finish(cfg *Config) (*Config, error) {
	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies MODELDIFF_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Logging configuration
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}

	// Output configuration
	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv(EnvOutputCompact); v != "" {
		cfg.Output.Compact = parseBool(v)
	}
	if v := os.Getenv(EnvOutputMaxWidth); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Output.MaxWidth = n
		}
	}

	// Schema configuration
	if v := os.Getenv(EnvSchemaPaths); v != "" {
		cfg.Schemas.Paths = splitList(v)
	}

	// Watch configuration
	if v := os.Getenv(EnvWatchDebounce); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Watch.Debounce = d
		}
	}

	// Metrics configuration
	if v := os.Getenv(EnvMetricsEnabled); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		cfg.Metrics.Addr = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = "table"
	}

	if len(cfg.Schemas.Paths) == 0 {
		cfg.Schemas.Paths = []string{"schemas"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 100 * time.Millisecond
	}

	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
}

func validate(cfg *Config) error {
	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	validOutputFormats := map[string]bool{"table": true, "json": true, "yaml": true}
	if !validOutputFormats[cfg.Output.Format] {
		return fmt.Errorf("output.format must be one of: table, json, yaml")
	}
	if cfg.Output.MaxWidth < 0 {
		return fmt.Errorf("output.max_width must not be negative")
	}

	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}

	return nil
}

// NewLogger builds the logger described by cfg, writing to w.
func NewLogger(cfg LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
