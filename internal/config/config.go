// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	History   HistoryConfig   `yaml:"history"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// BackendConfig defines the search backend the gateway talks to.
type BackendConfig struct {
	URL                 string          `yaml:"url"`
	Timeout             time.Duration   `yaml:"timeout"`
	MaxResults          int             `yaml:"max_results"`
	IncludeAlternatives *bool           `yaml:"include_alternatives"` // default: true
	SlowRequest         time.Duration   `yaml:"slow_request"`
	RateLimit           RateLimitConfig `yaml:"rate_limit"`
}

// Alternatives reports whether searches ask for alternative products.
func (b *BackendConfig) Alternatives() bool {
	return b.IncludeAlternatives == nil || *b.IncludeAlternatives
}

// RateLimitConfig defines the client-side throttle on backend calls.
// A zero PerSecond disables throttling.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// History storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// HistoryConfig selects where recent searches are persisted.
type HistoryConfig struct {
	Driver   string         `yaml:"driver"` // memory, file, postgres
	Path     string         `yaml:"path"`
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// ScheduleConfig defines cron intervals.
type ScheduleConfig struct {
	RetailerRefreshInterval time.Duration `yaml:"retailer_refresh_interval"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// TelemetryConfig defines OpenTelemetry export. Export is disabled when
// OTLPEndpoint is empty.
type TelemetryConfig struct {
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	Insecure     bool    `yaml:"insecure"`
	ServiceName  string  `yaml:"service_name"`
	SampleRatio  float64 `yaml:"sample_ratio"`
}

// Enabled reports whether telemetry export is configured.
func (t *TelemetryConfig) Enabled() bool {
	return t.OTLPEndpoint != ""
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a valid configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyBackendDefaults(&cfg.Backend)
	applyHistoryDefaults(&cfg.History)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		// Must outlast the backend timeout so a slow search can still answer.
		s.WriteTimeout = 35 * time.Second
	}
}

func applyBackendDefaults(b *BackendConfig) {
	if b.URL == "" {
		b.URL = "http://localhost:8000"
	}
	if b.Timeout == 0 {
		b.Timeout = 30 * time.Second
	}
	if b.MaxResults == 0 {
		b.MaxResults = 50
	}
	if b.SlowRequest == 0 {
		b.SlowRequest = 5 * time.Second
	}
	if b.RateLimit.PerSecond > 0 && b.RateLimit.Burst == 0 {
		b.RateLimit.Burst = 1
	}
}

func applyHistoryDefaults(h *HistoryConfig) {
	if h.Driver == "" {
		h.Driver = DriverFile
	}
	if h.Driver == DriverFile && h.Path == "" {
		h.Path = "data/state.json"
	}
	if h.Database.Port == 0 {
		h.Database.Port = 5432
	}
	if h.Database.SSLMode == "" {
		h.Database.SSLMode = "disable"
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.RetailerRefreshInterval == 0 {
		s.RetailerRefreshInterval = 10 * time.Minute
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "price-compare"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
}

func validate(cfg *Config) error {
	var errs []error

	if u, err := url.Parse(cfg.Backend.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url must be an absolute http(s) URL (got %q)", cfg.Backend.URL))
	}
	if cfg.Backend.Timeout < 0 {
		errs = append(errs, fmt.Errorf("backend.timeout must be positive"))
	}
	if cfg.Backend.MaxResults < 1 || cfg.Backend.MaxResults > 100 {
		errs = append(errs, fmt.Errorf("backend.max_results must be between 1 and 100 (got %d)", cfg.Backend.MaxResults))
	}
	if cfg.Backend.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("backend.rate_limit.per_second must not be negative"))
	}

	switch cfg.History.Driver {
	case DriverMemory:
	case DriverFile:
		if cfg.History.Path == "" {
			errs = append(errs, fmt.Errorf("history.path is required when driver is file"))
		}
	case DriverPostgres:
		db := cfg.History.Database
		if db.Host == "" {
			errs = append(errs, fmt.Errorf("history.database.host is required when driver is postgres"))
		}
		if db.Name == "" {
			errs = append(errs, fmt.Errorf("history.database.name is required when driver is postgres"))
		}
		if db.User == "" {
			errs = append(errs, fmt.Errorf("history.database.user is required when driver is postgres"))
		}
	default:
		errs = append(
			errs,
			fmt.Errorf(
				"history.driver must be one of: memory, file, postgres (got %q)",
				cfg.History.Driver,
			),
		)
	}

	if cfg.Schedule.RetailerRefreshInterval < time.Second {
		errs = append(errs, fmt.Errorf("schedule.retailer_refresh_interval must be at least 1s"))
	}

	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_ratio must be between 0 and 1"))
	}

	return errors.Join(errs...)
}
