package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
backend:
  url: http://search:8000
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "http://search:8000", cfg.Backend.URL)
				assert.True(t, cfg.Backend.Alternatives())
			},
		},
		{
			name: "empty file uses defaults",
			yaml: ``,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
backend:
  url: http://search:8000
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 35*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
				assert.Equal(t, 50, cfg.Backend.MaxResults)
				assert.Equal(t, 5*time.Second, cfg.Backend.SlowRequest)
				assert.Zero(t, cfg.Backend.RateLimit.PerSecond)
				assert.Equal(t, DriverFile, cfg.History.Driver)
				assert.Equal(t, "data/state.json", cfg.History.Path)
				assert.Equal(t, 5432, cfg.History.Database.Port)
				assert.Equal(t, "disable", cfg.History.Database.SSLMode)
				assert.Equal(t, 10*time.Minute, cfg.Schedule.RetailerRefreshInterval)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.Equal(t, "price-compare", cfg.Telemetry.ServiceName)
				assert.InDelta(t, 1.0, cfg.Telemetry.SampleRatio, 0)
				assert.False(t, cfg.Telemetry.Enabled())
			},
		},
		{
			name: "env var substitution",
			yaml: `
backend:
  url: "${TEST_BACKEND_URL}"
history:
  driver: postgres
  database:
    host: localhost
    name: pcmp
    user: pcmp
    password: "${TEST_DB_PASSWORD}"
`,
			envVars: map[string]string{
				"TEST_BACKEND_URL": "https://api.example.com",
				"TEST_DB_PASSWORD": "secret123",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "https://api.example.com", cfg.Backend.URL)
				assert.Equal(t, "secret123", cfg.History.Database.Password)
			},
		},
		{
			name: "rate limit burst defaults to one",
			yaml: `
backend:
  rate_limit:
    per_second: 2
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.InDelta(t, 2.0, cfg.Backend.RateLimit.PerSecond, 0)
				assert.Equal(t, 1, cfg.Backend.RateLimit.Burst)
			},
		},
		{
			name: "alternatives can be disabled",
			yaml: `
backend:
  include_alternatives: false
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.False(t, cfg.Backend.Alternatives())
			},
		},
		{
			name: "relative backend url",
			yaml: `
backend:
  url: search:8000
`,
			wantErr: "backend.url must be an absolute http(s) URL",
		},
		{
			name: "max results out of range",
			yaml: `
backend:
  max_results: 500
`,
			wantErr: "backend.max_results must be between 1 and 100 (got 500)",
		},
		{
			name: "invalid history driver",
			yaml: `
history:
  driver: redis
`,
			wantErr: `history.driver must be one of: memory, file, postgres (got "redis")`,
		},
		{
			name: "postgres driver missing host",
			yaml: `
history:
  driver: postgres
  database:
    name: pcmp
    user: pcmp
`,
			wantErr: "history.database.host is required when driver is postgres",
		},
		{
			name: "postgres driver missing name and user",
			yaml: `
history:
  driver: postgres
  database:
    host: localhost
`,
			wantErr: "history.database.name is required when driver is postgres",
		},
		{
			name: "refresh interval too short",
			yaml: `
schedule:
  retailer_refresh_interval: 10ms
`,
			wantErr: "schedule.retailer_refresh_interval must be at least 1s",
		},
		{
			name: "sample ratio out of range",
			yaml: `
telemetry:
  sample_ratio: 2
`,
			wantErr: "telemetry.sample_ratio must be between 0 and 1",
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			wantErr: "parsing config YAML",
		},
		{
			name: "full config with overrides",
			yaml: `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 60s
  write_timeout: 60s
backend:
  url: https://waffar.example.com/api
  timeout: 45s
  max_results: 80
  include_alternatives: true
  slow_request: 3s
  rate_limit:
    per_second: 5
    burst: 10
history:
  driver: memory
schedule:
  retailer_refresh_interval: 1h
logging:
  level: debug
  format: json
telemetry:
  otlp_endpoint: otel-collector:4317
  insecure: true
  service_name: pcmp-bff
  sample_ratio: 0.25
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "https://waffar.example.com/api", cfg.Backend.URL)
				assert.Equal(t, 45*time.Second, cfg.Backend.Timeout)
				assert.Equal(t, 80, cfg.Backend.MaxResults)
				assert.Equal(t, 3*time.Second, cfg.Backend.SlowRequest)
				assert.Equal(t, 10, cfg.Backend.RateLimit.Burst)
				assert.Equal(t, DriverMemory, cfg.History.Driver)
				assert.Empty(t, cfg.History.Path)
				assert.Equal(t, time.Hour, cfg.Schedule.RetailerRefreshInterval)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.True(t, cfg.Telemetry.Enabled())
				assert.True(t, cfg.Telemetry.Insecure)
				assert.Equal(t, "pcmp-bff", cfg.Telemetry.ServiceName)
				assert.InDelta(t, 0.25, cfg.Telemetry.SampleRatio, 1e-9)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, validate(cfg))
	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "basic DSN",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Name:     "pcmp",
				User:     "pcmp",
				Password: "testpass",
				SSLMode:  "disable",
			},
			want: "host=localhost port=5432 dbname=pcmp user=pcmp password=testpass sslmode=disable",
		},
		{
			name: "production DSN",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				Name:     "pcmp_prod",
				User:     "admin",
				Password: "s3cret",
				SSLMode:  "require",
			},
			want: "host=db.example.com port=5433 dbname=pcmp_prod user=admin password=s3cret sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
