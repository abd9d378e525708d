package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "")
	t.Setenv("API_RATE_LIMIT", "")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("SESSION_FILE", "/tmp/diyctl-session.json")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, SessionBackendFile, cfg.SessionBackend)
	assert.Equal(t, "/tmp/diyctl-session.json", cfg.SessionFile)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://diy.example.com/api/")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("API_RATE_LIMIT", "2.5")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://diy.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, SessionBackendRedis, cfg.SessionBackend)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 4, cfg.RedisDB)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIBaseURL:     "http://localhost:5000/api",
			HTTPTimeout:    time.Second,
			SessionBackend: SessionBackendMemory,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing base url", func(c *Config) { c.APIBaseURL = "" }, "API_BASE_URL is required"},
		{"bad scheme", func(c *Config) { c.APIBaseURL = "localhost:5000" }, "must start with"},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, "HTTP_TIMEOUT_SECONDS"},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, "API_RATE_LIMIT"},
		{"unknown backend", func(c *Config) { c.SessionBackend = "cookie" }, "unknown SESSION_BACKEND"},
		{"file backend without path", func(c *Config) { c.SessionBackend = SessionBackendFile }, "SESSION_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
