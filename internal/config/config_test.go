package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/safespeak/pkg/types/risk"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Provider.APIKey = "test-key"
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "gemini-2.5-flash", cfg.Provider.Model)
	assert.Equal(t, 60*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "low", cfg.Policy.FallbackRiskLevel)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "safespeak", cfg.Metrics.Namespace)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Server.Port = 9090
	cfg.Policy.FallbackRiskLevel = "medium"
	ApplyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "medium", cfg.Policy.FallbackRiskLevel)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad mode", func(c *Config) { c.Server.Mode = "production" }, "server.mode"},
		{"missing api key", func(c *Config) { c.Provider.APIKey = "" }, "provider.api_key"},
		{"bad timeout", func(c *Config) { c.Provider.Timeout = -time.Second }, "provider.timeout"},
		{"bad fallback level", func(c *Config) { c.Policy.FallbackRiskLevel = "severe" }, "fallback_risk_level"},
		{"bad rate limit", func(c *Config) { c.RateLimit.Enabled = true; c.RateLimit.RPS = 0 }, "rate_limit.rps"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
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

func TestFallbackLevel(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	assert.Equal(t, risk.LevelLow, cfg.FallbackLevel())

	cfg.Policy.FallbackRiskLevel = "medium"
	assert.Equal(t, risk.LevelMedium, cfg.FallbackLevel())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9191
  mode: test
provider:
  api_key: file-key
  model: gemini-2.5-flash
policy:
  fallback_risk_level: medium
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "file-key", cfg.Provider.APIKey)
	assert.Equal(t, "medium", cfg.Policy.FallbackRiskLevel)
	assert.Equal(t, 60*time.Second, cfg.Provider.Timeout, "defaults fill unset fields")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SAFESPEAK_PROVIDER_API_KEY", "env-key")
	t.Setenv("SAFESPEAK_SERVER_PORT", "7070")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Provider.APIKey)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadFromEnvValidationFailure(t *testing.T) {
	// No API key anywhere.
	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}
