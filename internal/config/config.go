// Package config provides configuration loading, defaults, and validation
// for the SafeSpeak service.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/safespeak/pkg/types/risk"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // debug | info | warn | error
	Format      string   `mapstructure:"format"` // json | console
	OutputPaths []string `mapstructure:"output_paths"`
}

// ProviderConfig holds generative provider settings.
type ProviderConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PolicyConfig holds analysis-result handling policy.
type PolicyConfig struct {
	// FallbackRiskLevel is the bucket shown when the provider returns a
	// risk_level outside the defined enumeration.
	FallbackRiskLevel string `mapstructure:"fallback_risk_level"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// RateLimitConfig holds per-client request throttling settings.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// Config is the root configuration object.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// Validate checks the configuration for values that would prevent the
// service from operating.  It assumes ApplyDefaults has already run.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q is not one of debug, release, test", c.Server.Mode)
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key is required")
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive")
	}
	if !risk.Level(c.Policy.FallbackRiskLevel).IsValid() {
		return fmt.Errorf("policy.fallback_risk_level %q is not a defined risk level", c.Policy.FallbackRiskLevel)
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit.rps must be positive when rate limiting is enabled")
	}
	return nil
}

// FallbackLevel returns the configured fallback bucket as a typed level.
func (c *Config) FallbackLevel() risk.Level {
	return risk.Level(c.Policy.FallbackRiskLevel)
}
