// Package config loads host configuration from FSBRIDGE_* environment
// variables. The scope policy itself lives in a JSON file referenced here;
// everything that can change per deployment without changing policy is an
// env var.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"

	"github.com/glimmerdesk/fsbridge/internal/scope"
)

// Config holds all host configuration.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Scope     ScopeConfig
	Watch     WatchConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"7420"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// AppConfig identifies the application whose per-app directories the
// appConfig/appData/appCache/appLog tokens resolve under.
type AppConfig struct {
	Identifier  string `envconfig:"APP_ID" default:"com.glimmerdesk.app"`
	ResourceDir string `envconfig:"RESOURCE_DIR" default:""`
}

// ScopeConfig points at the JSON scope policy file.
type ScopeConfig struct {
	File string `envconfig:"SCOPE_FILE" default:""`
}

// WatchConfig holds change-notification defaults.
type WatchConfig struct {
	DebounceMs int `envconfig:"WATCH_DEBOUNCE_MS" default:"100"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"200"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"400"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from FSBRIDGE_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("FSBRIDGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Port: "7420", Host: "127.0.0.1"},
		App:       AppConfig{Identifier: "com.glimmerdesk.app"},
		Watch:     WatchConfig{DebounceMs: 100},
		Logging:   LogConfig{Level: "info"},
		RateLimit: RateLimitConfig{RequestsPerSecond: 200, Burst: 400, Enabled: true},
	}
}

// LoadScope reads the scope policy file. With no file configured the
// fallback grants the per-app directories and nothing else, so a missing
// policy fails closed rather than open.
func (c *Config) LoadScope() (scope.Config, error) {
	if c.Scope.File == "" {
		return DefaultScope(), nil
	}
	raw, err := os.ReadFile(c.Scope.File)
	if err != nil {
		return scope.Config{}, fmt.Errorf("read scope file: %w", err)
	}
	var sc scope.Config
	if err := json.Unmarshal(raw, &sc); err != nil {
		return scope.Config{}, fmt.Errorf("parse scope file %s: %w", c.Scope.File, err)
	}
	return sc, nil
}

// DefaultScope allows the application's own directories only.
func DefaultScope() scope.Config {
	return scope.Config{
		Allow: []scope.Rule{
			{Pattern: "$APPCONFIG/**"},
			{Pattern: "$APPDATA/**"},
			{Pattern: "$APPCACHE/**"},
			{Pattern: "$APPLOG/**"},
			{Pattern: "$TEMP/**"},
		},
	}
}
