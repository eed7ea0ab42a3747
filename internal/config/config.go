// Package config provides service configuration for Tropimon Stats.
//
// Values are layered (low to high precedence): defaults, an optional YAML
// file named by TROPIMON_CONFIG, and environment variables prefixed with
// TROPIMON_. The result is passed explicitly into constructors; core logic
// never reads ambient state.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// LogRoot is the directory holding the capture log sources.
	LogRoot string `koanf:"log_root"`

	// DatabasePath is the SQLite database file.
	DatabasePath string `koanf:"database_path"`

	// LockPath guards against two concurrent rebuild runs.
	LockPath string `koanf:"lock_path"`

	// RateLimitEnabled toggles per-IP rate limiting on the API.
	RateLimitEnabled bool `koanf:"rate_limit_enabled"`

	// RateLimitPerSecond and RateLimitBurst tune the token bucket.
	RateLimitPerSecond float64 `koanf:"rate_limit_per_second"`
	RateLimitBurst     int     `koanf:"rate_limit_burst"`

	// CORSAllowOrigins lists origins allowed by the API.
	CORSAllowOrigins []string `koanf:"cors_allow_origins"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8000",
		LogRoot:            "./logs",
		DatabasePath:       "./tropimon_stats.db",
		LockPath:           "./tropimon_stats.lock",
		RateLimitEnabled:   true,
		RateLimitPerSecond: 10,
		RateLimitBurst:     20,
		CORSAllowOrigins:   []string{"*"},
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (Default())
//  2. file (YAML) if TROPIMON_CONFIG is set
//  3. env (prefix TROPIMON_)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("TROPIMON_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: TROPIMON_ADDR, TROPIMON_LOG_ROOT, ...
	// Preserve underscores to match the koanf tags on the struct.
	envProvider := env.Provider("TROPIMON_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "tropimon_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.LogRoot == "" {
		return errors.New("log_root must not be empty")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path must not be empty")
	}
	return nil
}
