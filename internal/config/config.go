// Package config loads runtime configuration from the environment.
// Call godotenv.Load before Load so .env.local values are visible.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrInvalidCacheSize   = errors.New("WORKSPACE_CACHE_SIZE must be a positive integer")
)

// Defaults used when the matching variable is unset.
const (
	DefaultPort               = "5050"
	DefaultSessionPurgeSpec   = "@every 1h"
	DefaultLoginRPS           = 1.0
	DefaultLoginBurst         = 5
	DefaultWorkspaceCacheSize = 1024
)

// Config holds all runtime configuration for the server.
type Config struct {
	Port        string
	DatabaseURL string
	// RedisURL is optional; workspace change notices are disabled without it.
	RedisURL string
	// CatalogPath overrides the embedded demo catalog when set.
	CatalogPath      string
	SessionPurgeSpec string
	Env              string

	LoginRPS           float64
	LoginBurst         int
	WorkspaceCacheSize int

	// SecureCookies is true when PORT is set explicitly, which is how the
	// hosted environments run. Local tests clear PORT to get plain-HTTP cookies.
	SecureCookies bool
}

// Load reads environment variables and returns a Config with defaults applied.
//
// Environment variables:
//   - PORT (default 5050)
//   - DATABASE_URL (required, see Validate)
//   - REDIS_URL, CATALOG_PATH (optional)
//   - SESSION_PURGE_SPEC: cron spec for the expired-session purge (default "@every 1h")
//   - LOGIN_RATE_RPS, LOGIN_RATE_BURST: per-IP login limiter
//   - WORKSPACE_CACHE_SIZE: max in-memory workspaces
//   - APP_ENV: "production" switches to JSON logs
func Load() (Config, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))

	cfg := Config{
		Port:               port,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		CatalogPath:        strings.TrimSpace(os.Getenv("CATALOG_PATH")),
		SessionPurgeSpec:   strings.TrimSpace(os.Getenv("SESSION_PURGE_SPEC")),
		Env:                strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))),
		LoginRPS:           DefaultLoginRPS,
		LoginBurst:         DefaultLoginBurst,
		WorkspaceCacheSize: DefaultWorkspaceCacheSize,
		SecureCookies:      port != "",
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.SessionPurgeSpec == "" {
		cfg.SessionPurgeSpec = DefaultSessionPurgeSpec
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	if s := os.Getenv("LOGIN_RATE_RPS"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return Config{}, fmt.Errorf("LOGIN_RATE_RPS must be a positive number, got %q", s)
		}
		cfg.LoginRPS = v
	}
	if s := os.Getenv("LOGIN_RATE_BURST"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return Config{}, fmt.Errorf("LOGIN_RATE_BURST must be a positive integer, got %q", s)
		}
		cfg.LoginBurst = v
	}
	if s := os.Getenv("WORKSPACE_CACHE_SIZE"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return Config{}, fmt.Errorf("%w, got %q", ErrInvalidCacheSize, s)
		}
		cfg.WorkspaceCacheSize = v
	}

	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

func (c Config) Production() bool {
	return c.Env == "production"
}
