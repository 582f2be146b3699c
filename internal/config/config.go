// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

// Package config provides layered configuration for the StepSocial
// recommendation service: struct defaults, an optional YAML file, and
// environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	// Environment is "development" or "production". Production requires
	// an explicit JWT secret.
	Environment string `koanf:"environment"`
	// RateLimitReqs is the per-IP request budget per RateLimitWindow
	// applied to the public API. Zero disables rate limiting.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty string opens an in-memory
	// database, which is useful for tests and demos.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads limits DuckDB worker threads. 0 lets DuckDB decide.
	Threads int `koanf:"threads"`
	// StartupTimeout bounds schema creation and demo seeding at
	// startup. Request-path queries run under the caller's request
	// deadline instead.
	StartupTimeout time.Duration `koanf:"startup_timeout"`
	// SeedDemoData loads a small demo community on startup when the
	// profiles table is empty.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// JWTSecret signs bearer tokens. Auto-generated in development when
	// empty; required in production.
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	// LoginRatePerMinute bounds login attempts per client IP.
	LoginRatePerMinute int `koanf:"login_rate_per_minute"`
	LoginBurst         int `koanf:"login_burst"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// PoolSize bounds the candidate pool loaded per request.
	PoolSize int `koanf:"pool_size"`
	// Default result limits per domain, overridable per request up to
	// MaxLimit.
	FriendsLimit  int `koanf:"friends_limit"`
	EventsLimit   int `koanf:"events_limit"`
	TeachersLimit int `koanf:"teachers_limit"`
	ContentLimit  int `koanf:"content_limit"`
	MaxLimit      int `koanf:"max_limit"`
	// UpcomingWindow bounds how far into the future event candidates
	// are considered.
	UpcomingWindow time.Duration `koanf:"upcoming_window"`
	// ContentWindow is the rolling recency window for content
	// candidates.
	ContentWindow time.Duration `koanf:"content_window"`
	// TopStyleCount is how many of a member's most-attended styles
	// count as favorites for event matching.
	TopStyleCount int `koanf:"top_style_count"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate checks the configuration for values that would misbehave at
// runtime. It is called after all layers are loaded.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}

	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters, got %d", len(c.Auth.JWTSecret))
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}

	if c.Database.StartupTimeout <= 0 {
		return fmt.Errorf("database.startup_timeout must be positive, got %s", c.Database.StartupTimeout)
	}

	r := c.Recommend
	if r.PoolSize < 100 || r.PoolSize > 200 {
		return fmt.Errorf("recommend.pool_size must be between 100 and 200, got %d", r.PoolSize)
	}
	if r.MaxLimit < 1 || r.MaxLimit > 50 {
		return fmt.Errorf("recommend.max_limit must be between 1 and 50, got %d", r.MaxLimit)
	}
	for name, limit := range map[string]int{
		"friends_limit":  r.FriendsLimit,
		"events_limit":   r.EventsLimit,
		"teachers_limit": r.TeachersLimit,
		"content_limit":  r.ContentLimit,
	} {
		if limit < 1 || limit > r.MaxLimit {
			return fmt.Errorf("recommend.%s must be between 1 and %d, got %d", name, r.MaxLimit, limit)
		}
	}
	if r.UpcomingWindow <= 0 {
		return fmt.Errorf("recommend.upcoming_window must be positive, got %s", r.UpcomingWindow)
	}
	if r.ContentWindow <= 0 {
		return fmt.Errorf("recommend.content_window must be positive, got %s", r.ContentWindow)
	}
	if r.TopStyleCount < 1 {
		return fmt.Errorf("recommend.top_style_count must be positive, got %d", r.TopStyleCount)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
