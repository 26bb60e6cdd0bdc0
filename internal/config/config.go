// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Cache     CacheConfig     `koanf:"cache"`
	GitHub    GitHubConfig    `koanf:"github"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings. The snapshot is always opened read-only.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// DemoMode serves a deterministic synthetic dataset from an in-memory
	// database instead of opening Path.
	DemoMode bool `koanf:"demo_mode"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production

	// RuntimeVersion is an opaque deployment marker (image tag, git sha).
	RuntimeVersion string `koanf:"runtime_version"`
}

// CacheConfig selects the memoization backend for KPI queries.
type CacheConfig struct {
	Type     string        `koanf:"type"` // ttl, lfu, badger
	TTL      time.Duration `koanf:"ttl"`
	Capacity int           `koanf:"capacity"` // lfu only
	Dir      string        `koanf:"dir"`      // badger only; empty keeps it in memory
}

// GitHubConfig controls the last-commit timestamp shown in the dashboard footer.
type GitHubConfig struct {
	Owner           string        `koanf:"owner"`
	Repo            string        `koanf:"repo"`
	Token           string        `koanf:"token"`
	APIURL          string        `koanf:"api_url"`
	CachePath       string        `koanf:"cache_path"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	Timeout         time.Duration `koanf:"timeout"`
}

// DashboardConfig holds presentation defaults.
type DashboardConfig struct {
	DefaultColorScheme string `koanf:"default_color_scheme"` // light or dark
	TopN               int    `koanf:"top_n"`
	RetentionOffsets   []int  `koanf:"retention_offsets"`
	DefaultMetric      string `koanf:"default_metric"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level. Empty means "derive from environment":
	// info in production, debug elsewhere.
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, optional config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
