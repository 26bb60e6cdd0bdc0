// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateGitHub(); err != nil {
		return err
	}
	if err := c.validateDashboard(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if !c.Database.DemoMode && strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required unless DEMO_MODE=true")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	if c.Database.MaxMemory == "" {
		return fmt.Errorf("DUCKDB_MAX_MEMORY must not be empty")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("APP_ENV must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Type {
	case "ttl", "lfu", "badger":
	default:
		return fmt.Errorf("CACHE_TYPE must be ttl, lfu or badger, got %q", c.Cache.Type)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %v", c.Cache.TTL)
	}
	if c.Cache.Type == "lfu" && c.Cache.Capacity <= 0 {
		return fmt.Errorf("CACHE_CAPACITY must be positive for the lfu backend, got %d", c.Cache.Capacity)
	}
	return nil
}

func (c *Config) validateGitHub() error {
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return fmt.Errorf("GITHUB_OWNER and GITHUB_REPO must not be empty")
	}
	u, err := url.Parse(c.GitHub.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("GITHUB_API_URL must be an http(s) URL, got %q", c.GitHub.APIURL)
	}
	if c.GitHub.CachePath == "" {
		return fmt.Errorf("GITHUB_CACHE_PATH must not be empty")
	}
	if c.GitHub.RefreshInterval <= 0 {
		return fmt.Errorf("GITHUB_REFRESH_INTERVAL must be positive, got %v", c.GitHub.RefreshInterval)
	}
	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("GITHUB_TIMEOUT must be positive, got %v", c.GitHub.Timeout)
	}
	return nil
}

func (c *Config) validateDashboard() error {
	switch c.Dashboard.DefaultColorScheme {
	case "light", "dark":
	default:
		return fmt.Errorf("DASHBOARD_COLOR_SCHEME must be light or dark, got %q", c.Dashboard.DefaultColorScheme)
	}
	if c.Dashboard.TopN < 1 || c.Dashboard.TopN > 50 {
		return fmt.Errorf("DASHBOARD_TOP_N must be between 1 and 50, got %d", c.Dashboard.TopN)
	}
	for _, off := range c.Dashboard.RetentionOffsets {
		if off < 1 {
			return fmt.Errorf("DASHBOARD_RETENTION_OFFSETS must be positive month offsets, got %d", off)
		}
	}
	switch c.Dashboard.DefaultMetric {
	case "revenue", "num_customers", "num_purchases", "tracks_sold", "first_time_customers":
	default:
		return fmt.Errorf("DASHBOARD_DEFAULT_METRIC %q is not a known metric", c.Dashboard.DefaultMetric)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitRequests)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
