// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Logging.Level = "info"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty path", func(c *Config) { c.Database.Path = "" }, "DUCKDB_PATH"},
		{"empty path in demo mode", func(c *Config) {
			c.Database.Path = ""
			c.Database.DemoMode = true
		}, ""},
		{"negative threads", func(c *Config) { c.Database.Threads = -1 }, "DUCKDB_THREADS"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad environment", func(c *Config) { c.Server.Environment = "qa" }, "APP_ENV"},
		{"bad cache type", func(c *Config) { c.Cache.Type = "redis" }, "CACHE_TYPE"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "CACHE_TTL"},
		{"lfu without capacity", func(c *Config) {
			c.Cache.Type = "lfu"
			c.Cache.Capacity = 0
		}, "CACHE_CAPACITY"},
		{"badger backend", func(c *Config) { c.Cache.Type = "badger" }, ""},
		{"empty repo", func(c *Config) { c.GitHub.Repo = "" }, "GITHUB_REPO"},
		{"bad api url", func(c *Config) { c.GitHub.APIURL = "ftp://example.com" }, "GITHUB_API_URL"},
		{"bad color scheme", func(c *Config) { c.Dashboard.DefaultColorScheme = "blue" }, "DASHBOARD_COLOR_SCHEME"},
		{"top n zero", func(c *Config) { c.Dashboard.TopN = 0 }, "DASHBOARD_TOP_N"},
		{"zero offset", func(c *Config) { c.Dashboard.RetentionOffsets = []int{3, 0} }, "DASHBOARD_RETENTION_OFFSETS"},
		{"unknown metric", func(c *Config) { c.Dashboard.DefaultMetric = "profit" }, "DASHBOARD_DEFAULT_METRIC"},
		{"rate limit zero", func(c *Config) { c.Security.RateLimitRequests = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled skips checks", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitRequests = 0
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if cfg.IsProduction() {
		t.Error("development config reported as production")
	}
	cfg.Server.Environment = "production"
	if !cfg.IsProduction() {
		t.Error("production config not reported as production")
	}
}

func TestApplyDerivedDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env       string
		level     string
		wantLevel string
	}{
		{"production", "", "info"},
		{"development", "", "debug"},
		{"production", "warn", "warn"},
	}

	for _, tt := range tests {
		cfg := defaultConfig()
		cfg.Server.Environment = tt.env
		cfg.Logging.Level = tt.level
		cfg.Cache.Type = "LFU"
		applyDerivedDefaults(cfg)

		if cfg.Logging.Level != tt.wantLevel {
			t.Errorf("env=%s level=%q: got %q, want %q", tt.env, tt.level, cfg.Logging.Level, tt.wantLevel)
		}
		if cfg.Cache.Type != "lfu" {
			t.Errorf("cache type not lower-cased: %q", cfg.Cache.Type)
		}
	}
}

func TestDefaultDurations(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache.TTL = %v, want 30m", cfg.Cache.TTL)
	}
	if cfg.GitHub.RefreshInterval != 6*time.Hour {
		t.Errorf("GitHub.RefreshInterval = %v, want 6h", cfg.GitHub.RefreshInterval)
	}
}
