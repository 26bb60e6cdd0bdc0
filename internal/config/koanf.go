// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/chinookdash/internal/logging"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/chinookdash/config.yaml",
	"/etc/chinookdash/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "data/chinook.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
			DemoMode:  false,
		},
		Server: ServerConfig{
			Port:        8050,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Cache: CacheConfig{
			Type:     "ttl",
			TTL:      30 * time.Minute,
			Capacity: 1000,
		},
		GitHub: GitHubConfig{
			Owner:           "tomtom215",
			Repo:            "chinookdash",
			APIURL:          "https://api.github.com",
			CachePath:       "data/last_commit_cache.json",
			RefreshInterval: 6 * time.Hour,
			Timeout:         10 * time.Second,
		},
		Dashboard: DashboardConfig{
			DefaultColorScheme: "light",
			TopN:               5,
			RetentionOffsets:   []int{3, 6, 9},
			DefaultMetric:      "revenue",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{},
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with precedence ENV > file > defaults,
// then validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	applyDerivedDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyDerivedDefaults fills values whose default depends on other settings.
func applyDerivedDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = logging.DefaultLevelFor(cfg.Server.Environment)
	}
	cfg.Cache.Type = strings.ToLower(cfg.Cache.Type)
	cfg.Dashboard.DefaultColorScheme = strings.ToLower(cfg.Dashboard.DefaultColorScheme)
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"dashboard.retention_offsets",
}

// processSliceFields converts comma-separated env values into slices.
// Values that are already slices (from YAML) are left untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Database
	"duckdb_path":       "database.path",
	"database_path":     "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"demo_mode":         "database.demo_mode",

	// Server
	"http_host":       "server.host",
	"http_port":       "server.port",
	"http_timeout":    "server.timeout",
	"app_env":         "server.environment",
	"dash_env":        "server.environment",
	"runtime_version": "server.runtime_version",

	// Memoization
	"cache_type":     "cache.type",
	"cache_ttl":      "cache.ttl",
	"cache_capacity": "cache.capacity",
	"cache_dir":      "cache.dir",

	// GitHub last-commit lookup
	"github_token":            "github.token",
	"github_owner":            "github.owner",
	"github_repo":             "github.repo",
	"github_api_url":          "github.api_url",
	"github_cache_path":       "github.cache_path",
	"github_refresh_interval": "github.refresh_interval",
	"github_timeout":          "github.timeout",

	// Dashboard
	"dashboard_color_scheme":      "dashboard.default_color_scheme",
	"dashboard_top_n":             "dashboard.top_n",
	"dashboard_retention_offsets": "dashboard.retention_offsets",
	"dashboard_default_metric":    "dashboard.default_metric",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are skipped.
//
//   - DUCKDB_PATH     -> database.path
//   - GITHUB_TOKEN    -> github.token
//   - CACHE_TTL       -> cache.ttl
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile invokes callback whenever the config file at path changes.
// The caller owns synchronization of any reloaded state.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
