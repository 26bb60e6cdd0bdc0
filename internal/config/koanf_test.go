// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolateEnv clears every mapped variable and runs the test from an empty
// directory so no stray config.yaml is picked up.
func isolateEnv(t *testing.T) {
	t.Helper()
	for key := range envMappings {
		upper := strings.ToUpper(key)
		t.Setenv(upper, "")
		os.Unsetenv(upper)
	}
	t.Setenv(ConfigPathEnvVar, "")
	os.Unsetenv(ConfigPathEnvVar)
	t.Chdir(t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Database.Path != "data/chinook.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 8050 {
		t.Errorf("Server.Port = %d, want 8050", cfg.Server.Port)
	}
	if cfg.Cache.Type != "ttl" {
		t.Errorf("Cache.Type = %q, want ttl", cfg.Cache.Type)
	}
	if cfg.GitHub.CachePath != "data/last_commit_cache.json" {
		t.Errorf("GitHub.CachePath = %q", cfg.GitHub.CachePath)
	}
	if cfg.Dashboard.TopN != 5 {
		t.Errorf("Dashboard.TopN = %d, want 5", cfg.Dashboard.TopN)
	}
	if len(cfg.Dashboard.RetentionOffsets) != 3 {
		t.Errorf("Dashboard.RetentionOffsets = %v", cfg.Dashboard.RetentionOffsets)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"DUCKDB_PATH", "database.path"},
		{"DEMO_MODE", "database.demo_mode"},
		{"GITHUB_TOKEN", "github.token"},
		{"RUNTIME_VERSION", "server.runtime_version"},
		{"CACHE_TYPE", "cache.type"},
		{"CACHE_TTL", "cache.ttl"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"cors_origins", "security.cors_origins"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.input); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	isolateEnv(t)

	if got := findConfigFile(); got != "" {
		t.Errorf("expected no config file, got %q", got)
	}

	if err := os.WriteFile("config.yaml", []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("expected config.yaml, got %q", got)
	}

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(custom, []byte("server:\n  port: 9001\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, custom)
	if got := findConfigFile(); got != custom {
		t.Errorf("CONFIG_PATH should take precedence, got %q", got)
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateEnv(t)

	t.Setenv("DUCKDB_PATH", "/srv/chinook.duckdb")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CACHE_TYPE", "badger")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("RUNTIME_VERSION", "v1.2.3")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DASHBOARD_RETENTION_OFFSETS", "1,2,12")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Database.Path != "/srv/chinook.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if !cfg.Database.DemoMode {
		t.Error("DemoMode should be true")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Cache.Type != "badger" || cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.GitHub.Token != "ghp_test" {
		t.Errorf("GitHub.Token = %q", cfg.GitHub.Token)
	}
	if cfg.Server.RuntimeVersion != "v1.2.3" {
		t.Errorf("RuntimeVersion = %q", cfg.Server.RuntimeVersion)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if got := cfg.Dashboard.RetentionOffsets; len(got) != 3 || got[2] != 12 {
		t.Errorf("RetentionOffsets = %v", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("derived log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
database:
  path: /data/chinook.duckdb
  threads: 2
server:
  port: 8888
  environment: production
cache:
  type: lfu
  capacity: 64
dashboard:
  default_color_scheme: dark
  top_n: 10
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Database.Threads != 2 {
		t.Errorf("Threads = %d, want 2", cfg.Database.Threads)
	}
	if cfg.Server.Port != 8888 || !cfg.IsProduction() {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Cache.Type != "lfu" || cfg.Cache.Capacity != 64 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Dashboard.DefaultColorScheme != "dark" || cfg.Dashboard.TopN != 10 {
		t.Errorf("Dashboard = %+v", cfg.Dashboard)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("production should default to info, got %q", cfg.Logging.Level)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8888\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7777")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("env should override file: port = %d", cfg.Server.Port)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	isolateEnv(t)

	t.Setenv("CACHE_TYPE", "memcached")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for unknown cache type")
	}
}
