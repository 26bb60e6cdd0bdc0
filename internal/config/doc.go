// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

// Package config loads dashboard configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (config.yaml, /etc/chinookdash/config.yaml, or CONFIG_PATH)
//  3. Environment variables, mapped explicitly in envTransformFunc
//
// Only mapped environment variables are read, so unrelated variables in the
// process environment never leak into the configuration. The variables that
// matter most in deployment are:
//
//	DUCKDB_PATH        path to the read-only Chinook snapshot
//	DEMO_MODE          serve a seeded in-memory dataset instead of the file
//	RUNTIME_VERSION    version marker surfaced in health, metrics and the UI
//	GITHUB_TOKEN       bearer token for the last-commit lookup
//	CACHE_TYPE         memoization backend: ttl, lfu or badger
//	CACHE_TTL          memoization expiry (Go duration)
//
// Load validates the result; callers never see a Config that failed Validate.
package config
