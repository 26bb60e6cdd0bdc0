// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

/*
Command server runs the Chinook sales dashboard.

# Application Architecture

	RootSupervisor ("chinookdash")
	├── background-layer
	│   └── Commit refresher (GitHub last-commit date)
	├── messaging-layer
	│   └── WebSocket Hub (page bundles, last-updated pushes)
	└── api-layer
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB snapshot opened read-only (or the demo dataset)
 4. Memoization: ttl, lfu or badger cache behind singleflight
 5. Commit cache: last commit date from the GitHub API, persisted to disk
 6. Dashboard service, WebSocket hub and HTTP router
 7. Supervisor tree: Suture v4 process supervision

# Configuration

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	DUCKDB_PATH=data/chinook.duckdb
	DEMO_MODE=false              # serve the built-in synthetic dataset
	HTTP_PORT=8050
	APP_ENV=development          # development, staging, production
	LOG_LEVEL=                   # empty: info in production, debug otherwise
	LOG_FORMAT=json              # json or console
	CACHE_TYPE=ttl               # ttl, lfu, badger
	CACHE_TTL=30m
	GITHUB_TOKEN=                # optional, raises the API rate limit

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests, WebSocket clients receive a close frame and the database is closed.
*/
package main
