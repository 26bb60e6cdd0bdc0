// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

/*
Package metrics exposes Prometheus instrumentation for the dashboard.

All collectors are registered on the default registry through promauto and
served at /metrics by the API router.

# Available Metrics

DuckDB:
  - duckdb_query_duration_seconds{query,page}: KPI query latency (histogram)
  - duckdb_query_errors_total{query,error_type}: failed queries (counter)
  - staging_builds_total{result}: working-set requests, result is rebuilt or reused
  - staging_build_duration_seconds: filtered_invoices rebuild latency (histogram)
  - staging_working_set_rows: rows in the current working set (gauge)

Memoization:
  - cache_hits_total{cache_type}, cache_misses_total{cache_type}
  - cache_entries{cache_type}

HTTP and WebSocket:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - websocket_connections, websocket_messages_sent_total,
    websocket_messages_received_total, websocket_errors_total{error_type}

GitHub last-commit lookup:
  - commit_fetch_total{result}
  - commit_cache_last_refresh_timestamp
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Process:
  - app_info{version,runtime_version,go_version}
  - app_uptime_seconds

# Usage

	start := time.Now()
	rows, err := q.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("core_kpis", "overview", time.Since(start), err)

Label values must stay low-cardinality. Endpoint labels use the chi route
pattern, never the raw URL.
*/
package metrics
