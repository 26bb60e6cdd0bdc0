// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

/*
Package middleware provides HTTP middleware for the dashboard server.

Key Components:

  - Compression: gzip for clients that accept it; WebSocket upgrades pass through
  - PerformanceMonitor: sliding window of request latencies with percentiles
  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: api_requests_total and friends, labeled by route pattern

The middlewares use the http.HandlerFunc form; the API package adapts them
to chi with a small wrapper:

	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(chiMiddleware(middleware.Compression))

Response writer wrappers implement http.Hijacker and Unwrap so the
WebSocket endpoint keeps working behind them.
*/
package middleware
