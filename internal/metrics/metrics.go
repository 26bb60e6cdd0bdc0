// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package metrics

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB KPI queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query", "page"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"query", "error_type"},
	)

	StagingBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staging_builds_total",
			Help: "Working-set requests by outcome (rebuilt or reused)",
		},
		[]string{"result"},
	)

	StagingBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "staging_build_duration_seconds",
			Help:    "Duration of filtered_invoices rebuilds in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	StagingWorkingSetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "staging_working_set_rows",
			Help: "Number of invoices in the current working set",
		},
	)

	// Memoization Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of memoization cache hits",
		},
		[]string{"cache_type"}, // "ttl", "lfu", "badger"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of memoization cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of memoized entries",
		},
		[]string{"cache_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// GitHub commit lookup
	CommitFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commit_fetch_total",
			Help: "Last-commit lookups against the GitHub API by result",
		},
		[]string{"result"}, // "success", "failure", "skipped"
	)

	CommitCacheLastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "commit_cache_last_refresh_timestamp",
			Help: "Unix timestamp of the last successful commit cache refresh",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "runtime_version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a KPI query observation.
func RecordDBQuery(query, page string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(query, page).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(query, classifyError(err)).Inc()
	}
}

// RecordStagingBuild records one working-set request. duration is only
// observed when the table was actually rebuilt.
func RecordStagingBuild(rebuilt bool, duration time.Duration, rows int64) {
	if !rebuilt {
		StagingBuilds.WithLabelValues("reused").Inc()
		return
	}
	StagingBuilds.WithLabelValues("rebuilt").Inc()
	StagingBuildDuration.Observe(duration.Seconds())
	StagingWorkingSetRows.Set(float64(rows))
}

// RecordCacheLookup records a memoization hit or miss for a backend.
func RecordCacheLookup(backend string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(backend).Inc()
		return
	}
	CacheMisses.WithLabelValues(backend).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCommitFetch records the outcome of a GitHub last-commit lookup.
func RecordCommitFetch(result string) {
	CommitFetchTotal.WithLabelValues(result).Inc()
	if result == "success" {
		CommitCacheLastRefresh.Set(float64(time.Now().Unix()))
	}
}

// SetAppInfo publishes build information. Earlier label sets are reset so
// only one app_info series exists.
func SetAppInfo(version, runtimeVersion string) {
	if runtimeVersion == "" {
		runtimeVersion = "unknown"
	}
	AppInfo.Reset()
	AppInfo.WithLabelValues(version, runtimeVersion, runtime.Version()).Set(1)
}

// UpdateUptime sets app_uptime_seconds relative to start.
func UpdateUptime(start time.Time) {
	AppUptime.Set(time.Since(start).Seconds())
}

// classifyError maps an error to a bounded label value.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "binder error"), strings.Contains(msg, "parser error"):
		return "sql"
	case strings.Contains(msg, "catalog error"):
		return "catalog"
	case strings.Contains(msg, "conversion error"):
		return "conversion"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "other"
	}
}
