// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/chinookdash/internal/models"
)

func (h *Handler) databaseOK(r *http.Request) bool {
	return h.db != nil && h.db.Ping(r.Context()) == nil
}

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns database connectivity, cache backend and hit rate, footer date and uptime
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status retrieved successfully"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := h.databaseOK(r)
	status := "healthy"
	if !dbOK {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:         status,
		Version:        h.version,
		RuntimeVersion: h.config.Server.RuntimeVersion,
		DatabaseOK:     dbOK,
		DemoMode:       h.config.Database.DemoMode,
		CacheType:      h.config.Cache.Type,
		Uptime:         time.Since(h.startTime).Seconds(),
		Timestamp:      time.Now().UTC(),
	}
	if h.svc != nil {
		health.CacheHitRate = h.svc.Memoizer().Cache().HitRate()
		health.LastUpdated = h.svc.LastUpdated()
	}

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   health,
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
//
// @Summary Kubernetes liveness probe
// @Description Returns 200 OK if the process is alive, regardless of external dependencies.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if the database answers
//
// @Summary Kubernetes readiness probe
// @Description Returns 200 OK only if the DuckDB snapshot is reachable. Returns 503 if not ready.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is ready"
// @Failure 503 {object} models.APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.databaseOK(r) {
		respondJSON(w, r, http.StatusServiceUnavailable, &models.APIResponse{
			Status: models.StatusError,
			Data:   map[string]interface{}{"ready": false},
			Error: &models.APIError{
				Code:    models.ErrCodeDatabase,
				Message: "Database not available",
			},
		})
		return
	}

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   map[string]interface{}{"ready": true},
	})
}

// Performance returns latency percentiles per route.
//
// @Summary Get request performance statistics
// @Tags Core
// @Produce json
// @Param recent query int false "Number of recent requests to include"
// @Success 200 {object} models.APIResponse
// @Router /performance [get]
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	recent := getIntParam(r, "recent", 0)
	if recent < 0 || recent > 1000 {
		recent = 0
	}
	data := map[string]interface{}{
		"endpoints": h.perfMon.GetStats(),
	}
	if recent > 0 {
		data["recent"] = h.perfMon.GetRecentMetrics(recent)
	}
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   data,
	})
}
