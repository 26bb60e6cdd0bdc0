// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package api

import (
	"time"

	"github.com/tomtom215/chinookdash/internal/config"
	"github.com/tomtom215/chinookdash/internal/dashboard"
	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/middleware"
	ws "github.com/tomtom215/chinookdash/internal/websocket"
)

// defaultInvoiceLimit caps GET /invoices when no limit is given.
const defaultInvoiceLimit = 100

// Handler serves the HTTP API.
type Handler struct {
	svc       *dashboard.Service
	db        *database.DB
	config    *config.Config
	wsHub     *ws.Hub
	perfMon   *middleware.PerformanceMonitor
	version   string
	startTime time.Time
}

// NewHandler creates a Handler. hub may be nil, which disables /ws.
func NewHandler(svc *dashboard.Service, db *database.DB, cfg *config.Config, hub *ws.Hub, version string) *Handler {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Handler{
		svc:       svc,
		db:        db,
		config:    cfg,
		wsHub:     hub,
		perfMon:   middleware.NewPerformanceMonitor(1000, 2*time.Second),
		version:   version,
		startTime: time.Now(),
	}
}

// PerformanceMonitor returns the request latency recorder shared with the router.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}
