// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package api

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/chinookdash/internal/dashboard"
	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/models"
	ws "github.com/tomtom215/chinookdash/internal/websocket"
)

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts same-host origins and the configured CORS
// origins. Browsers always send Origin, so a missing one is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and serves page requests on it.
//
// @Summary Page bundles over WebSocket
// @Description Clients send {"id", "page", "filters", ...}; the server answers {"type": "bundle", "id", "bundle"} and broadcasts {"type": "last_updated"}
// @Tags Dashboard
// @Success 101 {string} string "Switching Protocols"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, r, http.StatusServiceUnavailable, &models.APIError{
			Code:    models.ErrCodeService,
			Message: "WebSocket hub not running",
		}, nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	// the request context ends when this handler returns; keep its values
	ctx := context.WithoutCancel(r.Context())
	ws.NewClient(h.wsHub, conn, h.answerPageRequest).Start(ctx)
}

// answerPageRequest builds a bundle for one WebSocket request.
func (h *Handler) answerPageRequest(ctx context.Context, req ws.Request) models.WSMessage {
	if !slices.Contains(dashboard.Pages, req.Page) {
		return models.WSMessage{Type: models.WSTypeError, Error: &models.APIError{
			Code:    models.ErrCodeNotFound,
			Message: "Unknown page " + sanitizeLogValue(req.Page),
		}}
	}
	if apiErr := validateRequest(&req.PageRequest); apiErr != nil {
		return models.WSMessage{Type: models.WSTypeError, Error: apiErr}
	}

	timeout := h.config.Server.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bundle, err := h.svc.Bundle(ctx, toDashboardRequest(req.PageRequest))
	if err != nil {
		status, apiErr := classifyError(err)
		if status == http.StatusInternalServerError {
			logging.Ctx(ctx).Error().Err(err).Str("page", req.Page).Msg("WebSocket page request failed")
		}
		return models.WSMessage{Type: models.WSTypeError, Error: apiErr}
	}
	return models.WSMessage{Type: models.WSTypeBundle, Bundle: bundle}
}
