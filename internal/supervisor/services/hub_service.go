// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package services

import (
	"context"
)

// HubRunner is satisfied by *websocket.Hub.
type HubRunner interface {
	Serve(ctx context.Context) error
}

// WebSocketHubService supervises the WebSocket hub's event loop.
type WebSocketHubService struct {
	hub  HubRunner
	name string
}

// NewWebSocketHubService wraps hub.
func NewWebSocketHubService(hub HubRunner) *WebSocketHubService {
	return &WebSocketHubService{hub: hub, name: "websocket-hub"}
}

// Serve implements suture.Service.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	return w.hub.Serve(ctx)
}

// String implements fmt.Stringer for suture logging.
func (w *WebSocketHubService) String() string {
	return w.name
}
