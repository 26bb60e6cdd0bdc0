// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/metrics"
	"github.com/tomtom215/chinookdash/internal/models"
	"github.com/tomtom215/chinookdash/internal/validation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// clientIDCounter orders clients for deterministic broadcasts.
var clientIDCounter atomic.Uint64

// Request is one client message. Type "ping" gets a pong; anything else
// is a page request.
type Request struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
	validation.PageRequest
}

// RequestHandler answers a page request.
type RequestHandler func(ctx context.Context, req Request) models.WSMessage

// Client is a middleman between the websocket connection and the hub.
// send is never closed; the hub signals removal through done.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan models.WSMessage
	handle RequestHandler

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client for conn. Requests are answered by handle.
func NewClient(hub *Hub, conn *websocket.Conn, handle RequestHandler) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		hub:    hub,
		conn:   conn,
		send:   make(chan models.WSMessage, 16),
		handle: handle,
		done:   make(chan struct{}),
	}
}

// close tells the pumps the hub dropped the client. Safe to call twice.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ID returns the client's connection-order identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// readPump reads requests and queues the replies. ctx is cancelled when
// the connection goes away so in-flight queries stop.
func (c *Client) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer func() {
		cancel()
		select {
		case c.hub.Unregister <- c:
		case <-c.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				metrics.WSErrors.WithLabelValues("read").Inc()
				logging.Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()

		var req Request
		var reply models.WSMessage
		if err := json.Unmarshal(data, &req); err != nil {
			metrics.WSErrors.WithLabelValues("decode").Inc()
			reply = models.WSMessage{Type: models.WSTypeError, Error: &models.APIError{
				Code:    models.ErrCodeValidation,
				Message: "Invalid JSON message",
			}}
		} else if req.Type == "ping" {
			reply = models.WSMessage{Type: models.WSTypePong, ID: req.ID}
		} else {
			reply = c.handle(ctx, req)
			reply.ID = req.ID
		}

		select {
		case c.send <- reply:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// writePump writes queued messages and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				logging.Warn().Err(err).Msg("failed to write websocket message")
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start registers the client and runs its pumps. ctx bounds every request
// the client makes; it is typically the HTTP request context stripped of
// its deadline.
func (c *Client) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.hub.Register <- c
	go c.writePump()
	go c.readPump(ctx, cancel)
}
