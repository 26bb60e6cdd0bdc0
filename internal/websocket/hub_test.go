// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package websocket

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/models"
)

func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func setupHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.Serve(ctx) }()
	t.Cleanup(cancel)
	return hub, cancel
}

func createTestClient(hub *Hub) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		send: make(chan models.WSMessage, 4),
		done: make(chan struct{}),
	}
}

func isClosed(c *Client) bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.GetClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.GetClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	t.Parallel()
	hub, _ := setupHub(t)

	a, b := createTestClient(hub), createTestClient(hub)
	hub.Register <- a
	hub.Register <- b
	waitForClients(t, hub, 2)

	hub.Unregister <- a
	waitForClients(t, hub, 1)

	if !isClosed(a) {
		t.Error("unregistered client should be closed")
	}

	// a second unregister is a no-op
	hub.Unregister <- a
	waitForClients(t, hub, 1)
}

func TestHub_BroadcastLastUpdated(t *testing.T) {
	t.Parallel()
	hub, _ := setupHub(t)

	clients := []*Client{createTestClient(hub), createTestClient(hub), createTestClient(hub)}
	for _, c := range clients {
		hub.Register <- c
	}
	waitForClients(t, hub, len(clients))

	hub.BroadcastLastUpdated("Oct 01, 2026")

	for i, c := range clients {
		select {
		case msg := <-c.send:
			if msg.Type != models.WSTypeLastUpdated || msg.LastUpdated != "Oct 01, 2026" {
				t.Errorf("client %d got %+v", i, msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %d did not receive broadcast", i)
		}
	}
}

func TestHub_DropsSlowClients(t *testing.T) {
	t.Parallel()
	hub, _ := setupHub(t)

	slow := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan models.WSMessage), done: make(chan struct{})}
	fast := createTestClient(hub)
	hub.Register <- slow
	hub.Register <- fast
	waitForClients(t, hub, 2)

	hub.BroadcastLastUpdated("x")
	waitForClients(t, hub, 1)
	if !isClosed(slow) {
		t.Error("slow client should be closed")
	}

	if msg := <-fast.send; msg.LastUpdated != "x" {
		t.Errorf("fast client got %+v", msg)
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Serve(ctx) }()

	c := createTestClient(hub)
	hub.Register <- c
	waitForClients(t, hub, 1)

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if hub.GetClientCount() != 0 {
		t.Error("clients remain after shutdown")
	}
	if !isClosed(c) {
		t.Error("client should be closed on shutdown")
	}
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	t.Parallel()
	hub := NewHub() // not running

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.BroadcastLastUpdated("x")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full queue")
	}
}

func TestGetShutdownReason(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancel2 := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel2()
	<-expired.Done()

	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled = %s", got)
	}
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("expired = %s", got)
	}
}
