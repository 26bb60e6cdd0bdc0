// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package services

import (
	"context"
	"time"

	"github.com/tomtom215/chinookdash/internal/logging"
)

// CommitStore is satisfied by *github.CommitCache.
type CommitStore interface {
	LastUpdated() string
	Stale(maxAge time.Duration) bool
	Refresh(ctx context.Context) error
}

// LastUpdatedBroadcaster is satisfied by *websocket.Hub.
type LastUpdatedBroadcaster interface {
	BroadcastLastUpdated(date string)
}

// CommitRefresher keeps the footer's last-updated date current. It refreshes
// on start when the cached value is stale, then every interval, and pushes
// changed dates to connected dashboards.
type CommitRefresher struct {
	store    CommitStore
	notify   LastUpdatedBroadcaster
	interval time.Duration
	timeout  time.Duration
	name     string
}

// NewCommitRefresher creates a refresher. notify may be nil.
func NewCommitRefresher(store CommitStore, notify LastUpdatedBroadcaster, interval, timeout time.Duration) *CommitRefresher {
	if interval <= 0 {
		interval = time.Hour
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CommitRefresher{
		store:    store,
		notify:   notify,
		interval: interval,
		timeout:  timeout,
		name:     "commit-refresher",
	}
}

// Serve implements suture.Service. Fetch failures are logged by the store
// and never stop the service.
func (r *CommitRefresher) Serve(ctx context.Context) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	current := r.store.LastUpdated()

	if r.store.Stale(r.interval) {
		current = r.refresh(ctx, current)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current = r.refresh(ctx, current)
		}
	}
}

func (r *CommitRefresher) refresh(ctx context.Context, previous string) string {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.store.Refresh(fetchCtx); err != nil {
		return previous
	}
	latest := r.store.LastUpdated()
	if latest != previous && r.notify != nil {
		logging.Ctx(ctx).Debug().Str("last_updated", latest).Msg("Broadcasting new commit date")
		r.notify.BroadcastLastUpdated(latest)
	}
	return latest
}

// String implements fmt.Stringer for suture logging.
func (r *CommitRefresher) String() string {
	return r.name
}
