// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package github

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/metrics"
)

// Unavailable is shown when no commit date has ever been fetched.
const Unavailable = "Unavailable"

// DateLayout is the footer format, e.g. "Jul 20, 2025".
const DateLayout = "Jan 02, 2006"

// CommitFetcher is satisfied by *Client.
type CommitFetcher interface {
	LatestCommit(ctx context.Context) (time.Time, error)
}

type cacheFile struct {
	LastUpdated string    `json:"last_updated"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// CommitCache keeps the last commit date in memory and in a JSON file so
// restarts do not hit the API.
type CommitCache struct {
	path    string
	fetcher CommitFetcher

	mu     sync.RWMutex
	entry  cacheFile
	loaded bool
}

// NewCommitCache creates a cache backed by path.
func NewCommitCache(path string, fetcher CommitFetcher) *CommitCache {
	return &CommitCache{path: path, fetcher: fetcher}
}

// LastUpdated returns the cached date, loading the file on first use.
func (c *CommitCache) LastUpdated() string {
	c.mu.RLock()
	loaded, v := c.loaded, c.entry.LastUpdated
	c.mu.RUnlock()

	if !loaded {
		if err := c.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Warn().Err(err).Str("path", c.path).Msg("Error reading commit cache")
		}
		c.mu.RLock()
		v = c.entry.LastUpdated
		c.mu.RUnlock()
	}
	if v == "" {
		return Unavailable
	}
	return v
}

// FetchedAt returns when the cached value was fetched, zero if never.
func (c *CommitCache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry.FetchedAt
}

// Load reads the cache file into memory.
func (c *CommitCache) Load() error {
	data, err := os.ReadFile(c.path)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	if err != nil {
		return err
	}

	var entry cacheFile
	if err := json.Unmarshal(data, &entry); err != nil {
		return fmt.Errorf("decode commit cache %s: %w", c.path, err)
	}
	c.entry = entry
	return nil
}

// Stale reports whether the cached value is missing or older than maxAge.
func (c *CommitCache) Stale(maxAge time.Duration) bool {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if !loaded {
		_ = c.Load()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry.LastUpdated == "" || time.Since(c.entry.FetchedAt) > maxAge
}

// Refresh fetches the latest commit date and persists it. On failure the
// previous value is kept and the error is returned.
func (c *CommitCache) Refresh(ctx context.Context) error {
	t, err := c.fetcher.LatestCommit(ctx)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			metrics.RecordCommitFetch("skipped")
		} else {
			metrics.RecordCommitFetch("failure")
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("[GITHUB] API fetch failed")
		return err
	}

	entry := cacheFile{
		LastUpdated: t.UTC().Format(DateLayout),
		FetchedAt:   time.Now().UTC(),
	}
	c.mu.Lock()
	c.entry = entry
	c.loaded = true
	c.mu.Unlock()

	metrics.RecordCommitFetch("success")
	logging.Ctx(ctx).Info().Str("last_updated", entry.LastUpdated).Msg("[GITHUB] Commit date refreshed")

	if err := writeFileAtomic(c.path, entry); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("path", c.path).Msg("Error writing commit cache")
	}
	return nil
}

func writeFileAtomic(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".commit-cache-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
