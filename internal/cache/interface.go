// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package cache

import (
	"fmt"
	"time"
)

// Cacher is implemented by every memoization backend.
//
//	c, err := cache.NewCacher(cache.CacheConfig{Type: cache.CacheTypeLFU, TTL: time.Hour})
//	c.Set("core:ab12", metrics)
//	if v, ok := c.Get("core:ab12"); ok {
//	    // use v
//	}
//
// Values set on the badger backend come back from Get as encoded JSON
// ([]byte); Memoize decodes them into the requested type.
type Cacher interface {
	// Get returns the value and true if found and not expired.
	Get(key string) (interface{}, bool)

	// Set stores a value with the default TTL.
	Set(key string, value interface{})

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(key string, value interface{}, ttl time.Duration)

	Delete(key string)
	Clear()

	// GetStats returns cache statistics.
	GetStats() Stats

	// HitRate returns the cache hit rate as a percentage.
	HitRate() float64

	// Close releases background resources. The cache must not be used afterwards.
	Close() error
}

// CacheType names a backend.
type CacheType string

const (
	// CacheTypeTTL is a map with per-entry expiry and no size bound (default).
	CacheTypeTTL CacheType = "ttl"

	// CacheTypeLFU bounds the entry count and evicts the least frequently
	// used entry. Dashboard traffic is dominated by the default filter, so
	// frequency beats recency here.
	CacheTypeLFU CacheType = "lfu"

	// CacheTypeBadger stores JSON-encoded values in Badger, in memory unless
	// a directory is configured.
	CacheTypeBadger CacheType = "badger"
)

// CacheConfig holds configuration for creating a cache.
type CacheConfig struct {
	Type CacheType

	// TTL is the default time-to-live for entries.
	TTL time.Duration

	// Capacity bounds the LFU backend. Default: 10000.
	Capacity int

	// Dir persists the badger backend on disk. Empty keeps it in memory.
	Dir string
}

// NewCacher creates the backend selected by cfg.
func NewCacher(cfg CacheConfig) (Cacher, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}

	switch cfg.Type {
	case CacheTypeLFU:
		return NewLFU(cfg.Capacity, cfg.TTL), nil
	case CacheTypeBadger:
		return NewBadger(cfg.Dir, cfg.TTL)
	case CacheTypeTTL, "":
		return New(cfg.TTL), nil
	}
	return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
}

// NewTTL creates a new TTL-based cache (same as New).
func NewTTL(ttl time.Duration) Cacher {
	return New(ttl)
}

// NewLFU creates a new LFU cache.
func NewLFU(capacity int, ttl time.Duration) Cacher {
	return &lfuCacheAdapter{LFUCache: NewLFUCache(capacity, ttl)}
}

// lfuCacheAdapter adapts LFUCache to Cacher.
type lfuCacheAdapter struct {
	*LFUCache
}

func (a *lfuCacheAdapter) Delete(key string) {
	a.LFUCache.Delete(key)
}

func (a *lfuCacheAdapter) GetStats() Stats {
	hits, misses, size := a.Stats()
	return Stats{
		Hits:      hits,
		Misses:    misses,
		Evictions: a.Evictions(),
		TotalKeys: int64(size),
	}
}

func (a *lfuCacheAdapter) Close() error {
	a.Clear()
	return nil
}

// Verify interface implementations at compile time
var (
	_ Cacher = (*Cache)(nil)
	_ Cacher = (*lfuCacheAdapter)(nil)
	_ Cacher = (*BadgerCache)(nil)
)
