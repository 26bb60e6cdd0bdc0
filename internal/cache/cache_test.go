// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c := New(ttl)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Fatal("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists = c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, 50*time.Millisecond)

	c.Set("key1", "value1")
	if _, exists := c.Get("key1"); !exists {
		t.Fatal("Expected key1 to exist immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
	stats := c.GetStats()
	if stats.Evictions != 1 || stats.TotalKeys != 0 {
		t.Errorf("after expiry evictions = %d keys = %d, want 1 and 0", stats.Evictions, stats.TotalKeys)
	}
}

func TestCacheSetWithTTLOverridesDefault(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Hour)

	c.SetWithTTL("short", 1, 30*time.Millisecond)
	c.Set("long", 2)
	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("short-lived entry should have expired")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("default TTL entry should still exist")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key still present")
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("evictions after delete = %d, want 1 (missing keys do not count)", got)
	}

	c.Clear()
	for _, key := range []string{"b", "c"} {
		if _, ok := c.Get(key); ok {
			t.Errorf("Expected %s to be cleared", key)
		}
	}
	stats := c.GetStats()
	if stats.Evictions != 3 || stats.TotalKeys != 0 {
		t.Errorf("after clear evictions = %d keys = %d", stats.Evictions, stats.TotalKeys)
	}
}

func TestCacheCleanup(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Hour)

	c.SetWithTTL("expired", 1, time.Nanosecond)
	c.Set("live", 2)
	time.Sleep(time.Millisecond)

	before := c.GetStats().LastCleanup
	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 1 || stats.Evictions != 1 {
		t.Errorf("cleanup left keys = %d evictions = %d, want 1 and 1", stats.TotalKeys, stats.Evictions)
	}
	if !stats.LastCleanup.After(before) {
		t.Error("LastCleanup not advanced")
	}
}

func TestCacheHitRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		hits   int
		misses int
		want   float64
	}{
		{"no operations", 0, 0, 0},
		{"only misses", 0, 4, 0},
		{"only hits", 3, 0, 100},
		{"mixed", 3, 1, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestCache(t, time.Minute)
			c.Set("k", "v")
			for i := 0; i < tt.hits; i++ {
				c.Get("k")
			}
			for i := 0; i < tt.misses; i++ {
				c.Get("absent")
			}
			if got := c.HitRate(); got != tt.want {
				t.Errorf("HitRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%20)
				c.Set(key, g)
				c.Get(key)
				if i%50 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if got := c.GetStats().TotalKeys; got > 20 {
		t.Errorf("TotalKeys = %d, want <= 20", got)
	}
}

func TestCacheClose(t *testing.T) {
	t.Parallel()
	c := New(time.Minute)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestNewCacher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     CacheConfig
		want    string
		wantErr bool
	}{
		{"default is ttl", CacheConfig{}, "*cache.Cache", false},
		{"ttl", CacheConfig{Type: CacheTypeTTL, TTL: time.Minute}, "*cache.Cache", false},
		{"lfu", CacheConfig{Type: CacheTypeLFU, Capacity: 10}, "*cache.lfuCacheAdapter", false},
		{"badger", CacheConfig{Type: CacheTypeBadger, TTL: time.Minute}, "*cache.BadgerCache", false},
		{"unknown", CacheConfig{Type: "redis"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewCacher(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCacher() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer func() { _ = c.Close() }()
			if got := fmt.Sprintf("%T", c); got != tt.want {
				t.Errorf("NewCacher() type = %s, want %s", got, tt.want)
			}

			c.Set("k", "v")
			if _, ok := c.Get("k"); !ok {
				t.Error("value not retrievable")
			}
		})
	}
}
