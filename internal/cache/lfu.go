// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultLFUCapacity bounds an LFU cache created with a non-positive capacity.
const DefaultLFUCapacity = 10000

type lfuEntry struct {
	key       string
	value     interface{}
	freq      int
	expiresAt time.Time
	elem      *list.Element // position in buckets[freq]
}

// LFUCache is a thread-safe Least Frequently Used cache with O(1) Get, Set
// and eviction. Entries are bucketed by access frequency; within a bucket
// the least recently touched entry is evicted first.
type LFUCache struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	entries map[string]*lfuEntry
	buckets map[int]*list.List // front = most recent at that frequency
	minFreq int

	hits      int64
	misses    int64
	evictions int64
}

// NewLFUCache creates an LFU cache. Non-positive arguments use
// DefaultLFUCapacity and a one-hour TTL.
func NewLFUCache(capacity int, ttl time.Duration) *LFUCache {
	if capacity <= 0 {
		capacity = DefaultLFUCapacity
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LFUCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*lfuEntry, capacity),
		buckets:  make(map[int]*list.List),
	}
}

// Get returns the value for key and bumps its frequency.
func (c *LFUCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.remove(e)
		c.evictions++
		c.misses++
		return nil, false
	}

	c.touch(e)
	c.hits++
	return e.value, true
}

// Set stores value with the default TTL.
func (c *LFUCache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value, evicting the least frequently used entry when
// the cache is full. Overwriting a key counts as an access.
func (c *LFUCache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.touch(e)
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOne()
	}

	e := &lfuEntry{key: key, value: value, freq: 1, expiresAt: expiresAt}
	e.elem = c.bucket(1).PushFront(e)
	c.entries[key] = e
	c.minFreq = 1
}

// Delete removes key and reports whether it was present.
func (c *LFUCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok {
		c.remove(e)
	}
	return ok
}

// Len returns the number of entries, expired ones included.
func (c *LFUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes every entry. Counters are kept.
func (c *LFUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictions += int64(len(c.entries))
	c.entries = make(map[string]*lfuEntry, c.capacity)
	c.buckets = make(map[int]*list.List)
	c.minFreq = 0
}

// Stats returns hit and miss counts and the current size.
func (c *LFUCache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}

// Evictions returns how many entries were dropped for capacity or expiry.
func (c *LFUCache) Evictions() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictions
}

// HitRate returns the cache hit rate as a percentage.
func (c *LFUCache) HitRate() float64 {
	hits, misses, _ := c.Stats()
	return hitRate(Stats{Hits: hits, Misses: misses})
}

// Frequency returns the access count of key, or 0 if absent.
func (c *LFUCache) Frequency(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.freq
	}
	return 0
}

// CleanupExpired removes expired entries and returns how many were removed.
func (c *LFUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for _, e := range c.entries {
		if now.After(e.expiresAt) {
			c.remove(e)
			removed++
		}
	}
	c.evictions += int64(removed)
	return removed
}

// The methods below require c.mu.

func (c *LFUCache) bucket(freq int) *list.List {
	l, ok := c.buckets[freq]
	if !ok {
		l = list.New()
		c.buckets[freq] = l
	}
	return l
}

func (c *LFUCache) unlink(e *lfuEntry) {
	l := c.buckets[e.freq]
	l.Remove(e.elem)
	if l.Len() == 0 {
		delete(c.buckets, e.freq)
	}
}

func (c *LFUCache) touch(e *lfuEntry) {
	c.unlink(e)
	if e.freq == c.minFreq && c.buckets[e.freq] == nil {
		c.minFreq++
	}
	e.freq++
	e.elem = c.bucket(e.freq).PushFront(e)
}

func (c *LFUCache) remove(e *lfuEntry) {
	c.unlink(e)
	delete(c.entries, e.key)
}

// evictOne drops the least recently used entry of the lowest frequency.
// minFreq can go stale after Delete or expiry, so it is recomputed then.
func (c *LFUCache) evictOne() {
	l, ok := c.buckets[c.minFreq]
	if !ok {
		c.minFreq = 0
		for f := range c.buckets {
			if c.minFreq == 0 || f < c.minFreq {
				c.minFreq = f
			}
		}
		if l, ok = c.buckets[c.minFreq]; !ok {
			return
		}
	}
	victim := l.Back().Value.(*lfuEntry)
	c.remove(victim)
	c.evictions++
}
