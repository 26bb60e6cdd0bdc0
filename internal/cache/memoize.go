// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/metrics"
)

// FilterKey builds a canonical cache key. String slices are trimmed,
// deduplicated and sorted first, so selection order never changes the key.
//
//	key := cache.FilterKey("group", f.Fingerprint(), dr.String(), "genre")
func FilterKey(prefix string, parts ...interface{}) string {
	canon := make([]interface{}, len(parts))
	for i, p := range parts {
		if values, ok := p.([]string); ok {
			canon[i] = canonicalStrings(values)
			continue
		}
		canon[i] = p
	}

	data, err := json.Marshal(canon)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", canon))
	}
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:16])
}

func canonicalStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// FlightTimeout bounds a shared computation once it no longer follows the
// context of the caller that started it.
const FlightTimeout = 2 * time.Minute

// Memoizer fronts a Cacher with miss deduplication.
type Memoizer struct {
	cache   Cacher
	backend string
	group   singleflight.Group
}

// NewMemoizer wraps c. backend labels the hit/miss metrics.
func NewMemoizer(c Cacher, backend CacheType) *Memoizer {
	if backend == "" {
		backend = CacheTypeTTL
	}
	return &Memoizer{cache: c, backend: string(backend)}
}

// Cache returns the underlying cache.
func (m *Memoizer) Cache() Cacher {
	return m.cache
}

// Stats returns the underlying cache statistics and refreshes the size gauge.
func (m *Memoizer) Stats() Stats {
	s := m.cache.GetStats()
	metrics.CacheSize.WithLabelValues(m.backend).Set(float64(s.TotalKeys))
	return s
}

// Close closes the underlying cache.
func (m *Memoizer) Close() error {
	return m.cache.Close()
}

// Memoize returns the cached value for key or computes it with fn. Concurrent
// misses for one key share a single fn call, which ignores the cancellation
// of any one waiter and is bounded by FlightTimeout instead. A waiter whose
// ctx ends returns ctx.Err() without stopping the flight. Errors are returned
// to every waiter but never cached. The bool reports a cache hit.
func Memoize[T any](ctx context.Context, m *Memoizer, key string, fn func(ctx context.Context) (T, error)) (T, bool, error) {
	if v, ok := lookup[T](m, key); ok {
		metrics.RecordCacheLookup(m.backend, true)
		logging.Ctx(ctx).Debug().Str("key", key).Msg("Cache hit")
		return v, true, nil
	}
	metrics.RecordCacheLookup(m.backend, false)
	logging.Ctx(ctx).Debug().Str("key", key).Msg("Cache miss")

	ch := m.group.DoChan(key, func() (interface{}, error) {
		// a previous flight may have filled the entry after our lookup
		if v, ok := lookup[T](m, key); ok {
			return v, nil
		}
		// the flight is shared, so it must outlive the caller that started it
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FlightTimeout)
		defer cancel()

		start := time.Now()
		v, err := fn(flightCtx)
		if err != nil {
			return v, err
		}
		m.cache.Set(key, v)
		logging.Ctx(ctx).Debug().
			Str("key", key).
			Dur("duration", time.Since(start)).
			Msg("Cache filled")
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, false, fmt.Errorf("memoized value for %s has type %T", key, res.Val)
		}
		return v, false, nil
	}
}

// lookup reads key and converts the value to T, decoding JSON stored by
// byte-oriented backends.
func lookup[T any](m *Memoizer, key string) (T, bool) {
	var zero T
	raw, ok := m.cache.Get(key)
	if !ok {
		return zero, false
	}
	if v, ok := raw.(T); ok {
		return v, true
	}
	data, ok := raw.([]byte)
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		m.cache.Delete(key)
		return zero, false
	}
	return v, true
}
