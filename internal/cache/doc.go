// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

/*
Package cache memoizes KPI query results.

# Backends

Three Cacher implementations are selected with CACHE_TYPE:

  - ttl: map with per-entry expiry and a background sweep (default)
  - lfu: bounded, evicts the least frequently used entry
  - badger: Badger key-value store, in memory unless CACHE_DIR is set

There is no invalidation beyond expiry. The snapshot is read-only, so a
result only goes stale when the process is pointed at a new file, which
requires a restart anyway.

# Keys

FilterKey hashes a prefix and any JSON-encodable parts into a compact key.
String slices are canonicalized, so {"Rock","Jazz"} and {"Jazz","Rock"}
produce the same key:

	key := cache.FilterKey("core", f.Fingerprint(), dr.String())

# Memoization

Memoize checks the cache, then runs fn once per key no matter how many
requests miss concurrently (golang.org/x/sync/singleflight):

	m := cache.NewMemoizer(c, cache.CacheTypeLFU)
	kpis, hit, err := cache.Memoize(ctx, m, key, func(ctx context.Context) (*database.CoreMetrics, error) {
	    return loadCore(ctx)
	})

Errors are not cached. Hits and misses are exported as cache_hits_total and
cache_misses_total labelled by backend.
*/
package cache
