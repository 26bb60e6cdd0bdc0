// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package cache

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/chinookdash/internal/logging"
)

// BadgerCache stores JSON-encoded values in Badger with per-entry TTL.
// Get returns the raw encoding as []byte.
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewBadger opens a Badger cache. An empty dir keeps the data in memory.
func NewBadger(dir string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{}).
		WithNumVersionsToKeep(1)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BadgerCache{db: db, ttl: ttl}, nil
}

// Get returns the stored JSON for key.
func (b *BadgerCache) Get(key string) (interface{}, bool) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logging.Warn().Err(err).Str("key", key).Msg("Badger cache read failed")
		}
		b.misses.Add(1)
		return nil, false
	}
	b.hits.Add(1)
	return data, true
}

// Set stores value with the default TTL.
func (b *BadgerCache) Set(key string, value interface{}) {
	b.SetWithTTL(key, value, b.ttl)
}

// SetWithTTL encodes value as JSON and stores it. []byte values are stored
// as-is. Encoding or write failures are logged and the entry is skipped.
func (b *BadgerCache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	data, ok := value.([]byte)
	if !ok {
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("Badger cache encode failed")
			return
		}
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(ttl))
	})
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Badger cache write failed")
	}
}

// Delete removes key.
func (b *BadgerCache) Delete(key string) {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Badger cache delete failed")
		return
	}
	b.evictions.Add(1)
}

// Clear drops every entry.
func (b *BadgerCache) Clear() {
	n := b.keyCount()
	if err := b.db.DropAll(); err != nil {
		logging.Warn().Err(err).Msg("Badger cache clear failed")
		return
	}
	b.evictions.Add(n)
}

// GetStats returns counters and the number of live keys.
func (b *BadgerCache) GetStats() Stats {
	return Stats{
		Hits:      b.hits.Load(),
		Misses:    b.misses.Load(),
		Evictions: b.evictions.Load(),
		TotalKeys: b.keyCount(),
	}
}

// HitRate returns the cache hit rate as a percentage.
func (b *BadgerCache) HitRate() float64 {
	return hitRate(b.GetStats())
}

// Close closes the Badger database.
func (b *BadgerCache) Close() error {
	return b.db.Close()
}

func (b *BadgerCache) keyCount() int64 {
	var n int64
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if !it.Item().IsDeletedOrExpired() {
				n++
			}
		}
		return nil
	})
	if err != nil {
		return 0
	}
	return n
}

// badgerLogger routes Badger's internal logging to zerolog. Info and debug
// chatter is demoted to trace.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Trace().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Trace().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
