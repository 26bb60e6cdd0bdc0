// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package cache

import (
	"testing"
	"time"
)

func newTestBadger(t *testing.T, dir string) *BadgerCache {
	t.Helper()
	b, err := NewBadger(dir, time.Minute)
	if err != nil {
		t.Fatalf("NewBadger() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBadgerCache_SetGetJSON(t *testing.T) {
	t.Parallel()
	b := newTestBadger(t, "")

	b.Set("struct", map[string]int{"invoices": 412})
	b.Set("raw", []byte(`"as-is"`))

	got, ok := b.Get("struct")
	if !ok {
		t.Fatal("struct entry missing")
	}
	if s := string(got.([]byte)); s != `{"invoices":412}` {
		t.Errorf("stored encoding = %s", s)
	}

	got, ok = b.Get("raw")
	if !ok || string(got.([]byte)) != `"as-is"` {
		t.Errorf("raw entry = %v, %v", got, ok)
	}

	if _, ok := b.Get("missing"); ok {
		t.Error("missing key reported present")
	}

	s := b.GetStats()
	if s.Hits != 2 || s.Misses != 1 || s.TotalKeys != 2 {
		t.Errorf("GetStats() = %+v", s)
	}
}

func TestBadgerCache_TTL(t *testing.T) {
	t.Parallel()
	b := newTestBadger(t, "")

	// badger TTLs have one second resolution
	b.SetWithTTL("short", 1, time.Second)
	b.Set("long", 2)
	time.Sleep(2100 * time.Millisecond)

	if _, ok := b.Get("short"); ok {
		t.Error("short entry should have expired")
	}
	if _, ok := b.Get("long"); !ok {
		t.Error("long entry should remain")
	}
}

func TestBadgerCache_DeleteAndClear(t *testing.T) {
	t.Parallel()
	b := newTestBadger(t, "")

	b.Set("a", 1)
	b.Set("b", 2)
	b.Set("c", 3)
	b.Delete("a")
	if _, ok := b.Get("a"); ok {
		t.Error("deleted key still present")
	}

	b.Clear()
	s := b.GetStats()
	if s.TotalKeys != 0 || s.Evictions != 3 {
		t.Errorf("after clear = %+v", s)
	}
}

func TestBadgerCache_OnDisk(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	b, err := NewBadger(dir, time.Hour)
	if err != nil {
		t.Fatalf("NewBadger() error = %v", err)
	}
	b.Set("k", "persisted")
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := newTestBadger(t, dir)
	got, ok := reopened.Get("k")
	if !ok || string(got.([]byte)) != `"persisted"` {
		t.Errorf("reopened Get(k) = %v, %v", got, ok)
	}
}
