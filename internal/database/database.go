// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/chinookdash/internal/config"
	"github.com/tomtom215/chinookdash/internal/logging"
)

// memoryPath is the DuckDB path for an in-memory database.
const memoryPath = ":memory:"

// Querier is the subset of *sql.DB / *sql.Conn used by the query functions.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DB wraps the read-only DuckDB handle and the pinned staging connection.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// stagingMu guards staging, stager and catalogReady. Every query that
	// reads filtered_invoices or the catalog tables holds it.
	stagingMu    sync.Mutex
	staging      *sql.Conn
	stager       *Stager
	catalogReady bool
}

// New opens the snapshot at cfg.Path read-only. A ":memory:" path or demo
// mode opens an in-memory database seeded with the synthetic dataset instead.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	inMemory := cfg.DemoMode || cfg.Path == memoryPath

	var connStr string
	if inMemory {
		connStr = fmt.Sprintf("%s?threads=%d&max_memory=%s", memoryPath, numThreads, cfg.MaxMemory)
	} else {
		if _, err := os.Stat(cfg.Path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, cfg.Path)
			}
			return nil, fmt.Errorf("failed to stat database file %s: %w", cfg.Path, err)
		}
		connStr = fmt.Sprintf("%s?access_mode=read_only&threads=%d&max_memory=%s", cfg.Path, numThreads, cfg.MaxMemory)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn: conn,
		cfg:  cfg,
	}

	if err := db.configureConnectionPool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if inMemory {
		if err := db.SeedDemoData(ctx); err != nil {
			closeQuietly(conn)
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	if err := db.openStaging(ctx); err != nil {
		closeQuietly(conn)
		return nil, err
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("demo_mode", cfg.DemoMode).
		Int("threads", numThreads).
		Str("max_memory", cfg.MaxMemory).
		Msg("Database opened")

	return db, nil
}

func (db *DB) configureConnectionPool() error {
	db.conn.SetMaxOpenConns(runtime.NumCPU() + 1) // +1 for the pinned staging connection
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
	return nil
}

// openStaging pins a dedicated connection for temp tables. Must be called
// with stagingMu held or before db is shared.
func (db *DB) openStaging(ctx context.Context) error {
	staging, err := db.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to open staging connection: %w", err)
	}
	db.staging = staging
	db.stager = NewStager(staging)
	db.catalogReady = false
	return nil
}

// Conn returns the underlying SQL connection pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close releases the staging connection and the pool.
func (db *DB) Close() error {
	db.stagingMu.Lock()
	defer db.stagingMu.Unlock()

	if db.staging != nil {
		closeWithLog(db.staging, nil, "staging connection")
		db.staging = nil
	}
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// WithStaging runs fn on the staging connection after making sure the
// working set matches f. Calls are serialized; fn must not retain q.
func (db *DB) WithStaging(ctx context.Context, f Filter, fn func(ctx context.Context, q Querier) error) error {
	db.stagingMu.Lock()
	defer db.stagingMu.Unlock()

	if db.staging == nil {
		return fmt.Errorf("staging connection is closed")
	}

	err := db.prepareStaging(ctx, f)
	if errors.Is(err, sql.ErrConnDone) {
		logging.Warn().Msg("Staging connection lost, reopening")
		closeQuietly(db.staging)
		if err = db.openStaging(ctx); err != nil {
			return err
		}
		err = db.prepareStaging(ctx, f)
	}
	if err != nil {
		return err
	}

	return fn(ctx, db.staging)
}

func (db *DB) prepareStaging(ctx context.Context, f Filter) error {
	if !db.catalogReady {
		if err := EnsureCatalog(ctx, db.staging); err != nil {
			return err
		}
		db.catalogReady = true
	}
	if _, _, err := db.stager.Ensure(ctx, f); err != nil {
		return err
	}
	return nil
}

// StagingStats reports statistics for the working set of f.
func (db *DB) StagingStats(ctx context.Context, f Filter) (WorkingSetStats, error) {
	var stats WorkingSetStats
	err := db.WithStaging(ctx, f, func(ctx context.Context, _ Querier) error {
		var err error
		stats, err = db.stager.Stats(ctx)
		return err
	})
	return stats, err
}
