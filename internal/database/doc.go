// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

// Package database provides read-only data access and KPI analytics over a
// DuckDB snapshot of the Chinook music-store dataset.
//
// # Overview
//
// The package opens the snapshot read-only and exposes two ways to query it:
// the shared connection pool for metadata on the raw tables, and a single
// pinned staging connection that owns the connection-scoped temp tables every
// KPI query runs against.
//
// # Architecture
//
// Core:
//   - database.go: lifecycle (open, pool tuning, staging connection, close)
//   - filter.go: Filter, DateRange, month alignment and fingerprints
//   - staging.go: the filtered_invoices working set (squirrel builder, Stager)
//   - catalog.go: genre/artist catalog tables and working-set annotation
//   - seed.go: deterministic synthetic Chinook dataset for demo mode and tests
//
// KPI queries (date range applied):
//   - kpi_core.go: headline KPIs and revenue totals
//   - kpi_group.go: per genre/artist/country KPIs, Top-N, catalog coverage, yearly breakdown
//   - kpi_retention.go: cohort heatmap, retention decay and customer-level retention KPIs
//   - timeseries.go: monthly summary
//   - geo.go: per-country metrics, yearly or aggregate
//   - invoices.go: invoice detail rows for export
//   - metadata.go: filter options and the static dataset summary
//
// # Working Set
//
// Genre, artist and country filters require joining every invoice line to the
// track, album, artist and genre tables. That join is done once per distinct
// selection and materialized as:
//
//	filtered_invoices(CustomerId, dt DATE, InvoiceId)
//
// The working set never applies a date restriction. KPI queries apply the
// month-aligned date range themselves, so moving the date slider reuses the
// same working set.
//
// # Concurrency
//
// DuckDB temp tables are visible only on the connection that created them.
// WithStaging serializes all staging work on the pinned connection:
//
//	err := db.WithStaging(ctx, filter, func(ctx context.Context, q database.Querier) error {
//		kpis, err = database.CoreKPIs(ctx, q, dr)
//		return err
//	})
//
// # Errors
//
// Sentinel errors (ErrDatabaseNotFound, ErrInvalidGroup, ErrInvalidMode,
// ErrNoData) are wrapped with context and should be compared with errors.Is.
package database
