// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/metrics"
)

// WorkingSetTable is the temp table holding the staged invoices.
const WorkingSetTable = "filtered_invoices"

// BuildStagingQuery returns the SELECT that materializes the working set for
// the genre, artist and country selections of f. Dates are ignored.
func BuildStagingQuery(f Filter) (string, []interface{}, error) {
	n := f.Normalized()

	qb := squirrel.
		Select("i.CustomerId", "CAST(i.InvoiceDate AS DATE) AS dt", "i.InvoiceId").
		Distinct().
		From("Invoice i").
		Join("InvoiceLine il ON i.InvoiceId = il.InvoiceId").
		Join("Track t ON il.TrackId = t.TrackId").
		Join("Album al ON t.AlbumId = al.AlbumId").
		Join("Artist ar ON al.ArtistId = ar.ArtistId").
		Join("Genre g ON t.GenreId = g.GenreId").
		OrderBy("i.CustomerId", "dt").
		PlaceholderFormat(squirrel.Question)

	if len(n.Countries) > 0 {
		qb = qb.Where(squirrel.Eq{"i.BillingCountry": n.Countries})
	}
	if len(n.Genres) > 0 {
		qb = qb.Where(squirrel.Eq{"g.Name": n.Genres})
	}
	if len(n.Artists) > 0 {
		qb = qb.Where(squirrel.Eq{"ar.Name": n.Artists})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build staging query: %w", err)
	}
	return query, args, nil
}

// WorkingSetStats describes the current working set.
type WorkingSetStats struct {
	Fingerprint string     `json:"fingerprint"`
	Rows        int64      `json:"rows"`
	Customers   int64      `json:"customers"`
	Dates       int64      `json:"dates"`
	MinDate     *time.Time `json:"min_date,omitempty"`
	MaxDate     *time.Time `json:"max_date,omitempty"`
}

// Stager owns the working set on one connection. It is not safe for
// concurrent use; DB.WithStaging serializes callers.
type Stager struct {
	q           Querier
	fingerprint string
	rows        int64
}

// NewStager creates a Stager bound to q, which must be a single connection.
func NewStager(q Querier) *Stager {
	return &Stager{q: q}
}

// Fingerprint returns the fingerprint of the current working set, or "" if
// none has been built.
func (s *Stager) Fingerprint() string {
	return s.fingerprint
}

// Ensure rebuilds filtered_invoices when f selects a different working set
// than the one currently staged.
func (s *Stager) Ensure(ctx context.Context, f Filter) (fingerprint string, rebuilt bool, err error) {
	fp := f.Fingerprint()
	if fp == s.fingerprint {
		metrics.RecordStagingBuild(false, 0, s.rows)
		return fp, false, nil
	}

	query, args, err := BuildStagingQuery(f)
	if err != nil {
		return "", false, err
	}

	start := time.Now()
	// a failed rebuild may leave a partial or stale table behind
	s.fingerprint = ""
	if _, err := s.q.ExecContext(ctx, "CREATE OR REPLACE TEMP TABLE "+WorkingSetTable+" AS "+query, args...); err != nil {
		metrics.RecordDBQuery("staging", "", time.Since(start), err)
		return "", false, fmt.Errorf("failed to build working set: %w", err)
	}

	var rows int64
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+WorkingSetTable).Scan(&rows); err != nil {
		return "", false, fmt.Errorf("failed to count working set: %w", err)
	}

	elapsed := time.Since(start)
	s.fingerprint = fp
	s.rows = rows
	metrics.RecordStagingBuild(true, elapsed, rows)

	logging.Ctx(ctx).Info().
		Str("fingerprint", fp).
		Int64("rows", rows).
		Dur("duration", elapsed).
		Msg("Working set rebuilt")

	return fp, true, nil
}

// Stats reports row, customer and date counts of the current working set.
func (s *Stager) Stats(ctx context.Context) (WorkingSetStats, error) {
	stats := WorkingSetStats{Fingerprint: s.fingerprint}
	if s.fingerprint == "" {
		return stats, nil
	}

	var minDate, maxDate sql.NullTime
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT CustomerId), COUNT(DISTINCT dt), MIN(dt), MAX(dt)
		FROM `+WorkingSetTable).Scan(&stats.Rows, &stats.Customers, &stats.Dates, &minDate, &maxDate)
	if err != nil {
		return stats, fmt.Errorf("failed to read working set stats: %w", err)
	}
	if minDate.Valid {
		stats.MinDate = &minDate.Time
	}
	if maxDate.Valid {
		stats.MaxDate = &maxDate.Time
	}
	return stats, nil
}

// workingSetBounds returns the month-aligned span of the working set.
// ErrNoData is returned when it is empty.
func workingSetBounds(ctx context.Context, q Querier) (DateRange, error) {
	var minDate, maxDate sql.NullTime
	if err := q.QueryRowContext(ctx, "SELECT MIN(dt), MAX(dt) FROM "+WorkingSetTable).Scan(&minDate, &maxDate); err != nil {
		return DateRange{}, fmt.Errorf("failed to read working set bounds: %w", err)
	}
	if !minDate.Valid || !maxDate.Valid {
		return DateRange{}, ErrNoData
	}
	return MonthAligned(minDate.Time, maxDate.Time), nil
}

// resolveRange substitutes the working-set bounds for a zero range.
func resolveRange(ctx context.Context, q Querier, dr DateRange) (DateRange, error) {
	if !dr.IsZero() {
		return dr, nil
	}
	return workingSetBounds(ctx, q)
}
