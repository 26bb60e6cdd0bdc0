// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/tomtom215/chinookdash/internal/metrics"
)

type pageKey struct{}

// ContextWithPage tags queries issued with ctx with a dashboard page name
// for the query duration metrics.
func ContextWithPage(ctx context.Context, page string) context.Context {
	return context.WithValue(ctx, pageKey{}, page)
}

func pageFromContext(ctx context.Context) string {
	if page, ok := ctx.Value(pageKey{}).(string); ok {
		return page
	}
	return "none"
}

// observe records the duration and outcome of a named KPI query.
func observe(ctx context.Context, query string, start time.Time, err error) {
	metrics.RecordDBQuery(query, pageFromContext(ctx), time.Since(start), err)
}

// rangeArgs returns the bounds of dr as query arguments.
func rangeArgs(dr DateRange) []interface{} {
	return []interface{}{dr.StartArg(), dr.EndArg()}
}

func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullFloat64Ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullTimePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

// ratio returns num/den, or nil when den is zero.
func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}
