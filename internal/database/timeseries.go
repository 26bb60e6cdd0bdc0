// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MonthlyPoint is one month of the time-series summary. Month is "YYYY-MM".
type MonthlyPoint struct {
	Month              string  `json:"month"`
	NumPurchases       int64   `json:"num_purchases"`
	NumCustomers       int64   `json:"num_customers"`
	TracksSold         int64   `json:"tracks_sold"`
	Revenue            float64 `json:"revenue"`
	FirstTimeCustomers int64   `json:"first_time_customers"`
}

// Metric returns the value of a named metric, or false for an unknown name.
func (p MonthlyPoint) Metric(name string) (float64, bool) {
	switch name {
	case "num_purchases":
		return float64(p.NumPurchases), true
	case "num_customers":
		return float64(p.NumCustomers), true
	case "tracks_sold":
		return float64(p.TracksSold), true
	case "revenue":
		return p.Revenue, true
	case "first_time_customers":
		return float64(p.FirstTimeCustomers), true
	}
	return 0, false
}

// A customer is first-time in the month of their first working-set
// invoice; that month is taken over the whole working set, not just dr.
const monthlySummarySQL = `
WITH first_invoices AS (
    SELECT CustomerId, MIN(dt) AS first_invoice_date
    FROM filtered_invoices
    GROUP BY CustomerId
),
invoice_expanded AS (
    SELECT
        fi.CustomerId,
        fi.InvoiceId,
        STRFTIME(fi.dt, '%Y-%m') AS month,
        il.Quantity,
        il.UnitPrice,
        STRFTIME(fi.dt, '%Y-%m') = STRFTIME(f.first_invoice_date, '%Y-%m') AS first_time
    FROM filtered_invoices fi
    JOIN Invoice i ON fi.InvoiceId = i.InvoiceId
    JOIN InvoiceLine il ON i.InvoiceId = il.InvoiceId
    JOIN first_invoices f ON fi.CustomerId = f.CustomerId
    WHERE fi.dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
)
SELECT
    month,
    COUNT(DISTINCT InvoiceId) AS num_purchases,
    COUNT(DISTINCT CustomerId) AS num_customers,
    CAST(SUM(Quantity) AS BIGINT) AS tracks_sold,
    CAST(SUM(UnitPrice * Quantity) AS DOUBLE) AS revenue,
    COUNT(DISTINCT CASE WHEN first_time THEN CustomerId END) AS first_time_customers
FROM invoice_expanded
GROUP BY month
ORDER BY month
`

// MonthlySummary returns per-month KPIs for dr, ordered by month. Months
// without invoices are omitted.
func MonthlySummary(ctx context.Context, q Querier, dr DateRange) ([]MonthlyPoint, error) {
	dr, err := resolveRange(ctx, q, dr)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := q.QueryContext(ctx, monthlySummarySQL, rangeArgs(dr)...)
	if err != nil {
		observe(ctx, "monthly_summary", start, err)
		return nil, fmt.Errorf("failed to query monthly summary: %w", err)
	}
	defer closeQuietly(rows)

	var out []MonthlyPoint
	for rows.Next() {
		var p MonthlyPoint
		if err := rows.Scan(&p.Month, &p.NumPurchases, &p.NumCustomers, &p.TracksSold, &p.Revenue, &p.FirstTimeCustomers); err != nil {
			return nil, fmt.Errorf("failed to scan monthly point: %w", err)
		}
		out = append(out, p)
	}
	err = rows.Err()
	observe(ctx, "monthly_summary", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating monthly summary: %w", err)
	}
	return out, nil
}
