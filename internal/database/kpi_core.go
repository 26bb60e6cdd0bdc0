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

// CoreMetrics holds the headline KPIs for a date range of the working set.
type CoreMetrics struct {
	DateRange          string  `json:"date_range"`
	NumPurchases       int64   `json:"num_purchases"`
	NumCustomers       int64   `json:"num_customers"`
	FirstTimeCustomers int64   `json:"first_time_customers"`
	TracksSold         int64   `json:"tracks_sold"`
	Revenue            float64 `json:"revenue"`
	NumGenres          int64   `json:"num_genres"`
	NumArtists         int64   `json:"num_artists"`
	NumCountries       int64   `json:"num_countries"`
	NumMonths          int     `json:"num_months"`

	// Derived ratios, nil when the denominator is zero.
	NewCustomerShare   *float64 `json:"new_customer_share"`
	RevenuePerMonth    *float64 `json:"revenue_per_month"`
	RevenuePerCustomer *float64 `json:"revenue_per_customer"`
	RevenuePerPurchase *float64 `json:"revenue_per_purchase"`
}

// coreKPIsSQL counts first-time customers against each customer's first
// purchase over the whole Invoice table, not only the working set.
const coreKPIsSQL = `
WITH
  date_filtered AS (
    SELECT *
    FROM filtered_invoices e
    WHERE e.dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
  ),
  customer_lifespan AS (
    SELECT CustomerId, MIN(InvoiceDate) AS first_purchase
    FROM Invoice
    GROUP BY CustomerId
  )
SELECT
  COUNT(DISTINCT df.InvoiceId) AS num_purchases,
  COUNT(DISTINCT df.CustomerId) AS num_customers,
  COUNT(DISTINCT CASE
    WHEN CAST(cl.first_purchase AS DATE) BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
    THEN df.CustomerId END) AS num_first_timers,
  CAST(COALESCE(SUM(il.Quantity), 0) AS BIGINT) AS tracks_sold,
  CAST(ROUND(COALESCE(SUM(il.Quantity * il.UnitPrice), 0), 2) AS DOUBLE) AS total_revenue,
  COUNT(DISTINCT t.GenreId) AS num_genres,
  COUNT(DISTINCT ar.ArtistId) AS num_artists,
  COUNT(DISTINCT i.BillingCountry) AS num_countries
FROM date_filtered df
LEFT JOIN customer_lifespan cl ON df.CustomerId = cl.CustomerId
LEFT JOIN InvoiceLine il ON df.InvoiceId = il.InvoiceId
LEFT JOIN Track t ON il.TrackId = t.TrackId
LEFT JOIN Album al ON t.AlbumId = al.AlbumId
LEFT JOIN Artist ar ON al.ArtistId = ar.ArtistId
LEFT JOIN Invoice i ON df.InvoiceId = i.InvoiceId
`

// CoreKPIs computes the headline KPIs for dr. It returns nil, nil when the
// working set has no invoices in the range.
func CoreKPIs(ctx context.Context, q Querier, dr DateRange) (*CoreMetrics, error) {
	dr, err := resolveRange(ctx, q, dr)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()

	var inRange int64
	err = q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM filtered_invoices WHERE dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)",
		rangeArgs(dr)...).Scan(&inRange)
	if err != nil {
		observe(ctx, "core_kpis", start, err)
		return nil, fmt.Errorf("failed to count invoices in range: %w", err)
	}
	if inRange == 0 {
		observe(ctx, "core_kpis", start, nil)
		return nil, nil
	}

	m := &CoreMetrics{
		DateRange: dr.Label(),
		NumMonths: dr.Months(),
	}
	args := append(rangeArgs(dr), rangeArgs(dr)...)
	err = q.QueryRowContext(ctx, coreKPIsSQL, args...).Scan(
		&m.NumPurchases,
		&m.NumCustomers,
		&m.FirstTimeCustomers,
		&m.TracksSold,
		&m.Revenue,
		&m.NumGenres,
		&m.NumArtists,
		&m.NumCountries,
	)
	observe(ctx, "core_kpis", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query core KPIs: %w", err)
	}

	m.NewCustomerShare = ratio(float64(m.FirstTimeCustomers), float64(m.NumCustomers))
	m.RevenuePerMonth = ratio(m.Revenue, float64(m.NumMonths))
	m.RevenuePerCustomer = ratio(m.Revenue, float64(m.NumCustomers))
	m.RevenuePerPurchase = ratio(m.Revenue, float64(m.NumPurchases))
	return m, nil
}

// RevenueBetween returns the unrounded revenue of working-set invoices in dr.
func RevenueBetween(ctx context.Context, q Querier, dr DateRange) (float64, error) {
	dr, err := resolveRange(ctx, q, dr)
	if errors.Is(err, ErrNoData) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	start := time.Now()
	var revenue float64
	err = q.QueryRowContext(ctx, `
		SELECT CAST(COALESCE(SUM(il.Quantity * il.UnitPrice), 0) AS DOUBLE)
		FROM filtered_invoices fi
		JOIN InvoiceLine il ON il.InvoiceId = fi.InvoiceId
		WHERE fi.dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)`,
		rangeArgs(dr)...).Scan(&revenue)
	observe(ctx, "revenue_between", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to query revenue: %w", err)
	}
	return revenue, nil
}
