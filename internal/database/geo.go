// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// GeoMode selects how GetGeoMetrics groups rows.
type GeoMode string

const (
	GeoYearly    GeoMode = "yearly"
	GeoAggregate GeoMode = "aggregate"
)

// GeoAllYears is the Year value of aggregate-mode rows.
const GeoAllYears = "All"

// ParseGeoMode validates a mode name.
func ParseGeoMode(s string) (GeoMode, error) {
	switch GeoMode(s) {
	case GeoYearly, GeoAggregate:
		return GeoMode(s), nil
	}
	return "", fmt.Errorf("%w: %q (want yearly or aggregate)", ErrInvalidMode, s)
}

// GeoRow is one country, per year or over the whole range.
type GeoRow struct {
	Year               string  `json:"year"`
	NumMonths          int     `json:"num_months"`
	Country            string  `json:"country"`
	NumCustomers       int64   `json:"num_customers"`
	NumPurchases       int64   `json:"num_purchases"`
	TracksSold         int64   `json:"tracks_sold"`
	Revenue            float64 `json:"revenue"`
	FirstTimeCustomers int64   `json:"first_time_customers"`
}

// Metric returns the value of a rankable metric.
func (r GeoRow) Metric(name string) (float64, bool) {
	switch name {
	case "revenue":
		return r.Revenue, true
	case "num_customers":
		return float64(r.NumCustomers), true
	case "num_purchases":
		return float64(r.NumPurchases), true
	case "tracks_sold":
		return float64(r.TracksSold), true
	case "first_time_customers":
		return float64(r.FirstTimeCustomers), true
	}
	return 0, false
}

const geoMetricsSQL = `
WITH filtered_data AS (
    SELECT fi.CustomerId, fi.dt, i.BillingCountry AS country, fi.InvoiceId
    FROM filtered_invoices fi
    JOIN Invoice i ON fi.InvoiceId = i.InvoiceId
    WHERE fi.dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
),
first_purchases AS (
    SELECT CustomerId, MIN(dt) AS first_date
    FROM filtered_data
    GROUP BY CustomerId
)
SELECT
    %[1]s AS year,
    fd.country,
    COUNT(DISTINCT fd.CustomerId) AS num_customers,
    COUNT(DISTINCT fd.InvoiceId) AS num_purchases,
    CAST(SUM(il.Quantity) AS BIGINT) AS tracks_sold,
    CAST(SUM(il.UnitPrice * il.Quantity) AS DOUBLE) AS revenue,
    COUNT(DISTINCT CASE WHEN fd.dt = fp.first_date THEN fd.CustomerId END) AS first_time_customers
FROM filtered_data fd
JOIN InvoiceLine il ON fd.InvoiceId = il.InvoiceId
JOIN first_purchases fp ON fd.CustomerId = fp.CustomerId
GROUP BY %[2]s
ORDER BY %[2]s
`

// GeoMetrics returns per-country KPIs for dr, broken out by year in
// yearly mode or as one "All" row per country in aggregate mode.
func GeoMetrics(ctx context.Context, q Querier, dr DateRange, mode GeoMode) ([]GeoRow, error) {
	var yearExpr, groupBy string
	switch mode {
	case GeoYearly:
		yearExpr, groupBy = "STRFTIME(fd.dt, '%Y')", "1, fd.country"
	case GeoAggregate:
		yearExpr, groupBy = "'"+GeoAllYears+"'", "fd.country"
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	dr, err := resolveRange(ctx, q, dr)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := q.QueryContext(ctx, fmt.Sprintf(geoMetricsSQL, yearExpr, groupBy), rangeArgs(dr)...)
	if err != nil {
		observe(ctx, "geo_metrics", start, err)
		return nil, fmt.Errorf("failed to query geo metrics: %w", err)
	}
	defer closeQuietly(rows)

	months := monthsPerYear(dr, mode)

	var out []GeoRow
	for rows.Next() {
		var r GeoRow
		if err := rows.Scan(&r.Year, &r.Country, &r.NumCustomers, &r.NumPurchases, &r.TracksSold, &r.Revenue, &r.FirstTimeCustomers); err != nil {
			return nil, fmt.Errorf("failed to scan geo row: %w", err)
		}
		r.NumMonths = months[r.Year]
		out = append(out, r)
	}
	err = rows.Err()
	observe(ctx, "geo_metrics", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating geo metrics: %w", err)
	}
	return out, nil
}

// monthsPerYear returns how many months of dr fall in each year label.
func monthsPerYear(dr DateRange, mode GeoMode) map[string]int {
	if mode == GeoAggregate {
		return map[string]int{GeoAllYears: dr.Months()}
	}

	sy, ey := dr.Start.Year(), dr.End.Year()
	sm, em := int(dr.Start.Month()), int(dr.End.Month())

	out := make(map[string]int, ey-sy+1)
	for y := sy; y <= ey; y++ {
		var n int
		switch {
		case y == sy && y == ey:
			n = em - sm + 1
		case y == sy:
			n = 13 - sm
		case y == ey:
			n = em
		default:
			n = 12
		}
		out[strconv.Itoa(y)] = n
	}
	return out
}
