// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"context"
	"fmt"
	"time"
)

// FilterOptions lists the selectable filter values and the dataset span.
type FilterOptions struct {
	Genres    []string `json:"genres"`
	Countries []string `json:"countries"`
	Artists   []string `json:"artists"`
	MinDate   string   `json:"min_date"`
	MaxDate   string   `json:"max_date"`
}

// FullRange returns the month-aligned dataset span.
func (o *FilterOptions) FullRange() (DateRange, error) {
	return NewDateRange(o.MinDate, o.MaxDate)
}

// FilterMetadata reads filter options from the raw tables.
func FilterMetadata(ctx context.Context, q Querier) (*FilterOptions, error) {
	start := time.Now()
	opts := &FilterOptions{}

	lists := []struct {
		name  string
		query string
		dst   *[]string
	}{
		{"genres", "SELECT DISTINCT Name FROM Genre WHERE Name IS NOT NULL ORDER BY Name", &opts.Genres},
		{"countries", "SELECT DISTINCT BillingCountry FROM Invoice WHERE BillingCountry IS NOT NULL ORDER BY BillingCountry", &opts.Countries},
		{"artists", "SELECT DISTINCT Name FROM Artist WHERE Name IS NOT NULL ORDER BY Name", &opts.Artists},
	}
	for _, l := range lists {
		values, err := queryStrings(ctx, q, l.query)
		if err != nil {
			observe(ctx, "filter_metadata", start, err)
			return nil, fmt.Errorf("failed to read %s: %w", l.name, err)
		}
		*l.dst = values
	}

	var minDate, maxDate time.Time
	err := q.QueryRowContext(ctx, "SELECT MIN(InvoiceDate), MAX(InvoiceDate) FROM Invoice").Scan(&minDate, &maxDate)
	observe(ctx, "filter_metadata", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice date range: %w", err)
	}
	opts.MinDate = minDate.Format(DateLayout)
	opts.MaxDate = maxDate.Format(DateLayout)
	return opts, nil
}

func queryStrings(ctx context.Context, q Querier, query string) ([]string, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SummaryRow is one line of the static dataset summary. Kind tells the
// presentation layer how to format Value.
type SummaryRow struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
	Kind   string `json:"kind"`
}

// staticSummarySQL casts every value to VARCHAR so the UNION has one type.
const staticSummarySQL = `
WITH
invoice_summary AS (
    SELECT
        MIN(InvoiceDate) AS MinDate,
        MAX(InvoiceDate) AS MaxDate,
        ROUND(SUM(Total), 2) AS TotalRevenue,
        COUNT(DISTINCT InvoiceId) AS NumPurchases,
        COUNT(DISTINCT CustomerId) AS NumCustomers,
        COUNT(DISTINCT BillingCountry) AS NumCountries
    FROM Invoice
),
track_summary AS (SELECT COUNT(*) AS TracksSold FROM InvoiceLine),
genre_ct AS (SELECT COUNT(*) AS NumGenres FROM Genre),
artist_ct AS (SELECT COUNT(*) AS NumArtists FROM Artist)
SELECT 'Date Range' AS Metric, STRFTIME(MinDate, '%b %Y') || ' – ' || STRFTIME(MaxDate, '%b %Y') AS Value, 'text' AS Kind FROM invoice_summary
UNION ALL SELECT 'Number of Purchases', CAST(NumPurchases AS VARCHAR), 'number' FROM invoice_summary
UNION ALL SELECT 'Number of Customers', CAST(NumCustomers AS VARCHAR), 'number' FROM invoice_summary
UNION ALL SELECT 'Tracks Sold', CAST(TracksSold AS VARCHAR), 'number' FROM track_summary
UNION ALL SELECT 'Total Revenue (USD$)', CAST(TotalRevenue AS VARCHAR), 'dollar' FROM invoice_summary
UNION ALL SELECT 'Number of Genres', CAST(NumGenres AS VARCHAR), 'number' FROM genre_ct
UNION ALL SELECT 'Number of Artists', CAST(NumArtists AS VARCHAR), 'number' FROM artist_ct
UNION ALL SELECT 'Number of Countries', CAST(NumCountries AS VARCHAR), 'number' FROM invoice_summary
`

// summaryOrder fixes row order; UNION ALL output order is not guaranteed.
var summaryOrder = map[string]int{
	"Date Range":           0,
	"Number of Purchases":  1,
	"Number of Customers":  2,
	"Tracks Sold":          3,
	"Total Revenue (USD$)": 4,
	"Number of Genres":     5,
	"Number of Artists":    6,
	"Number of Countries":  7,
}

// StaticSummary returns unformatted dataset-wide KPIs over the raw tables.
func StaticSummary(ctx context.Context, q Querier) ([]SummaryRow, error) {
	start := time.Now()
	rows, err := q.QueryContext(ctx, staticSummarySQL)
	if err != nil {
		observe(ctx, "static_summary", start, err)
		return nil, fmt.Errorf("failed to query static summary: %w", err)
	}
	defer closeQuietly(rows)

	out := make([]SummaryRow, len(summaryOrder))
	for rows.Next() {
		var r SummaryRow
		if err := rows.Scan(&r.Metric, &r.Value, &r.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		if i, ok := summaryOrder[r.Metric]; ok {
			out[i] = r
		}
	}
	err = rows.Err()
	observe(ctx, "static_summary", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating static summary: %w", err)
	}
	return out, nil
}
