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
	"sort"
	"strings"
	"time"
)

// Group is a grouping dimension for group-level KPIs.
type Group string

const (
	GroupGenre   Group = "genre"
	GroupArtist  Group = "artist"
	GroupCountry Group = "country"
)

// Groups lists every supported dimension in display order.
var Groups = []Group{GroupGenre, GroupArtist, GroupCountry}

// ParseGroup accepts a dimension name case-insensitively. "BillingCountry"
// is accepted as an alias for country.
func ParseGroup(s string) (Group, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "genre":
		return GroupGenre, nil
	case "artist":
		return GroupArtist, nil
	case "country", "billingcountry":
		return GroupCountry, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGroup, s)
}

// HasCatalog reports whether the dimension has a track catalog.
func (g Group) HasCatalog() bool {
	return g == GroupGenre || g == GroupArtist
}

// Label is the human-readable dimension name.
func (g Group) Label() string {
	switch g {
	case GroupGenre:
		return "Genre"
	case GroupArtist:
		return "Artist"
	case GroupCountry:
		return "Country"
	}
	return string(g)
}

type groupSQL struct {
	expr    string
	catalog string
	joins   string
}

func groupClauses(g Group) (groupSQL, error) {
	switch g {
	case GroupGenre:
		return groupSQL{
			expr:    "g.Name",
			catalog: "gc.num_tracks",
			joins: `
				JOIN Track t ON il.TrackId = t.TrackId
				JOIN Genre g ON g.GenreId = t.GenreId
				LEFT JOIN genre_catalog gc ON gc.genre = g.Name`,
		}, nil
	case GroupArtist:
		return groupSQL{
			expr:    "ar.Name",
			catalog: "ac.num_tracks",
			joins: `
				JOIN Track t ON il.TrackId = t.TrackId
				JOIN Album al ON t.AlbumId = al.AlbumId
				JOIN Artist ar ON ar.ArtistId = al.ArtistId
				LEFT JOIN artist_catalog ac ON ac.artist = ar.Name`,
		}, nil
	case GroupCountry:
		return groupSQL{expr: "i.BillingCountry", catalog: "NULL"}, nil
	}
	return groupSQL{}, fmt.Errorf("%w: %q", ErrInvalidGroup, g)
}

// Metrics are the rankable group metrics in display order.
var Metrics = []string{"revenue", "num_customers", "num_purchases", "tracks_sold", "first_time_customers"}

// MetricLabel returns the display label of a metric.
func MetricLabel(metric string) string {
	switch metric {
	case "revenue":
		return "Revenue (USD$)"
	case "num_customers":
		return "Customers"
	case "num_purchases":
		return "Purchases"
	case "tracks_sold":
		return "Tracks Sold"
	case "first_time_customers":
		return "First-Time Customers"
	}
	return metric
}

// IsMetric reports whether name is a rankable metric.
func IsMetric(name string) bool {
	for _, m := range Metrics {
		if m == name {
			return true
		}
	}
	return false
}

// GroupKPI is one group value with its KPIs and derived display metrics.
type GroupKPI struct {
	GroupVal           string  `json:"group_val"`
	NumCustomers       int64   `json:"num_customers"`
	NumPurchases       int64   `json:"num_purchases"`
	TracksSold         int64   `json:"tracks_sold"`
	Revenue            float64 `json:"revenue"`
	FirstTimeCustomers int64   `json:"first_time_customers"`

	AvgRevenuePerCustomer *float64 `json:"avg_revenue_per_cust"`
	AvgRevenuePerPurchase *float64 `json:"avg_revenue_per_purchase"`
	AvgTracksPerPurchase  *float64 `json:"avg_tracks_per_purchase"`
	RevenueShare          *float64 `json:"revenue_share"`

	// Set by EnrichWithCatalog for genre and artist.
	UniqueTracksSold *int64   `json:"unique_tracks_sold,omitempty"`
	CatalogSize      *int64   `json:"catalog_size,omitempty"`
	PctCatalogSold   *float64 `json:"pct_catalog_sold,omitempty"`
}

// Metric returns the value of a rankable metric.
func (k GroupKPI) Metric(name string) (float64, bool) {
	switch name {
	case "revenue":
		return k.Revenue, true
	case "num_customers":
		return float64(k.NumCustomers), true
	case "num_purchases":
		return float64(k.NumPurchases), true
	case "tracks_sold":
		return float64(k.TracksSold), true
	case "first_time_customers":
		return float64(k.FirstTimeCustomers), true
	}
	return 0, false
}

// groupKPIsSQL takes first purchases within the base rows, so a customer
// counts as first-time for every group bought on their first in-range date.
const groupKPIsSQL = `
WITH base AS (
    SELECT
        e.CustomerId,
        i.InvoiceDate AS invoice_date,
        i.InvoiceId,
        il.TrackId,
        il.Quantity,
        il.UnitPrice,
        %s AS group_val
    FROM filtered_invoices e
    JOIN Invoice i ON i.InvoiceId = e.InvoiceId
        AND CAST(i.InvoiceDate AS DATE) BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
    JOIN InvoiceLine il ON i.InvoiceId = il.InvoiceId
    %s
),
first_purchases AS (
    SELECT CustomerId, MIN(CAST(invoice_date AS DATE)) AS first_purchase
    FROM base
    GROUP BY CustomerId
)
SELECT
    b.group_val,
    COUNT(DISTINCT b.CustomerId) AS num_customers,
    COUNT(DISTINCT b.InvoiceId) AS num_purchases,
    CAST(SUM(b.Quantity) AS BIGINT) AS tracks_sold,
    CAST(SUM(b.Quantity * b.UnitPrice) AS DOUBLE) AS revenue,
    COUNT(DISTINCT CASE
        WHEN CAST(b.invoice_date AS DATE) = fp.first_purchase
        THEN b.CustomerId END) AS first_time_customers
FROM base b
LEFT JOIN first_purchases fp ON b.CustomerId = fp.CustomerId
GROUP BY b.group_val
ORDER BY b.group_val
`

// GroupKPIs returns KPIs for every value of g in dr, ordered by group value.
// Revenue share is relative to the returned rows.
func GroupKPIs(ctx context.Context, q Querier, g Group, dr DateRange) ([]GroupKPI, error) {
	clauses, err := groupClauses(g)
	if err != nil {
		return nil, err
	}
	dr, err = resolveRange(ctx, q, dr)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	query := fmt.Sprintf(groupKPIsSQL, clauses.expr, clauses.joins)
	rows, err := q.QueryContext(ctx, query, rangeArgs(dr)...)
	if err != nil {
		observe(ctx, "group_kpis", start, err)
		return nil, fmt.Errorf("failed to query %s KPIs: %w", g, err)
	}
	defer closeQuietly(rows)

	var out []GroupKPI
	for rows.Next() {
		var (
			k   GroupKPI
			val sql.NullString
		)
		if err := rows.Scan(&val, &k.NumCustomers, &k.NumPurchases, &k.TracksSold, &k.Revenue, &k.FirstTimeCustomers); err != nil {
			return nil, fmt.Errorf("failed to scan %s KPI row: %w", g, err)
		}
		k.GroupVal = val.String
		out = append(out, k)
	}
	err = rows.Err()
	observe(ctx, "group_kpis", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating %s KPIs: %w", g, err)
	}

	deriveGroupMetrics(out)
	ApplyRevenueShare(out, 0)
	return out, nil
}

func deriveGroupMetrics(rows []GroupKPI) {
	for i := range rows {
		k := &rows[i]
		k.AvgRevenuePerCustomer = ratio(k.Revenue, float64(k.NumCustomers))
		k.AvgRevenuePerPurchase = ratio(k.Revenue, float64(k.NumPurchases))
		k.AvgTracksPerPurchase = ratio(float64(k.TracksSold), float64(k.NumPurchases))
	}
}

// ApplyRevenueShare sets RevenueShare as revenue/total. A non-positive
// total falls back to the revenue sum of rows.
func ApplyRevenueShare(rows []GroupKPI, total float64) {
	if total <= 0 {
		for _, k := range rows {
			total += k.Revenue
		}
	}
	for i := range rows {
		rows[i].RevenueShare = ratio(rows[i].Revenue, total)
	}
}

// TopN returns the n rows with the highest metric, ties broken by group
// value ascending. rows is not modified.
func TopN(rows []GroupKPI, metric string, n int) ([]GroupKPI, error) {
	if !IsMetric(metric) {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
	sorted := make([]GroupKPI, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, _ := sorted[i].Metric(metric)
		vj, _ := sorted[j].Metric(metric)
		if vi != vj {
			return vi > vj
		}
		return sorted[i].GroupVal < sorted[j].GroupVal
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted, nil
}

// TopNByMetric slices the top n rows for every rankable metric.
func TopNByMetric(rows []GroupKPI, n int) map[string][]GroupKPI {
	out := make(map[string][]GroupKPI, len(Metrics))
	for _, m := range Metrics {
		top, _ := TopN(rows, m, n) //nolint:errcheck // m is always a known metric
		out[m] = top
	}
	return out
}

// CatalogSale is catalog coverage for one genre or artist.
type CatalogSale struct {
	GroupVal         string   `json:"group_val"`
	UniqueTracksSold int64    `json:"unique_tracks_sold"`
	CatalogSize      *int64   `json:"catalog_size"`
	PctCatalogSold   *float64 `json:"pct_catalog_sold"`
}

const catalogSalesSQL = `
SELECT
    %[1]s AS group_val,
    COUNT(DISTINCT il.TrackId) AS unique_tracks_sold,
    ANY_VALUE(%[2]s) AS catalog_size,
    CAST(COUNT(DISTINCT il.TrackId) AS DOUBLE) / NULLIF(ANY_VALUE(%[2]s), 0) AS pct_catalog_sold
FROM filtered_invoices AS e
JOIN InvoiceLine il ON il.InvoiceId = e.InvoiceId
%[3]s
%[4]s
GROUP BY group_val
ORDER BY group_val
`

// CatalogSales returns the share of each genre or artist catalog sold in
// the working set. A zero dr covers the whole working set.
func CatalogSales(ctx context.Context, q Querier, g Group, dr DateRange) ([]CatalogSale, error) {
	if !g.HasCatalog() {
		return nil, fmt.Errorf("%w: catalog sales need genre or artist, got %q", ErrInvalidGroup, g)
	}
	clauses, err := groupClauses(g)
	if err != nil {
		return nil, err
	}

	var (
		where string
		args  []interface{}
	)
	if !dr.IsZero() {
		where = "WHERE e.dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)"
		args = rangeArgs(dr)
	}

	start := time.Now()
	query := fmt.Sprintf(catalogSalesSQL, clauses.expr, clauses.catalog, clauses.joins, where)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		observe(ctx, "catalog_sales", start, err)
		return nil, fmt.Errorf("failed to query %s catalog sales: %w", g, err)
	}
	defer closeQuietly(rows)

	var out []CatalogSale
	for rows.Next() {
		var (
			c    CatalogSale
			size sql.NullInt64
			pct  sql.NullFloat64
		)
		if err := rows.Scan(&c.GroupVal, &c.UniqueTracksSold, &size, &pct); err != nil {
			return nil, fmt.Errorf("failed to scan catalog sale: %w", err)
		}
		c.CatalogSize = nullInt64Ptr(size)
		c.PctCatalogSold = nullFloat64Ptr(pct)
		out = append(out, c)
	}
	err = rows.Err()
	observe(ctx, "catalog_sales", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating catalog sales: %w", err)
	}
	return out, nil
}

// EnrichWithCatalog left-joins catalog coverage onto rows by group value.
// Rows without a matching sale keep nil catalog fields.
func EnrichWithCatalog(rows []GroupKPI, sales []CatalogSale) []GroupKPI {
	byVal := make(map[string]CatalogSale, len(sales))
	for _, s := range sales {
		byVal[s.GroupVal] = s
	}
	out := make([]GroupKPI, len(rows))
	for i, k := range rows {
		if s, ok := byVal[k.GroupVal]; ok {
			sold := s.UniqueTracksSold
			k.UniqueTracksSold = &sold
			k.CatalogSize = s.CatalogSize
			k.PctCatalogSold = s.PctCatalogSold
		}
		out[i] = k
	}
	return out
}

// GroupYear is one year of KPIs for one genre or artist.
type GroupYear struct {
	Year               string  `json:"year"`
	GroupVal           string  `json:"group_val"`
	NumCustomers       int64   `json:"num_customers"`
	NumPurchases       int64   `json:"num_purchases"`
	NumCountries       int64   `json:"num_countries"`
	TracksSold         int64   `json:"tracks_sold"`
	Revenue            float64 `json:"revenue"`
	FirstTimeCustomers int64   `json:"first_time_customers"`
	UniqueTracksSold   int64   `json:"unique_tracks_sold"`
	FirstTracksSold    int64   `json:"first_tracks_sold"`
	CatalogSize        *int64  `json:"catalog_size"`
}

// Metric returns the value of a rankable metric.
func (y GroupYear) Metric(name string) (float64, bool) {
	switch name {
	case "revenue":
		return y.Revenue, true
	case "num_customers":
		return float64(y.NumCustomers), true
	case "num_purchases":
		return float64(y.NumPurchases), true
	case "tracks_sold":
		return float64(y.TracksSold), true
	case "first_time_customers":
		return float64(y.FirstTimeCustomers), true
	}
	return 0, false
}

const groupYearlySQL = `
WITH base AS (
    SELECT
        fi.CustomerId,
        fi.dt,
        i.BillingCountry AS country,
        fi.InvoiceId,
        il.TrackId,
        il.Quantity,
        il.UnitPrice,
        %s AS group_val,
        %s AS catalog_size
    FROM filtered_invoices fi
    JOIN Invoice i ON fi.InvoiceId = i.InvoiceId
    JOIN InvoiceLine il ON fi.InvoiceId = il.InvoiceId
    %s
    WHERE fi.dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
),
first_purchases AS (
    SELECT CustomerId, MIN(dt) AS first_date
    FROM base
    GROUP BY CustomerId
),
first_track_sales AS (
    SELECT TrackId, MIN(dt) AS first_sold_date
    FROM base
    GROUP BY TrackId
)
SELECT
    STRFTIME(b.dt, '%%Y') AS year,
    b.group_val,
    COUNT(DISTINCT b.CustomerId) AS num_customers,
    COUNT(DISTINCT b.InvoiceId) AS num_purchases,
    COUNT(DISTINCT b.country) AS num_countries,
    CAST(SUM(b.Quantity) AS BIGINT) AS tracks_sold,
    CAST(SUM(b.UnitPrice * b.Quantity) AS DOUBLE) AS revenue,
    COUNT(DISTINCT CASE
        WHEN YEAR(b.dt) = YEAR(fp.first_date)
        THEN b.CustomerId END) AS first_time_customers,
    COUNT(DISTINCT b.TrackId) AS unique_tracks_sold,
    COUNT(DISTINCT CASE
        WHEN YEAR(b.dt) = YEAR(fts.first_sold_date)
        THEN b.TrackId END) AS first_tracks_sold,
    ANY_VALUE(b.catalog_size) AS catalog_size
FROM base b
LEFT JOIN first_purchases fp ON b.CustomerId = fp.CustomerId
LEFT JOIN first_track_sales fts ON b.TrackId = fts.TrackId
GROUP BY year, b.group_val
ORDER BY year, b.group_val
`

// GroupYearly returns per-year KPIs for every genre or artist in dr.
func GroupYearly(ctx context.Context, q Querier, g Group, dr DateRange) ([]GroupYear, error) {
	if !g.HasCatalog() {
		return nil, fmt.Errorf("%w: yearly breakdown needs genre or artist, got %q", ErrInvalidGroup, g)
	}
	clauses, err := groupClauses(g)
	if err != nil {
		return nil, err
	}
	dr, err = resolveRange(ctx, q, dr)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	query := fmt.Sprintf(groupYearlySQL, clauses.expr, clauses.catalog, clauses.joins)
	rows, err := q.QueryContext(ctx, query, rangeArgs(dr)...)
	if err != nil {
		observe(ctx, "group_yearly", start, err)
		return nil, fmt.Errorf("failed to query %s yearly KPIs: %w", g, err)
	}
	defer closeQuietly(rows)

	var out []GroupYear
	for rows.Next() {
		var (
			y    GroupYear
			size sql.NullInt64
		)
		if err := rows.Scan(&y.Year, &y.GroupVal, &y.NumCustomers, &y.NumPurchases, &y.NumCountries,
			&y.TracksSold, &y.Revenue, &y.FirstTimeCustomers, &y.UniqueTracksSold, &y.FirstTracksSold, &size); err != nil {
			return nil, fmt.Errorf("failed to scan %s yearly row: %w", g, err)
		}
		y.CatalogSize = nullInt64Ptr(size)
		out = append(out, y)
	}
	err = rows.Err()
	observe(ctx, "group_yearly", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating %s yearly KPIs: %w", g, err)
	}
	return out, nil
}
