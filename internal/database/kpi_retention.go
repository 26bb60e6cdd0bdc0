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
	"time"
)

// DefaultRetentionOffsets are the month offsets reported as top cohorts.
var DefaultRetentionOffsets = []int{3, 6, 9}

// CohortCell is the retention of one first-purchase cohort at a month offset.
type CohortCell struct {
	CohortMonth        time.Time `json:"cohort_month"`
	MonthOffset        int64     `json:"month_offset"`
	NumActiveCustomers int64     `json:"num_active_customers"`
	CohortSize         int64     `json:"cohort_size"`
	RetentionPct       float64   `json:"retention_pct"`
}

// DecayPoint is overall retention at a month offset.
type DecayPoint struct {
	MonthOffset   int64   `json:"month_offset"`
	NumRetained   int64   `json:"num_retained"`
	NumCustomers  int64   `json:"num_customers"`
	RetentionRate float64 `json:"retention_rate"`
}

// defaultMaxOffset is the month span of the working set's invoice dates.
func defaultMaxOffset(ctx context.Context, q Querier) (int, error) {
	var minDate, maxDate sql.NullTime
	err := q.QueryRowContext(ctx, `
		SELECT MIN(i.InvoiceDate), MAX(i.InvoiceDate)
		FROM filtered_invoices fi
		JOIN Invoice i ON fi.InvoiceId = i.InvoiceId`).Scan(&minDate, &maxDate)
	if err != nil {
		return 0, fmt.Errorf("failed to read working set date bounds: %w", err)
	}
	if !minDate.Valid || !maxDate.Valid {
		return 0, ErrNoData
	}
	return monthDiff(minDate.Time, maxDate.Time), nil
}

// Cohorts are keyed by the customer's first purchase over the whole Invoice
// table; only activity from working-set invoices in range counts.
const retentionCohortsSQL = `
WITH cohort_dates AS (
    SELECT CustomerId, DATE_TRUNC('month', MIN(InvoiceDate)) AS cohort_month
    FROM Invoice
    GROUP BY CustomerId
),
cohort_sizes AS (
    SELECT cohort_month, COUNT(*) AS cohort_size
    FROM cohort_dates
    GROUP BY cohort_month
),
activity AS (
    SELECT
        fi.CustomerId,
        c.cohort_month,
        DATE_DIFF('month', c.cohort_month, i.InvoiceDate) AS month_offset
    FROM filtered_invoices fi
    JOIN Invoice i ON fi.InvoiceId = i.InvoiceId
    JOIN cohort_dates c ON fi.CustomerId = c.CustomerId
    WHERE DATE_DIFF('month', c.cohort_month, i.InvoiceDate) >= 0
      AND fi.dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
      AND DATE_DIFF('month', c.cohort_month, i.InvoiceDate) <= ?
),
activity_counts AS (
    SELECT cohort_month, month_offset, COUNT(DISTINCT CustomerId) AS num_active_customers
    FROM activity
    GROUP BY cohort_month, month_offset
)
SELECT
    ac.cohort_month,
    ac.month_offset,
    ac.num_active_customers,
    cs.cohort_size,
    ROUND(CAST(ac.num_active_customers AS DOUBLE) / cs.cohort_size, 4) AS retention_pct
FROM activity_counts ac
JOIN cohort_sizes cs ON ac.cohort_month = cs.cohort_month
WHERE ac.month_offset > 0
ORDER BY ac.cohort_month, ac.month_offset
`

// RetentionCohorts returns cohort retention by month offset for dr.
// maxOffset <= 0 uses the month span of the working set.
func RetentionCohorts(ctx context.Context, q Querier, dr DateRange, maxOffset int) ([]CohortCell, error) {
	dr, maxOffset, err := retentionBounds(ctx, q, dr, maxOffset)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := q.QueryContext(ctx, retentionCohortsSQL, dr.StartArg(), dr.EndArg(), maxOffset)
	if err != nil {
		observe(ctx, "retention_cohorts", start, err)
		return nil, fmt.Errorf("failed to query retention cohorts: %w", err)
	}
	defer closeQuietly(rows)

	var out []CohortCell
	for rows.Next() {
		var c CohortCell
		if err := rows.Scan(&c.CohortMonth, &c.MonthOffset, &c.NumActiveCustomers, &c.CohortSize, &c.RetentionPct); err != nil {
			return nil, fmt.Errorf("failed to scan cohort cell: %w", err)
		}
		out = append(out, c)
	}
	err = rows.Err()
	observe(ctx, "retention_cohorts", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating retention cohorts: %w", err)
	}
	return out, nil
}

const retentionDecaySQL = `
WITH cohorts AS (
    SELECT CustomerId, DATE_TRUNC('month', MIN(InvoiceDate)) AS cohort_start
    FROM Invoice
    GROUP BY CustomerId
),
activity AS (
    SELECT
        fi.CustomerId,
        DATE_DIFF('month', c.cohort_start, i.InvoiceDate) AS month_offset
    FROM filtered_invoices fi
    JOIN Invoice i ON i.InvoiceId = fi.InvoiceId
    JOIN cohorts c ON fi.CustomerId = c.CustomerId
    WHERE DATE_DIFF('month', c.cohort_start, i.InvoiceDate) >= 0
      AND fi.dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
      AND DATE_DIFF('month', c.cohort_start, i.InvoiceDate) <= ?
),
retention AS (
    SELECT month_offset, COUNT(DISTINCT CustomerId) AS num_retained
    FROM activity
    GROUP BY month_offset
),
cohort_size AS (
    SELECT COUNT(DISTINCT CustomerId) AS num_customers FROM activity
)
SELECT
    r.month_offset,
    r.num_retained,
    cs.num_customers,
    CAST(r.num_retained AS DOUBLE) / cs.num_customers AS retention_rate
FROM retention r, cohort_size cs
WHERE r.month_offset > 0
ORDER BY r.month_offset
`

// RetentionDecay returns the share of active customers still purchasing at
// each month offset since their first purchase.
func RetentionDecay(ctx context.Context, q Querier, dr DateRange, maxOffset int) ([]DecayPoint, error) {
	dr, maxOffset, err := retentionBounds(ctx, q, dr, maxOffset)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := q.QueryContext(ctx, retentionDecaySQL, dr.StartArg(), dr.EndArg(), maxOffset)
	if err != nil {
		observe(ctx, "retention_decay", start, err)
		return nil, fmt.Errorf("failed to query retention decay: %w", err)
	}
	defer closeQuietly(rows)

	var out []DecayPoint
	for rows.Next() {
		var p DecayPoint
		if err := rows.Scan(&p.MonthOffset, &p.NumRetained, &p.NumCustomers, &p.RetentionRate); err != nil {
			return nil, fmt.Errorf("failed to scan decay point: %w", err)
		}
		out = append(out, p)
	}
	err = rows.Err()
	observe(ctx, "retention_decay", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating retention decay: %w", err)
	}
	return out, nil
}

func retentionBounds(ctx context.Context, q Querier, dr DateRange, maxOffset int) (DateRange, int, error) {
	dr, err := resolveRange(ctx, q, dr)
	if err != nil {
		return dr, 0, err
	}
	if maxOffset <= 0 {
		maxOffset, err = defaultMaxOffset(ctx, q)
		if err != nil {
			return dr, 0, err
		}
	}
	return dr, maxOffset, nil
}

// TopCohort is the best-retaining cohort at a month offset. Nil fields mean
// no cohort reached the offset.
type TopCohort struct {
	Offset       int        `json:"offset"`
	CohortMonth  *time.Time `json:"cohort_month"`
	RetentionPct *float64   `json:"retention_pct"`
}

// RetentionStats summarizes customer retention for a date window. Nil
// pointers mean the value is undefined for the data (NA).
type RetentionStats struct {
	NumCustomers    int64    `json:"num_cust"`
	NumNew          int64    `json:"num_new"`
	PctNew          *float64 `json:"pct_new"`
	RetNAny         int64    `json:"ret_n_any"`
	RetRateAny      *float64 `json:"ret_rate_any"`
	RetNReturn      int64    `json:"ret_n_return"`
	RetRateReturn   *float64 `json:"ret_rate_return"`
	RetNConv        int64    `json:"ret_n_conv"`
	RetRateConv     *float64 `json:"ret_rate_conv"`
	RetNWindow      int64    `json:"ret_n_window"`
	RetRateWindow   *float64 `json:"ret_rate_window"`
	AvgLifeMoTotal  *float64 `json:"avg_life_mo_tot"`
	AvgLifeMoWindow *float64 `json:"avg_life_mo_win"`
	MedGapLife      *float64 `json:"med_gap_life"`
	MedGapWindow    *float64 `json:"med_gap_window"`
	MedGapWinback   *float64 `json:"med_gap_winback"`
	MedGapRet       *float64 `json:"med_gap_ret"`
	AvgGapLife      *float64 `json:"avg_gap_life"`
	AvgGapWindow    *float64 `json:"avg_gap_window"`
	AvgGapBound     *float64 `json:"avg_gap_bound"`

	TopCohorts []TopCohort `json:"top_cohorts"`
}

// RetentionValue is one named retention KPI.
type RetentionValue struct {
	Key   string
	Value *float64
}

// Values lists the scalar KPIs in display order, keyed by their JSON names.
func (s *RetentionStats) Values() []RetentionValue {
	n := func(v int64) *float64 {
		f := float64(v)
		return &f
	}
	return []RetentionValue{
		{"num_cust", n(s.NumCustomers)},
		{"num_new", n(s.NumNew)},
		{"pct_new", s.PctNew},
		{"ret_n_any", n(s.RetNAny)},
		{"ret_rate_any", s.RetRateAny},
		{"ret_n_return", n(s.RetNReturn)},
		{"ret_rate_return", s.RetRateReturn},
		{"ret_n_conv", n(s.RetNConv)},
		{"ret_rate_conv", s.RetRateConv},
		{"ret_n_window", n(s.RetNWindow)},
		{"ret_rate_window", s.RetRateWindow},
		{"avg_life_mo_tot", s.AvgLifeMoTotal},
		{"avg_life_mo_win", s.AvgLifeMoWindow},
		{"med_gap_life", s.MedGapLife},
		{"med_gap_window", s.MedGapWindow},
		{"med_gap_winback", s.MedGapWinback},
		{"med_gap_ret", s.MedGapRet},
		{"avg_gap_life", s.AvgGapLife},
		{"avg_gap_window", s.AvgGapWindow},
		{"avg_gap_bound", s.AvgGapBound},
	}
}

// customerWindow holds one customer's purchase boundaries relative to the window.
type customerWindow struct {
	firstDate, secondDate, lastDate sql.NullTime
	totalPurchases                  int64
	lastBefore, firstAfter          sql.NullTime
	numInWindow                     int64
	firstIn, secondIn, lastIn       sql.NullTime
}

const retentionKPIsSQL = `
WITH all_events AS (
    SELECT
        e.CustomerId,
        e.InvoiceId,
        CAST(i.InvoiceDate AS DATE) AS dt,
        ROW_NUMBER() OVER (PARTITION BY e.CustomerId ORDER BY CAST(i.InvoiceDate AS DATE), e.InvoiceId) AS rn,
        COUNT(*) OVER (PARTITION BY e.CustomerId) AS total_purchases
    FROM filtered_invoices e
    JOIN Invoice i ON i.InvoiceId = e.InvoiceId
),
windowed_events AS (
    SELECT
        CustomerId,
        dt,
        ROW_NUMBER() OVER (PARTITION BY CustomerId ORDER BY dt, InvoiceId) AS win_rn,
        COUNT(*) OVER (PARTITION BY CustomerId) AS num_in_window
    FROM all_events
    WHERE dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
),
bounds_all AS (
    SELECT
        CustomerId,
        MIN(dt) FILTER (WHERE rn = 1) AS first_date,
        MIN(dt) FILTER (WHERE rn = 2) AS second_date,
        MAX(dt) AS last_date,
        total_purchases,
        MAX(dt) FILTER (WHERE dt < CAST(? AS DATE)) AS last_before_window,
        MIN(dt) FILTER (WHERE dt > CAST(? AS DATE)) AS first_after_window
    FROM all_events
    GROUP BY CustomerId, total_purchases
),
bounds_window AS (
    SELECT
        CustomerId,
        MAX(num_in_window) AS num_in_window,
        MAX(CASE WHEN win_rn = 1 THEN dt END) AS first_in_window,
        MAX(CASE WHEN win_rn = 2 THEN dt END) AS second_in_window,
        MAX(dt) AS last_in_window
    FROM windowed_events
    GROUP BY CustomerId
)
SELECT
    a.first_date, a.second_date, a.last_date, a.total_purchases,
    a.last_before_window, a.first_after_window,
    w.num_in_window, w.first_in_window, w.second_in_window, w.last_in_window
FROM bounds_all a
JOIN bounds_window w USING (CustomerId)
WHERE w.num_in_window > 0
`

// RetentionKPIs summarizes retention for customers active in dr. Purchase
// history outside the window classifies customers as new, returning or
// converted. Returns nil, nil when no customer purchased in dr.
func RetentionKPIs(ctx context.Context, q Querier, dr DateRange, cohorts []CohortCell, offsets []int) (*RetentionStats, error) {
	dr, err := resolveRange(ctx, q, dr)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(offsets) == 0 {
		offsets = DefaultRetentionOffsets
	}

	start := time.Now()
	args := append(rangeArgs(dr), rangeArgs(dr)...)
	rows, err := q.QueryContext(ctx, retentionKPIsSQL, args...)
	if err != nil {
		observe(ctx, "retention_kpis", start, err)
		return nil, fmt.Errorf("failed to query retention KPIs: %w", err)
	}
	defer closeQuietly(rows)

	var customers []customerWindow
	for rows.Next() {
		var c customerWindow
		if err := rows.Scan(&c.firstDate, &c.secondDate, &c.lastDate, &c.totalPurchases,
			&c.lastBefore, &c.firstAfter,
			&c.numInWindow, &c.firstIn, &c.secondIn, &c.lastIn); err != nil {
			return nil, fmt.Errorf("failed to scan retention row: %w", err)
		}
		customers = append(customers, c)
	}
	err = rows.Err()
	observe(ctx, "retention_kpis", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating retention rows: %w", err)
	}
	if len(customers) == 0 {
		return nil, nil
	}

	stats := summarizeRetention(customers, dr)
	stats.TopCohorts = TopCohorts(cohorts, offsets)
	return stats, nil
}

func summarizeRetention(customers []customerWindow, dr DateRange) *RetentionStats {
	var (
		s RetentionStats

		lifeTotal, lifeWindow                  []float64
		gapLife, gapWindow, gapWinback, gapRet []float64
		avgGapLife, avgGapWindow, avgGapBound  []float64
	)

	for _, c := range customers {
		isNew := !c.lastBefore.Valid
		s.NumCustomers++
		if isNew {
			s.NumNew++
		}
		if c.totalPurchases > 1 {
			s.RetNAny++
		}
		if !isNew {
			s.RetNReturn++
		}
		if isNew && (c.numInWindow > 1 || !c.firstAfter.Valid) {
			s.RetNConv++
		}
		if c.numInWindow > 1 {
			s.RetNWindow++
		}

		// lifespans, months
		if c.totalPurchases > 1 {
			lifeTotal = appendMonths(lifeTotal, c.firstDate, c.lastDate)
		}
		switch {
		case !c.lastBefore.Valid && !c.firstAfter.Valid:
			if c.numInWindow > 1 {
				lifeWindow = appendMonths(lifeWindow, c.firstIn, c.lastIn)
			}
		case !c.lastBefore.Valid:
			lifeWindow = appendMonths(lifeWindow, c.firstIn, validTime(dr.End))
		case !c.firstAfter.Valid:
			lifeWindow = appendMonths(lifeWindow, validTime(dr.Start), c.lastIn)
		default:
			lifeWindow = append(lifeWindow, float64(monthDiff(dr.Start, dr.End)))
		}

		// gaps, days
		if c.totalPurchases > 1 {
			gapLife = appendGap(gapLife, c.firstDate, c.secondDate, 1)
			avgGapLife = appendGap(avgGapLife, c.firstDate, c.lastDate, float64(c.totalPurchases-1))
		}
		gapWindow = appendGap(gapWindow, c.firstIn, c.secondIn, 1)
		gapWinback = appendGap(gapWinback, c.lastBefore, c.firstIn, 1)
		gapRet = appendGap(gapRet, c.lastIn, c.firstAfter, 1)

		var windowAvg *float64
		if c.numInWindow > 1 && c.firstIn.Valid && c.lastIn.Valid {
			v := daysBetween(c.firstIn.Time, c.lastIn.Time) / float64(c.numInWindow-1)
			windowAvg = &v
			avgGapWindow = append(avgGapWindow, v)
		}

		n := float64(c.numInWindow)
		switch {
		case !c.lastBefore.Valid && !c.firstAfter.Valid:
			if windowAvg != nil {
				avgGapBound = append(avgGapBound, *windowAvg)
			}
		case c.lastBefore.Valid && c.firstAfter.Valid:
			avgGapBound = appendGap(avgGapBound, c.lastBefore, c.firstAfter, n+1)
		case !c.lastBefore.Valid:
			avgGapBound = appendGap(avgGapBound, c.firstIn, c.firstAfter, n)
		default:
			avgGapBound = appendGap(avgGapBound, c.lastBefore, c.lastIn, n)
		}
	}

	total := float64(s.NumCustomers)
	s.PctNew = ratio(float64(s.NumNew), total)
	s.RetRateAny = ratio(float64(s.RetNAny), total)
	s.RetRateReturn = ratio(float64(s.RetNReturn), total-float64(s.NumNew))
	s.RetRateConv = ratio(float64(s.RetNConv), float64(s.NumNew))
	s.RetRateWindow = ratio(float64(s.RetNWindow), total)

	s.AvgLifeMoTotal = mean(lifeTotal)
	s.AvgLifeMoWindow = mean(lifeWindow)
	s.MedGapLife = median(gapLife)
	s.MedGapWindow = median(gapWindow)
	s.MedGapWinback = median(gapWinback)
	s.MedGapRet = median(gapRet)
	s.AvgGapLife = mean(avgGapLife)
	s.AvgGapWindow = mean(avgGapWindow)
	s.AvgGapBound = mean(avgGapBound)
	return &s
}

// TopCohorts picks, for each offset, the cohort with the highest retention.
// Ties keep the earliest cohort.
func TopCohorts(cohorts []CohortCell, offsets []int) []TopCohort {
	out := make([]TopCohort, 0, len(offsets))
	for _, o := range offsets {
		top := TopCohort{Offset: o}
		for i := range cohorts {
			c := cohorts[i]
			if c.MonthOffset != int64(o) {
				continue
			}
			if top.RetentionPct == nil || c.RetentionPct > *top.RetentionPct {
				month, pct := c.CohortMonth, c.RetentionPct
				top.CohortMonth, top.RetentionPct = &month, &pct
			}
		}
		out = append(out, top)
	}
	return out
}

func validTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

func appendMonths(dst []float64, from, to sql.NullTime) []float64 {
	if !from.Valid || !to.Valid {
		return dst
	}
	return append(dst, float64(monthDiff(from.Time, to.Time)))
}

func appendGap(dst []float64, from, to sql.NullTime, div float64) []float64 {
	if !from.Valid || !to.Valid || div == 0 {
		return dst
	}
	return append(dst, daysBetween(from.Time, to.Time)/div)
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

func median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	m := sorted[mid]
	if len(sorted)%2 == 0 {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}
