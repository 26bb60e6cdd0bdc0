// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/format"
	"github.com/tomtom215/chinookdash/internal/models"
)

func (b *bundler) overview(ctx context.Context) (*models.PageBundle, error) {
	summary, hit, err := b.summary(ctx)
	if err != nil {
		return nil, err
	}
	b.hit(hit)

	ws, err := b.WorkingSet(ctx, b.req.Filter)
	if err != nil {
		return nil, err
	}
	core, hit, err := b.core(ctx, b.req.Filter, b.dr)
	if err != nil {
		return nil, err
	}
	b.hit(hit)
	invoices, hit, err := b.invoicesCached(ctx, b.req.Filter, b.dr, overviewInvoiceRows)
	if err != nil {
		return nil, err
	}
	b.hit(hit)

	return &models.PageBundle{
		Cards:  overviewCards(ws, core),
		Tables: []models.Table{summaryTable(summary), invoiceTable(invoices)},
	}, nil
}

func (b *bundler) timeseries(ctx context.Context) (*models.PageBundle, error) {
	points, hit, err := b.monthly(ctx, b.req.Filter, b.dr)
	if err != nil {
		return nil, err
	}
	b.hit(hit)
	core, hit, err := b.core(ctx, b.req.Filter, b.dr)
	if err != nil {
		return nil, err
	}
	b.hit(hit)

	return &models.PageBundle{
		Cards: timeseriesCards(core),
		Charts: []models.Chart{{
			ID:     "timeseries",
			Title:  "Monthly " + database.MetricLabel(b.req.Metric),
			Figure: b.th.timeseriesFigure(points, b.req.Metric),
		}},
	}, nil
}

func (b *bundler) group(ctx context.Context) (*models.PageBundle, error) {
	g := b.req.Group
	rows, hit, err := b.groupRows(ctx, b.req.Filter, g, b.dr)
	if err != nil {
		return nil, err
	}
	b.hit(hit)

	var values []yearValue
	if g.HasCatalog() {
		yearly, hit, err := b.groupYearly(ctx, b.req.Filter, g, b.dr)
		if err != nil {
			return nil, err
		}
		b.hit(hit)
		values = groupYearValues(yearly, b.req.Metric)
	} else {
		geo, hit, err := b.geoRows(ctx, b.req.Filter, b.dr, database.GeoYearly)
		if err != nil {
			return nil, err
		}
		b.hit(hit)
		values = geoYearValues(geo, b.req.Metric)
	}

	return &models.PageBundle{
		Cards: groupCards(g, rows, b.req.Metric, b.req.TopN),
		Charts: []models.Chart{{
			ID:     "group-" + string(g),
			Title:  fmt.Sprintf("%s Performance", g.Label()),
			Figure: b.th.groupBarFigure(values, g, b.req.Metric, b.req.TopN),
		}},
		Tables: []models.Table{groupTable(g, rows)},
	}, nil
}

func (b *bundler) geo(ctx context.Context) (*models.PageBundle, error) {
	rows, hit, err := b.geoRows(ctx, b.req.Filter, b.dr, b.req.GeoMode)
	if err != nil {
		return nil, err
	}
	b.hit(hit)
	countries, hit, err := b.groupRows(ctx, b.req.Filter, database.GroupCountry, b.dr)
	if err != nil {
		return nil, err
	}
	b.hit(hit)

	return &models.PageBundle{
		Cards: groupCards(database.GroupCountry, countries, b.req.Metric, b.req.TopN),
		Charts: []models.Chart{{
			ID:     "geo",
			Title:  database.MetricLabel(b.req.Metric) + " by Country",
			Figure: b.th.geoFigure(rows, b.req.Metric),
		}},
	}, nil
}

func (b *bundler) retention(ctx context.Context) (*models.PageBundle, error) {
	cohorts, hit, err := b.cohorts(ctx, b.req.Filter)
	if err != nil {
		return nil, err
	}
	b.hit(hit)
	decay, hit, err := b.decay(ctx, b.req.Filter, b.dr)
	if err != nil {
		return nil, err
	}
	b.hit(hit)
	stats, hit, err := b.retentionStats(ctx, b.req.Filter, b.dr)
	if err != nil {
		return nil, err
	}
	b.hit(hit)

	return &models.PageBundle{
		Cards: retentionCards(stats, b.cfg.RetentionOffsets),
		Charts: []models.Chart{
			{ID: "retention-decay", Title: "Customer Retention Decay", Figure: b.th.decayFigure(decay)},
			{ID: "retention-cohorts", Title: "Customer Retention by Cohort", Figure: b.th.cohortFigure(cohorts)},
		},
	}, nil
}

// insights compares the filtered view against the whole dataset.
func (b *bundler) insights(ctx context.Context) (*models.PageBundle, error) {
	opts, hit, err := b.filterOptions(ctx)
	if err != nil {
		return nil, err
	}
	b.hit(hit)

	var full database.DateRange
	if opts.MinDate != "" {
		if full, err = opts.FullRange(); err != nil {
			return nil, err
		}
	}
	all, hit, err := b.shared(ctx, database.Filter{}, full, b.req.TopN)
	if err != nil {
		return nil, err
	}
	b.hit(hit)
	filtered, hit, err := b.shared(ctx, b.req.Filter, b.dr, b.req.TopN)
	if err != nil {
		return nil, err
	}
	b.hit(hit)

	return &models.PageBundle{
		Tables: []models.Table{
			insightTable("insights-revenue", "Revenue", compare(all, filtered, revenueInsights)),
			insightTable("insights-purchases", "Purchases", compare(all, filtered, purchaseInsights)),
			insightTable("insights-customers", "Customers", compare(all, filtered, customerInsights)),
		},
	}, nil
}

type insightFunc func(k *SharedKPIs) []string

type insightSet struct {
	labels []string
	values insightFunc
}

func compare(all, filtered *SharedKPIs, set insightSet) []insightRow {
	a, f := set.values(all), set.values(filtered)
	rows := make([]insightRow, len(set.labels))
	for i, l := range set.labels {
		rows[i] = insightRow{label: l, all: a[i], filtered: f[i]}
	}
	return rows
}

func coreOf(k *SharedKPIs) *database.CoreMetrics {
	if k == nil || k.Core == nil {
		return &database.CoreMetrics{}
	}
	return k.Core
}

// topValues joins the top n group values by revenue, or NA.
func topValues(k *SharedKPIs, g database.Group, n int) string {
	if k == nil {
		return format.NA
	}
	rows := k.TopN[g]["revenue"]
	if len(rows) == 0 {
		return format.NA
	}
	if len(rows) > n {
		rows = rows[:n]
	}
	vals := make([]string, len(rows))
	for i, r := range rows {
		vals[i] = groupLabel(g, r.GroupVal)
	}
	return strings.Join(vals, ", ")
}

var revenueInsights = insightSet{
	labels: []string{"Total Revenue", "Top Markets", "Top Genre", "Top Artist"},
	values: func(k *SharedKPIs) []string {
		return []string{
			fv(coreOf(k).Revenue, format.Dollar),
			topValues(k, database.GroupCountry, 3),
			topValues(k, database.GroupGenre, 1),
			topValues(k, database.GroupArtist, 1),
		}
	},
}

var purchaseInsights = insightSet{
	labels: []string{"Total Orders", "Avg Revenue per Order", "Total Tracks Sold", "Avg Tracks per Order"},
	values: func(k *SharedKPIs) []string {
		c := coreOf(k)
		var tracksPer *float64
		if c.NumPurchases > 0 {
			v := float64(c.TracksSold) / float64(c.NumPurchases)
			tracksPer = &v
		}
		return []string{
			fv(c.NumPurchases, format.Number),
			fv(c.RevenuePerPurchase, format.Dollar),
			fv(c.TracksSold, format.Number),
			fv(tracksPer, format.Float),
		}
	},
}

var customerInsights = insightSet{
	labels: []string{"Total Customers", "% New Customers", "Avg Revenue per Customer", "Top 3-Month Retention", "Top 6-Month Retention"},
	values: func(k *SharedKPIs) []string {
		c := coreOf(k)
		top := map[int]string{3: format.NA, 6: format.NA}
		if k != nil && k.Retention != nil {
			for _, tc := range k.Retention.TopCohorts {
				if _, ok := top[tc.Offset]; ok {
					top[tc.Offset] = topCohortValue(tc)
				}
			}
		}
		return []string{
			fv(c.NumCustomers, format.Number),
			fv(c.NewCustomerShare, format.Percent),
			fv(c.RevenuePerCustomer, format.Dollar),
			top[3],
			top[6],
		}
	},
}
