// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package dashboard

import (
	"fmt"

	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/format"
	"github.com/tomtom215/chinookdash/internal/models"
)

func fv(v interface{}, kind format.Kind) string {
	return format.MustKPIValue(v, kind)
}

// countWithPct renders "12 (40.00%)".
func countWithPct(n int64, pct *float64) string {
	return fmt.Sprintf("%s (%s)", fv(n, format.Number), fv(pct, format.Percent))
}

// groupLabel renders a group value, with its flag for countries.
func groupLabel(g database.Group, val string) string {
	if g == database.GroupCountry {
		if flag := format.Flag(val, format.LabelName); flag != format.NA {
			return flag
		}
	}
	return val
}

func metricKind(metric string) format.Kind {
	if metric == "revenue" {
		return format.Dollar
	}
	return format.Number
}

// groupCards builds the ranked cards of the group and geo pages from the
// top rows of g sorted by metric.
func groupCards(g database.Group, rows []database.GroupKPI, metric string, n int) []models.Card {
	label := g.Label()
	top, _ := database.TopN(rows, metric, n) //nolint:errcheck // metric validated by withDefaults
	byRevenue, _ := database.TopN(rows, "revenue", n) //nolint:errcheck

	ranked := models.Card{
		ID:      "top-" + string(g),
		Title:   fmt.Sprintf("Top %ss", label),
		Icon:    "trophy",
		Tooltip: fmt.Sprintf("Ranked by %s", database.MetricLabel(metric)),
		Footer:  fmt.Sprintf("Total %ss: %s", label, fv(len(rows), format.Number)),
		Ordered: true,
	}
	for _, r := range top {
		v, _ := r.Metric(metric)
		ranked.Items = append(ranked.Items, models.CardItem{Label: groupLabel(g, r.GroupVal), Value: fv(v, metricKind(metric))})
	}

	share := models.Card{ID: "revenue-share-" + string(g), Title: "Revenue (% Share)", Icon: "dollar", Ordered: true}
	for _, r := range byRevenue {
		share.Items = append(share.Items, models.CardItem{
			Label: groupLabel(g, r.GroupVal),
			Value: fmt.Sprintf("%s (%s)", fv(r.Revenue, format.Dollar), fv(r.RevenueShare, format.Percent)),
		})
	}

	third := models.Card{ID: "detail-" + string(g), Ordered: true}
	if g.HasCatalog() {
		third.Title = "Catalog Size (% Sold)"
		third.Icon = "disc"
		third.Tooltip = "Tracks in the catalog and the share sold at least once in range"
		for _, r := range top {
			third.Items = append(third.Items, models.CardItem{
				Label: r.GroupVal,
				Value: fmt.Sprintf("%s (%s)", fv(r.CatalogSize, format.Number), fv(r.PctCatalogSold, format.Percent)),
			})
		}
	} else {
		third.Title = "Customers (Avg Revenue Per)"
		third.Icon = "users"
		for _, r := range top {
			third.Items = append(third.Items, models.CardItem{
				Label: groupLabel(g, r.GroupVal),
				Value: fmt.Sprintf("%s (%s)", fv(r.NumCustomers, format.Number), fv(r.AvgRevenuePerCustomer, format.Dollar)),
			})
		}
	}
	return []models.Card{ranked, share, third}
}

func timeseriesCards(m *database.CoreMetrics) []models.Card {
	if m == nil {
		m = &database.CoreMetrics{}
	}
	return []models.Card{
		{
			ID: "ts-revenue", Title: "Revenue", Icon: "dollar",
			Items: []models.CardItem{
				{Label: "Total", Value: fv(m.Revenue, format.Dollar)},
				{Label: "Avg / Month", Value: fv(m.RevenuePerMonth, format.Dollar)},
			},
		},
		{
			ID: "ts-purchases", Title: "Purchases", Icon: "cart",
			Items: []models.CardItem{
				{Label: "Purchases", Value: fv(m.NumPurchases, format.Number)},
				{Label: "Tracks Sold", Value: fv(m.TracksSold, format.Number)},
				{Label: "Avg $ / Purchase", Value: fv(m.RevenuePerPurchase, format.Dollar)},
			},
		},
		{
			ID: "ts-customers", Title: "Customers", Icon: "users",
			Items: []models.CardItem{
				{Label: "Total", Value: fv(m.NumCustomers, format.Number)},
				{Label: "First-Time %", Value: fv(m.NewCustomerShare, format.Percent), Tooltip: "Customers whose first purchase falls in range"},
			},
		},
	}
}

// topCohortValue renders "Jan 2009 (40.00%)", or NA when no cohort
// reached the offset.
func topCohortValue(c database.TopCohort) string {
	if c.CohortMonth == nil || c.RetentionPct == nil {
		return format.NA
	}
	return fmt.Sprintf("%s (%s)", c.CohortMonth.Format("Jan 2006"), fv(c.RetentionPct, format.Percent))
}

func retentionCards(s *database.RetentionStats, offsets []int) []models.Card {
	if s == nil {
		s = &database.RetentionStats{}
	}
	overview := models.Card{
		ID: "ret-overview", Title: "Customer Overview", Icon: "users",
		Items: []models.CardItem{
			{Label: "Active Customers", Value: fv(s.NumCustomers, format.Number)},
			{Label: "New Customers", Value: countWithPct(s.NumNew, s.PctNew), Tooltip: "First purchase in range"},
			{Label: "Returning Customers", Value: countWithPct(s.RetNReturn, s.RetRateReturn), Tooltip: "Purchased before the range and again in it"},
			{Label: "Converted New Customers", Value: countWithPct(s.RetNConv, s.RetRateConv), Tooltip: "New customers who purchased again in range"},
		},
	}
	repeat := models.Card{
		ID: "ret-repeat", Title: "Repeat Customer Behavior", Icon: "repeat",
		Items: []models.CardItem{
			{Label: "Repeat Purchasers (Lifetime)", Value: countWithPct(s.RetNAny, s.RetRateAny)},
			{Label: "Repeat Purchasers (In Range)", Value: countWithPct(s.RetNWindow, s.RetRateWindow)},
			{Label: "Avg Lifespan (Months)", Value: fv(s.AvgLifeMoTotal, format.Float)},
			{Label: "Avg Lifespan In Range (Months)", Value: fv(s.AvgLifeMoWindow, format.Float)},
		},
	}
	tempo := models.Card{
		ID: "ret-tempo", Title: "Purchase Tempo", Icon: "clock",
		Items: []models.CardItem{
			{Label: "Median Days Between Purchases", Value: fv(s.MedGapLife, format.Float)},
			{Label: "Median Days Between Purchases (In Range)", Value: fv(s.MedGapWindow, format.Float)},
			{Label: "Median Win-Back Gap (Days)", Value: fv(s.MedGapWinback, format.Float)},
			{Label: "Median Days to Second Purchase", Value: fv(s.MedGapRet, format.Float)},
			{Label: "Avg Days Between Purchases", Value: fv(s.AvgGapLife, format.Float)},
		},
	}
	for _, c := range topCohorts(s, offsets) {
		tempo.Items = append(tempo.Items, models.CardItem{
			Label: fmt.Sprintf("Top %d-Month Cohort", c.Offset),
			Value: topCohortValue(c),
		})
	}
	return []models.Card{overview, repeat, tempo}
}

// topCohorts returns s.TopCohorts, padded with empty entries for offsets
// the stats were not computed for.
func topCohorts(s *database.RetentionStats, offsets []int) []database.TopCohort {
	have := make(map[int]database.TopCohort, len(s.TopCohorts))
	for _, c := range s.TopCohorts {
		have[c.Offset] = c
	}
	out := make([]database.TopCohort, 0, len(offsets))
	for _, o := range offsets {
		c, ok := have[o]
		if !ok {
			c = database.TopCohort{Offset: o}
		}
		out = append(out, c)
	}
	return out
}

// overviewCards summarizes the working set and the headline KPIs in range.
func overviewCards(ws database.WorkingSetStats, m *database.CoreMetrics) []models.Card {
	if m == nil {
		m = &database.CoreMetrics{}
	}
	set := models.Card{
		ID: "working-set", Title: "Filtered Invoices", Icon: "filter",
		Tooltip: "Invoices matching the genre, artist and country selections",
		Items: []models.CardItem{
			{Label: "Invoices", Value: fv(ws.Rows, format.Number)},
			{Label: "Customers", Value: fv(ws.Customers, format.Number)},
			{Label: "Invoice Dates", Value: fv(ws.Dates, format.Number)},
		},
	}
	if ws.MinDate != nil && ws.MaxDate != nil {
		set.Footer = fmt.Sprintf("%s - %s", ws.MinDate.Format("Jan 2006"), ws.MaxDate.Format("Jan 2006"))
	}
	kpis := models.Card{
		ID: "core-kpis", Title: "Sales in Range", Icon: "chart",
		Items: []models.CardItem{
			{Label: "Revenue", Value: fv(m.Revenue, format.Dollar)},
			{Label: "Purchases", Value: fv(m.NumPurchases, format.Number)},
			{Label: "Customers", Value: fv(m.NumCustomers, format.Number)},
			{Label: "Tracks Sold", Value: fv(m.TracksSold, format.Number)},
			{Label: "Genres", Value: fv(m.NumGenres, format.Number)},
			{Label: "Artists", Value: fv(m.NumArtists, format.Number)},
			{Label: "Countries", Value: fv(m.NumCountries, format.Number)},
		},
		Footer: m.DateRange,
	}
	return []models.Card{set, kpis}
}
