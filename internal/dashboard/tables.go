// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package dashboard

import (
	"strconv"

	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/format"
	"github.com/tomtom215/chinookdash/internal/models"
)

const kindText = "text"

func column(id, name, kind string) models.Column {
	return models.Column{ID: id, Name: name, Kind: kind}
}

// formatCell renders a raw string value of the given column kind. Values
// that do not parse as numbers are passed through.
func formatCell(value, kind string) string {
	if kind == "" || kind == kindText {
		return value
	}
	k, err := format.ParseKind(kind)
	if err != nil {
		return value
	}
	if k == format.Country {
		return fv(value, k)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	return fv(f, k)
}

func summaryTable(rows []database.SummaryRow) models.Table {
	t := models.Table{
		ID:      "dataset-summary",
		Title:   "Dataset Summary",
		Columns: []models.Column{column("metric", "Metric", kindText), column("value", "Value", kindText)},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, map[string]string{"metric": r.Metric, "value": formatCell(r.Value, r.Kind)})
	}
	return t
}

func invoiceTable(rows []database.InvoiceDetail) models.Table {
	t := models.Table{
		ID:    "invoices",
		Title: "Invoices",
		Columns: []models.Column{
			column("invoice_id", "Invoice", string(format.Number)),
			column("customer_id", "Customer", string(format.Number)),
			column("invoice_date", "Date", kindText),
			column("billing_country", "Country", string(format.Country)),
			column("total", "Total", string(format.Dollar)),
		},
		Rows: make([]map[string]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, map[string]string{
			"invoice_id":      strconv.FormatInt(r.InvoiceID, 10),
			"customer_id":     strconv.FormatInt(r.CustomerID, 10),
			"invoice_date":    r.InvoiceDate.Format(database.DateLayout),
			"billing_country": fv(r.BillingCountry, format.Country),
			"total":           fv(r.Total, format.Dollar),
		})
	}
	return t
}

// groupTable lists every group value with its KPIs. Catalog columns are
// added for genre and artist.
func groupTable(g database.Group, rows []database.GroupKPI) models.Table {
	cols := []models.Column{
		column("group_val", g.Label(), kindText),
		column("revenue", "Revenue", string(format.Dollar)),
		column("revenue_share", "Revenue Share", string(format.Percent)),
		column("num_customers", "Customers", string(format.Number)),
		column("num_purchases", "Purchases", string(format.Number)),
		column("tracks_sold", "Tracks Sold", string(format.Number)),
		column("first_time_customers", "First-Time Customers", string(format.Number)),
		column("avg_revenue_per_cust", "Avg Revenue / Customer", string(format.Dollar)),
		column("avg_revenue_per_purchase", "Avg Revenue / Purchase", string(format.Dollar)),
		column("avg_tracks_per_purchase", "Avg Tracks / Purchase", string(format.Float)),
	}
	if g.HasCatalog() {
		cols = append(cols,
			column("unique_tracks_sold", "Unique Tracks Sold", string(format.Number)),
			column("catalog_size", "Catalog Size", string(format.Number)),
			column("pct_catalog_sold", "% Catalog Sold", string(format.Percent)),
		)
	}

	t := models.Table{ID: "group-" + string(g), Title: g.Label() + " KPIs", Columns: cols, Rows: make([]map[string]string, 0, len(rows))}
	for _, r := range rows {
		row := map[string]string{
			"group_val":                groupLabel(g, r.GroupVal),
			"revenue":                  fv(r.Revenue, format.Dollar),
			"revenue_share":            fv(r.RevenueShare, format.Percent),
			"num_customers":            fv(r.NumCustomers, format.Number),
			"num_purchases":            fv(r.NumPurchases, format.Number),
			"tracks_sold":              fv(r.TracksSold, format.Number),
			"first_time_customers":     fv(r.FirstTimeCustomers, format.Number),
			"avg_revenue_per_cust":     fv(r.AvgRevenuePerCustomer, format.Dollar),
			"avg_revenue_per_purchase": fv(r.AvgRevenuePerPurchase, format.Dollar),
			"avg_tracks_per_purchase":  fv(r.AvgTracksPerPurchase, format.Float),
		}
		if g.HasCatalog() {
			row["unique_tracks_sold"] = fv(r.UniqueTracksSold, format.Number)
			row["catalog_size"] = fv(r.CatalogSize, format.Number)
			row["pct_catalog_sold"] = fv(r.PctCatalogSold, format.Percent)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// insightRow is one metric compared between the whole dataset and the
// filtered view.
type insightRow struct {
	label         string
	all, filtered string
}

func insightTable(id, title string, rows []insightRow) models.Table {
	t := models.Table{
		ID:    id,
		Title: title,
		Columns: []models.Column{
			column("metric", "Metric", kindText),
			column("all", "All Data", kindText),
			column("filtered", "Filtered View", kindText),
		},
		Rows: make([]map[string]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, map[string]string{"metric": r.label, "all": r.all, "filtered": r.filtered})
	}
	return t
}
