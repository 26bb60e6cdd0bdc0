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

// InvoiceDetail is one invoice of the working set.
type InvoiceDetail struct {
	InvoiceID      int64     `json:"invoice_id"`
	CustomerID     int64     `json:"customer_id"`
	InvoiceDate    time.Time `json:"invoice_date"`
	BillingCountry string    `json:"billing_country"`
	Total          float64   `json:"total"`
}

// InvoiceDetails returns working-set invoices in dr ordered by date and id.
// limit <= 0 returns every row.
func InvoiceDetails(ctx context.Context, q Querier, dr DateRange, limit int) ([]InvoiceDetail, error) {
	dr, err := resolveRange(ctx, q, dr)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	query := `
		SELECT i.InvoiceId, i.CustomerId, i.InvoiceDate, i.BillingCountry, CAST(i.Total AS DOUBLE)
		FROM filtered_invoices fi
		JOIN Invoice i ON i.InvoiceId = fi.InvoiceId
		WHERE fi.dt BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
		ORDER BY i.InvoiceDate, i.InvoiceId`
	args := rangeArgs(dr)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	start := time.Now()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		observe(ctx, "invoice_details", start, err)
		return nil, fmt.Errorf("failed to query invoice details: %w", err)
	}
	defer closeQuietly(rows)

	var out []InvoiceDetail
	for rows.Next() {
		var d InvoiceDetail
		if err := rows.Scan(&d.InvoiceID, &d.CustomerID, &d.InvoiceDate, &d.BillingCountry, &d.Total); err != nil {
			return nil, fmt.Errorf("failed to scan invoice detail: %w", err)
		}
		out = append(out, d)
	}
	err = rows.Err()
	observe(ctx, "invoice_details", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating invoice details: %w", err)
	}
	return out, nil
}
