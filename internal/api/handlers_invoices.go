// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/validation"
)

var invoiceCSVHeader = []string{"invoice_id", "customer_id", "invoice_date", "billing_country", "total"}

func (h *Handler) invoiceRequest(w http.ResponseWriter, r *http.Request, defaultLimit int) (validation.InvoiceExportRequest, bool) {
	req := validation.InvoiceExportRequest{
		Filters: filterParams(r),
		Limit:   getIntParam(r, "limit", defaultLimit),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return req, false
	}
	return req, true
}

// Invoices returns invoice detail rows for the filters.
//
// @Summary List invoices
// @Description Invoice rows of the filtered working set ordered by date; limit 0 returns every row
// @Tags Invoices
// @Produce json
// @Param limit query int false "Row limit (0-100000, default 100)"
// @Success 200 {object} models.APIResponse{data=[]database.InvoiceDetail}
// @Failure 400 {object} models.APIResponse
// @Router /invoices [get]
func (h *Handler) Invoices(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := h.invoiceRequest(w, r, defaultInvoiceLimit)
	if !ok {
		return
	}
	rows, err := h.svc.Invoices(r.Context(), toFilter(req.Filters), req.Limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []database.InvoiceDetail{}
	}
	respondSuccess(w, r, rows, start, false)
}

// ExportInvoicesCSV streams invoice detail rows as CSV.
//
// @Summary Export invoices as CSV
// @Description Every invoice row of the filtered working set unless limit is set
// @Tags Invoices
// @Produce text/csv
// @Param limit query int false "Row limit (0 = all)"
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} models.APIResponse
// @Router /invoices/export.csv [get]
func (h *Handler) ExportInvoicesCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := h.invoiceRequest(w, r, 0)
	if !ok {
		return
	}
	rows, err := h.svc.Invoices(r.Context(), toFilter(req.Filters), req.Limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("invoices_%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)

	if err := writeInvoicesCSV(w, rows); err != nil {
		// headers are gone; all we can do is log
		logging.Ctx(r.Context()).Error().Err(err).Int("rows", len(rows)).Msg("CSV export failed")
	}
}

func writeInvoicesCSV(w http.ResponseWriter, rows []database.InvoiceDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(invoiceCSVHeader); err != nil {
		return err
	}
	for i := range rows {
		inv := &rows[i]
		record := []string{
			strconv.FormatInt(inv.InvoiceID, 10),
			strconv.FormatInt(inv.CustomerID, 10),
			inv.InvoiceDate.Format(database.DateLayout),
			inv.BillingCountry,
			strconv.FormatFloat(inv.Total, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
