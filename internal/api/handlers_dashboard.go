// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/chinookdash/internal/dashboard"
	"github.com/tomtom215/chinookdash/internal/models"
	"github.com/tomtom215/chinookdash/internal/validation"
)

// maxBodyBytes bounds POSTed page requests.
const maxBodyBytes = 64 * 1024

// FilterOptions returns the selectable filter values.
//
// @Summary Get filter options
// @Description Returns distinct genres, artists and billing countries plus the dataset date span
// @Tags Filters
// @Produce json
// @Success 200 {object} models.APIResponse{data=database.FilterOptions}
// @Failure 500 {object} models.APIResponse
// @Router /filters [get]
func (h *Handler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	opts, err := h.svc.FilterOptions(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, opts, start, false)
}

// FilterDefaults returns the clear-filters state.
//
// @Summary Get default filters
// @Description Returns the full date range with no selections and the default metric
// @Tags Filters
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /filters/defaults [get]
func (h *Handler) FilterDefaults(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f, metric, err := h.svc.Defaults(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"filters": f,
		"metric":  metric,
	}, start, false)
}

// Summary returns the static dataset summary.
//
// @Summary Get dataset summary
// @Description Date range, purchases, customers, tracks sold, revenue and distinct genres, artists and countries of the whole dataset
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]database.SummaryRow}
// @Router /summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rows, err := h.svc.Summary(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, rows, start, false)
}

// WorkingSet returns row counts for the filtered working set.
//
// @Summary Get working set statistics
// @Tags Dashboard
// @Produce json
// @Param genres query []string false "Genre selection" collectionFormat(multi)
// @Param artists query []string false "Artist selection" collectionFormat(multi)
// @Param countries query []string false "Country selection" collectionFormat(multi)
// @Success 200 {object} models.APIResponse{data=database.WorkingSetStats}
// @Failure 400 {object} models.APIResponse
// @Router /working-set [get]
func (h *Handler) WorkingSet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	fr := filterParams(r)
	if apiErr := validateRequest(&fr); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	stats, err := h.svc.WorkingSet(r.Context(), toFilter(fr))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, stats, start, false)
}

// Page returns one page bundle. GET reads parameters from the query
// string, POST from a JSON PageRequest body.
//
// @Summary Get a dashboard page
// @Description Builds the cards, charts and tables of one page for the given filters
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param page path string true "Page" Enums(overview, timeseries, group, geo, retention, insights)
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param genres query []string false "Genre selection" collectionFormat(multi)
// @Param artists query []string false "Artist selection" collectionFormat(multi)
// @Param countries query []string false "Country selection" collectionFormat(multi)
// @Param group query string false "Grouping" Enums(genre, artist, country)
// @Param metric query string false "Metric" Enums(revenue, num_customers, num_purchases, tracks_sold, first_time_customers)
// @Param geo_mode query string false "Geo aggregation" Enums(yearly, aggregate)
// @Param top_n query int false "Top N"
// @Param theme query string false "Color scheme" Enums(light, dark)
// @Success 200 {object} models.APIResponse{data=models.PageBundle}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /pages/{page} [get]
// @Router /pages/{page} [post]
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	page := chi.URLParam(r, "page")
	if !slices.Contains(dashboard.Pages, page) {
		respondError(w, r, http.StatusNotFound, &models.APIError{
			Code:    models.ErrCodeNotFound,
			Message: "Unknown page " + sanitizeLogValue(page),
			Details: map[string]interface{}{"pages": dashboard.Pages},
		}, nil)
		return
	}

	var req validation.PageRequest
	if r.Method == http.MethodPost {
		if err := decodeBody(w, r, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, &models.APIError{
				Code:    models.ErrCodeValidation,
				Message: "Invalid JSON request body",
			}, nil)
			return
		}
		req.Page = page
	} else {
		req = pageParams(r, page)
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	bundle, err := h.svc.Bundle(r.Context(), toDashboardRequest(req))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, bundle, start, bundle.Cached)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// SharedKPIs returns the KPI bundle behind the insights page.
//
// @Summary Get shared KPIs
// @Description Core KPIs, top-N per group for every metric, distinct value counts and retention KPIs
// @Tags Dashboard
// @Produce json
// @Param top_n query int false "Top N"
// @Success 200 {object} models.APIResponse{data=dashboard.SharedKPIs}
// @Failure 400 {object} models.APIResponse
// @Router /kpis [get]
func (h *Handler) SharedKPIs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	fr := filterParams(r)
	if apiErr := validateRequest(&fr); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	n := getIntParam(r, "top_n", 0)
	if n < 0 || n > 50 {
		respondError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: "top_n must be between 1 and 50",
			Details: map[string]interface{}{"field": "top_n"},
		}, nil)
		return
	}

	kpis, cached, err := h.svc.Shared(r.Context(), toFilter(fr), n)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, kpis, start, cached)
}

// Retention returns cohort retention data.
//
// @Summary Get cohort retention
// @Description Cohort retention grid, overall decay curve and retention KPIs
// @Tags Dashboard
// @Produce json
// @Param max_offset query int false "Largest month offset (0 spans the working set)"
// @Param offsets query string false "Comma-separated top-cohort offsets, e.g. 3,6"
// @Success 200 {object} models.APIResponse{data=dashboard.RetentionReport}
// @Failure 400 {object} models.APIResponse
// @Router /retention [get]
func (h *Handler) Retention(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := validation.RetentionRequest{
		Filters:   filterParams(r),
		MaxOffset: getIntParam(r, "max_offset", 0),
		Offsets:   parseCommaSeparatedInts(r.URL.Query().Get("offsets")),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	report, err := h.svc.Retention(r.Context(), toFilter(req.Filters), req.MaxOffset, req.Offsets)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, report, start, false)
}

// LastUpdated returns the footer date.
//
// @Summary Get last-updated date
// @Description Date of the latest repository commit, or Unavailable
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /last-updated [get]
func (h *Handler) LastUpdated(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]string{"last_updated": h.svc.LastUpdated()}, time.Now(), false)
}
