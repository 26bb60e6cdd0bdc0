// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/tomtom215/chinookdash/internal/dashboard"
	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/models"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown page", fmt.Errorf("%w: %q", dashboard.ErrUnknownPage, "x"), http.StatusNotFound, models.ErrCodeNotFound},
		{"unknown metric", fmt.Errorf("%w: %q", dashboard.ErrUnknownMetric, "x"), http.StatusBadRequest, models.ErrCodeValidation},
		{"invalid group", fmt.Errorf("wrap: %w", database.ErrInvalidGroup), http.StatusBadRequest, models.ErrCodeValidation},
		{"invalid mode", database.ErrInvalidMode, http.StatusBadRequest, models.ErrCodeValidation},
		{"no data", database.ErrNoData, http.StatusNotFound, models.ErrCodeNotFound},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, models.ErrCodeService},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, models.ErrCodeDatabase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, apiErr := classifyError(tt.err)
			if status != tt.status || apiErr.Code != tt.code {
				t.Errorf("classifyError() = %d %s, want %d %s", status, apiErr.Code, tt.status, tt.code)
			}
		})
	}
}

func TestClassifyError_HidesInternals(t *testing.T) {
	t.Parallel()
	_, apiErr := classifyError(errors.New("duckdb: /secret/path corrupted"))
	if apiErr.Message != "A database error occurred" {
		t.Errorf("message leaks error: %q", apiErr.Message)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()
	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
}

func TestParams(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet,
		"/x?genres=Rock&genres=+&genres=Jazz&artists=Emerson,+Lake+%26+Palmer&top_n=abc&limit=7&offsets=3,x,,6", nil)

	f := filterParams(r)
	if !reflect.DeepEqual(f.Genres, []string{"Rock", "Jazz"}) {
		t.Errorf("Genres = %v", f.Genres)
	}
	if !reflect.DeepEqual(f.Artists, []string{"Emerson, Lake & Palmer"}) {
		t.Errorf("Artists = %v, commas must not split names", f.Artists)
	}
	if got := getIntParam(r, "top_n", 5); got != 5 {
		t.Errorf("top_n = %d, want default on junk", got)
	}
	if got := getIntParam(r, "limit", 0); got != 7 {
		t.Errorf("limit = %d", got)
	}
	if got := parseCommaSeparatedInts(r.URL.Query().Get("offsets")); !reflect.DeepEqual(got, []int{3, 6}) {
		t.Errorf("offsets = %v", got)
	}

	req := toDashboardRequest(pageParams(r, "group"))
	if req.Page != "group" || len(req.Filter.Genres) != 2 {
		t.Errorf("toDashboardRequest() = %+v", req)
	}
}

func TestRespondJSON_ETag(t *testing.T) {
	t.Parallel()

	resp := func() *models.APIResponse {
		return &models.APIResponse{Status: models.StatusSuccess, Data: map[string]int{"a": 1}}
	}
	w1 := httptest.NewRecorder()
	respondJSON(w1, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, resp())
	w2 := httptest.NewRecorder()
	respondJSON(w2, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, resp())

	if w1.Header().Get("ETag") == "" || w1.Header().Get("ETag") != w2.Header().Get("ETag") {
		t.Errorf("ETag not stable: %q vs %q", w1.Header().Get("ETag"), w2.Header().Get("ETag"))
	}
}
