// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package api

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chinookdash/internal/cache"
	"github.com/tomtom215/chinookdash/internal/config"
	"github.com/tomtom215/chinookdash/internal/dashboard"
	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/models"
	ws "github.com/tomtom215/chinookdash/internal/websocket"
)

func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

// testDBSemaphore keeps a single DuckDB instance open at a time.
var testDBSemaphore = make(chan struct{}, 1)

type fixedCommits string

func (f fixedCommits) LastUpdated() string { return string(f) }

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Timeout: 30 * time.Second, RuntimeVersion: "test-1"},
		Cache:    config.CacheConfig{Type: "ttl", TTL: time.Minute},
		Security: config.SecurityConfig{RateLimitDisabled: true},
	}
}

// setupHandler returns a handler over the seeded in-memory dataset and a
// running hub.
func setupHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB"})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	c := cache.New(time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	svc := dashboard.NewService(db, cache.NewMemoizer(c, cache.CacheTypeTTL), config.DashboardConfig{}, fixedCommits("Oct 01, 2026"))

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.Serve(ctx) }()
	t.Cleanup(cancel)

	h := NewHandler(svc, db, testConfig(), hub, "1.2.3")
	return h, NewRouter(h).SetupChi()
}

func doRequest(t *testing.T, router http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data interface{}) models.APIResponse {
	t.Helper()
	var envelope struct {
		models.APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if data != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return envelope.APIResponse
}

func TestPage_AllPages(t *testing.T) {
	_, router := setupHandler(t)

	for _, page := range dashboard.Pages {
		w := doRequest(t, router, http.MethodGet, "/api/v1/pages/"+page, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d body = %s", page, w.Code, w.Body.String())
		}
		var bundle models.PageBundle
		resp := decodeResponse(t, w, &bundle)
		if resp.Status != models.StatusSuccess || bundle.Page != page {
			t.Errorf("%s: status = %s page = %s", page, resp.Status, bundle.Page)
		}
		if resp.Metadata.RequestID == "" {
			t.Errorf("%s: missing request id", page)
		}
	}
}

func TestPage_QueryFilters(t *testing.T) {
	_, router := setupHandler(t)

	q := url.Values{}
	q.Add("genres", "Rock")
	q.Add("genres", "Jazz")
	q.Set("group", "artist")
	q.Set("start_date", "2010-01-15")
	q.Set("end_date", "2011-06-03")
	w := doRequest(t, router, http.MethodGet, "/api/v1/pages/group?"+q.Encode(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var bundle models.PageBundle
	decodeResponse(t, w, &bundle)
	if got := bundle.Filter.Genres; len(got) != 2 || got[0] != "Jazz" || got[1] != "Rock" {
		t.Errorf("Genres echo = %v, want sorted [Jazz Rock]", got)
	}
	if bundle.Filter.StartDate != "2010-01-01" || bundle.Filter.EndDate != "2011-06-30" {
		t.Errorf("range echo = %s..%s, want month aligned", bundle.Filter.StartDate, bundle.Filter.EndDate)
	}
}

func TestPage_POSTAndCaching(t *testing.T) {
	_, router := setupHandler(t)

	body := `{"filters":{"countries":["USA"]},"metric":"num_customers"}`
	first := doRequest(t, router, http.MethodPost, "/api/v1/pages/timeseries", strings.NewReader(body))
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d body = %s", first.Code, first.Body.String())
	}
	second := doRequest(t, router, http.MethodPost, "/api/v1/pages/timeseries", strings.NewReader(body))
	resp := decodeResponse(t, second, nil)
	if !resp.Metadata.Cached {
		t.Error("repeated request should be served from cache")
	}
	if first.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
}

func TestPage_NotModified(t *testing.T) {
	_, router := setupHandler(t)

	first := doRequest(t, router, http.MethodGet, "/api/v1/summary", nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	req.Header.Set("If-None-Match", first.Header().Get("ETag"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
}

func TestPage_Errors(t *testing.T) {
	_, router := setupHandler(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"unknown page", http.MethodGet, "/api/v1/pages/billing", "", http.StatusNotFound, models.ErrCodeNotFound},
		{"bad metric", http.MethodGet, "/api/v1/pages/group?metric=profit", "", http.StatusBadRequest, models.ErrCodeValidation},
		{"bad group", http.MethodGet, "/api/v1/pages/group?group=label", "", http.StatusBadRequest, models.ErrCodeValidation},
		{"bad date", http.MethodGet, "/api/v1/pages/overview?start_date=2010-13-01", "", http.StatusBadRequest, models.ErrCodeValidation},
		{"reversed range", http.MethodGet, "/api/v1/pages/overview?start_date=2012-01-01&end_date=2011-01-01", "", http.StatusBadRequest, models.ErrCodeValidation},
		{"bad json", http.MethodPost, "/api/v1/pages/geo", "{", http.StatusBadRequest, models.ErrCodeValidation},
		{"unknown field", http.MethodPost, "/api/v1/pages/geo", `{"colour":"red"}`, http.StatusBadRequest, models.ErrCodeValidation},
		{"bad invoice limit", http.MethodGet, "/api/v1/invoices?limit=200000", "", http.StatusBadRequest, models.ErrCodeValidation},
		{"bad offsets", http.MethodGet, "/api/v1/retention?offsets=0", "", http.StatusBadRequest, models.ErrCodeValidation},
		{"unknown route", http.MethodGet, "/api/v1/nothing", "", http.StatusNotFound, models.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			w := doRequest(t, router, tt.method, tt.target, body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			resp := decodeResponse(t, w, nil)
			if resp.Status != models.StatusError || resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("envelope = %+v", resp)
			}
		})
	}
}

func TestFiltersAndDefaults(t *testing.T) {
	_, router := setupHandler(t)

	var opts database.FilterOptions
	decodeResponse(t, doRequest(t, router, http.MethodGet, "/api/v1/filters", nil), &opts)
	if len(opts.Genres) == 0 || len(opts.Countries) == 0 || opts.MinDate == "" {
		t.Errorf("filter options = %+v", opts)
	}

	var defaults struct {
		Filters database.Filter `json:"filters"`
		Metric  string          `json:"metric"`
	}
	decodeResponse(t, doRequest(t, router, http.MethodGet, "/api/v1/filters/defaults", nil), &defaults)
	if defaults.Metric != "revenue" || defaults.Filters.StartDate != opts.MinDate || defaults.Filters.EndDate != opts.MaxDate {
		t.Errorf("defaults = %+v", defaults)
	}
	if defaults.Filters.HasSelections() {
		t.Error("defaults should carry no selections")
	}
}

func TestInvoicesJSONAndCSV(t *testing.T) {
	_, router := setupHandler(t)

	var rows []database.InvoiceDetail
	decodeResponse(t, doRequest(t, router, http.MethodGet, "/api/v1/invoices?limit=5", nil), &rows)
	if len(rows) != 5 {
		t.Errorf("limit=5 returned %d rows", len(rows))
	}

	w := doRequest(t, router, http.MethodGet, "/api/v1/invoices/export.csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(records) != 121 {
		t.Errorf("CSV has %d records, want header + 120 invoices", len(records))
	}
	if strings.Join(records[0], ",") != "invoice_id,customer_id,invoice_date,billing_country,total" {
		t.Errorf("header = %v", records[0])
	}
}

func TestSharedKPIsAndRetention(t *testing.T) {
	_, router := setupHandler(t)

	var kpis dashboard.SharedKPIs
	w := doRequest(t, router, http.MethodGet, "/api/v1/kpis?top_n=3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("kpis status = %d body = %s", w.Code, w.Body.String())
	}
	decodeResponse(t, w, &kpis)
	if kpis.Core == nil || len(kpis.TopN[database.GroupCountry]["revenue"]) != 3 {
		t.Errorf("shared KPIs = %+v", kpis)
	}

	var report dashboard.RetentionReport
	w = doRequest(t, router, http.MethodGet, "/api/v1/retention?max_offset=6&offsets=1,3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("retention status = %d body = %s", w.Code, w.Body.String())
	}
	decodeResponse(t, w, &report)
	if len(report.Cohorts) == 0 || len(report.TopCohorts) != 2 {
		t.Errorf("retention report = %d cohorts %d top", len(report.Cohorts), len(report.TopCohorts))
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, router := setupHandler(t)

	var health models.HealthStatus
	w := doRequest(t, router, http.MethodGet, "/api/v1/health", nil)
	decodeResponse(t, w, &health)
	if w.Code != http.StatusOK || health.Status != "healthy" || !health.DatabaseOK {
		t.Errorf("health = %d %+v", w.Code, health)
	}
	if health.Version != "1.2.3" || health.RuntimeVersion != "test-1" || health.LastUpdated != "Oct 01, 2026" {
		t.Errorf("health metadata = %+v", health)
	}

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		if w := doRequest(t, router, http.MethodGet, path, nil); w.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, w.Code)
		}
	}
}

func TestHealthReady_NoDatabase(t *testing.T) {
	t.Parallel()
	h := NewHandler(nil, nil, testConfig(), nil, "dev")
	w := httptest.NewRecorder()
	h.HealthReady(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestIndexAndMetrics(t *testing.T) {
	_, router := setupHandler(t)

	w := doRequest(t, router, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Oct 01, 2026") {
		t.Errorf("index status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `data-page="retention"`) {
		t.Error("index missing page navigation")
	}

	doRequest(t, router, http.MethodGet, "/api/v1/summary", nil)
	w = doRequest(t, router, http.MethodGet, "/metrics", nil)
	if !strings.Contains(w.Body.String(), "api_requests_total") {
		t.Error("/metrics missing API request counter")
	}
}

func TestLastUpdatedAndPerformance(t *testing.T) {
	_, router := setupHandler(t)

	var lu map[string]string
	decodeResponse(t, doRequest(t, router, http.MethodGet, "/api/v1/last-updated", nil), &lu)
	if lu["last_updated"] != "Oct 01, 2026" {
		t.Errorf("last_updated = %v", lu)
	}

	var perf struct {
		Endpoints []struct {
			Path string `json:"path"`
		} `json:"endpoints"`
	}
	decodeResponse(t, doRequest(t, router, http.MethodGet, "/api/v1/performance", nil), &perf)
	if len(perf.Endpoints) == 0 {
		t.Error("performance stats empty after requests")
	}
}
