// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"generates when missing", "", false},
		{"reuses upstream id", "abc-123", true},
		{"replaces oversized id", strings.Repeat("x", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ctxID, logID string
			handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
				logID = logging.RequestIDFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			header := rec.Header().Get("X-Request-ID")
			if header == "" {
				t.Fatal("X-Request-ID header not set")
			}
			if header != ctxID || header != logID {
				t.Errorf("header %q, context %q, logging %q should match", header, ctxID, logID)
			}
			if (header == tt.incoming) != tt.wantSame {
				t.Errorf("reuse = %v, want %v", header == tt.incoming, tt.wantSame)
			}
		})
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}

func TestCompression(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("chinook ", 500)
	handler := Compression(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	})

	t.Run("gzip when accepted", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Header().Get("Content-Encoding") != "gzip" {
			t.Fatal("expected gzip encoding")
		}
		gr, err := gzip.NewReader(rec.Body)
		if err != nil {
			t.Fatalf("gzip reader: %v", err)
		}
		decoded, err := io.ReadAll(gr)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(decoded) != body {
			t.Error("decoded body mismatch")
		}
	})

	t.Run("plain without accept-encoding", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Header().Get("Content-Encoding") != "" {
			t.Error("unexpected content encoding")
		}
		if rec.Body.String() != body {
			t.Error("body mismatch")
		}
	})

	t.Run("websocket upgrade passes through", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		req.Header.Set("Upgrade", "websocket")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Header().Get("Content-Encoding") != "" {
			t.Error("websocket request should not be compressed")
		}
	})
}

func TestPrometheusMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return PrometheusMetrics(next.ServeHTTP)
	})
	r.Get("/api/v1/pages/{page}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues("GET", "/api/v1/pages/{page}", "202")
	before := testutil.ToFloat64(counter)

	for _, page := range []string{"overview", "geo"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pages/"+page, nil))
	}

	if d := testutil.ToFloat64(counter) - before; d != 2 {
		t.Errorf("expected both pages under one series, delta = %v", d)
	}
}

func TestPerformanceMonitor(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(3, time.Second)
	for i, d := range []int64{10, 20, 30, 40} {
		pm.RecordRequest(&RequestMetrics{
			Path:       "/api/v1/pages/{page}",
			Method:     http.MethodGet,
			DurationMS: d,
			StatusCode: http.StatusOK,
			Timestamp:  time.Unix(int64(i), 0),
		})
	}

	recent := pm.GetRecentMetrics(10)
	if len(recent) != 3 {
		t.Fatalf("window should hold 3 entries, got %d", len(recent))
	}
	if recent[0].DurationMS != 20 {
		t.Errorf("oldest entry should have been evicted, first = %d", recent[0].DurationMS)
	}

	stats := pm.GetStats()
	if len(stats) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(stats))
	}
	s := stats[0]
	if s.RequestCount != 3 || s.MinDuration != 20 || s.MaxDuration != 40 || s.AvgDuration != 30 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if s.P50Duration != 30 {
		t.Errorf("p50 = %d, want 30", s.P50Duration)
	}
}

func TestPerformanceMonitorMiddleware(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(10, 0)
	handler := pm.Middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))

	recent := pm.GetRecentMetrics(1)
	if len(recent) != 1 {
		t.Fatal("request not recorded")
	}
	if recent[0].StatusCode != http.StatusTeapot || recent[0].Method != http.MethodPost {
		t.Errorf("unexpected record: %+v", recent[0])
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %d", got)
	}
	sorted := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(sorted, 0.99); got != 9 {
		t.Errorf("p99 = %d, want 9", got)
	}
}
