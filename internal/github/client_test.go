// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/chinookdash/internal/config"
)

const commitsBody = `[{"sha":"abc123","commit":{"author":{"date":"2025-07-20T14:03:00Z"},"committer":{"date":"2025-07-21T09:00:00Z"}}}]`

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.GitHubConfig{
		Owner:   "corvidfox",
		Repo:    "chinook-dashboard",
		Token:   token,
		APIURL:  srv.URL,
		Timeout: 5 * time.Second,
	}
	return NewClient(cfg, WithLimiter(rate.NewLimiter(rate.Inf, 1)))
}

func TestLatestCommit(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(commitsBody))
	}, "ghp_secret")

	got, err := c.LatestCommit(context.Background())
	if err != nil {
		t.Fatalf("LatestCommit() error = %v", err)
	}
	want := time.Date(2025, 7, 20, 14, 3, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LatestCommit() = %v, want %v", got, want)
	}
	if gotAuth != "Bearer ghp_secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/repos/corvidfox/chinook-dashboard/commits" || gotQuery != "per_page=1" {
		t.Errorf("request = %s?%s", gotPath, gotQuery)
	}
}

func TestLatestCommitNoToken(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("unexpected Authorization header %q", h)
		}
		_, _ = w.Write([]byte(commitsBody))
	}, "")

	if _, err := c.LatestCommit(context.Background()); err != nil {
		t.Fatalf("LatestCommit() error = %v", err)
	}
}

func TestLatestCommitErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"empty repository", http.StatusOK, `[]`, ErrNoCommits},
		{"server error", http.StatusInternalServerError, ``, nil},
		{"bad json", http.StatusOK, `{"not":"a list"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "")

			_, err := c.LatestCommit(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLatestCommitRateLimited(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	reset := time.Now().Add(time.Hour).Unix()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
		w.WriteHeader(http.StatusForbidden)
	}, "")

	for i := 0; i < 3; i++ {
		if _, err := c.LatestCommit(context.Background()); !errors.Is(err, ErrRateLimited) {
			t.Fatalf("call %d error = %v, want ErrRateLimited", i, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1 (later calls wait for reset)", calls.Load())
	}
	if c.State() != gobreaker.StateClosed {
		t.Errorf("rate limiting tripped the breaker: %v", c.State())
	}
}

func TestLatestCommitBreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, "")

	for i := 0; i < 5; i++ {
		_, _ = c.LatestCommit(context.Background())
	}
	if c.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", c.State())
	}
	if calls.Load() != 3 {
		t.Errorf("server called %d times, want 3", calls.Load())
	}
	if _, err := c.LatestCommit(context.Background()); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
}

func TestRateLimitedUntil(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  int
		headers map[string]string
		want    time.Time
		limited bool
	}{
		{"ok", http.StatusOK, nil, time.Time{}, false},
		{"forbidden without headers", http.StatusForbidden, nil, time.Time{}, false},
		{"retry after", http.StatusForbidden, map[string]string{"Retry-After": "30"}, now.Add(30 * time.Second), true},
		{"primary limit", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Reset": "1735693200"}, time.Unix(1735693200, 0), true},
		{"bare 429", http.StatusTooManyRequests, nil, now.Add(time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			for k, v := range tt.headers {
				resp.Header.Set(k, v)
			}
			got, limited := rateLimitedUntil(resp, now)
			if limited != tt.limited || !got.Equal(tt.want) {
				t.Errorf("rateLimitedUntil() = %v, %v, want %v, %v", got, limited, tt.want, tt.limited)
			}
		})
	}
}
