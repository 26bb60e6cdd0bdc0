// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

// Package github looks up the repository's latest commit date for the
// dashboard footer and keeps it in a small JSON cache file.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/chinookdash/internal/config"
	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/metrics"
)

var (
	// ErrRateLimited is returned while GitHub has asked us to back off.
	ErrRateLimited = errors.New("github rate limit in effect")

	// ErrNoCommits is returned when the repository has no commits.
	ErrNoCommits = errors.New("repository has no commits")
)

const breakerName = "github-api"

// Client fetches commit metadata from the GitHub REST API. Calls go through
// a token bucket and a circuit breaker.
type Client struct {
	baseURL string
	owner   string
	repo    string
	token   string

	http    *http.Client
	cb      *gobreaker.CircuitBreaker[time.Time]
	limiter *rate.Limiter

	// unix nanos until which GitHub asked us to stop calling
	blockedUntil atomic.Int64
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLimiter replaces the outbound limiter (default one call per 10s, burst 3).
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates a client for cfg.Owner/cfg.Repo.
func NewClient(cfg *config.GitHubConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: cfg.APIURL,
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 3),
	}
	for _, opt := range opts {
		opt(c)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	c.cb = gobreaker.NewCircuitBreaker[time.Time](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    10 * time.Minute,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= 3
			if shouldTrip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		// rate limiting is not a fault of the API
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRateLimited)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	return c
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// State reports the circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Date time.Time `json:"date"`
		} `json:"author"`
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// LatestCommit returns the author date of the newest commit on the default
// branch.
func (c *Client) LatestCommit(ctx context.Context) (time.Time, error) {
	if until := c.blockedUntil.Load(); until > 0 && time.Now().UnixNano() < until {
		return time.Time{}, fmt.Errorf("%w until %s", ErrRateLimited, time.Unix(0, until).UTC().Format(time.RFC3339))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return time.Time{}, fmt.Errorf("wait for github limiter: %w", err)
	}

	t, err := c.cb.Execute(func() (time.Time, error) {
		return c.fetchLatest(ctx)
	})
	if err != nil {
		result := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, result).Inc()
		return time.Time{}, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return t, nil
}

func (c *Client) fetchLatest(ctx context.Context) (time.Time, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=1",
		c.baseURL, url.PathEscape(c.owner), url.PathEscape(c.repo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return time.Time{}, fmt.Errorf("build commits request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "chinookdash")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetch commits: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if until, limited := rateLimitedUntil(resp, time.Now()); limited {
		c.blockedUntil.Store(until.UnixNano())
		logging.Warn().Int("status", resp.StatusCode).Time("retry_at", until).Msg("GitHub rate limit reached")
		return time.Time{}, fmt.Errorf("%w until %s", ErrRateLimited, until.UTC().Format(time.RFC3339))
	}
	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("fetch commits: unexpected status %d", resp.StatusCode)
	}

	var commits []commitResponse
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return time.Time{}, fmt.Errorf("decode commits: %w", err)
	}
	if len(commits) == 0 {
		return time.Time{}, ErrNoCommits
	}
	date := commits[0].Commit.Author.Date
	if date.IsZero() {
		date = commits[0].Commit.Committer.Date
	}
	return date, nil
}

// rateLimitedUntil recognizes GitHub's primary (403 or 429 with
// X-RateLimit-Remaining: 0) and secondary (Retry-After) rate limit
// responses.
func rateLimitedUntil(resp *http.Response, now time.Time) (time.Time, bool) {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return time.Time{}, false
	}
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			return now.Add(time.Duration(secs) * time.Second), true
		}
	}
	if resp.Header.Get("X-RateLimit-Remaining") == "0" {
		if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			return time.Unix(reset, 0), true
		}
		return now.Add(time.Minute), true
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return now.Add(time.Minute), true
	}
	return time.Time{}, false
}
