// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/chinookdash/internal/cache"
	"github.com/tomtom215/chinookdash/internal/config"
	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/models"
)

// Page names.
const (
	PageOverview   = "overview"
	PageTimeseries = "timeseries"
	PageGroup      = "group"
	PageGeo        = "geo"
	PageRetention  = "retention"
	PageInsights   = "insights"
)

// Pages lists every page in navigation order.
var Pages = []string{PageOverview, PageTimeseries, PageGroup, PageGeo, PageRetention, PageInsights}

var (
	// ErrUnknownPage is returned for a page name not in Pages.
	ErrUnknownPage = errors.New("unknown page")

	// ErrUnknownMetric is returned for a metric database.IsMetric rejects.
	ErrUnknownMetric = errors.New("unknown metric")
)

// overviewInvoiceRows caps the invoice table on the overview page. The CSV
// export is not capped.
const overviewInvoiceRows = 500

// CommitSource provides the footer's last-updated date.
type CommitSource interface {
	LastUpdated() string
}

// Request selects a page and its parameters. Zero values take the
// configured defaults.
type Request struct {
	Page    string
	Filter  database.Filter
	Group   database.Group
	Metric  string
	GeoMode database.GeoMode
	TopN    int
	Theme   string
}

// Service builds page bundles.
type Service struct {
	db      *database.DB
	memo    *cache.Memoizer
	cfg     config.DashboardConfig
	commits CommitSource
}

// NewService creates a Service. commits may be nil.
func NewService(db *database.DB, memo *cache.Memoizer, cfg config.DashboardConfig, commits CommitSource) *Service {
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	if cfg.DefaultMetric == "" {
		cfg.DefaultMetric = "revenue"
	}
	if cfg.DefaultColorScheme == "" {
		cfg.DefaultColorScheme = "light"
	}
	if len(cfg.RetentionOffsets) == 0 {
		cfg.RetentionOffsets = database.DefaultRetentionOffsets
	}
	return &Service{db: db, memo: memo, cfg: cfg, commits: commits}
}

// Memoizer returns the service's memoizer.
func (s *Service) Memoizer() *cache.Memoizer {
	return s.memo
}

// LastUpdated returns the footer date, or "Unavailable".
func (s *Service) LastUpdated() string {
	if s.commits == nil {
		return "Unavailable"
	}
	return s.commits.LastUpdated()
}

// Defaults returns the clear-filters state: full date range, no selections
// and the default metric.
func (s *Service) Defaults(ctx context.Context) (database.Filter, string, error) {
	opts, _, err := s.filterOptions(ctx)
	if err != nil {
		return database.Filter{}, "", err
	}
	return database.Filter{StartDate: opts.MinDate, EndDate: opts.MaxDate}, s.cfg.DefaultMetric, nil
}

func (s *Service) withDefaults(req Request) (Request, error) {
	req.Filter = req.Filter.Normalized()
	if req.Metric == "" {
		req.Metric = s.cfg.DefaultMetric
	}
	if !database.IsMetric(req.Metric) {
		return req, fmt.Errorf("%w: %q", ErrUnknownMetric, req.Metric)
	}
	if req.Group == "" {
		req.Group = database.GroupGenre
	}
	g, err := database.ParseGroup(string(req.Group))
	if err != nil {
		return req, err
	}
	req.Group = g
	if req.GeoMode == "" {
		req.GeoMode = database.GeoYearly
	}
	if req.GeoMode, err = database.ParseGeoMode(string(req.GeoMode)); err != nil {
		return req, err
	}
	if req.TopN <= 0 {
		req.TopN = s.cfg.TopN
	}
	if req.Theme == "" {
		req.Theme = s.cfg.DefaultColorScheme
	}
	return req, nil
}

// ResolveRange returns the month-aligned range of f, or the full dataset
// span when f has no dates.
func (s *Service) ResolveRange(ctx context.Context, f database.Filter) (database.DateRange, error) {
	if f.StartDate == "" && f.EndDate == "" {
		opts, _, err := s.filterOptions(ctx)
		if err != nil {
			return database.DateRange{}, err
		}
		if opts.MinDate == "" {
			return database.DateRange{}, nil
		}
		return opts.FullRange()
	}
	return f.DateRange()
}

// Bundle builds the bundle for req.Page.
func (s *Service) Bundle(ctx context.Context, req Request) (*models.PageBundle, error) {
	req, err := s.withDefaults(req)
	if err != nil {
		return nil, err
	}
	dr, err := s.ResolveRange(ctx, req.Filter)
	if err != nil {
		return nil, err
	}

	ctx = database.ContextWithPage(ctx, req.Page)
	start := time.Now()
	b := &bundler{Service: s, req: req, dr: dr, th: themeFor(req.Theme), cached: true}

	var out *models.PageBundle
	switch req.Page {
	case PageOverview:
		out, err = b.overview(ctx)
	case PageTimeseries:
		out, err = b.timeseries(ctx)
	case PageGroup:
		out, err = b.group(ctx)
	case PageGeo:
		out, err = b.geo(ctx)
	case PageRetention:
		out, err = b.retention(ctx)
	case PageInsights:
		out, err = b.insights(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, req.Page)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s page: %w", req.Page, err)
	}

	out.Page = req.Page
	out.Filter = echo(req.Filter, dr)
	out.Cached = b.cached
	out.GeneratedAt = time.Now().UTC()
	if out.Cards == nil {
		out.Cards = []models.Card{}
	}
	if out.Charts == nil {
		out.Charts = []models.Chart{}
	}
	if out.Tables == nil {
		out.Tables = []models.Table{}
	}

	logging.Ctx(ctx).Debug().
		Str("page", req.Page).
		Str("fingerprint", out.Filter.Fingerprint).
		Str("range", dr.String()).
		Bool("cached", b.cached).
		Dur("duration", time.Since(start)).
		Msg("Page bundle built")
	return out, nil
}

func echo(f database.Filter, dr database.DateRange) models.FilterEcho {
	e := models.FilterEcho{
		Genres:      nonNil(f.Genres),
		Artists:     nonNil(f.Artists),
		Countries:   nonNil(f.Countries),
		Fingerprint: f.Fingerprint(),
	}
	if !dr.IsZero() {
		e.StartDate = dr.StartArg()
		e.EndDate = dr.EndArg()
		e.RangeLabel = dr.Label()
	}
	return e
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// bundler carries one request through page assembly and tracks whether
// every query was a cache hit.
type bundler struct {
	*Service
	req    Request
	dr     database.DateRange
	th     theme
	cached bool
}

func (b *bundler) hit(h bool) {
	b.cached = b.cached && h
}
