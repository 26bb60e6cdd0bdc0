// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package dashboard

import (
	"context"

	"github.com/tomtom215/chinookdash/internal/cache"
	"github.com/tomtom215/chinookdash/internal/database"
)

// staged memoizes a query that reads the working set of f.
func staged[T any](ctx context.Context, s *Service, f database.Filter, key string, fn func(ctx context.Context, q database.Querier) (T, error)) (T, bool, error) {
	return cache.Memoize(ctx, s.memo, key, func(ctx context.Context) (T, error) {
		var out T
		err := s.db.WithStaging(ctx, f, func(ctx context.Context, q database.Querier) error {
			var err error
			out, err = fn(ctx, q)
			return err
		})
		return out, err
	})
}

// raw memoizes a query against the source tables. It runs on the pool.
func raw[T any](ctx context.Context, s *Service, key string, fn func(ctx context.Context, q database.Querier) (T, error)) (T, bool, error) {
	return cache.Memoize(ctx, s.memo, key, func(ctx context.Context) (T, error) {
		return fn(ctx, s.db.Conn())
	})
}

func (s *Service) filterOptions(ctx context.Context) (*database.FilterOptions, bool, error) {
	return raw(ctx, s, cache.FilterKey("meta"), database.FilterMetadata)
}

// FilterOptions returns the selectable filter values and dataset span.
func (s *Service) FilterOptions(ctx context.Context) (*database.FilterOptions, error) {
	opts, _, err := s.filterOptions(ctx)
	return opts, err
}

// Summary returns the static dataset summary.
func (s *Service) Summary(ctx context.Context) ([]database.SummaryRow, error) {
	rows, _, err := s.summary(ctx)
	return rows, err
}

func (s *Service) summary(ctx context.Context) ([]database.SummaryRow, bool, error) {
	return raw(ctx, s, cache.FilterKey("summary"), database.StaticSummary)
}

// WorkingSet returns statistics for the working set of f. Not memoized: the
// call is cheap and reports the live staging table.
func (s *Service) WorkingSet(ctx context.Context, f database.Filter) (database.WorkingSetStats, error) {
	return s.db.StagingStats(ctx, f.Normalized())
}

// Core returns the headline KPIs for f. nil means no data in range.
func (s *Service) Core(ctx context.Context, f database.Filter) (*database.CoreMetrics, bool, error) {
	f = f.Normalized()
	dr, err := s.ResolveRange(ctx, f)
	if err != nil {
		return nil, false, err
	}
	return s.core(ctx, f, dr)
}

func (s *Service) core(ctx context.Context, f database.Filter, dr database.DateRange) (*database.CoreMetrics, bool, error) {
	key := cache.FilterKey("core", f.Fingerprint(), dr.String())
	return staged(ctx, s, f, key, func(ctx context.Context, q database.Querier) (*database.CoreMetrics, error) {
		return database.CoreKPIs(ctx, q, dr)
	})
}

func (s *Service) monthly(ctx context.Context, f database.Filter, dr database.DateRange) ([]database.MonthlyPoint, bool, error) {
	key := cache.FilterKey("monthly", f.Fingerprint(), dr.String())
	return staged(ctx, s, f, key, func(ctx context.Context, q database.Querier) ([]database.MonthlyPoint, error) {
		return database.MonthlySummary(ctx, q, dr)
	})
}

// groupRows returns GroupKPIs for g, enriched with catalog coverage for
// genre and artist.
func (s *Service) groupRows(ctx context.Context, f database.Filter, g database.Group, dr database.DateRange) ([]database.GroupKPI, bool, error) {
	key := cache.FilterKey("group", f.Fingerprint(), dr.String(), string(g))
	return staged(ctx, s, f, key, func(ctx context.Context, q database.Querier) ([]database.GroupKPI, error) {
		rows, err := database.GroupKPIs(ctx, q, g, dr)
		if err != nil || !g.HasCatalog() || len(rows) == 0 {
			return rows, err
		}
		sales, err := database.CatalogSales(ctx, q, g, dr)
		if err != nil {
			return nil, err
		}
		return database.EnrichWithCatalog(rows, sales), nil
	})
}

func (s *Service) groupYearly(ctx context.Context, f database.Filter, g database.Group, dr database.DateRange) ([]database.GroupYear, bool, error) {
	key := cache.FilterKey("group_yearly", f.Fingerprint(), dr.String(), string(g))
	return staged(ctx, s, f, key, func(ctx context.Context, q database.Querier) ([]database.GroupYear, error) {
		return database.GroupYearly(ctx, q, g, dr)
	})
}

func (s *Service) geoRows(ctx context.Context, f database.Filter, dr database.DateRange, mode database.GeoMode) ([]database.GeoRow, bool, error) {
	key := cache.FilterKey("geo", f.Fingerprint(), dr.String(), string(mode))
	return staged(ctx, s, f, key, func(ctx context.Context, q database.Querier) ([]database.GeoRow, error) {
		return database.GeoMetrics(ctx, q, dr, mode)
	})
}

// cohorts spans the whole working set: the heatmap and top-cohort KPIs look
// at cohorts regardless of the date window.
func (s *Service) cohorts(ctx context.Context, f database.Filter) ([]database.CohortCell, bool, error) {
	key := cache.FilterKey("cohorts", f.Fingerprint())
	return staged(ctx, s, f, key, func(ctx context.Context, q database.Querier) ([]database.CohortCell, error) {
		return database.RetentionCohorts(ctx, q, database.DateRange{}, 0)
	})
}

func (s *Service) decay(ctx context.Context, f database.Filter, dr database.DateRange) ([]database.DecayPoint, bool, error) {
	key := cache.FilterKey("decay", f.Fingerprint(), dr.String())
	return staged(ctx, s, f, key, func(ctx context.Context, q database.Querier) ([]database.DecayPoint, error) {
		return database.RetentionDecay(ctx, q, dr, 0)
	})
}

func (s *Service) retentionStats(ctx context.Context, f database.Filter, dr database.DateRange) (*database.RetentionStats, bool, error) {
	cohorts, hitCohorts, err := s.cohorts(ctx, f)
	if err != nil {
		return nil, false, err
	}
	key := cache.FilterKey("retention", f.Fingerprint(), dr.String(), s.cfg.RetentionOffsets)
	stats, hit, err := staged(ctx, s, f, key, func(ctx context.Context, q database.Querier) (*database.RetentionStats, error) {
		return database.RetentionKPIs(ctx, q, dr, cohorts, s.cfg.RetentionOffsets)
	})
	return stats, hit && hitCohorts, err
}

// Invoices returns working-set invoices in range. limit <= 0 returns all
// rows. Exports bypass the cache: they are rare and potentially large.
func (s *Service) Invoices(ctx context.Context, f database.Filter, limit int) ([]database.InvoiceDetail, error) {
	f = f.Normalized()
	dr, err := s.ResolveRange(ctx, f)
	if err != nil {
		return nil, err
	}
	var out []database.InvoiceDetail
	err = s.db.WithStaging(ctx, f, func(ctx context.Context, q database.Querier) error {
		rows, err := database.InvoiceDetails(ctx, q, dr, limit)
		out = rows
		return err
	})
	return out, err
}

func (s *Service) invoicesCached(ctx context.Context, f database.Filter, dr database.DateRange, limit int) ([]database.InvoiceDetail, bool, error) {
	key := cache.FilterKey("invoices", f.Fingerprint(), dr.String(), limit)
	return staged(ctx, s, f, key, func(ctx context.Context, q database.Querier) ([]database.InvoiceDetail, error) {
		return database.InvoiceDetails(ctx, q, dr, limit)
	})
}

// SharedKPIs is the KPI bundle shared by the insights, group and geo cards.
type SharedKPIs struct {
	Core      *database.CoreMetrics                              `json:"metadata_kpis"`
	TopN      map[database.Group]map[string][]database.GroupKPI `json:"topn"`
	NumValues map[database.Group]int                             `json:"num_vals"`
	Retention *database.RetentionStats                           `json:"retention_kpis"`
}

// Shared returns the shared KPI bundle for f with top-n lists of length n.
func (s *Service) Shared(ctx context.Context, f database.Filter, n int) (*SharedKPIs, bool, error) {
	f = f.Normalized()
	dr, err := s.ResolveRange(ctx, f)
	if err != nil {
		return nil, false, err
	}
	if n <= 0 {
		n = s.cfg.TopN
	}
	return s.shared(ctx, f, dr, n)
}

func (s *Service) shared(ctx context.Context, f database.Filter, dr database.DateRange, n int) (*SharedKPIs, bool, error) {
	allHit := true

	core, hit, err := s.core(ctx, f, dr)
	if err != nil {
		return nil, false, err
	}
	allHit = allHit && hit

	out := &SharedKPIs{
		Core:      core,
		TopN:      make(map[database.Group]map[string][]database.GroupKPI, len(database.Groups)),
		NumValues: make(map[database.Group]int, len(database.Groups)),
	}
	for _, g := range database.Groups {
		rows, hit, err := s.groupRows(ctx, f, g, dr)
		if err != nil {
			return nil, false, err
		}
		allHit = allHit && hit
		out.TopN[g] = database.TopNByMetric(rows, n)
		out.NumValues[g] = len(rows)
	}

	ret, hit, err := s.retentionStats(ctx, f, dr)
	if err != nil {
		return nil, false, err
	}
	out.Retention = ret
	return out, allHit && hit, nil
}

// RetentionReport is the raw cohort data behind the retention page.
type RetentionReport struct {
	Cohorts    []database.CohortCell    `json:"cohorts"`
	Decay      []database.DecayPoint    `json:"decay"`
	TopCohorts []database.TopCohort     `json:"top_cohorts"`
	Stats      *database.RetentionStats `json:"stats"`
}

// Retention returns cohort retention for f. maxOffset <= 0 spans the
// working set; empty offsets take the configured defaults.
func (s *Service) Retention(ctx context.Context, f database.Filter, maxOffset int, offsets []int) (*RetentionReport, error) {
	f = f.Normalized()
	dr, err := s.ResolveRange(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(offsets) == 0 {
		offsets = s.cfg.RetentionOffsets
	}

	key := cache.FilterKey("retention-report", f.Fingerprint(), dr.String(), maxOffset, offsets)
	out, _, err := staged(ctx, s, f, key, func(ctx context.Context, q database.Querier) (*RetentionReport, error) {
		cohorts, err := database.RetentionCohorts(ctx, q, dr, maxOffset)
		if err != nil {
			return nil, err
		}
		decay, err := database.RetentionDecay(ctx, q, dr, maxOffset)
		if err != nil {
			return nil, err
		}
		stats, err := database.RetentionKPIs(ctx, q, dr, cohorts, offsets)
		if err != nil {
			return nil, err
		}
		return &RetentionReport{
			Cohorts:    cohorts,
			Decay:      decay,
			TopCohorts: database.TopCohorts(cohorts, offsets),
			Stats:      stats,
		}, nil
	})
	return out, err
}
