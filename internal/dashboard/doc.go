// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

/*
Package dashboard assembles page bundles from memoized KPI queries.

A bundle is everything one page renders: KPI cards with preformatted values,
Plotly figures and tables. Every query result is memoized on the filter
fingerprint, the month-aligned date range and any page parameters, so
revisiting a filter combination never touches DuckDB:

	svc := dashboard.NewService(db, memo, cfg.Dashboard, commits)
	bundle, err := svc.Bundle(ctx, dashboard.Request{
	    Page:   dashboard.PageGroup,
	    Filter: database.Filter{Genres: []string{"Rock"}},
	    Group:  database.GroupArtist,
	})

Pages: overview, timeseries, group, geo, retention, insights.
An empty date range means the full dataset span.
*/
package dashboard
