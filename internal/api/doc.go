// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

/*
Package api exposes the dashboard over HTTP.

# Endpoints

All JSON endpoints live under /api/v1 and answer with the models.APIResponse
envelope:

	GET  /api/v1/filters              filter options (genres, artists, countries, date span)
	GET  /api/v1/filters/defaults     clear-filters state
	GET  /api/v1/summary              static dataset summary
	GET  /api/v1/working-set          row counts of the filtered working set
	GET  /api/v1/pages/{page}         page bundle (cards, charts, tables)
	POST /api/v1/pages/{page}         page bundle from a JSON PageRequest
	GET  /api/v1/kpis                 shared KPI bundle
	GET  /api/v1/retention            cohort grid, decay curve, retention KPIs
	GET  /api/v1/invoices             invoice detail rows
	GET  /api/v1/invoices/export.csv  invoice detail rows as CSV
	GET  /api/v1/last-updated         footer date
	GET  /api/v1/performance          per-route latency percentiles
	GET  /api/v1/ws                   WebSocket page bundles
	GET  /api/v1/health{,/live,/ready}

plus /metrics (Prometheus), /swagger/* (OpenAPI UI) and / (dashboard page).

# Filters

GET endpoints take filters as query parameters. Selections repeat the
parameter because artist names may contain commas:

	/api/v1/pages/group?group=artist&genres=Rock&genres=Jazz&start_date=2010-01-01

# Errors

Validation failures return 400 VALIDATION_ERROR, unknown pages 404
NOT_FOUND, cancelled or timed-out queries 503 SERVICE_ERROR and anything
else 500 DATABASE_ERROR. Empty results are not errors: cards show NA.
*/
package api
