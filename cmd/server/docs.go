// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

// Package main provides the Chinook dashboard HTTP server
//
// @title Chinook Dashboard API
// @version 1.0
// @description Sales analytics for the Chinook music store snapshot.
// @description
// @description ## Filters
// @description
// @description Every dashboard endpoint accepts the same filters: `start_date` and `end_date`
// @description (YYYY-MM-DD, snapped to whole months), plus repeated `genres`, `artists` and
// @description `countries` parameters. An empty selection means "all".
// @description
// @description ## Caching
// @description
// @description Query results are memoized per filter selection. `metadata.cached` reports a hit.
// @description Responses carry an ETag over `data`; send `If-None-Match` to get 304.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "VALIDATION_ERROR",
// @description     "message": "Human-readable error message"
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-01-18T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/chinookdash/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @BasePath /api/v1
// @schemes http https
//
// @tag.name Core
// @tag.description Health checks and request statistics
//
// @tag.name Filters
// @tag.description Filter options and defaults derived from the snapshot
//
// @tag.name Dashboard
// @tag.description Page bundles, shared KPIs and cohort retention
//
// @tag.name Invoices
// @tag.description Filtered invoice listing and CSV export
package main
