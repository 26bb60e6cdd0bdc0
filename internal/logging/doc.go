// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

// Package logging provides zerolog-based structured logging for the dashboard.
//
// A single global logger is configured at startup from the logging section of
// the configuration and used everywhere through package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("db_path", path).Msg("Database opened")
//
// HTTP handlers log through the request context so that every event carries
// the request and correlation IDs set by the router middleware:
//
//	logging.Ctx(r.Context()).Debug().Str("page", page).Msg("Page bundle built")
//
// Components that want a fixed field on every event use Component:
//
//	log := logging.Component("staging")
//	log.Info().Str("fingerprint", fp).Msg("Working set rebuilt")
//
// # Configuration
//
//	LOG_LEVEL   trace, debug, info, warn, error (default depends on APP_ENV)
//	LOG_FORMAT  json or console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
//
// # slog bridge
//
// The supervisor tree logs through log/slog (sutureslog). NewSlogLogger
// returns an *slog.Logger whose records are written by the zerolog logger.
package logging
