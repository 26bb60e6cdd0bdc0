// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"errors"
	"io"
	"log/slog"

	"github.com/tomtom215/chinookdash/internal/logging"
)

var (
	// ErrDatabaseNotFound is returned by New when the snapshot file does not exist.
	ErrDatabaseNotFound = errors.New("duckdb file not found")

	// ErrInvalidGroup is returned for a grouping dimension a query does not support.
	ErrInvalidGroup = errors.New("invalid group")

	// ErrInvalidMode is returned by GeoMetrics for an unknown aggregation mode.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrNoData is returned when the working set has no rows to derive bounds from.
	ErrNoData = errors.New("no data for selected filters")
)

// closeWithLog closes a resource and logs any error
// Use this for cleanup operations where errors should be acknowledged but not fail the operation
func closeWithLog(closer io.Closer, logger *slog.Logger, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		if logger != nil {
			logger.Error("failed to close resource",
				"type", resourceType,
				"error", err)
		} else {
			logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
		}
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
