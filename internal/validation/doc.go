// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

// Package validation validates dashboard requests with go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata, so the first validation of a type is the only expensive one.
//
// Custom tags:
//
//	isodate     YYYY-MM-DD calendar date
//	daterange   struct-level: StartDate <= EndDate when both are set
//
// Failures come back as *RequestValidationError, whose ToAPIError produces the
// VALIDATION_ERROR envelope used by every handler:
//
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "StartDate must be a date in YYYY-MM-DD format",
//	    "details": {"field": "StartDate", "tag": "isodate", "value": "2021/01/01"}
//	}
//
// Multiple failing fields are joined with "; " and listed under details.fields.
package validation
