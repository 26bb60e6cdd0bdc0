// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chinookdash/internal/dashboard"
	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/models"
	"github.com/tomtom215/chinookdash/internal/validation"
)

// sanitizeLogValue escapes control characters so user input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with an ETag. A matching If-None-Match
// gets 304 with no body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Vary", "Accept-Encoding")

	if response.Metadata.Timestamp.IsZero() {
		response.Metadata.Timestamp = time.Now().UTC()
	}
	if r != nil && response.Metadata.RequestID == "" {
		response.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
	}

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// the ETag covers the payload only; timestamps and request ids differ
	// on every response
	etag := `"` + generateETag(response.Data) + `"`
	w.Header().Set("ETag", etag)
	if status == http.StatusOK && r != nil && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag hashes the JSON encoding of v with FNV-1a.
func generateETag(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "0"
	}
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}, start time.Time, cached bool) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   data,
		Metadata: models.Metadata{
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// respondError sends an error envelope. err is logged, never sent.
func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError, err error) {
	if err != nil {
		logging.Ctx(requestContext(r)).Error().
			Str("code", sanitizeLogValue(apiErr.Code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, r, status, &models.APIResponse{
		Status: models.StatusError,
		Error:  apiErr,
	})
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}

// classifyError maps service errors onto a status and envelope.
func classifyError(err error) (int, *models.APIError) {
	switch {
	case errors.Is(err, dashboard.ErrUnknownPage):
		return http.StatusNotFound, &models.APIError{Code: models.ErrCodeNotFound, Message: err.Error()}
	case errors.Is(err, dashboard.ErrUnknownMetric),
		errors.Is(err, database.ErrInvalidGroup),
		errors.Is(err, database.ErrInvalidMode):
		return http.StatusBadRequest, &models.APIError{Code: models.ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, database.ErrNoData):
		return http.StatusNotFound, &models.APIError{Code: models.ErrCodeNotFound, Message: "No data for selected filters"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, &models.APIError{Code: models.ErrCodeService, Message: "Request cancelled or timed out"}
	default:
		return http.StatusInternalServerError, &models.APIError{Code: models.ErrCodeDatabase, Message: "A database error occurred"}
	}
}

// respondServiceError classifies err and sends it. Client errors are not
// logged at error level.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classifyError(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		respondError(w, r, status, apiErr, err)
		return
	}
	logging.Ctx(requestContext(r)).Debug().Err(err).Int("status", status).Msg("Request rejected")
	respondError(w, r, status, apiErr, nil)
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// methodNotAllowed answers routes registered for other methods.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, &models.APIError{
		Code:    "METHOD_NOT_ALLOWED",
		Message: "Method not allowed",
	}, nil)
}

// notFound answers unmatched API routes.
func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, &models.APIError{
		Code:    models.ErrCodeNotFound,
		Message: "Resource not found",
	}, nil)
}
