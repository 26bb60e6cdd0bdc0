// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return one non-nil instance")
	}
}

func TestFilterRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   FilterRequest
		wantTag string
	}{
		{"empty", FilterRequest{}, ""},
		{"full range", FilterRequest{StartDate: "2021-01-01", EndDate: "2025-12-31"}, ""},
		{"only start", FilterRequest{StartDate: "2021-03-15"}, ""},
		{"selections", FilterRequest{Genres: []string{"Rock", "Jazz"}, Countries: []string{"USA"}}, ""},
		{"slash date", FilterRequest{StartDate: "2021/01/01"}, "isodate"},
		{"impossible date", FilterRequest{EndDate: "2021-02-30"}, "isodate"},
		{"reversed range", FilterRequest{StartDate: "2024-01-01", EndDate: "2023-01-01"}, "daterange"},
		{"empty genre", FilterRequest{Genres: []string{""}}, "min"},
		{"overlong country", FilterRequest{Countries: []string{strings.Repeat("x", 61)}}, "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.input)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %s error", tt.wantTag)
			}
			if got := err.Errors()[0].Tag(); got != tt.wantTag {
				t.Errorf("tag = %q, want %q", got, tt.wantTag)
			}
		})
	}
}

func TestPageRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   PageRequest
		wantErr bool
	}{
		{"overview", PageRequest{Page: "overview"}, false},
		{"group with metric", PageRequest{Page: "group", Group: "artist", Metric: "tracks_sold", TopN: 10}, false},
		{"geo aggregate dark", PageRequest{Page: "geo", GeoMode: "aggregate", Theme: "dark"}, false},
		{"missing page", PageRequest{}, true},
		{"unknown page", PageRequest{Page: "settings"}, true},
		{"bad group", PageRequest{Page: "group", Group: "album"}, true},
		{"bad metric", PageRequest{Page: "group", Metric: "profit"}, true},
		{"top n too big", PageRequest{Page: "group", TopN: 51}, true},
		{"nested filter error", PageRequest{Page: "overview", Filters: FilterRequest{StartDate: "nope"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetentionRequest(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(&RetentionRequest{Offsets: []int{3, 6, 9}}); err != nil {
		t.Errorf("default offsets rejected: %v", err)
	}
	if err := ValidateStruct(&RetentionRequest{Offsets: []int{0}}); err == nil {
		t.Error("zero offset accepted")
	}
	if err := ValidateStruct(&RetentionRequest{MaxOffset: -1}); err == nil {
		t.Error("negative max offset accepted")
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&FilterRequest{StartDate: "2021/01/01"})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Message != "StartDate must be a date in YYYY-MM-DD format" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "StartDate" {
		t.Errorf("details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&PageRequest{Page: "nowhere", Theme: "sepia"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("details.fields = %v", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "Page: ") || !strings.Contains(apiErr.Message, "Theme: ") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestEmptyRequestValidationError(t *testing.T) {
	t.Parallel()

	ve := &RequestValidationError{}
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q", ve.Error())
	}
	if ve.ToAPIError().Message != "Validation failed" {
		t.Errorf("ToAPIError().Message = %q", ve.ToAPIError().Message)
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input interface{}
		want  string
	}{
		{&PageRequest{}, "Page is required"},
		{&PageRequest{Page: "geo", GeoMode: "monthly"}, "GeoMode must be one of: yearly aggregate"},
		{&PageRequest{Page: "group", TopN: 99}, "TopN must be at most 50"},
		{&FilterRequest{Genres: make([]string, 51)}, "Genres must be at most 50 items"},
		{&FilterRequest{StartDate: "2024-05-01", EndDate: "2024-04-01"}, "EndDate must not be before StartDate"},
	}

	for _, tt := range tests {
		err := ValidateStruct(tt.input)
		if err == nil {
			t.Errorf("%T: expected error %q", tt.input, tt.want)
			continue
		}
		if got := err.Errors()[0].Error(); got != tt.want {
			t.Errorf("message = %q, want %q", got, tt.want)
		}
	}
}
