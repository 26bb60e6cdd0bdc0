// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package validation

// FilterRequest is the user-selected filter state. Empty fields mean
// "no restriction".
type FilterRequest struct {
	StartDate string   `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string   `json:"end_date" validate:"omitempty,isodate"`
	Genres    []string `json:"genres" validate:"max=50,dive,min=1,max=120"`
	Artists   []string `json:"artists" validate:"max=500,dive,min=1,max=120"`
	Countries []string `json:"countries" validate:"max=100,dive,min=1,max=60"`
}

// PageRequest asks for one dashboard page bundle.
type PageRequest struct {
	Page    string        `json:"page" validate:"required,oneof=overview timeseries group geo retention insights"`
	Filters FilterRequest `json:"filters"`
	Group   string        `json:"group" validate:"omitempty,oneof=genre artist country"`
	Metric  string        `json:"metric" validate:"omitempty,oneof=revenue num_customers num_purchases tracks_sold first_time_customers"`
	GeoMode string        `json:"geo_mode" validate:"omitempty,oneof=yearly aggregate"`
	TopN    int           `json:"top_n" validate:"omitempty,min=1,max=50"`
	Theme   string        `json:"theme" validate:"omitempty,oneof=light dark"`
}

// InvoiceExportRequest bounds invoice detail listings and CSV exports.
type InvoiceExportRequest struct {
	Filters FilterRequest `json:"filters"`
	Limit   int           `json:"limit" validate:"min=0,max=100000"`
}

// RetentionRequest parametrizes the cohort endpoints.
type RetentionRequest struct {
	Filters   FilterRequest `json:"filters"`
	MaxOffset int           `json:"max_offset" validate:"min=0,max=120"`
	Offsets   []int         `json:"offsets" validate:"max=12,dive,min=1,max=120"`
}
