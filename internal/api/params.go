// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/chinookdash/internal/dashboard"
	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/validation"
)

// getIntParam extracts an integer query parameter with a default value.
// Unparseable values fall back to the default.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// parseCommaSeparatedInts parses "3,6" into []int{3, 6}, skipping junk.
func parseCommaSeparatedInts(value string) []int {
	if value == "" {
		return nil
	}
	var result []int
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if num, err := strconv.Atoi(trimmed); err == nil {
			result = append(result, num)
		}
	}
	return result
}

// repeated returns every non-empty value of a repeated query parameter.
func repeated(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// filterParams reads filter selections from the query string.
func filterParams(r *http.Request) validation.FilterRequest {
	q := r.URL.Query()
	return validation.FilterRequest{
		StartDate: strings.TrimSpace(q.Get("start_date")),
		EndDate:   strings.TrimSpace(q.Get("end_date")),
		Genres:    repeated(q, "genres"),
		Artists:   repeated(q, "artists"),
		Countries: repeated(q, "countries"),
	}
}

// pageParams reads a page request from the query string.
func pageParams(r *http.Request, page string) validation.PageRequest {
	q := r.URL.Query()
	return validation.PageRequest{
		Page:    page,
		Filters: filterParams(r),
		Group:   q.Get("group"),
		Metric:  q.Get("metric"),
		GeoMode: q.Get("geo_mode"),
		TopN:    getIntParam(r, "top_n", 0),
		Theme:   q.Get("theme"),
	}
}

func toFilter(fr validation.FilterRequest) database.Filter {
	return database.Filter{
		StartDate: fr.StartDate,
		EndDate:   fr.EndDate,
		Genres:    fr.Genres,
		Artists:   fr.Artists,
		Countries: fr.Countries,
	}
}

func toDashboardRequest(pr validation.PageRequest) dashboard.Request {
	return dashboard.Request{
		Page:    pr.Page,
		Filter:  toFilter(pr.Filters),
		Group:   database.Group(pr.Group),
		Metric:  pr.Metric,
		GeoMode: database.GeoMode(pr.GeoMode),
		TopN:    pr.TopN,
		Theme:   pr.Theme,
	}
}
