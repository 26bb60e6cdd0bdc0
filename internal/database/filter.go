// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DateLayout is the ISO date format used for filter bounds and query args.
const DateLayout = "2006-01-02"

// Filter is the dashboard filter state. Empty selections mean no restriction.
type Filter struct {
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	Artists   []string `json:"artists,omitempty"`
	Countries []string `json:"countries,omitempty"`
}

// Normalized returns a copy with selections trimmed, deduplicated and sorted.
func (f Filter) Normalized() Filter {
	return Filter{
		StartDate: strings.TrimSpace(f.StartDate),
		EndDate:   strings.TrimSpace(f.EndDate),
		Genres:    canonicalSelection(f.Genres),
		Artists:   canonicalSelection(f.Artists),
		Countries: canonicalSelection(f.Countries),
	}
}

// canonicalSelection trims, drops empties, deduplicates and sorts values.
// A nil result means "no restriction".
func canonicalSelection(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// Fingerprint identifies the working set for f. Only the non-date filters
// participate, so two filters differing only by dates share a working set.
func (f Filter) Fingerprint() string {
	n := f.Normalized()
	//nolint:errcheck // string slices always marshal
	payload, _ := json.Marshal(struct {
		Genres    []string `json:"g"`
		Artists   []string `json:"a"`
		Countries []string `json:"c"`
	}{n.Genres, n.Artists, n.Countries})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:8])
}

// HasSelections reports whether any non-date filter is set.
func (f Filter) HasSelections() bool {
	n := f.Normalized()
	return len(n.Genres) > 0 || len(n.Artists) > 0 || len(n.Countries) > 0
}

// DateRange returns the month-aligned range of f. Both dates empty yields
// the zero range, which query functions resolve to the working-set bounds.
func (f Filter) DateRange() (DateRange, error) {
	start, end := strings.TrimSpace(f.StartDate), strings.TrimSpace(f.EndDate)
	if start == "" && end == "" {
		return DateRange{}, nil
	}
	if start == "" || end == "" {
		return DateRange{}, fmt.Errorf("both start_date and end_date are required, got %q and %q", start, end)
	}
	return NewDateRange(start, end)
}

// DateRange is an inclusive, month-aligned date interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses ISO dates and aligns them to whole months.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return MonthAligned(s, e), nil
}

// MonthAligned moves start to the first day of its month and end to the
// last day of its month.
func MonthAligned(start, end time.Time) DateRange {
	s := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return DateRange{Start: s, End: e}
}

// IsZero reports whether the range is unset.
func (d DateRange) IsZero() bool {
	return d.Start.IsZero() && d.End.IsZero()
}

// StartArg returns the start bound formatted for a query argument.
func (d DateRange) StartArg() string {
	return d.Start.Format(DateLayout)
}

// EndArg returns the end bound formatted for a query argument.
func (d DateRange) EndArg() string {
	return d.End.Format(DateLayout)
}

// Months is the number of calendar months covered, inclusive.
func (d DateRange) Months() int {
	return monthDiff(d.Start, d.End) + 1
}

// Label formats the range as "Jan 2009 - Dec 2013".
func (d DateRange) Label() string {
	return d.Start.Format("Jan 2006") + " - " + d.End.Format("Jan 2006")
}

// String formats the range as ISO dates.
func (d DateRange) String() string {
	return d.StartArg() + ".." + d.EndArg()
}

// monthDiff is the number of month boundaries between a and b, ignoring days.
func monthDiff(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// daysBetween returns whole days from a to b.
func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}
