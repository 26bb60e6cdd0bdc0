// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestFilter_Normalized(t *testing.T) {
	t.Parallel()

	f := Filter{
		StartDate: " 2010-01-01 ",
		Genres:    []string{"Rock", " Jazz", "Rock", ""},
		Artists:   []string{"  "},
		Countries: nil,
	}
	got := f.Normalized()

	if got.StartDate != "2010-01-01" {
		t.Errorf("StartDate = %q", got.StartDate)
	}
	if want := []string{"Jazz", "Rock"}; !reflect.DeepEqual(got.Genres, want) {
		t.Errorf("Genres = %v, want %v", got.Genres, want)
	}
	if got.Artists != nil {
		t.Errorf("blank-only Artists = %v, want nil", got.Artists)
	}
	if f.Genres[0] != "Rock" || len(f.Genres) != 4 {
		t.Error("Normalized modified the receiver")
	}
}

func TestFilter_Fingerprint(t *testing.T) {
	t.Parallel()

	base := Filter{Genres: []string{"Rock", "Jazz"}, Countries: []string{"USA"}}

	tests := []struct {
		name  string
		other Filter
		same  bool
	}{
		{"identical", Filter{Genres: []string{"Rock", "Jazz"}, Countries: []string{"USA"}}, true},
		{"reordered", Filter{Genres: []string{"Jazz", "Rock"}, Countries: []string{"USA"}}, true},
		{"dates differ", Filter{StartDate: "2009-01-01", EndDate: "2009-06-30", Genres: []string{"Rock", "Jazz"}, Countries: []string{"USA"}}, true},
		{"duplicates", Filter{Genres: []string{"Rock", "Jazz", "Rock"}, Countries: []string{"USA", "USA"}}, true},
		{"extra country", Filter{Genres: []string{"Rock", "Jazz"}, Countries: []string{"USA", "Canada"}}, false},
		{"value moved to other dimension", Filter{Genres: []string{"Rock", "Jazz"}, Artists: []string{"USA"}}, false},
		{"empty", Filter{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := base.Fingerprint() == tt.other.Fingerprint(); got != tt.same {
				t.Errorf("same fingerprint = %v, want %v", got, tt.same)
			}
		})
	}

	if (Filter{}).Fingerprint() != (Filter{Genres: []string{}, Artists: []string{""}}).Fingerprint() {
		t.Error("empty and blank selections should share a fingerprint")
	}
	if len(base.Fingerprint()) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(base.Fingerprint()))
	}
}

func TestFilter_HasSelections(t *testing.T) {
	t.Parallel()

	if (Filter{StartDate: "2009-01-01", EndDate: "2009-12-31"}).HasSelections() {
		t.Error("dates alone are not selections")
	}
	if !(Filter{Artists: []string{"AC/DC"}}).HasSelections() {
		t.Error("artist selection not detected")
	}
}

func TestFilter_DateRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		start     string
		end       string
		wantStart string
		wantEnd   string
		wantZero  bool
		wantErr   bool
	}{
		{name: "both empty", wantZero: true},
		{name: "aligned to months", start: "2010-03-15", end: "2010-05-02", wantStart: "2010-03-01", wantEnd: "2010-05-31"},
		{name: "leap february", start: "2012-02-10", end: "2012-02-10", wantStart: "2012-02-01", wantEnd: "2012-02-29"},
		{name: "december end", start: "2013-01-01", end: "2013-12-01", wantStart: "2013-01-01", wantEnd: "2013-12-31"},
		{name: "missing end", start: "2010-01-01", wantErr: true},
		{name: "bad date", start: "2010-13-01", end: "2010-12-01", wantErr: true},
		{name: "reversed", start: "2011-01-01", end: "2010-01-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dr, err := Filter{StartDate: tt.start, EndDate: tt.end}.DateRange()
			if (err != nil) != tt.wantErr {
				t.Fatalf("DateRange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if dr.IsZero() != tt.wantZero {
				t.Fatalf("IsZero() = %v, want %v", dr.IsZero(), tt.wantZero)
			}
			if tt.wantZero {
				return
			}
			if dr.StartArg() != tt.wantStart || dr.EndArg() != tt.wantEnd {
				t.Errorf("range = %s, want %s..%s", dr, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestDateRange_MonthsAndLabel(t *testing.T) {
	t.Parallel()

	dr, err := NewDateRange("2009-01-01", "2013-12-31")
	if err != nil {
		t.Fatal(err)
	}
	if dr.Months() != 60 {
		t.Errorf("Months() = %d, want 60", dr.Months())
	}
	if dr.Label() != "Jan 2009 - Dec 2013" {
		t.Errorf("Label() = %q", dr.Label())
	}
	if !strings.Contains(dr.String(), "..") {
		t.Errorf("String() = %q", dr.String())
	}
}

func TestMonthDiff(t *testing.T) {
	t.Parallel()

	d := func(s string) time.Time {
		v, err := time.Parse(DateLayout, s)
		if err != nil {
			t.Fatal(err)
		}
		return v
	}
	tests := []struct {
		a, b string
		want int
	}{
		{"2009-01-31", "2009-02-01", 1},
		{"2009-01-01", "2009-01-31", 0},
		{"2009-11-15", "2010-02-15", 3},
		{"2010-05-01", "2009-05-01", -12},
	}
	for _, tt := range tests {
		if got := monthDiff(d(tt.a), d(tt.b)); got != tt.want {
			t.Errorf("monthDiff(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
	if got := daysBetween(d("2009-01-01"), d("2009-01-11")); got != 10 {
		t.Errorf("daysBetween = %v, want 10", got)
	}
}

func TestBuildStagingQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filter   Filter
		wantArgs []interface{}
		contains []string
		excludes []string
	}{
		{
			name:     "no selections",
			filter:   Filter{StartDate: "2010-01-01", EndDate: "2010-12-31"},
			excludes: []string{"WHERE", "2010"},
		},
		{
			name:     "countries",
			filter:   Filter{Countries: []string{"USA", "Canada"}},
			wantArgs: []interface{}{"Canada", "USA"},
			contains: []string{"i.BillingCountry IN (?,?)"},
			excludes: []string{"g.Name IN", "ar.Name IN"},
		},
		{
			name:     "all dimensions",
			filter:   Filter{Genres: []string{"Rock"}, Artists: []string{"AC/DC"}, Countries: []string{"USA"}},
			wantArgs: []interface{}{"USA", "Rock", "AC/DC"},
			contains: []string{"i.BillingCountry IN (?)", "g.Name IN (?)", "ar.Name IN (?)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			query, args, err := BuildStagingQuery(tt.filter)
			if err != nil {
				t.Fatalf("BuildStagingQuery() error = %v", err)
			}
			if !strings.HasPrefix(query, "SELECT DISTINCT i.CustomerId, CAST(i.InvoiceDate AS DATE) AS dt, i.InvoiceId") {
				t.Errorf("unexpected projection: %s", query)
			}
			if !strings.HasSuffix(query, "ORDER BY i.CustomerId, dt") {
				t.Errorf("missing ordering: %s", query)
			}
			for _, s := range tt.contains {
				if !strings.Contains(query, s) {
					t.Errorf("query missing %q: %s", s, query)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(query, s) {
					t.Errorf("query should not contain %q: %s", s, query)
				}
			}
			if len(tt.wantArgs) == 0 && len(args) == 0 {
				return
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}
