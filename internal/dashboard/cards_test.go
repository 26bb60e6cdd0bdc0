// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/format"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestGroupCards(t *testing.T) {
	t.Parallel()

	genres := []database.GroupKPI{
		{GroupVal: "Rock", Revenue: 30, NumCustomers: 3, RevenueShare: f64(0.6), CatalogSize: i64(6), PctCatalogSold: f64(0.5)},
		{GroupVal: "Jazz", Revenue: 20, NumCustomers: 5, RevenueShare: f64(0.4), CatalogSize: i64(3), PctCatalogSold: f64(1)},
	}
	cards := groupCards(database.GroupGenre, genres, "num_customers", 5)
	if len(cards) != 3 {
		t.Fatalf("got %d cards, want 3", len(cards))
	}
	if cards[0].Title != "Top Genres" || cards[0].Footer != "Total Genres: 2" {
		t.Errorf("ranked card = %q / %q", cards[0].Title, cards[0].Footer)
	}
	if cards[0].Items[0].Label != "Jazz" || cards[0].Items[0].Value != "5" {
		t.Errorf("first ranked item = %+v, want Jazz by customers", cards[0].Items[0])
	}
	if got := cards[1].Items[0].Value; got != "$30.00 (60.00%)" {
		t.Errorf("share item = %q", got)
	}
	if cards[2].Title != "Catalog Size (% Sold)" || cards[2].Items[0].Value != "3 (100.00%)" {
		t.Errorf("catalog card = %q %+v", cards[2].Title, cards[2].Items)
	}

	countries := []database.GroupKPI{{GroupVal: "USA", Revenue: 10, NumCustomers: 2, AvgRevenuePerCustomer: f64(5)}}
	cards = groupCards(database.GroupCountry, countries, "revenue", 5)
	if cards[2].Title != "Customers (Avg Revenue Per)" {
		t.Errorf("country detail card = %q", cards[2].Title)
	}
	if label := cards[0].Items[0].Label; !strings.HasSuffix(label, "United States") || !strings.HasPrefix(label, "\U0001F1FA\U0001F1F8") {
		t.Errorf("country label = %q, want flag and name", label)
	}
	if got := cards[2].Items[0].Value; got != "2 ($5.00)" {
		t.Errorf("customers item = %q", got)
	}
}

func TestTimeseriesCards_NoData(t *testing.T) {
	t.Parallel()

	cards := timeseriesCards(nil)
	if len(cards) != 3 {
		t.Fatalf("got %d cards", len(cards))
	}
	if got := cards[0].Items[1].Value; got != format.NA {
		t.Errorf("avg / month = %q, want NA", got)
	}
	if got := cards[1].Items[0].Value; got != "0" {
		t.Errorf("purchases = %q, want 0", got)
	}
}

func TestRetentionCards(t *testing.T) {
	t.Parallel()

	jan := time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)
	stats := &database.RetentionStats{
		NumCustomers: 10,
		NumNew:       4,
		PctNew:       f64(0.4),
		TopCohorts: []database.TopCohort{
			{Offset: 3, CohortMonth: &jan, RetentionPct: f64(0.4)},
			{Offset: 6},
		},
	}
	cards := retentionCards(stats, []int{3, 6, 9})
	if len(cards) != 3 {
		t.Fatalf("got %d cards", len(cards))
	}
	if got := cards[0].Items[1].Value; got != "4 (40.00%)" {
		t.Errorf("new customers = %q", got)
	}

	tempo := cards[2].Items
	tail := tempo[len(tempo)-3:]
	want := []string{"Jan 2009 (40.00%)", format.NA, format.NA}
	for i, item := range tail {
		if item.Value != want[i] {
			t.Errorf("%s = %q, want %q", item.Label, item.Value, want[i])
		}
	}
	if tail[2].Label != "Top 9-Month Cohort" {
		t.Errorf("last cohort label = %q", tail[2].Label)
	}

	for _, item := range retentionCards(nil, []int{3})[1].Items {
		if strings.Contains(item.Value, "NaN") {
			t.Errorf("%s rendered %q", item.Label, item.Value)
		}
	}
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value, kind, want string
	}{
		{"Jan 2009 – Dec 2013", "text", "Jan 2009 – Dec 2013"},
		{"1234", "number", "1,234"},
		{"2328.6", "dollar", "$2,328.60"},
		{"n/a", "dollar", "n/a"},
		{"5", "bogus", "5"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := formatCell(tt.value, tt.kind); got != tt.want {
			t.Errorf("formatCell(%q, %q) = %q, want %q", tt.value, tt.kind, got, tt.want)
		}
	}
}

func TestGroupTable_CatalogColumns(t *testing.T) {
	t.Parallel()

	rows := []database.GroupKPI{{GroupVal: "Rock", Revenue: 1}}
	if n := len(groupTable(database.GroupArtist, rows).Columns); n != 13 {
		t.Errorf("artist table has %d columns, want 13", n)
	}
	tbl := groupTable(database.GroupCountry, rows)
	if n := len(tbl.Columns); n != 10 {
		t.Errorf("country table has %d columns, want 10", n)
	}
	if _, ok := tbl.Rows[0]["catalog_size"]; ok {
		t.Error("country rows should not carry catalog values")
	}
}
