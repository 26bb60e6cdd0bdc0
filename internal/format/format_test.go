// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package format

import (
	"math"
	"testing"
)

func TestKPIValue(t *testing.T) {
	t.Parallel()

	f := 1234.5
	var nilFloat *float64

	tests := []struct {
		name string
		v    interface{}
		kind Kind
		want string
	}{
		{"dollar", 1234.567, Dollar, "$1,234.57"},
		{"dollar small", 0.99, Dollar, "$0.99"},
		{"dollar int", int64(2000), Dollar, "$2,000.00"},
		{"percent", 0.1234, Percent, "12.34%"},
		{"percent whole", 1.0, Percent, "100.00%"},
		{"number int", int64(1234567), Number, "1,234,567"},
		{"number integral float", 412.0, Number, "412"},
		{"number fractional", 1234.567, Number, "1,234.57"},
		{"float", 1234.5, Float, "1,234.50"},
		{"float pointer", &f, Float, "1,234.50"},
		{"nil pointer", nilFloat, Float, NA},
		{"nil", nil, Dollar, NA},
		{"nan", math.NaN(), Number, NA},
		{"inf", math.Inf(1), Percent, NA},
		{"string as number", "12", Number, NA},
		{"country", "Brazil", Country, "🇧🇷 Brazil"},
		{"country alias", "USA", Country, "🇺🇸 United States"},
		{"country unknown", "Atlantis", Country, NA},
		{"country non string", 12, Country, NA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := KPIValue(tt.v, tt.kind)
			if err != nil {
				t.Fatalf("KPIValue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("KPIValue(%v, %s) = %q, want %q", tt.v, tt.kind, got, tt.want)
			}
		})
	}
}

func TestKPIValueUnknownKind(t *testing.T) {
	t.Parallel()
	if _, err := KPIValue(1.0, "currency"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := ParseKind("dollar"); err != nil {
		t.Errorf("ParseKind(dollar) error = %v", err)
	}
}

func TestFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		country string
		label   Label
		want    string
	}{
		{"Germany", LabelNone, "🇩🇪"},
		{"de", LabelName, "🇩🇪 Germany"},
		{"DEU", LabelISO3, "🇩🇪 DEU"},
		{"United Kingdom", LabelName, "🇬🇧 United Kingdom"},
		{"Czech Republic", LabelISO3, "🇨🇿 CZE"},
		{"  canada ", LabelName, "🇨🇦 Canada"},
		{"Narnia", LabelName, NA},
		{"", LabelNone, NA},
	}
	for _, tt := range tests {
		if got := Flag(tt.country, tt.label); got != tt.want {
			t.Errorf("Flag(%q, %q) = %q, want %q", tt.country, tt.label, got, tt.want)
		}
	}
}

func TestISO3(t *testing.T) {
	t.Parallel()
	if got := ISO3("USA"); got != "USA" {
		t.Errorf("ISO3(USA) = %q", got)
	}
	if got := ISO3("Portugal"); got != "PRT" {
		t.Errorf("ISO3(Portugal) = %q", got)
	}
	if got := ISO3("Nowhere"); got != "" {
		t.Errorf("ISO3(Nowhere) = %q", got)
	}
	if got := CountryName("Nowhere"); got != "Nowhere" {
		t.Errorf("CountryName passthrough = %q", got)
	}
}
