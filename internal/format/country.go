// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package format

import (
	"strings"
)

// Label controls the text that follows a flag.
type Label string

const (
	LabelNone Label = ""
	LabelName Label = "name"
	LabelISO3 Label = "iso3"
)

type countryCode struct {
	iso2, iso3, name string
}

// countries covers every BillingCountry in the Chinook data plus common
// aliases. Keys are lower case.
var countries = map[string]countryCode{}

func init() {
	for _, c := range []struct {
		code    countryCode
		aliases []string
	}{
		{countryCode{"AR", "ARG", "Argentina"}, nil},
		{countryCode{"AU", "AUS", "Australia"}, nil},
		{countryCode{"AT", "AUT", "Austria"}, nil},
		{countryCode{"BE", "BEL", "Belgium"}, nil},
		{countryCode{"BR", "BRA", "Brazil"}, nil},
		{countryCode{"CA", "CAN", "Canada"}, nil},
		{countryCode{"CL", "CHL", "Chile"}, nil},
		{countryCode{"CZ", "CZE", "Czechia"}, []string{"Czech Republic"}},
		{countryCode{"DK", "DNK", "Denmark"}, nil},
		{countryCode{"FI", "FIN", "Finland"}, nil},
		{countryCode{"FR", "FRA", "France"}, nil},
		{countryCode{"DE", "DEU", "Germany"}, nil},
		{countryCode{"HU", "HUN", "Hungary"}, nil},
		{countryCode{"IN", "IND", "India"}, nil},
		{countryCode{"IE", "IRL", "Ireland"}, nil},
		{countryCode{"IT", "ITA", "Italy"}, nil},
		{countryCode{"MX", "MEX", "Mexico"}, nil},
		{countryCode{"NL", "NLD", "Netherlands"}, []string{"The Netherlands"}},
		{countryCode{"NO", "NOR", "Norway"}, nil},
		{countryCode{"PL", "POL", "Poland"}, nil},
		{countryCode{"PT", "PRT", "Portugal"}, nil},
		{countryCode{"ES", "ESP", "Spain"}, nil},
		{countryCode{"SE", "SWE", "Sweden"}, nil},
		{countryCode{"CH", "CHE", "Switzerland"}, nil},
		{countryCode{"GB", "GBR", "United Kingdom"}, []string{"UK", "Great Britain"}},
		{countryCode{"US", "USA", "United States"}, []string{"United States of America"}},
	} {
		names := append([]string{c.code.iso2, c.code.iso3, c.code.name}, c.aliases...)
		for _, n := range names {
			countries[strings.ToLower(n)] = c.code
		}
	}
}

func lookupCountry(s string) (countryCode, bool) {
	c, ok := countries[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// ISO3 returns the ISO 3166-1 alpha-3 code for a country name or code, or
// "" when unknown.
func ISO3(country string) string {
	c, ok := lookupCountry(country)
	if !ok {
		return ""
	}
	return c.iso3
}

// CountryName returns the short display name, or the input when unknown.
func CountryName(country string) string {
	if c, ok := lookupCountry(country); ok {
		return c.name
	}
	return country
}

// Flag returns the regional-indicator emoji for a country name, ISO2 or
// ISO3 code, optionally followed by a label. Unknown countries give NA.
//
//	Flag("USA", LabelName) // "🇺🇸 United States"
func Flag(country string, label Label) string {
	c, ok := lookupCountry(country)
	if !ok {
		return NA
	}

	var b strings.Builder
	for _, r := range c.iso2 {
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	switch label {
	case LabelName:
		b.WriteString(" " + c.name)
	case LabelISO3:
		b.WriteString(" " + c.iso3)
	}
	return b.String()
}
