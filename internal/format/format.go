// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

// Package format renders KPI values for cards and tables.
package format

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NA is shown for missing, NaN or infinite values.
const NA = "NA"

// Kind selects how KPIValue renders a value.
type Kind string

const (
	Dollar  Kind = "dollar"  // $1,234.57
	Percent Kind = "percent" // fraction 0.1234 -> 12.34%
	Number  Kind = "number"  // 1,234 or 1,234.57 when fractional
	Float   Kind = "float"   // 1,234.50
	Country Kind = "country" // flag and short name
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Dollar, Percent, Number, Float, Country:
		return k, nil
	}
	return "", fmt.Errorf("unsupported value kind %q", s)
}

var printer = message.NewPrinter(language.English)

// KPIValue formats v as kind. v may be any integer or float type, a pointer
// to float64 or int64, or a string for Country. Unknown kinds are an error.
func KPIValue(v interface{}, kind Kind) (string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", err
	}

	if kind == Country {
		s, ok := v.(string)
		if !ok || s == "" {
			return NA, nil
		}
		return Flag(s, LabelName), nil
	}

	f, isInt, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return NA, nil
	}

	switch kind {
	case Percent:
		return strconv.FormatFloat(round2(f*100), 'f', 2, 64) + "%", nil
	case Dollar:
		return "$" + printer.Sprintf("%.2f", round2(f)), nil
	case Float:
		return printer.Sprintf("%.2f", round2(f)), nil
	default:
		if isInt || f == math.Trunc(f) {
			return printer.Sprintf("%d", int64(f)), nil
		}
		return printer.Sprintf("%.2f", round2(f)), nil
	}
}

// MustKPIValue is KPIValue for statically known kinds.
func MustKPIValue(v interface{}, kind Kind) string {
	s, err := KPIValue(v, kind)
	if err != nil {
		panic(err)
	}
	return s
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func toFloat(v interface{}) (f float64, isInt bool, ok bool) {
	switch n := v.(type) {
	case nil:
		return 0, false, false
	case float64:
		return n, false, true
	case float32:
		return float64(n), false, true
	case int:
		return float64(n), true, true
	case int32:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case uint64:
		return float64(n), true, true
	case *float64:
		if n == nil {
			return 0, false, false
		}
		return *n, false, true
	case *int64:
		if n == nil {
			return 0, false, false
		}
		return float64(*n), true, true
	}
	return 0, false, false
}
