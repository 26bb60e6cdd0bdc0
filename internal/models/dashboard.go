// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package models

import (
	"time"
)

// CardItem is one labelled line on a KPI card. Value is already formatted.
type CardItem struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Tooltip string `json:"tooltip,omitempty"`
}

// Card is a KPI card. A card with no items renders "No data available."
type Card struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Icon    string     `json:"icon,omitempty"`
	Tooltip string     `json:"tooltip,omitempty"`
	Items   []CardItem `json:"items"`
	Footer  string     `json:"footer,omitempty"`
	Ordered bool       `json:"ordered,omitempty"` // render as a ranked list
}

// Empty reports whether the card has nothing to show.
func (c Card) Empty() bool {
	return len(c.Items) == 0
}

// Trace is a Plotly trace object.
type Trace map[string]interface{}

// Frame is a Plotly animation frame.
type Frame struct {
	Name string  `json:"name"`
	Data []Trace `json:"data"`
}

// Figure is Plotly figure JSON.
type Figure struct {
	Data   []Trace                `json:"data"`
	Layout map[string]interface{} `json:"layout"`
	Frames []Frame                `json:"frames,omitempty"`
}

// Chart wraps a figure with an identifier and title.
type Chart struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Figure Figure `json:"figure"`
}

// Column describes a table column. Kind is the value kind used to format
// its cells.
type Column struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// Table is a formatted data table.
type Table struct {
	ID      string              `json:"id"`
	Title   string              `json:"title"`
	Columns []Column            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// FilterEcho reports the filter a bundle was computed for, with the date
// range already month-aligned.
type FilterEcho struct {
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	RangeLabel  string   `json:"range_label"`
	Genres      []string `json:"genres"`
	Artists     []string `json:"artists"`
	Countries   []string `json:"countries"`
	Fingerprint string   `json:"fingerprint"`
}

// PageBundle is everything one dashboard page renders.
type PageBundle struct {
	Page        string     `json:"page"`
	Filter      FilterEcho `json:"filter"`
	Cards       []Card     `json:"cards"`
	Charts      []Chart    `json:"charts"`
	Tables      []Table    `json:"tables"`
	Cached      bool       `json:"cached"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// WebSocket message types.
const (
	WSTypeBundle      = "bundle"
	WSTypeError       = "error"
	WSTypePong        = "pong"
	WSTypeLastUpdated = "last_updated"
)

// WSMessage is pushed by the server. ID echoes the request it answers;
// broadcasts have none.
type WSMessage struct {
	Type        string      `json:"type"`
	ID          string      `json:"id,omitempty"`
	Bundle      *PageBundle `json:"bundle,omitempty"`
	Error       *APIError   `json:"error,omitempty"`
	LastUpdated string      `json:"last_updated,omitempty"`
}
