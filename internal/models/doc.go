// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

/*
Package models defines the JSON shapes served by the HTTP and WebSocket
endpoints.

  - APIResponse, Metadata, APIError: the envelope every /api/v1 endpoint uses
  - PageBundle: everything one dashboard page renders (cards, charts, tables)
  - Card, Chart, Table: the presentation building blocks
  - WSMessage: frames pushed over the WebSocket

Charts carry Plotly figure JSON ({"data": [...], "layout": {...}}) that the
page passes straight to Plotly.react.
*/
package models
