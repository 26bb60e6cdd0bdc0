// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

/*
Package websocket serves page bundles over WebSocket connections.

Each client sends requests and receives replies on one connection:

	-> {"id": "7", "page": "group", "filters": {"genres": ["Rock"]}, "group": "artist"}
	<- {"type": "bundle", "id": "7", "bundle": {...}}

Requests are answered in order by the RequestHandler passed to NewClient.
{"type": "ping"} is answered with a pong. The Hub tracks connected clients
and broadcasts server-side events (currently the last-updated footer date)
to all of them.

Connections are kept alive with ping/pong frames every 54 seconds and
dropped after 60 seconds of silence.
*/
package websocket
