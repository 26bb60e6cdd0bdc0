// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

/*
Package supervisor runs the long-lived parts of the server under a suture
supervisor tree.

	chinookdash (root)
	├── background-layer   commit date refresher
	├── messaging-layer    WebSocket hub
	└── api-layer          HTTP server

A service that returns an error or panics is restarted with backoff. After
FailureThreshold failures (decaying over FailureDecay seconds) the
supervisor waits FailureBackoff before trying again. Layers fail
independently: a crashing refresher never takes the HTTP server down.

Supervisor events are logged through sutureslog on the zerolog-backed slog
bridge from internal/logging.

Usage:

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	err := tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
