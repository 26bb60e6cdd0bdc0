// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/chinookdash/docs" // swagger docs
	"github.com/tomtom215/chinookdash/internal/api"
	"github.com/tomtom215/chinookdash/internal/cache"
	"github.com/tomtom215/chinookdash/internal/config"
	"github.com/tomtom215/chinookdash/internal/dashboard"
	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/github"
	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/metrics"
	"github.com/tomtom215/chinookdash/internal/supervisor"
	"github.com/tomtom215/chinookdash/internal/supervisor/services"
	ws "github.com/tomtom215/chinookdash/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
		Version:   version,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	startTime := time.Now()
	metrics.SetAppInfo(version, cfg.Server.RuntimeVersion)

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("demo_mode", cfg.Database.DemoMode).
		Str("cache_type", cfg.Cache.Type).
		Msg("Starting Chinook dashboard")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	cacher, err := cache.NewCacher(cache.CacheConfig{
		Type:     cache.CacheType(cfg.Cache.Type),
		TTL:      cfg.Cache.TTL,
		Capacity: cfg.Cache.Capacity,
		Dir:      cfg.Cache.Dir,
	})
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	memo := cache.NewMemoizer(cacher, cache.CacheType(cfg.Cache.Type))
	defer func() {
		if err := memo.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	commits := github.NewCommitCache(cfg.GitHub.CachePath, github.NewClient(&cfg.GitHub))
	svc := dashboard.NewService(db, memo, cfg.Dashboard, commits)
	hub := ws.NewHub()

	handler := api.NewHandler(svc, db, cfg, hub, version)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// page bundles and CSV exports can outlive the read timeout
		WriteTimeout: 2 * cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddBackgroundService(services.NewCommitRefresher(commits, hub, cfg.GitHub.RefreshInterval, cfg.GitHub.Timeout))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateUptime(startTime)
			}
		}
	}()

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, s := range unstopped {
		logging.Warn().Str("service", s.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}
