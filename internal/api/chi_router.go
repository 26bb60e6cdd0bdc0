// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/chinookdash/internal/dashboard"
	"github.com/tomtom215/chinookdash/internal/logging"
	"github.com/tomtom215/chinookdash/internal/middleware"
)

//go:embed static/index.html
var staticFS embed.FS

var indexTemplate = template.Must(template.ParseFS(staticFS, "static/index.html"))

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router using the handler's security settings.
func NewRouter(handler *Handler) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(handler.config.Security)),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/", h.Index)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(h.perfMon.Middleware))

		// upgraded connections outlive any request timeout
		r.Get("/ws", h.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(requestTimeout(h.config.Server.Timeout))
			r.Use(chiMiddleware(middleware.Compression))

			r.Get("/filters", h.FilterOptions)
			r.Get("/filters/defaults", h.FilterDefaults)
			r.Get("/summary", h.Summary)
			r.Get("/working-set", h.WorkingSet)
			r.Get("/pages/{page}", h.Page)
			r.Post("/pages/{page}", h.Page)
			r.Get("/kpis", h.SharedKPIs)
			r.Get("/retention", h.Retention)
			r.Get("/invoices", h.Invoices)
			r.Get("/invoices/export.csv", h.ExportInvoicesCSV)
			r.Get("/last-updated", h.LastUpdated)
			r.Get("/performance", h.Performance)
		})
	})

	return r
}

// indexData feeds static/index.html.
type indexData struct {
	Pages          []string
	LastUpdated    string
	Version        string
	RuntimeVersion string
	Theme          string
	Year           int
}

// Index serves the dashboard page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Pages:          dashboard.Pages,
		Version:        h.version,
		RuntimeVersion: h.config.Server.RuntimeVersion,
		Theme:          h.config.Dashboard.DefaultColorScheme,
		Year:           time.Now().Year(),
		LastUpdated:    "Unavailable",
	}
	if data.Theme == "" {
		data.Theme = "light"
	}
	if h.svc != nil {
		data.LastUpdated = h.svc.LastUpdated()
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to render index page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write index page")
	}
}
