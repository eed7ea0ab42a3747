// Package api provides the read-only HTTP surface over the aggregation
// services. It serializes results produced by internal/app; no raw player
// identifier ever reaches a handler.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	"github.com/tropimon/tropimon-stats/internal/app"
	"github.com/tropimon/tropimon-stats/internal/metrics"
)

// Server represents the HTTP API server.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux

	health app.HealthService
	stats  *app.StatsService

	registry    *prometheus.Registry
	limiter     *RateLimiter
	corsOrigins []string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithStats sets the stats service backing the aggregate routes.
func WithStats(stats *app.StatsService) ServerOption {
	return func(s *Server) { s.stats = stats }
}

// WithMetricsRegistry exposes reg at /metrics.
func WithMetricsRegistry(reg *prometheus.Registry) ServerOption {
	return func(s *Server) { s.registry = reg }
}

// WithRateLimiter applies per-IP rate limiting to all routes.
func WithRateLimiter(rl *RateLimiter) ServerOption {
	return func(s *Server) { s.limiter = rl }
}

// WithCORS sets the allowed origins.
func WithCORS(origins []string) ServerOption {
	return func(s *Server) { s.corsOrigins = origins }
}

// NewServer creates a new API server with the given dependencies.
func NewServer(addr string, health app.HealthService, opts ...ServerOption) *Server {
	s := &Server{health: health}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	if len(s.corsOrigins) > 0 {
		c := corslib.New(corslib.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Accept-Encoding", "Content-Type"},
		})
		r.Use(c.Handler)
	}

	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	if s.registry != nil {
		r.Use(metrics.NewHTTP(s.registry).Middleware)
	}

	s.registerRoutes(r)

	s.router = r
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/api/v1/health", s.handleHealth)

	if s.stats != nil {
		r.Get("/api/summary", s.handleSummary)
		r.Get("/api/species/{species}", s.handleSpeciesDetail)

		r.Route("/api/top", func(r chi.Router) {
			r.Get("/captures", s.handlePlayerBoard(s.stats.TopCaptures, defaultBoardLimit))
			r.Get("/shiny", s.handlePlayerBoard(s.stats.TopShiny, defaultBoardLimit))
			r.Get("/legendaries", s.handlePlayerBoard(s.stats.TopLegendary, defaultBoardLimit))
			r.Get("/mythicals", s.handlePlayerBoard(s.stats.TopMythical, defaultBoardLimit))
			r.Get("/species", s.handleSpeciesBoard(s.stats.TopSpecies, defaultSpeciesLimit))
			r.Get("/shiny-species", s.handleSpeciesBoard(s.stats.TopShinySpecies, defaultBoardLimit))
		})
	}

	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result, err := s.health.Handle(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
