// Package server implements the availability HTTP API.
//
// Three endpoints over a chi router:
//
//	GET  /health  → liveness probe
//	GET  /search  → game search with per-service availability
//	POST /refresh → re-run catalog ingestion
//
// The search endpoint is the backend for the CLI/TUI search client; its
// response shape is [models.SearchResponse].
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gamedex/internal/catalog"
	"gamedex/internal/fetchers"
	"gamedex/internal/services"
)

// Config contains server construction options.
type Config struct {
	Host        string
	Port        int
	Region      string // Catalog region served by /search
	SearchLimit int    // Max results per query (default 5)
}

// Server wires the catalog store, IGDB client, and refresh engine behind the
// availability API.
type Server struct {
	config Config
	store  *catalog.Store
	igdb   *services.IGDBClient
	engine *fetchers.RefreshEngine
	logger *log.Logger
	router chi.Router
}

// New creates a Server and mounts its routes.
func New(config Config, store *catalog.Store, igdb *services.IGDBClient, engine *fetchers.RefreshEngine, logger *log.Logger) *Server {
	if config.Region == "" {
		config.Region = "US"
	}
	if config.SearchLimit <= 0 {
		config.SearchLimit = 5
	}

	s := &Server{
		config: config,
		store:  store,
		igdb:   igdb,
		engine: engine,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/search", s.handleSearch)
	r.Post("/refresh", s.handleRefresh)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler, exposing the router for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully with a 5 second drain window.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("availability API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

// requestLogger logs one line per request through the shared logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// writeJSON writes a JSON response body with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}
