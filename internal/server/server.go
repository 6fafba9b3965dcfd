// Package server exposes stored bundles over HTTP, so consumers can fetch
// summary documents without shipping them inside the application binary.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/depshim/pkg/bundle"
	"github.com/matzehuels/depshim/pkg/cache"
)

// Config configures the bundle server.
type Config struct {
	// Addr is the listen address. Defaults to ":8080".
	Addr string

	// Store is the bundle backend. Required.
	Store bundle.Store

	// Cache holds hot summary documents. Defaults to a null cache.
	Cache cache.Cache

	// CacheTTL bounds how long a served summary may lag behind a
	// republished bundle. Defaults to 5 minutes.
	CacheTTL time.Duration

	// Logger defaults to the standard logger.
	Logger *log.Logger
}

// Server serves the bundle API.
type Server struct {
	store    bundle.Store
	cache    cache.Cache
	keyer    cache.Keyer
	cacheTTL time.Duration
	logger   *log.Logger
	addr     string
	router   chi.Router
}

// New creates a server from cfg.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server: bundle store is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	s := &Server{
		store:    cfg.Store,
		cache:    cfg.Cache,
		keyer:    cache.NewDefaultKeyer(),
		cacheTTL: cfg.CacheTTL,
		logger:   cfg.Logger,
		addr:     cfg.Addr,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/bundles", func(r chi.Router) {
		r.Get("/", s.handleListBundles)
		r.Get("/{name}", s.handleGetBundle)
		r.Get("/{name}/summary", s.handleGetSummary)
		r.Delete("/{name}", s.handleDeleteBundle)
	})
	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("serving bundles", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// logRequests logs each request with its duration and status.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
