// Package core provides the HTTP chassis for the Shorewatch dashboard API:
// a chi router with cross-cutting middleware for panic recovery, request-id
// propagation, structured request logging, and standardized JSON envelopes.
// Domain handlers are mounted onto the router after construction.
package core

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shorewatch/internal/config"
)

// requestTimeout caps handler execution, generous enough to cover a retried
// upstream call behind the resilience wrapper.
const requestTimeout = 60 * time.Second

// Server bundles the router with the dependencies every handler shares.
type Server struct {
	Config *config.Config
	Logger *slog.Logger
	// HealthProbes are checked by GET /health; register before mounting
	// routes.
	HealthProbes []HealthProbe

	router *chi.Mux
}

// NewServer builds the chassis and installs the base middleware chain.
// Routes are mounted by the caller; this separation lets tests register
// only what they exercise.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	s := &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}

	// Order matters: the recoverer is outermost so panics anywhere in the
	// chain produce a structured 500; request ids are assigned before
	// logging so every log line can carry one.
	s.router.Use(s.Recoverer)
	s.router.Use(RequestID)
	s.router.Use(RequestLogger(logger))
	s.router.Use(Timeout(requestTimeout))

	return s, nil
}

// Handler returns the router as an http.Handler for http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}
