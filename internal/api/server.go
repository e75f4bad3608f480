// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Every route is served both at the root and under [constants.APIPrefix],
    which is where the API gateway forwards traffic.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/readanddownload/internal/auth"
	"github.com/taibuivan/readanddownload/internal/platform/config"
	"github.com/taibuivan/readanddownload/internal/platform/constants"
	"github.com/taibuivan/readanddownload/internal/platform/middleware"
	"github.com/taibuivan/readanddownload/internal/record"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /healthz handler. It returns 200 while the process runs.
	Liveness http.HandlerFunc

	// Readiness is the /readyz handler. It returns 200 when all deps answer.
	Readiness http.HandlerFunc

	// Auth serves POST /auth/logout.
	Auth *auth.Handler

	// Records holds one handler per record kind (downloads, online readings).
	Records []*record.Handler
}

// Security groups the token verification dependencies.
type Security struct {
	Verifier middleware.TokenVerifier
	// Revocations may be nil when Redis is not configured.
	Revocations middleware.RevocationChecker
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, security Security, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	authenticate := middleware.Authenticate(security.Verifier, security.Revocations)

	routes := func(router chi.Router) {
		// # Infrastructure Endpoints
		// Never authenticated, so a stale bearer header cannot fail a probe.
		router.Get("/healthz", h.Liveness)
		router.Get("/readyz", h.Readiness)

		// # Application API
		router.Group(func(api chi.Router) {
			api.Use(authenticate)

			h.Auth.RegisterRoutes(api)
			for _, handler := range h.Records {
				handler.RegisterRoutes(api)
			}
		})
	}

	routes(r)
	r.Route(constants.APIPrefix, routes)

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
