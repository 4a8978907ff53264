// Package server exposes the analysis pipeline over HTTP for CI systems.
//
// Routes:
//
//	GET  /healthz          liveness probe
//	GET  /api/v1/aliases   effective alias table
//	POST /api/v1/scan      analyze a directory, body {"root": "path"}
//	GET  /metrics          Prometheus metrics
//
// The API only analyzes; it never downloads or writes bundles.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pybundle/pkg/pipeline"
)

const (
	shutdownTimeout = 10 * time.Second
	requestTimeout  = 2 * time.Minute
	maxBodyBytes    = 1 << 20
)

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	base    pipeline.Options
	logger  *log.Logger
	metrics *Metrics
}

// New creates a Server. base supplies every option a request does not
// override. A nil metrics disables /metrics.
func New(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger, metrics *Metrics) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, base: base, logger: logger, metrics: metrics}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/aliases", s.handleAliases)
		r.Post("/scan", s.handleScan)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
