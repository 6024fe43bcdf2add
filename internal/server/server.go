// Package server exposes the HTTP front end used to trigger runs: upload a
// recipient spreadsheet, a template, and optional attachments, and get the
// run report back as JSON.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/massmailer/internal/config"
	"github.com/dmitrymomot/massmailer/pkg/health"
	"github.com/dmitrymomot/massmailer/pkg/mailer"
)

// Server wires the HTTP front end to the dispatch engine.
type Server struct {
	cfg    config.Config
	sender mailer.Sender
	log    *slog.Logger
}

// New creates a Server around the live transport. Dry-run requests never
// touch the sender.
func New(cfg config.Config, sender mailer.Sender, log *slog.Logger) *Server {
	return &Server{cfg: cfg, sender: sender, log: log}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(s.readinessChecks(), health.WithLogger(s.log)))
	r.Post("/runs", s.handleRun)
	return r
}

// readinessChecks probes the transport when it supports it. Senders without
// a healthcheck leave readiness equal to liveness.
func (s *Server) readinessChecks() health.Checks {
	hc, ok := s.sender.(interface {
		Healthcheck(ctx context.Context) error
	})
	if !ok {
		return nil
	}
	return health.Checks{"transport": hc.Healthcheck}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.InfoContext(ctx, "http server started", slog.String("addr", s.cfg.ListenAddr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
