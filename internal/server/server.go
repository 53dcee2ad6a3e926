// Package server provides the read-only HTTP API that serves SEDs,
// catalog searches and inventories.
//
// Every request builds its own sedmap.Adapter; only the catalog
// connection and the metrics registry are shared.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap/internal/appcontext"
	"github.com/agentstation/sedmap/internal/metrics"
	sederrors "github.com/agentstation/sedmap/pkg/errors"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app       appcontext.Interface
	registry  *prometheus.Registry
	metrics   *metrics.LoaderMetrics
	logger    *zerolog.Logger
	config    Config
	startTime time.Time
}

// New creates a new server instance with the given configuration.
func New(app appcontext.Interface, cfg Config) (*Server, error) {
	if app == nil {
		return nil, sederrors.NewConfigError("server", "application cannot be nil", nil)
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.NewLoaderMetrics(registry)
	if err != nil {
		return nil, sederrors.WrapResource("create", "metrics", "", err)
	}

	return &Server{
		app:       app,
		registry:  registry,
		metrics:   m,
		logger:    app.Logger(),
		config:    cfg,
		startTime: time.Now(),
	}, nil
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully, waiting at most shutdownTimeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, l net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()
	s.logger.Info().Str("addr", l.Addr().String()).Str("prefix", s.config.PathPrefix).Msg("Serving SED API")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return sederrors.WrapResource("shutdown", "server", l.Addr().String(), err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return sederrors.WrapIO("listen", s.config.Addr(), err)
	}
	return s.Serve(ctx, l, 5*time.Second)
}

// Registry returns the registry loader metrics are recorded on.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
