package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/sedmap/internal/server/handlers"
	"github.com/agentstation/sedmap/internal/server/middleware"
	"github.com/agentstation/sedmap/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(s.app, s.metrics, s.logger)
	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	mux.HandleFunc("GET "+prefix+"/sed/{name}", h.HandleSED)
	mux.HandleFunc("GET "+prefix+"/search", h.HandleSearch)
	mux.HandleFunc("GET "+prefix+"/inventory/{name}", h.HandleInventory)
	mux.HandleFunc("GET "+prefix+"/bibcodes/{publication}", h.HandleBibcode)

	if s.config.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Not found", r.URL.Path)
	})
}

// applyMiddleware wraps handler with middleware chain. Recovery is
// outermost so it also catches panics in the other middleware.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	chain := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
	}
	if cfg.CORSEnabled {
		chain = append(chain, middleware.CORS(cfg.CORSOrigins...))
	}

	return middleware.Chain(chain...)(handler)
}
