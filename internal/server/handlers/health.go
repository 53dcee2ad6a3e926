package handlers

import (
	"net/http"

	"github.com/agentstation/sedmap/internal/server/response"
)

// HandleHealth handles GET /health (liveness probe).
// @Summary Health check
// @Description Liveness probe, also served at /health
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "sedmap-api",
		"version": h.app.Version(),
	})
}

// HandleReady handles GET /api/v1/ready. The catalog is opened on the
// first readiness probe if nothing has opened it yet.
// @Summary Readiness check
// @Description Reports whether the SIMPLE catalog can be opened
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.app.Catalog(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Catalog not available")
		response.ServiceUnavailable(w, "Catalog not available")
		return
	}
	response.OK(w, map[string]any{"status": "ready"})
}
