// Package handlers provides HTTP request handlers for the sedmap API.
package handlers

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap/internal/appcontext"
	"github.com/agentstation/sedmap/internal/metrics"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app     appcontext.Interface
	metrics *metrics.LoaderMetrics
	logger  *zerolog.Logger
}

// New creates a new Handlers instance. metrics may be nil.
func New(app appcontext.Interface, m *metrics.LoaderMetrics, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		app:     app,
		metrics: m,
		logger:  logger,
	}
}
