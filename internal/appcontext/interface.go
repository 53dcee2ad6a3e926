// Package appcontext is what commands and the HTTP server see of the
// application: the catalog, adapter settings, logger and output format.
// Depending on Interface rather than app.App keeps them testable with Mock.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap"
	"github.com/agentstation/sedmap/pkg/catalogs"
)

// Interface is implemented by app.App and Mock.
type Interface interface {
	// Catalog opens the configured catalog on first use and returns it
	// on every later call.
	Catalog(ctx context.Context) (catalogs.Catalog, error)

	// AdapterOptions carries configuration into sedmap.New: logger, band
	// aliases and the default uncertainty scale.
	AdapterOptions() []sedmap.Option

	Logger() *zerolog.Logger

	// OutputFormat is the --format value, possibly empty.
	OutputFormat() string

	Version() string
}
