package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap"
	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
)

var _ Interface = (*Mock)(nil)

// Mock implements Interface from optional function fields. A nil field
// gives a harmless default: no catalog, a silent logger, table output and
// version "dev".
type Mock struct {
	CatalogFunc        func(ctx context.Context) (catalogs.Catalog, error)
	AdapterOptionsFunc func() []sedmap.Option
	LoggerFunc         func() *zerolog.Logger
	OutputFormatFunc   func() string
	VersionFunc        func() string
}

// Catalog reports a ConfigError when CatalogFunc is unset, as app.App
// does without a configured database.
func (m *Mock) Catalog(ctx context.Context) (catalogs.Catalog, error) {
	if m.CatalogFunc == nil {
		return nil, errors.NewConfigError("catalog", "no catalog configured", nil)
	}
	return m.CatalogFunc(ctx)
}

func (m *Mock) AdapterOptions() []sedmap.Option {
	if m.AdapterOptionsFunc == nil {
		return []sedmap.Option{sedmap.WithLogger(m.Logger())}
	}
	return m.AdapterOptionsFunc()
}

func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return m.LoggerFunc()
}

func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc == nil {
		return "table"
	}
	return m.OutputFormatFunc()
}

func (m *Mock) Version() string {
	if m.VersionFunc == nil {
		return "dev"
	}
	return m.VersionFunc()
}
