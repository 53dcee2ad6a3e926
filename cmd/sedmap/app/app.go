// Package app provides the application context and dependency management
// for the sedmap CLI. It centralizes configuration, logging and the
// lifecycle of the catalog connection.
package app

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap"
	"github.com/agentstation/sedmap/internal/appcontext"
	"github.com/agentstation/sedmap/internal/blob/s3"
	"github.com/agentstation/sedmap/internal/transport"
	"github.com/agentstation/sedmap/pkg/bands"
	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/catalogs/memory"
	"github.com/agentstation/sedmap/pkg/catalogs/sqldb"
	"github.com/agentstation/sedmap/pkg/constants"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/spectra"
)

var _ appcontext.Interface = (*App)(nil)

// BuildInfo identifies the binary. Release builds set it through main.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

// App owns the configuration, the logger and the lazily opened catalog
// that every command shares.
type App struct {
	build  BuildInfo
	config *Config
	logger *zerolog.Logger
	out    io.Writer

	mu      sync.Mutex
	catalog catalogs.Catalog
}

// New loads configuration from files and the environment and builds an
// App. Options run last and may replace any of it.
func New(build BuildInfo, opts ...Option) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	logger := NewLogger(config)
	app := &App{build: build, config: config, logger: &logger}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the release version.
func (a *App) Version() string {
	return a.build.Version
}

// Build returns the full build identification.
func (a *App) Build() BuildInfo {
	return a.build
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Catalog returns the configured catalog, opening it on first use.
// A database path ending in .yaml or .yml opens an in-memory catalog;
// anything else is handed to sqldb.
func (a *App) Catalog(ctx context.Context) (catalogs.Catalog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.catalog != nil {
		return a.catalog, nil
	}

	dsn := a.config.Database
	if dsn == "" {
		return nil, errors.NewConfigError("database", "no database configured", nil)
	}

	var (
		cat catalogs.Catalog
		err error
	)
	if IsDocument(dsn) {
		reader := a.spectraReader(ctx, filepath.Dir(dsn))
		cat, err = memory.New(memory.WithFile(dsn), memory.WithSpectraReader(reader))
	} else {
		baseDir := ""
		if sqldb.DialectFor(dsn) == sqldb.DialectSQLite {
			baseDir = filepath.Dir(strings.TrimPrefix(dsn, "file:"))
		}
		cat, err = sqldb.Open(ctx, dsn, sqldb.WithSpectraReader(a.spectraReader(ctx, baseDir)))
	}
	if err != nil {
		return nil, errors.WrapResource("open", "catalog", dsn, err)
	}

	a.logger.Debug().Str("database", dsn).Msg("Opened catalog")
	a.catalog = cat
	return cat, nil
}

// AdapterOptions returns the sedmap options derived from configuration.
func (a *App) AdapterOptions() []sedmap.Option {
	opts := []sedmap.Option{
		sedmap.WithLogger(a.logger),
		sedmap.WithUncertaintyScale(a.config.UncertaintyScale),
	}
	if len(a.config.BandAliases) > 0 {
		opts = append(opts, sedmap.WithBandNormalizer(bands.NewNormalizer(a.config.BandAliases...)))
	}
	return opts
}

// Shutdown closes the catalog connection if one was opened.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	closer, ok := a.catalog.(io.Closer)
	if !ok {
		return nil
	}
	a.catalog = nil
	return closer.Close()
}

// spectraReader builds the payload reader: local files under baseDir,
// HTTP(S) with the configured timeout and archive credentials, and s3://
// when a store can be set up.
func (a *App) spectraReader(ctx context.Context, baseDir string) *spectra.Reader {
	// Validated by LoadConfig; a hand-built Config with bad auth fetches anonymously.
	auth, err := transport.NewAuthenticator(a.config.HTTPAuth)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Archive credentials ignored")
	}
	client := transport.New(
		transport.WithTimeout(a.config.HTTPTimeout),
		transport.WithMaxBytes(constants.MaxSpectrumBytes),
		transport.WithAuth(auth),
	)
	opts := []spectra.ReaderOption{
		spectra.WithBaseDir(baseDir),
		spectra.WithHTTPClient(client),
	}

	store, err := s3.New(ctx, a.config.S3)
	if err != nil {
		a.logger.Warn().Err(err).Msg("S3 spectra disabled")
	} else {
		opts = append(opts, spectra.WithFetcher("s3", store))
	}
	return spectra.NewReader(opts...)
}

// IsDocument reports whether dsn names a YAML catalog document.
func IsDocument(dsn string) bool {
	ext := strings.ToLower(filepath.Ext(dsn))
	return ext == ".yaml" || ext == ".yml"
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithCatalog sets a custom catalog (useful for testing).
func WithCatalog(cat catalogs.Catalog) Option {
	return func(a *App) error {
		a.catalog = cat
		return nil
	}
}

// WithOutput sends command output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
