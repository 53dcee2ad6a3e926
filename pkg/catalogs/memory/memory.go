// Package memory provides an in-memory catalog preloaded from a YAML
// document. It is used for fixtures, tests and small offline catalogs.
//
// The document maps table names to row lists:
//
//	tables:
//	  Sources:
//	    - {source: TWA 27, ra: 167.307456, dec: -39.504444}
//	  Parallaxes:
//	    - {source: TWA 27, parallax: 15.46, parallax_error: 0.12, adopted: true, reference: Gaia18}
package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"

	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/spectra"
)

// Catalog is a read-only catalog held in memory.
type Catalog struct {
	tables map[string][]catalogs.Row
	reader *spectra.Reader
}

var _ catalogs.Catalog = (*Catalog)(nil)

// Option is a function that configures a memory Catalog
type Option func(*config) error

// config is the configuration for a memory Catalog
type config struct {
	preloadData []byte
	baseDir     string
	tables      map[string][]catalogs.Row
	reader      *spectra.Reader
}

// WithPreload configures the catalog to load a YAML document
func WithPreload(data []byte) Option {
	return func(cfg *config) error {
		if len(data) == 0 {
			return fmt.Errorf("preload data cannot be empty")
		}
		cfg.preloadData = make([]byte, len(data))
		copy(cfg.preloadData, data)
		return nil
	}
}

// WithFile preloads the YAML document at path. Relative spectrum paths in
// the document resolve against the document's directory.
func WithFile(path string) Option {
	return func(cfg *config) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapIO("read", path, err)
		}
		cfg.baseDir = filepath.Dir(path)
		return WithPreload(data)(cfg)
	}
}

// WithTables adds rows directly, after any preloaded document.
func WithTables(tables map[string][]catalogs.Row) Option {
	return func(cfg *config) error {
		if cfg.tables == nil {
			cfg.tables = make(map[string][]catalogs.Row)
		}
		for name, rows := range tables {
			if err := catalogs.ValidateIdentifier(name); err != nil {
				return err
			}
			cfg.tables[name] = append(cfg.tables[name], rows...)
		}
		return nil
	}
}

// WithSpectraReader sets the reader used to resolve spectrum payloads.
func WithSpectraReader(r *spectra.Reader) Option {
	return func(cfg *config) error {
		cfg.reader = r
		return nil
	}
}

// document is the preload file layout.
type document struct {
	Tables map[string][]map[string]any `yaml:"tables"`
}

// New creates an in-memory catalog
func New(opts ...Option) (*Catalog, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying memory option: %w", err)
		}
	}

	c := &Catalog{
		tables: make(map[string][]catalogs.Row),
		reader: cfg.reader,
	}
	if c.reader == nil {
		c.reader = spectra.NewReader(spectra.WithBaseDir(cfg.baseDir))
	}

	if len(cfg.preloadData) > 0 {
		var doc document
		if err := yaml.Unmarshal(cfg.preloadData, &doc); err != nil {
			return nil, errors.WrapParse("yaml", "preload", err)
		}
		for name, rows := range doc.Tables {
			if err := catalogs.ValidateIdentifier(name); err != nil {
				return nil, err
			}
			for _, r := range rows {
				c.tables[name] = append(c.tables[name], catalogs.Row(r))
			}
		}
	}
	for name, rows := range cfg.tables {
		c.tables[name] = append(c.tables[name], rows...)
	}
	return c, nil
}

// Tables returns the names of every table held.
func (c *Catalog) Tables() []string {
	return catalogs.Inventory(c.tables).Tables()
}

// SearchObject returns one Sources row per canonical source whose name or
// alias contains name, compared case-insensitively.
func (c *Catalog) SearchObject(ctx context.Context, name string) ([]catalogs.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(name))
	if needle == "" {
		return nil, errors.NewValidationError("name", name, "search name cannot be empty")
	}

	matched := make(map[string]bool)
	for _, row := range c.tables[catalogs.TableSources] {
		if strings.Contains(fold.String(row.String(catalogs.ColSource)), needle) {
			matched[row.String(catalogs.ColSource)] = true
		}
	}
	for _, row := range c.tables[catalogs.TableNames] {
		if strings.Contains(fold.String(row.String(catalogs.ColOtherName)), needle) {
			matched[row.String(catalogs.ColSource)] = true
		}
	}

	var out []catalogs.Row
	seen := make(map[string]bool)
	for _, row := range c.tables[catalogs.TableSources] {
		src := row.String(catalogs.ColSource)
		if matched[src] && !seen[src] {
			seen[src] = true
			out = append(out, copyRow(row))
		}
	}
	// Aliases whose source has no Sources row still count as candidates.
	for _, row := range c.tables[catalogs.TableNames] {
		src := row.String(catalogs.ColSource)
		if matched[src] && !seen[src] {
			seen[src] = true
			out = append(out, catalogs.Row{catalogs.ColSource: src})
		}
	}
	return out, nil
}

// Inventory returns every row whose source column equals name.
func (c *Catalog) Inventory(ctx context.Context, name string) (catalogs.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv := make(catalogs.Inventory)
	for table, rows := range c.tables {
		for _, row := range rows {
			if row.String(catalogs.ColSource) == name {
				inv[table] = append(inv[table], copyRow(row))
			}
		}
	}
	return inv, nil
}

// Query implements catalogs.Catalog.
func (c *Catalog) Query(ctx context.Context, q catalogs.Query) ([]catalogs.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	rows, ok := c.tables[q.Table]
	if !ok {
		return nil, errors.NewNotFoundError("table", q.Table)
	}

	var out []catalogs.Row
	for _, row := range rows {
		if !q.Matches(row) {
			continue
		}
		out = append(out, q.Project(row))
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

// Spectra runs q and reads the payload referenced by each matching row.
func (c *Catalog) Spectra(ctx context.Context, q catalogs.Query) ([]*spectra.Spectrum, error) {
	q.Columns = nil
	rows, err := c.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return catalogs.ReadSpectra(ctx, c.reader, rows)
}

func copyRow(row catalogs.Row) catalogs.Row {
	return catalogs.Query{}.Project(row)
}
