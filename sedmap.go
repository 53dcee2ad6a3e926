// Package sedmap assembles a Spectral Energy Distribution for one object
// from the rows a SIMPLE-style catalog holds about it.
//
// An Adapter resolves the object's canonical name, fetches its inventory
// once and runs five independent loaders (coordinates, parallax,
// photometry, spectral type, spectra) that write into a sed.Model. Bad
// records never abort a load: each loader returns a LoadReport with one
// RecordResult per row and emits tagged Diagnostics instead.
//
// An Adapter is not safe for concurrent use.
package sedmap

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/references"
	"github.com/agentstation/sedmap/pkg/sed"
)

// Adapter turns one object's catalog inventory into a populated model.
type Adapter struct {
	catalog   catalogs.Catalog
	config    *config
	requested string
	name      string
	inventory catalogs.Inventory
	model     sed.Model
	resolver  *references.Resolver
	logger    zerolog.Logger
	loadID    string

	diagnostics []Diagnostic
	reports     []LoadReport
}

// New resolves name against catalog, fetches the inventory and, with
// WithAutoLoad(true), runs every loader. Only a nil catalog, an empty name
// or a failed inventory fetch return an error.
func New(ctx context.Context, catalog catalogs.Catalog, name string, opts ...Option) (*Adapter, error) {
	if catalog == nil {
		return nil, errors.NewConfigError("sedmap", "catalog cannot be nil", nil)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", name, "object name cannot be empty")
	}

	cfg := defaultConfig()
	if err := cfg.apply(opts...); err != nil {
		return nil, errors.WrapResource("configure", "adapter", name, err)
	}

	a := &Adapter{
		catalog:   catalog,
		config:    cfg,
		requested: name,
		name:      name,
		loadID:    uuid.NewString(),
	}
	a.logger = cfg.logger.With().
		Str("tag", cfg.tag).
		Str("load_id", a.loadID).
		Logger()
	a.resolver = references.NewResolver(catalog,
		references.WithLogger(&a.logger),
		references.WithObserver(a.observeResolution),
	)

	a.resolveName(ctx)

	inv, err := catalog.Inventory(ctx, a.name)
	if err != nil {
		return nil, errors.WrapResource("inventory", "object", a.name, err)
	}
	if inv == nil {
		inv = catalogs.Inventory{}
	}
	a.inventory = inv
	a.describeInventory()

	if cfg.model != nil {
		a.model = cfg.model
	} else {
		a.model = sed.New(a.name)
	}

	if cfg.autoLoad {
		a.LoadAll(ctx)
	}
	return a, nil
}

// resolveName swaps in the catalog's canonical name when the search finds
// exactly one candidate. Anything else keeps the requested name.
func (a *Adapter) resolveName(ctx context.Context) {
	rows, err := a.catalog.SearchObject(ctx, a.requested)
	if err != nil {
		a.diagnose(zerolog.WarnLevel, "", NoRow, err, "name search failed, using %q as given", a.requested)
		return
	}
	switch len(rows) {
	case 0:
		a.diagnose(zerolog.InfoLevel, "", NoRow, nil, "no catalog match for %q, using it as given", a.requested)
	case 1:
		canonical := strings.TrimSpace(rows[0].String(catalogs.ColSource))
		if canonical != "" && canonical != a.requested {
			a.name = canonical
			a.diagnose(zerolog.InfoLevel, "", NoRow, nil, "using %q for %q", canonical, a.requested)
		}
	default:
		a.diagnose(zerolog.InfoLevel, "", NoRow, nil, "%d catalog matches for %q, using it as given", len(rows), a.requested)
	}
}

func (a *Adapter) describeInventory() {
	a.logger.Debug().Int("rows", a.inventory.Count()).Int("tables", len(a.inventory)).Msg("Inventory fetched")
	if len(a.inventory) == 0 {
		a.diagnose(zerolog.InfoLevel, "", NoRow, nil, "inventory is empty")
		return
	}
	for _, table := range a.inventory.Tables() {
		rows, _ := a.inventory.Rows(table)
		a.diagnose(zerolog.InfoLevel, table, NoRow, nil, "%d rows", len(rows))
	}
}

func (a *Adapter) observeResolution(res references.Resolution) {
	if a.config.recorder != nil {
		a.config.recorder.RecordResolution(string(res.Status))
	}
}

// Name returns the name used for the inventory, canonical when the
// search found a unique match.
func (a *Adapter) Name() string {
	return a.name
}

// RequestedName returns the name passed to New.
func (a *Adapter) RequestedName() string {
	return a.requested
}

// Inventory returns the object's rows by table. It must not be modified.
func (a *Adapter) Inventory() catalogs.Inventory {
	return a.inventory
}

// Model returns the model being populated.
func (a *Adapter) Model() sed.Model {
	return a.model
}

// SED returns the model as a *sed.SED, or nil when WithModel supplied a
// different implementation.
func (a *Adapter) SED() *sed.SED {
	s, _ := a.model.(*sed.SED)
	return s
}

// Diagnostics returns every diagnostic emitted so far, in order.
func (a *Adapter) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), a.diagnostics...)
}

// Reports returns the report of every loader run so far, in order.
func (a *Adapter) Reports() []LoadReport {
	return append([]LoadReport(nil), a.reports...)
}

// LoadID returns the identifier attached to every log line of this load.
func (a *Adapter) LoadID() string {
	return a.loadID
}
