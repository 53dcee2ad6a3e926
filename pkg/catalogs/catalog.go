// Package catalogs defines the read-only contract between sedmap and an
// astronomical catalog database laid out like the SIMPLE archive.
//
// Implementations live in subpackages: memory (YAML fixtures) and sqldb
// (SQLite or Postgres through database/sql). The core only ever reads.
//
// Example usage:
//
//	cat, err := sqldb.Open(ctx, "SIMPLE.sqlite")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cat.Close()
//
//	inv, err := cat.Inventory(ctx, "TWA 27")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, table := range inv.Tables() {
//	    fmt.Printf("%s: %d rows\n", table, len(inv[table]))
//	}
package catalogs

import (
	"context"

	"github.com/agentstation/sedmap/pkg/spectra"
)

// Catalog is the read-only catalog collaborator.
type Catalog interface {
	// SearchObject returns candidate rows for a name or alias. Each row
	// carries the canonical "source" column.
	SearchObject(ctx context.Context, name string) ([]Row, error)

	// Inventory returns every row keyed to the canonical source name,
	// grouped by table. Tables with no rows are omitted.
	Inventory(ctx context.Context, name string) (Inventory, error)

	// Query runs a flat equality-filtered select on one table.
	Query(ctx context.Context, q Query) ([]Row, error)

	// Spectra runs q against the Spectra table and returns structured
	// spectral objects for the matching rows. Rows whose payload cannot be
	// read are left out and reported through the error, which may be
	// returned alongside the spectra that did decode.
	Spectra(ctx context.Context, q Query) ([]*spectra.Spectrum, error)
}

// Table names in the SIMPLE layout.
const (
	TableSources       = "Sources"
	TableNames         = "Names"
	TableParallaxes    = "Parallaxes"
	TablePhotometry    = "Photometry"
	TableSpectralTypes = "SpectralTypes"
	TableSpectra       = "Spectra"
	TablePublications  = "Publications"
)

// Column names read by the loaders.
const (
	ColSource          = "source"
	ColOtherName       = "other_name"
	ColRA              = "ra"
	ColDec             = "dec"
	ColParallax        = "parallax"
	ColParallaxError   = "parallax_error"
	ColAdopted         = "adopted"
	ColReference       = "reference"
	ColBand            = "band"
	ColMagnitude       = "magnitude"
	ColMagnitudeError  = "magnitude_error"
	ColSpectralType    = "spectral_type_string"
	ColRegime          = "regime"
	ColObservationDate = "observation_date"
	ColAccessURL       = "access_url"
	ColSpectrum        = "spectrum"
	ColPublication     = "publication"
	ColBibcode         = "bibcode"
)
