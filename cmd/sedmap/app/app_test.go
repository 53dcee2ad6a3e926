package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap/pkg/bands"
	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
)

const document = `tables:
  Sources:
    - {source: TWA 27, ra: 167.307456, dec: -39.504444, reference: Gizi07}
  Names:
    - {source: TWA 27, other_name: 2M1207}
  Publications:
    - {publication: Gizi07, bibcode: 2007ApJ...669L..45G}
    - {publication: Gaia18, bibcode: 2018A&A...616A...1G}
  Parallaxes:
    - {source: TWA 27, parallax: 15.46, parallax_error: 0.12, adopted: true, reference: Gaia18}
  Spectra:
    - {source: TWA 27, regime: nir, reference: Gizi07, observation_date: "2016-04-12", access_url: spectra/nir.txt}
`

const nir = "# wavelength_unit: um\n# flux_unit: erg s-1 cm-2 A-1\n1.1 1.2e-15\n1.2 1.5e-15\n"

// writeDocument writes a YAML catalog and its spectrum into a temp dir.
func writeDocument(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "spectra"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "spectra", "nir.txt"), []byte(nir), 0o600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "simple.yaml")
	if err := os.WriteFile(path, []byte(document), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

var testBuild = BuildInfo{Version: "1.0.0", Commit: "abc123", Date: "2024-01-01", BuiltBy: "test"}

func newTestApp(t *testing.T, database string, opts ...Option) *App {
	t.Helper()
	logger := zerolog.Nop()
	config := &Config{
		Database:         database,
		UncertaintyScale: math.NaN(),
		LogFormat:        "json",
		LogOutput:        "stderr",
	}
	app := &App{build: testBuild, config: config, logger: &logger}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			t.Fatal(err)
		}
	}
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	isolate(t)
	app, err := New(testBuild)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Build() != testBuild {
		t.Errorf("Build() = %+v, want %+v", app.Build(), testBuild)
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

// TestApp_Catalog_Document verifies YAML documents open as in-memory
// catalogs with spectra resolved next to the document.
func TestApp_Catalog_Document(t *testing.T) {
	app := newTestApp(t, writeDocument(t))
	ctx := context.Background()

	cat, err := app.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog() failed: %v", err)
	}
	specs, err := cat.Spectra(ctx, catalogs.Query{
		Table:   catalogs.TableSpectra,
		Filters: []catalogs.Filter{catalogs.Eq(catalogs.ColRegime, "nir")},
	})
	if err != nil {
		t.Fatalf("Spectra() failed: %v", err)
	}
	if len(specs) != 1 || specs[0].Len() != 2 {
		t.Errorf("Spectra() = %d spectra, want 1 with 2 samples", len(specs))
	}
}

// TestApp_Catalog_Singleton verifies that Catalog() returns the same
// instance from concurrent callers.
func TestApp_Catalog_Singleton(t *testing.T) {
	app := newTestApp(t, writeDocument(t))

	const n = 10
	var wg sync.WaitGroup
	results := make([]catalogs.Catalog, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cat, err := app.Catalog(context.Background())
			if err != nil {
				t.Errorf("Catalog() failed: %v", err)
			}
			results[i] = cat
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatalf("Catalog() call %d returned a different instance", i)
		}
	}
}

// TestApp_Catalog_SQLite verifies SQLite files open through sqldb and are
// closed on shutdown.
func TestApp_Catalog_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SIMPLE.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE Sources (source TEXT PRIMARY KEY, ra REAL, dec REAL, reference TEXT);
INSERT INTO Sources VALUES ('TWA 27', 167.307456, -39.504444, 'Gizi07');`); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, path)
	ctx := context.Background()
	cat, err := app.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog() failed: %v", err)
	}
	rows, err := cat.SearchObject(ctx, "twa")
	if err != nil {
		t.Fatalf("SearchObject() failed: %v", err)
	}
	if len(rows) != 1 || rows[0].String(catalogs.ColSource) != "TWA 27" {
		t.Errorf("SearchObject() = %v", rows)
	}

	if err := app.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
	if app.catalog != nil {
		t.Error("Shutdown() left the catalog open")
	}
}

// TestApp_Catalog_Missing verifies a missing database is reported.
func TestApp_Catalog_Missing(t *testing.T) {
	app := newTestApp(t, filepath.Join(t.TempDir(), "missing.sqlite"))
	_, err := app.Catalog(context.Background())
	if !errors.IsNotFound(err) {
		t.Errorf("Catalog() error = %v, want not found", err)
	}

	app = newTestApp(t, "")
	if _, err := app.Catalog(context.Background()); err == nil {
		t.Error("Catalog() with no database succeeded")
	}
}

// TestApp_Shutdown_NoCatalog verifies shutdown before any catalog is opened.
func TestApp_Shutdown_NoCatalog(t *testing.T) {
	app := newTestApp(t, "SIMPLE.sqlite")
	if err := app.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
}

// TestApp_AdapterOptions verifies configured aliases become a normalizer option.
func TestApp_AdapterOptions(t *testing.T) {
	app := newTestApp(t, "SIMPLE.sqlite")
	if got := len(app.AdapterOptions()); got != 2 {
		t.Errorf("AdapterOptions() = %d options, want 2", got)
	}

	app.config.BandAliases = append(app.config.BandAliases, bands.Alias{From: "2MASS.Ks", To: "2MASS.K"})
	if got := len(app.AdapterOptions()); got != 3 {
		t.Errorf("AdapterOptions() = %d options, want 3", got)
	}
}

// TestIsDocument verifies YAML detection by extension.
func TestIsDocument(t *testing.T) {
	tests := map[string]bool{
		"simple.yaml":            true,
		"data/SIMPLE.YML":        true,
		"SIMPLE.sqlite":          false,
		"postgres://h/db":        false,
		"file:SIMPLE.db?mode=ro": false,
	}
	for dsn, want := range tests {
		if got := IsDocument(dsn); got != want {
			t.Errorf("IsDocument(%q) = %v, want %v", dsn, got, want)
		}
	}
}

// TestApp_Execute runs commands end to end against a YAML catalog.
func TestApp_Execute(t *testing.T) {
	path := writeDocument(t)

	t.Run("version", func(t *testing.T) {
		var out bytes.Buffer
		app := newTestApp(t, path, WithOutput(&out))
		if err := app.Execute(context.Background(), []string{"version", "-v"}); err != nil {
			t.Fatalf("Execute() failed: %v", err)
		}
		if !strings.Contains(out.String(), "sedmap 1.0.0") || !strings.Contains(out.String(), "commit:   abc123") {
			t.Errorf("version output = %q", out.String())
		}
	})

	t.Run("load", func(t *testing.T) {
		var out bytes.Buffer
		app := newTestApp(t, "unused.sqlite", WithOutput(&out))
		args := []string{"--db", path, "-o", "json", "--log-level", "error", "load", "2M1207"}
		if err := app.Execute(context.Background(), args); err != nil {
			t.Fatalf("Execute() failed: %v", err)
		}

		var result struct {
			Object string `json:"object"`
			SED    struct {
				Parallax struct {
					Reference string `json:"reference"`
				} `json:"parallax"`
				Spectra []json.RawMessage `json:"spectra"`
			} `json:"sed"`
		}
		if err := json.Unmarshal(out.Bytes(), &result); err != nil {
			t.Fatalf("decoding output %q: %v", out.String(), err)
		}
		if result.Object != "TWA 27" {
			t.Errorf("object = %q, want TWA 27", result.Object)
		}
		if result.SED.Parallax.Reference != "2018A&A...616A...1G" {
			t.Errorf("parallax reference = %q", result.SED.Parallax.Reference)
		}
		if len(result.SED.Spectra) != 1 {
			t.Errorf("spectra = %d, want 1", len(result.SED.Spectra))
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		app := newTestApp(t, path, WithOutput(&bytes.Buffer{}))
		if err := app.Execute(context.Background(), []string{"frobnicate"}); err == nil {
			t.Error("Execute() succeeded for unknown command")
		}
	})
}
