// Package cmdtest provides catalog fixtures and helpers for command tests.
package cmdtest

import (
	"bytes"
	"context"
	"embed"
	"io/fs"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/agentstation/sedmap/internal/appcontext"
	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/catalogs/memory"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/spectra"
)

// Scheme is the URL scheme fixture spectra are served under.
const Scheme = "fixture"

//go:embed testdata
var fixtures embed.FS

// Catalog returns an in-memory catalog holding TWA 27 and TWA 28.
// TWA 27 has a readable nir spectrum and a malformed optical one.
func Catalog(t testing.TB) *memory.Catalog {
	t.Helper()
	data, err := fs.ReadFile(fixtures, "testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("reading fixture catalog: %v", err)
	}
	cat, err := memory.New(memory.WithPreload(data), memory.WithSpectraReader(Reader()))
	if err != nil {
		t.Fatalf("creating fixture catalog: %v", err)
	}
	return cat
}

// Reader returns a spectra reader serving the embedded payloads.
func Reader() *spectra.Reader {
	return spectra.NewReader(spectra.WithFetcher(Scheme, spectra.FetcherFunc(
		func(_ context.Context, rawURL string) ([]byte, error) {
			path := "testdata/" + strings.TrimPrefix(rawURL, Scheme+"://")
			data, err := fs.ReadFile(fixtures, path)
			if err != nil {
				return nil, errors.NewNotFoundError("spectrum", rawURL)
			}
			return data, nil
		})))
}

// App returns a mock application backed by the fixture catalog.
func App(t testing.TB, format string) *appcontext.Mock {
	t.Helper()
	cat := Catalog(t)
	return &appcontext.Mock{
		CatalogFunc: func(context.Context) (catalogs.Catalog, error) {
			return cat, nil
		},
		OutputFormatFunc: func() string { return format },
	}
}

// Run executes cmd with args and returns what it wrote to stdout.
func Run(t testing.TB, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
