package sqldb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/spectra"
)

// newFixture builds a SQLite file from testdata/schema.sql and opens it
// read-only.
func newFixture(t *testing.T) *Catalog {
	t.Helper()

	schema, err := os.ReadFile("testdata/schema.sql")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "simple.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	c, err := Open(context.Background(), path,
		WithSpectraReader(spectra.NewReader(spectra.WithBaseDir("testdata"))))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() }) //nolint:errcheck
	return c
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dsn  string
		want Dialect
	}{
		{"SIMPLE.sqlite", DialectSQLite},
		{"file:/data/SIMPLE.sqlite", DialectSQLite},
		{"postgres://user@localhost/simple", DialectPostgres},
		{"PostgreSQL://localhost/simple", DialectPostgres},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, DialectFor(tt.dsn))
		})
	}
}

func TestCondition(t *testing.T) {
	cond, arg, bind := DialectSQLite.condition("bibcode", nil, 1)
	assert.Equal(t, `"bibcode" IS NULL`, cond)
	assert.Nil(t, arg)
	assert.False(t, bind)

	cond, arg, bind = DialectPostgres.condition("publication", "Gaia18", 2)
	assert.Equal(t, `"publication" = $2`, cond)
	assert.Equal(t, "Gaia18", arg)
	assert.True(t, bind)

	date := time.Date(2016, 4, 12, 0, 0, 0, 0, time.UTC)
	cond, arg, _ = DialectSQLite.condition("observation_date", date, 1)
	assert.Equal(t, `julianday("observation_date") = julianday(?)`, cond)
	assert.Equal(t, "2016-04-12 00:00:00.000", arg)

	cond, arg, _ = DialectPostgres.condition("observation_date", date, 1)
	assert.Equal(t, `"observation_date" = $1`, cond)
	assert.Equal(t, date, arg)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "")
	assert.Error(t, err)

	_, err = Open(ctx, filepath.Join(t.TempDir(), "missing.sqlite"))
	assert.True(t, errors.IsNotFound(err))
}

func TestTables(t *testing.T) {
	c := newFixture(t)
	assert.Equal(t, DialectSQLite, c.Dialect())
	assert.Equal(t, []string{"Names", "Parallaxes", "Photometry", "Publications", "Sources", "Spectra"}, c.Tables())
	assert.True(t, c.HasColumn("Spectra", "access_url"))
	assert.False(t, c.HasColumn("Publications", "source"))
}

func TestReadOnly(t *testing.T) {
	c := newFixture(t)
	_, err := c.db.Exec(`DELETE FROM Sources`)
	assert.Error(t, err)
}

func TestSearchObject(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		want []string
	}{
		{"TWA 27", []string{"TWA 27"}},
		{"twa 27", []string{"TWA 27"}},
		{"2m1207", []string{"TWA 27"}},
		{"SSSPM", []string{"TWA 28"}},
		{"TWA 2", []string{"TWA 27", "TWA 28"}},
		{"Luhman 16", nil},
		{"TWA_2", nil},
		{"%", nil},
		{`TWA\`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := c.SearchObject(ctx, tt.name)
			require.NoError(t, err)
			var got []string
			for _, r := range rows {
				got = append(got, r.String("source"))
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := c.SearchObject(ctx, "")
	assert.True(t, errors.IsValidationError(err))
}

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `twa\_27`, likeEscaper.Replace("twa_27"))
	assert.Equal(t, `100\%`, likeEscaper.Replace("100%"))
	assert.Equal(t, `a\\b`, likeEscaper.Replace(`a\b`))
}

func TestInventory(t *testing.T) {
	c := newFixture(t)

	inv, err := c.Inventory(context.Background(), "TWA 27")
	require.NoError(t, err)
	assert.Equal(t, []string{"Names", "Parallaxes", "Photometry", "Sources", "Spectra"}, inv.Tables())
	assert.Len(t, inv[catalogs.TableParallaxes], 2)

	src := inv[catalogs.TableSources][0]
	ra, ok := src.Float("ra")
	require.True(t, ok)
	assert.InDelta(t, 167.307456, ra, 1e-9)

	adopted := 0
	for _, row := range inv[catalogs.TableParallaxes] {
		if row.Truthy("adopted") {
			adopted++
			assert.Equal(t, "Gaia18", row.String("reference"))
		}
	}
	assert.Equal(t, 1, adopted)

	empty, err := c.Inventory(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestQuery(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	rows, err := c.Query(ctx, catalogs.Query{
		Table:   catalogs.TablePublications,
		Columns: []string{"bibcode"},
		Filters: []catalogs.Filter{catalogs.Eq("publication", "Gaia18")},
		Limit:   1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, catalogs.Row{"bibcode": "2018A&A...616A...1G"}, rows[0])

	rows, err = c.Query(ctx, catalogs.Query{
		Table:   catalogs.TablePublications,
		Columns: []string{"publication"},
		Filters: []catalogs.Filter{catalogs.Eq("bibcode", nil)},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Reid08", rows[0].String("publication"))

	rows, err = c.Query(ctx, catalogs.Query{
		Table:   catalogs.TableSpectra,
		Filters: []catalogs.Filter{catalogs.Eq("observation_date", time.Date(2016, 4, 12, 0, 0, 0, 0, time.UTC))},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "nir", rows[0].String("regime"))

	_, err = c.Query(ctx, catalogs.Query{Table: "Missing"})
	assert.True(t, errors.IsNotFound(err))

	_, err = c.Query(ctx, catalogs.Query{Table: "Sources; DROP TABLE Sources"})
	assert.True(t, errors.IsValidationError(err))

	_, err = c.Query(ctx, catalogs.Query{Table: catalogs.TableSources, Columns: []string{"nope"}})
	var qerr *errors.QueryError
	assert.True(t, errors.As(err, &qerr))
}

func TestSpectra(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	specs, err := c.Spectra(ctx, catalogs.Query{
		Table: catalogs.TableSpectra,
		Filters: []catalogs.Filter{
			catalogs.Eq("source", "TWA 27"),
			catalogs.Eq("regime", "nir"),
			catalogs.Eq("reference", "Duch17"),
			catalogs.Eq("observation_date", "2016-04-12"),
		},
	})
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, 4, specs[0].Len())
	assert.Equal(t, "TWA 27", specs[0].Source)

	_, err = c.Spectra(ctx, catalogs.Query{
		Table:   catalogs.TableSpectra,
		Filters: []catalogs.Filter{catalogs.Eq("regime", "optical")},
	})
	assert.True(t, errors.IsNotFound(err))
}
