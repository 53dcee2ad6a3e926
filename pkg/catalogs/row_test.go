package catalogs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/sedmap/pkg/catalogs"
)

func TestRowFloat(t *testing.T) {
	row := catalogs.Row{
		"f64":   float64(25.5),
		"i64":   int64(20),
		"bytes": []byte("1.25"),
		"str":   " 3e2 ",
		"bad":   "n/a",
		"null":  nil,
		"bool":  true,
	}

	tests := []struct {
		column string
		want   float64
		ok     bool
	}{
		{"f64", 25.5, true},
		{"i64", 20, true},
		{"bytes", 1.25, true},
		{"str", 300, true},
		{"bad", 0, false},
		{"null", 0, false},
		{"bool", 0, false},
		{"missing", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, ok := row.Float(tt.column)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRowString(t *testing.T) {
	row := catalogs.Row{
		"s":    "Gaia.G",
		"b":    []byte("2MASS.J"),
		"f":    12.5,
		"i":    int64(7),
		"date": time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		"ts":   time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		"null": nil,
	}

	assert.Equal(t, "Gaia.G", row.String("s"))
	assert.Equal(t, "2MASS.J", row.String("b"))
	assert.Equal(t, "12.5", row.String("f"))
	assert.Equal(t, "7", row.String("i"))
	assert.Equal(t, "2020-01-02", row.String("date"))
	assert.Equal(t, "2020-01-02T03:04:05Z", row.String("ts"))
	assert.Equal(t, "", row.String("null"))
	assert.Equal(t, "", row.String("missing"))
}

func TestRowTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"int one", int64(1), true},
		{"int zero", int64(0), false},
		{"float", 1.0, true},
		{"string true", "True", true},
		{"string zero", "0", false},
		{"string false", "false", false},
		{"string other", "yes", true},
		{"empty string", "", false},
		{"bytes one", []byte("1"), true},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := catalogs.Row{"adopted": tt.value}
			assert.Equal(t, tt.want, row.Truthy("adopted"))
		})
	}

	assert.False(t, catalogs.Row{}.Truthy("adopted"))
}

func TestRowHasAndValue(t *testing.T) {
	row := catalogs.Row{"ra": 1.0, "dec": nil}

	assert.True(t, row.Has("ra"))
	assert.False(t, row.Has("dec"))
	assert.False(t, row.Has("missing"))

	v, ok := row.Value("dec")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = row.Value("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"dec", "ra"}, row.Columns())
}

func TestInventory(t *testing.T) {
	inv := catalogs.Inventory{
		catalogs.TableSources:    {{"source": "TWA 27"}},
		catalogs.TablePhotometry: {{"band": "2MASS.J"}, {"band": "2MASS.H"}},
	}

	assert.Equal(t, []string{"Photometry", "Sources"}, inv.Tables())
	assert.Equal(t, 3, inv.Count())

	rows, ok := inv.Rows(catalogs.TablePhotometry)
	assert.True(t, ok)
	assert.Len(t, rows, 2)

	_, ok = inv.Rows(catalogs.TableParallaxes)
	assert.False(t, ok)
}
