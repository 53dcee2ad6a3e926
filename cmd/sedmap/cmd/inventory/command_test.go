package inventory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sedmap/internal/cmd/cmdtest"
	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
)

func TestInventoryJSON(t *testing.T) {
	out, err := cmdtest.Run(t, NewCommand(cmdtest.App(t, "json")), "2M1207")
	require.NoError(t, err)

	var result struct {
		Object        string                      `json:"object"`
		RequestedName string                      `json:"requested_name"`
		Tables        map[string][]map[string]any `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "TWA 27", result.Object)
	assert.Equal(t, "2M1207", result.RequestedName)
	assert.Len(t, result.Tables[catalogs.TableParallaxes], 2)
	assert.Len(t, result.Tables[catalogs.TablePhotometry], 3)
	assert.Len(t, result.Tables[catalogs.TableSpectra], 2)
}

func TestInventoryTable(t *testing.T) {
	out, err := cmdtest.Run(t, NewCommand(cmdtest.App(t, "table")), "TWA 27")
	require.NoError(t, err)
	assert.Contains(t, out, "TWA 27\n")
	assert.Contains(t, out, "Photometry")
	assert.Contains(t, out, "SpectralTypes")
}

func TestInventorySingleTable(t *testing.T) {
	out, err := cmdtest.Run(t, NewCommand(cmdtest.App(t, "table")), "TWA 27", "--table", "Photometry")
	require.NoError(t, err)
	assert.Contains(t, out, "2MASS.J")
	assert.Contains(t, out, "GAIA2.G")
	assert.NotContains(t, out, "15.46")

	_, err = cmdtest.Run(t, NewCommand(cmdtest.App(t, "table")), "TWA 27", "--table", "Radii")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCounts(t *testing.T) {
	data := Counts(catalogs.Inventory{
		"Sources":    {{"source": "x"}},
		"Photometry": {{"band": "a"}, {"band": "b"}},
	})
	assert.Equal(t, [][]string{{"Photometry", "2"}, {"Sources", "1"}}, data.Rows)
}
