package load

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sedmap"
	"github.com/agentstation/sedmap/internal/cmd/cmdtest"
	"github.com/agentstation/sedmap/pkg/errors"
)

func TestLoadTable(t *testing.T) {
	app := cmdtest.App(t, "table")
	out, err := cmdtest.Run(t, NewCommand(app), "TWA 27", "--reports")
	require.NoError(t, err)

	assert.Contains(t, out, "TWA 27\n")
	assert.Contains(t, out, "parallax:      15.460 +/- 0.120 mas [2018A&A...616A...1G]")
	assert.Contains(t, out, "spectral type: M8 [2007ApJ...669L..45G]")
	assert.Contains(t, out, "photometry:    3 points")
	assert.Contains(t, out, "spectra:       1")
	assert.Contains(t, out, "Photometry")
	assert.Contains(t, out, "2MASS.J")
	assert.Contains(t, out, "Records")
	assert.Contains(t, out, string(sedmap.OutcomeMalformed))
	assert.NotContains(t, out, "Diagnostics")
}

func TestLoadJSON(t *testing.T) {
	app := cmdtest.App(t, "json")
	out, err := cmdtest.Run(t, NewCommand(app), "2M1207", "--reports", "--diagnostics")
	require.NoError(t, err)

	var result struct {
		Object        string `json:"object"`
		RequestedName string `json:"requested_name"`
		LoadID        string `json:"load_id"`
		SED           struct {
			Parallax struct {
				Value float64 `json:"value"`
			} `json:"parallax"`
			Photometry []struct {
				Band           string   `json:"band"`
				MagnitudeError *float64 `json:"magnitude_error"`
			} `json:"photometry"`
			Spectra []json.RawMessage `json:"spectra"`
		} `json:"sed"`
		Records     []Record         `json:"records"`
		Diagnostics []map[string]any `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, "TWA 27", result.Object)
	assert.Equal(t, "2M1207", result.RequestedName)
	assert.NotEmpty(t, result.LoadID)
	assert.InDelta(t, 15.46, result.SED.Parallax.Value, 1e-9)
	require.Len(t, result.SED.Photometry, 3)
	assert.Nil(t, result.SED.Photometry[2].MagnitudeError)
	assert.Len(t, result.SED.Spectra, 1)
	assert.NotEmpty(t, result.Records)
	assert.NotEmpty(t, result.Diagnostics)

	var malformed []Record
	for _, r := range result.Records {
		if r.Outcome == sedmap.OutcomeMalformed {
			malformed = append(malformed, r)
		}
	}
	require.Len(t, malformed, 1)
	assert.Equal(t, "Spectra", malformed[0].Table)
	assert.Equal(t, 2, malformed[0].Row)
}

func TestLoadOnly(t *testing.T) {
	app := cmdtest.App(t, "json")
	out, err := cmdtest.Run(t, NewCommand(app), "TWA 27", "--only", "coords, parallax")
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	s, ok := raw["sed"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, s, "sky_coords")
	assert.Contains(t, s, "parallax")
	assert.NotContains(t, s, "spectral_type")
	assert.NotContains(t, raw, "records")
}

func TestLoadUnknownLoader(t *testing.T) {
	app := cmdtest.App(t, "table")
	_, err := cmdtest.Run(t, NewCommand(app), "TWA 27", "--only", "magnitudes")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestLoadBadFormat(t *testing.T) {
	app := cmdtest.App(t, "xml")
	_, err := cmdtest.Run(t, NewCommand(app), "TWA 27")
	assert.Error(t, err)
}

func TestLoadMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sedmap.prom")
	app := cmdtest.App(t, "table")
	_, err := cmdtest.Run(t, NewCommand(app), "TWA 27", "--metrics-out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sedmap_")
	assert.Contains(t, string(data), `outcome="malformed"`)
}

func TestRecords(t *testing.T) {
	reports := []sedmap.LoadReport{{
		Loader: sedmap.LoaderSpectra,
		Results: []sedmap.RecordResult{
			{Table: "Spectra", Row: 1, Outcome: sedmap.OutcomeLoaded},
			{Table: "Spectra", Row: 2, Outcome: sedmap.OutcomeFetchFailed, Err: errors.New("boom")},
		},
	}}
	got := Records(reports)
	require.Len(t, got, 2)
	assert.Equal(t, sedmap.LoaderSpectra, got[1].Loader)
	assert.Equal(t, "boom", got[1].Error)
	assert.Empty(t, got[0].Error)
}

func TestLoadFailureAlert(t *testing.T) {
	cmd := NewCommand(cmdtest.App(t, "table"))
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"TWA 27"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.NotContains(t, stdout.String(), "could not be loaded")
	assert.Contains(t, stderr.String(), "! 1 record could not be loaded")
	assert.Contains(t, stderr.String(), "Spectra row 2 (malformed)")
}

func TestFailureAlert(t *testing.T) {
	assert.Nil(t, FailureAlert(nil))
	assert.Nil(t, FailureAlert([]sedmap.LoadReport{{
		Results: []sedmap.RecordResult{{Table: "Parallaxes", Row: 1, Outcome: sedmap.OutcomeSkipped}},
	}}))

	alert := FailureAlert([]sedmap.LoadReport{{
		Results: []sedmap.RecordResult{
			{Table: "Photometry", Row: 3, Outcome: sedmap.OutcomeMalformed, Err: errors.New("bad magnitude")},
			{Table: "Spectra", Row: 1, Outcome: sedmap.OutcomeFetchFailed, Err: errors.New("timeout")},
		},
	}})
	require.NotNil(t, alert)
	assert.Equal(t, "2 records could not be loaded (use --reports for details)", alert.Message)
	assert.Equal(t, []string{
		"Photometry row 3 (malformed): bad magnitude",
		"Spectra row 1 (fetch_failed): timeout",
	}, alert.Details)
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"coords", "spectra"}, cleanList([]string{" coords", "", "spectra "}))
	assert.Nil(t, cleanList(nil))
}
