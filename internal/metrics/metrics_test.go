package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoaderMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewLoaderMetrics(registry)
	require.NoError(t, err)
	require.NotNil(t, m)

	// A second registration of the same collector must fail.
	_, err = NewLoaderMetrics(registry)
	assert.Error(t, err)
}

func TestRecordOutcome(t *testing.T) {
	m, err := NewLoaderMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordOutcome("Parallaxes", "loaded")
	m.RecordOutcome("Parallaxes", "skipped")
	m.RecordOutcome("Parallaxes", "skipped")

	assert.InDelta(t, 1, testutil.ToFloat64(m.recordsTotal.WithLabelValues("Parallaxes", "loaded")), 0.0001)
	assert.InDelta(t, 2, testutil.ToFloat64(m.recordsTotal.WithLabelValues("Parallaxes", "skipped")), 0.0001)
}

func TestRecordResolution(t *testing.T) {
	m, err := NewLoaderMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordResolution("resolved")
	m.RecordResolution("not_found")

	expected := `
# HELP sedmap_reference_resolutions_total Publication reference resolutions, by status
# TYPE sedmap_reference_resolutions_total counter
sedmap_reference_resolutions_total{status="not_found"} 1
sedmap_reference_resolutions_total{status="resolved"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m.resolutionsTotal, strings.NewReader(expected)))
}

func TestObserveLoad(t *testing.T) {
	m, err := NewLoaderMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveLoad("Spectra", 20*time.Millisecond)
	m.ObserveLoad("Spectra", 30*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.loadDuration, "sedmap_load_duration_seconds"))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *LoaderMetrics
	assert.NotPanics(t, func() {
		m.RecordOutcome("Sources", "loaded")
		m.RecordResolution("resolved")
		m.ObserveLoad("Sources", time.Second)
	})
}

func TestWriteTextfile(t *testing.T) {
	m, err := NewLoaderMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	m.RecordOutcome("Photometry", "loaded")

	path := filepath.Join(t.TempDir(), "sedmap.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sedmap_records_total{outcome="loaded",table="Photometry"} 1`)
}
