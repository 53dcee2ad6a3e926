// Package metrics provides Prometheus metrics for SED assembly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LoaderMetrics contains Prometheus metrics for catalog loaders.
type LoaderMetrics struct {
	registry *prometheus.Registry

	recordsTotal     *prometheus.CounterVec
	resolutionsTotal *prometheus.CounterVec
	loadDuration     *prometheus.HistogramVec
}

// NewLoaderMetrics creates loader metrics and registers them on registry.
func NewLoaderMetrics(registry *prometheus.Registry) (*LoaderMetrics, error) {
	m := &LoaderMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *LoaderMetrics) initMetrics() {
	m.recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sedmap_records_total",
			Help: "Catalog records processed by loaders, by outcome",
		},
		[]string{"table", "outcome"}, // outcome: loaded, skipped, absent, malformed, fetch_failed
	)

	m.resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sedmap_reference_resolutions_total",
			Help: "Publication reference resolutions, by status",
		},
		[]string{"status"},
	)

	m.loadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sedmap_load_duration_seconds",
			Help:    "Time taken by one table loader",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"table"},
	)
}

// Describe implements prometheus.Collector
func (m *LoaderMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.recordsTotal.Describe(ch)
	m.resolutionsTotal.Describe(ch)
	m.loadDuration.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *LoaderMetrics) Collect(ch chan<- prometheus.Metric) {
	m.recordsTotal.Collect(ch)
	m.resolutionsTotal.Collect(ch)
	m.loadDuration.Collect(ch)
}

// RecordOutcome counts one record of table with outcome.
func (m *LoaderMetrics) RecordOutcome(table, outcome string) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(table, outcome).Inc()
}

// RecordResolution counts one reference resolution with status.
func (m *LoaderMetrics) RecordResolution(status string) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(status).Inc()
}

// ObserveLoad records how long a table loader ran.
func (m *LoaderMetrics) ObserveLoad(table string, d time.Duration) {
	if m == nil {
		return
	}
	m.loadDuration.WithLabelValues(table).Observe(d.Seconds())
}

// WriteTextfile writes every metric on the registry in the Prometheus
// text format, for the node exporter textfile collector.
func (m *LoaderMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
