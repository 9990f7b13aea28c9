package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stocksense"

// Metrics holds the service collectors on a private registry.
// All methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	enrichDuration  prometheus.Histogram
	enrichedRecords prometheus.Counter
	lookupFailures  *prometheus.CounterVec
	rotativoUpdates *prometheus.CounterVec
	ingestedRows    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.enrichDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "enrich_duration_seconds",
		Help:      "Time spent enriching one batch of count records.",
		Buckets:   prometheus.DefBuckets,
	})
	m.enrichedRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "enriched_records_total",
		Help:      "Count records enriched with reference data.",
	})
	m.lookupFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "lookup_failures_total",
		Help:      "Reference lookups that failed and were treated as empty.",
	}, []string{"lookup"})
	m.rotativoUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rotativo",
		Name:      "item_updates_total",
		Help:      "Cyclic-count item updates by outcome.",
	}, []string{"outcome"})
	m.ingestedRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "rows_total",
		Help:      "Spreadsheet rows written per table.",
	}, []string{"table"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.enrichDuration,
		m.enrichedRecords,
		m.lookupFailures,
		m.rotativoUpdates,
		m.ingestedRows,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveEnrich(records int, took time.Duration) {
	if m == nil {
		return
	}
	m.enrichDuration.Observe(took.Seconds())
	m.enrichedRecords.Add(float64(records))
}

func (m *Metrics) LookupFailed(lookup string) {
	if m == nil {
		return
	}
	m.lookupFailures.WithLabelValues(lookup).Inc()
}

func (m *Metrics) RotativoUpdate(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.rotativoUpdates.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RowsIngested(table string, n int) {
	if m == nil {
		return
	}
	m.ingestedRows.WithLabelValues(table).Add(float64(n))
}
