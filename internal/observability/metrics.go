package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms of one ingest run.
type Metrics struct {
	RowsFetched      prometheus.Counter
	RowsSkipped      prometheus.Counter
	RecordsDropped   prometheus.Counter
	RecordsAppended  prometheus.Counter
	RecordsDuplicate prometheus.Counter
	RecordsPublished prometheus.Counter
	FetchDuration    prometheus.Histogram
	LastSuccess      prometheus.Gauge

	// Registry is private to the run so it can be pushed as a whole.
	Registry *prometheus.Registry
}

// NewMetrics creates all ingest metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid19_ingest",
			Name:      "rows_fetched_total",
			Help:      "Table rows read from the source page.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid19_ingest",
			Name:      "rows_skipped_total",
			Help:      "Rows that did not match the source's table shape.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid19_ingest",
			Name:      "records_dropped_total",
			Help:      "Parsed records whose report date could not be resolved.",
		}),
		RecordsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid19_ingest",
			Name:      "records_appended_total",
			Help:      "Records written to the record store.",
		}),
		RecordsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid19_ingest",
			Name:      "records_duplicate_total",
			Help:      "Records skipped because their id was already stored.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid19_ingest",
			Name:      "records_published_total",
			Help:      "Appended records published to the message topic.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid19_ingest",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the source page fetch.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid19_ingest",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful ingest run.",
		}),
		Registry: prometheus.NewRegistry(),
	}

	m.Registry.MustRegister(
		m.RowsFetched,
		m.RowsSkipped,
		m.RecordsDropped,
		m.RecordsAppended,
		m.RecordsDuplicate,
		m.RecordsPublished,
		m.FetchDuration,
		m.LastSuccess,
	)

	return m
}

// NewMetricsForTesting creates Metrics whose collectors are not registered
// anywhere.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsFetched:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covid19_ingest", Name: "rows_fetched_total"}),
		RowsSkipped:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covid19_ingest", Name: "rows_skipped_total"}),
		RecordsDropped:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covid19_ingest", Name: "records_dropped_total"}),
		RecordsAppended:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covid19_ingest", Name: "records_appended_total"}),
		RecordsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covid19_ingest", Name: "records_duplicate_total"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covid19_ingest", Name: "records_published_total"}),
		FetchDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "covid19_ingest", Name: "fetch_duration_seconds"}),
		LastSuccess:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "covid19_ingest", Name: "last_success_timestamp_seconds"}),
		Registry:         prometheus.NewRegistry(),
	}
}
