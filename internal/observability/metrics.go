package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the service.
type Metrics struct {
	IngestAccepted *prometheus.CounterVec // labels: mode={raw,encoded}
	IngestRejected *prometheus.CounterVec // labels: mode={raw,encoded}
	BatchSize      prometheus.Histogram

	EncodeErrors prometheus.Counter
	DecodeErrors prometheus.Counter

	RetentionScanned  prometheus.Counter
	RetentionArchived prometheus.Counter
	RetentionPurged   prometheus.Counter
	RetentionDuration prometheus.Histogram

	SinkPublishErrors prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.IngestAccepted,
		m.IngestRejected,
		m.BatchSize,
		m.EncodeErrors,
		m.DecodeErrors,
		m.RetentionScanned,
		m.RetentionArchived,
		m.RetentionPurged,
		m.RetentionDuration,
		m.SinkPublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		IngestAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_records",
			Name:      "ingest_accepted_total",
			Help:      "Records accepted and persisted, by submission mode.",
		}, []string{"mode"}),
		IngestRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_records",
			Name:      "ingest_rejected_total",
			Help:      "Submissions rejected during validation or persistence, by mode.",
		}, []string{"mode"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disaster_records",
			Name:      "ingest_batch_size",
			Help:      "Number of items per batch submission.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		EncodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_records",
			Name:      "codec_encode_errors_total",
			Help:      "Identifier encode failures.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_records",
			Name:      "codec_decode_errors_total",
			Help:      "Identifier decode failures.",
		}),
		RetentionScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_records",
			Name:      "retention_scanned_total",
			Help:      "Records examined by retention sweeps.",
		}),
		RetentionArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_records",
			Name:      "retention_archived_total",
			Help:      "Records archived by retention sweeps.",
		}),
		RetentionPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_records",
			Name:      "retention_purged_total",
			Help:      "Records purged by retention sweeps.",
		}),
		RetentionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disaster_records",
			Name:      "retention_sweep_duration_seconds",
			Help:      "Duration of a complete retention sweep.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		SinkPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_records",
			Name:      "sink_publish_errors_total",
			Help:      "Failed publishes of accepted records to the sink topic.",
		}),
	}
}
