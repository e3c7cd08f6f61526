package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tempmap"

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	FramesRendered prometheus.Counter
	Ticks          prometheus.Counter
	Scrubs         prometheus.Counter
	Resets         prometheus.Counter
	MissingBuckets prometheus.Counter
	RenderDuration prometheus.Histogram
	CursorOffset   prometheus.Gauge
	SessionsActive prometheus.Gauge

	FrameCache     *prometheus.CounterVec // labels: result={hit,miss}
	SinkErrors     *prometheus.CounterVec // labels: sink={subscriber,kafka}
	DatasetRecords prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FramesRendered,
		m.Ticks,
		m.Scrubs,
		m.Resets,
		m.MissingBuckets,
		m.RenderDuration,
		m.CursorOffset,
		m.SessionsActive,
		m.FrameCache,
		m.SinkErrors,
		m.DatasetRecords,
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
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Total frames produced by the render dispatcher.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total animation ticks handled across sessions.",
		}),
		Scrubs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrubs_total",
			Help:      "Total slider scrubs.",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Total animation resets.",
		}),
		MissingBuckets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_buckets_total",
			Help:      "Frames rendered for a month with no temperature records.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent building a frame.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		CursorOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cursor_offset",
			Help:      "Month offset of the most recently rendered frame.",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of open animation sessions.",
		}),
		FrameCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_cache_total",
			Help:      "Rendered image cache lookups by result.",
		}, []string{"result"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Frames that could not be delivered, by sink.",
		}, []string{"sink"}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Temperature records indexed in the loaded dataset.",
		}),
	}
}
