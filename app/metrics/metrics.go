package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rss_hook"

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds the poller collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	FeedFetches    *prometheus.CounterVec
	EntriesEmitted *prometheus.CounterVec
	EntriesSkipped *prometheus.CounterVec
	Deliveries     *prometheus.CounterVec
	Passes         prometheus.Counter
	PassDuration   prometheus.Histogram
	SeenEntries    prometheus.Gauge
	PersistErrors  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "Feed fetches by result.",
		}, []string{"result"}),
		EntriesEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_emitted_total",
			Help:      "New in-scope entries selected for delivery, by feed.",
		}, []string{"feed"}),
		EntriesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_skipped_total",
			Help:      "Entries not delivered, by reason.",
		}, []string{"reason"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Delivery attempts by result.",
		}, []string{"result"}),
		Passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Completed poll passes.",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a poll pass.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		SeenEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seen_entries",
			Help:      "Entry IDs held in the dedup record.",
		}),
		PersistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_errors_total",
			Help:      "Failed dedup record writes.",
		}),
	}

	m.registry.MustRegister(
		m.FeedFetches,
		m.EntriesEmitted,
		m.EntriesSkipped,
		m.Deliveries,
		m.Passes,
		m.PassDuration,
		m.SeenEntries,
		m.PersistErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) ObserveFetch(err error) {
	if err != nil {
		m.FeedFetches.WithLabelValues(ResultError).Inc()
		return
	}
	m.FeedFetches.WithLabelValues(ResultSuccess).Inc()
}

func (m *Metrics) ObserveSelection(feedURL string, emitted, duplicates, outOfScope, invalid int) {
	m.EntriesEmitted.WithLabelValues(feedURL).Add(float64(emitted))
	m.EntriesSkipped.WithLabelValues("duplicate").Add(float64(duplicates))
	m.EntriesSkipped.WithLabelValues("out_of_scope").Add(float64(outOfScope))
	m.EntriesSkipped.WithLabelValues("invalid").Add(float64(invalid))
}

func (m *Metrics) ObserveDelivery(err error) {
	if err != nil {
		m.Deliveries.WithLabelValues(ResultError).Inc()
		return
	}
	m.Deliveries.WithLabelValues(ResultSuccess).Inc()
}

func (m *Metrics) ObservePass(duration time.Duration, seen int) {
	m.Passes.Inc()
	m.PassDuration.Observe(duration.Seconds())
	m.SeenEntries.Set(float64(seen))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
