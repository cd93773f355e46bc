package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	WebhookEvents   *prometheus.CounterVec
	ItemsStaged     *prometheus.CounterVec
	RunsCompleted   prometheus.Counter
	RunItemsChecked prometheus.Counter
	StillFailing    prometheus.Histogram
	QueueDepth      prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Inbound change-events by outcome (accepted, bad_signature, bad_payload).",
		}, []string{"outcome"}),

		ItemsStaged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "items_staged_total",
			Help: "Items staged for re-verification, by check.",
		}, []string{"check"}),

		RunsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runs_completed_total",
			Help: "Batch re-verification runs finalized.",
		}),

		RunItemsChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "run_items_checked_total",
			Help: "Barcodes processed across all run chunks.",
		}),

		StillFailing: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "run_still_failing_items",
			Help:    "Number of items still failing at run finalization.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),

		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "continuation_queue_depth",
			Help: "Continuation messages currently waiting.",
		}),
	}

	reg.MustRegister(
		m.WebhookEvents,
		m.ItemsStaged,
		m.RunsCompleted,
		m.RunItemsChecked,
		m.StillFailing,
		m.QueueDepth,
	)

	return m
}

// WorkerHooks returns the metric callback functions expected by
// run.MetricHooks. Centralises the prometheus observation calls so the
// worker stays metrics-agnostic.
func (m *Metrics) WorkerHooks() (onChunk func(int), onRunCompleted func(int)) {
	onChunk = func(items int) {
		m.RunItemsChecked.Add(float64(items))
	}
	onRunCompleted = func(stillFailing int) {
		m.RunsCompleted.Inc()
		m.StillFailing.Observe(float64(stillFailing))
	}
	return onChunk, onRunCompleted
}
