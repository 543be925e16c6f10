package metric

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "padbreak"

// Registry holds all application metrics on a private Prometheus registry.
//
// Registry satisfies the engine's Metrics interface and is safe for
// concurrent use.
type Registry struct {
	registry *prometheus.Registry

	// Search metrics
	CribsSearched    prometheus.Counter
	PairsCompared    prometheus.Counter
	OffsetsTested    prometheus.Counter
	OffsetsPruned    prometheus.Counter
	OffsetsDisproved prometheus.Counter

	// Batch metrics
	BatchesProcessed  prometheus.Counter
	BatchDuration     prometheus.Histogram
	BatchMessages     prometheus.Histogram
	PositionsResolved prometheus.Counter
	PositionsConflict prometheus.Counter
	PositionsRevoked  prometheus.Counter

	// Key metrics
	KeyKnown    prometheus.Gauge
	KeyLength   prometheus.Gauge
	KeyCoverage prometheus.Gauge
}

// NewRegistry creates a registry with the padbreak metrics and the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,

		CribsSearched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cribs_searched_total",
			Help:      "Crib searches completed.",
		}),
		PairsCompared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_compared_total",
			Help:      "Message pairs compared across all crib searches.",
		}),
		OffsetsTested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offsets_tested_total",
			Help:      "Crib alignments tested.",
		}),
		OffsetsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offsets_pruned_total",
			Help:      "Crib alignments skipped because both messages were already disproved.",
		}),
		OffsetsDisproved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offsets_disproved_total",
			Help:      "Crib alignments that produced a disallowed byte.",
		}),

		BatchesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_processed_total",
			Help:      "Batches processed.",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time spent processing one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		BatchMessages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_messages",
			Help:      "Messages per batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		PositionsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "positions_resolved_total",
			Help:      "Key positions resolved by batches.",
		}),
		PositionsConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "positions_conflict_total",
			Help:      "Key positions dropped as conflicts.",
		}),
		PositionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "positions_revoked_total",
			Help:      "Key positions revoked by later batches.",
		}),

		KeyKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "key_known_positions",
			Help:      "Known positions of the final key.",
		}),
		KeyLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "key_length",
			Help:      "Length of the final key.",
		}),
		KeyCoverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "key_coverage_ratio",
			Help:      "Fraction of the final key that is known.",
		}),
	}

	reg.MustRegister(
		r.CribsSearched, r.PairsCompared, r.OffsetsTested, r.OffsetsPruned, r.OffsetsDisproved,
		r.BatchesProcessed, r.BatchDuration, r.BatchMessages,
		r.PositionsResolved, r.PositionsConflict, r.PositionsRevoked,
		r.KeyKnown, r.KeyLength, r.KeyCoverage,
	)
	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Prometheus returns the underlying registry, e.g. for storage collectors.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler returns an HTTP handler serving r in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// WriteTextfile writes the current values to path in the node_exporter
// textfile collector format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// CribSearched records one completed crib search.
func (r *Registry) CribSearched(pairs, offsets, pruned, disproved int64) {
	r.CribsSearched.Inc()
	r.PairsCompared.Add(float64(pairs))
	r.OffsetsTested.Add(float64(offsets))
	r.OffsetsPruned.Add(float64(pruned))
	r.OffsetsDisproved.Add(float64(disproved))
}

// BatchProcessed records one committed batch.
func (r *Registry) BatchProcessed(elapsed time.Duration, messages, resolved, conflicts, revoked int) {
	r.BatchesProcessed.Inc()
	r.BatchDuration.Observe(elapsed.Seconds())
	r.BatchMessages.Observe(float64(messages))
	r.PositionsResolved.Add(float64(resolved))
	r.PositionsConflict.Add(float64(conflicts))
	r.PositionsRevoked.Add(float64(revoked))
}

// KeyConverged records the state of the final key.
func (r *Registry) KeyConverged(known, length int) {
	r.KeyKnown.Set(float64(known))
	r.KeyLength.Set(float64(length))
	if length > 0 {
		r.KeyCoverage.Set(float64(known) / float64(length))
	} else {
		r.KeyCoverage.Set(0)
	}
}
