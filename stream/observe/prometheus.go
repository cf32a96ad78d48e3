package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lguimbarda/min-stream/stream/core"
)

// PromMetrics holds the Prometheus collectors for stream observation. All
// of them are labelled by stream name.
type PromMetrics struct {
	Items       *prometheus.CounterVec
	Completions *prometheus.CounterVec
	Length      *prometheus.HistogramVec
	Partitions  *prometheus.CounterVec
}

// NewPromMetrics creates the collectors and registers them with reg.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	factory := promauto.With(reg)

	return &PromMetrics{
		Items: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "minstream",
				Subsystem: "stream",
				Name:      "items_total",
				Help:      "Total number of elements pulled through a stream",
			},
			[]string{FieldStream},
		),

		Completions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "minstream",
				Subsystem: "stream",
				Name:      "completions_total",
				Help:      "Total number of streams that ended, drained or stopped early",
			},
			[]string{FieldStream},
		),

		Length: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "minstream",
				Subsystem: "stream",
				Name:      "length",
				Help:      "Number of elements surfaced by an ended stream",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{FieldStream},
		),

		Partitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "minstream",
				Subsystem: "partition",
				Name:      "discovered_total",
				Help:      "Total number of partition keys discovered",
			},
			[]string{FieldStream},
		),
	}
}

// PromHooks returns hooks that update m for the stream named name.
func PromHooks[T any](m *PromMetrics, name string) core.Hooks[T] {
	items := m.Items.WithLabelValues(name)
	completions := m.Completions.WithLabelValues(name)
	length := m.Length.WithLabelValues(name)
	return core.Hooks[T]{
		OnValue: func(T) {
			items.Inc()
		},
		OnComplete: func(n int) {
			completions.Inc()
			length.Observe(float64(n))
		},
	}
}

// Prometheus wraps s so that its elements are counted in m.
func Prometheus[T any](s *core.Stream[T], m *PromMetrics, name string) *core.Stream[T] {
	return core.Observe(s, PromHooks[T](m, name))
}

// PromDiscover is a partition option that counts discovered keys in m.
func PromDiscover[K comparable](m *PromMetrics, name string) core.PartitionOption[K] {
	discovered := m.Partitions.WithLabelValues(name)
	return core.WithDiscoverHook(func(K) {
		discovered.Inc()
	})
}
