package reactive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// runtimeMetrics holds the Prometheus instruments for one Runtime.
// A nil receiver is valid everywhere so the hot paths stay free of
// conditionals when metrics are disabled.
type runtimeMetrics struct {
	flushes       prometheus.Counter
	recomputes    prometheus.Counter
	coalesced     prometheus.Counter
	cycles        prometheus.Counter
	subscriptions prometheus.Gauge
}

// WithMetrics registers flush, recompute, and subscription metrics for
// the runtime on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(rt *Runtime) {
		factory := promauto.With(reg)
		rt.metrics = &runtimeMetrics{
			flushes: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "pulse",
				Subsystem: "reactive",
				Name:      "flush_passes_total",
				Help:      "Completed flush passes.",
			}),
			recomputes: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "pulse",
				Subsystem: "reactive",
				Name:      "recomputes_total",
				Help:      "Computed recomputations, lazy and eager.",
			}),
			coalesced: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "pulse",
				Subsystem: "reactive",
				Name:      "writes_coalesced_total",
				Help:      "Writes absorbed by a throttle window.",
			}),
			cycles: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "pulse",
				Subsystem: "reactive",
				Name:      "cycle_errors_total",
				Help:      "Flush cascades cut off by the iteration guard.",
			}),
			subscriptions: factory.NewGauge(prometheus.GaugeOpts{
				Namespace: "pulse",
				Subsystem: "reactive",
				Name:      "subscriptions",
				Help:      "Live subscriber registrations across all cells.",
			}),
		}
	}
}

func (m *runtimeMetrics) flushed() {
	if m != nil {
		m.flushes.Inc()
	}
}

func (m *runtimeMetrics) recomputed() {
	if m != nil {
		m.recomputes.Inc()
	}
}

func (m *runtimeMetrics) writeCoalesced() {
	if m != nil {
		m.coalesced.Inc()
	}
}

func (m *runtimeMetrics) cycleDetected() {
	if m != nil {
		m.cycles.Inc()
	}
}

func (m *runtimeMetrics) subscriptionAdded() {
	if m != nil {
		m.subscriptions.Inc()
	}
}

func (m *runtimeMetrics) subscriptionRemoved() {
	if m != nil {
		m.subscriptions.Dec()
	}
}
