package worker

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jzx17/threadloop/pkg/types"
)

// poolMetrics holds Prometheus metrics for pool monitoring.
// A nil *poolMetrics is valid and records nothing.
type poolMetrics struct {
	registerer    prometheus.Registerer
	collectors    []prometheus.Collector
	submitted     *prometheus.CounterVec
	executed      prometheus.Counter
	panics        prometheus.Counter
	batchSize     prometheus.Histogram
	batchDuration prometheus.Histogram
	pending       prometheus.GaugeFunc
	boundKeys     prometheus.GaugeFunc
}

// newPoolMetrics creates the pool metrics and registers them with reg.
// On a registration failure every metric already registered is removed again.
func newPoolMetrics(reg prometheus.Registerer, prefix string, p *Pool) (*poolMetrics, error) {
	labels := prometheus.Labels{"pool": p.config.Name}

	m := &poolMetrics{
		registerer: reg,
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        prefix + "_submitted_total",
			Help:        "Total tasks submitted, by routing decision",
			ConstLabels: labels,
		}, []string{"route"}),
		executed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        prefix + "_executed_total",
			Help:        "Total tasks that ran to completion",
			ConstLabels: labels,
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        prefix + "_panics_total",
			Help:        "Total tasks that panicked and were recovered",
			ConstLabels: labels,
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        prefix + "_batch_size",
			Help:        "Number of tasks drained per wakeup",
			ConstLabels: labels,
			Buckets:     []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        prefix + "_batch_duration_seconds",
			Help:        "Time spent executing a drained batch",
			ConstLabels: labels,
			Buckets:     []float64{0.0001, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
	}

	m.pending = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        prefix + "_pending_tasks",
		Help:        "Tasks queued on workers and not yet drained",
		ConstLabels: labels,
	}, func() float64 {
		return float64(p.pending())
	})
	m.boundKeys = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        prefix + "_affinity_keys",
		Help:        "Affinity keys bound to a worker",
		ConstLabels: labels,
	}, func() float64 {
		return float64(p.dispatch.boundKeys())
	})

	for _, c := range []prometheus.Collector{
		m.submitted, m.executed, m.panics, m.batchSize, m.batchDuration, m.pending, m.boundKeys,
	} {
		if err := reg.Register(c); err != nil {
			m.unregister()
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
		m.collectors = append(m.collectors, c)
	}

	return m, nil
}

func (m *poolMetrics) observeSubmit(route types.Route) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(route.String()).Inc()
}

func (m *poolMetrics) observeBatch(size, panics int, duration time.Duration) {
	if m == nil {
		return
	}
	m.executed.Add(float64(size - panics))
	if panics > 0 {
		m.panics.Add(float64(panics))
	}
	m.batchSize.Observe(float64(size))
	m.batchDuration.Observe(duration.Seconds())
}

// unregister removes every registered collector
func (m *poolMetrics) unregister() {
	if m == nil {
		return
	}
	for _, c := range m.collectors {
		m.registerer.Unregister(c)
	}
	m.collectors = nil
}
