package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iomon-project/iomon-go/pkg/log"
)

// Metrics is the engine's instrumentation sink. A nil *Metrics is valid
// and records nothing, so instrumentation stays optional.
type Metrics struct {
	itemsActive  *prometheus.GaugeVec
	samplesTotal *prometheus.CounterVec
	sampleErrors prometheus.Counter
	ticksDropped prometheus.Counter
	tickBuckets  prometheus.Gauge
}

// NewMetrics creates the engine metric set and registers it with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		itemsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "iomon",
			Subsystem: "engine",
			Name:      "items_active",
			Help:      "Number of active monitored items per delivery strategy.",
		}, []string{"strategy"}),
		samplesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iomon",
			Subsystem: "engine",
			Name:      "samples_total",
			Help:      "Total samples delivered into item value slots, by read path.",
		}, []string{"kind"}),
		sampleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iomon",
			Subsystem: "engine",
			Name:      "sample_errors_total",
			Help:      "Total failed reads absorbed at the item boundary.",
		}),
		ticksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iomon",
			Subsystem: "scheduler",
			Name:      "ticks_dropped_total",
			Help:      "Total ticks dropped because the previous callback was still running.",
		}),
		tickBuckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "iomon",
			Subsystem: "scheduler",
			Name:      "buckets_active",
			Help:      "Number of live tick intervals sharing a ticker.",
		}),
	}
	reg.MustRegister(m.itemsActive, m.samplesTotal, m.sampleErrors, m.ticksDropped, m.tickBuckets)
	return m
}

func (m *Metrics) itemStarted(strategy log.Strategy) {
	if m == nil {
		return
	}
	m.itemsActive.WithLabelValues(strategy.String()).Inc()
}

func (m *Metrics) itemStopped(strategy log.Strategy) {
	if m == nil {
		return
	}
	m.itemsActive.WithLabelValues(strategy.String()).Dec()
}

func (m *Metrics) sampleTaken(kind log.SampleKind) {
	if m == nil {
		return
	}
	m.samplesTotal.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) sampleError() {
	if m == nil {
		return
	}
	m.sampleErrors.Inc()
}

func (m *Metrics) tickDropped() {
	if m == nil {
		return
	}
	m.ticksDropped.Inc()
}

func (m *Metrics) setTickBuckets(n int) {
	if m == nil {
		return
	}
	m.tickBuckets.Set(float64(n))
}
