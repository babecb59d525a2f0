package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts registry activity. A nil *Metrics records nothing.
type Metrics struct {
	Broadcasts prometheus.Counter
	Delivered  prometheus.Counter
	Skipped    prometheus.Counter
}

// NewMetrics creates registry counters and registers them with reg. A nil
// reg leaves the counters unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Broadcasts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "notify",
			Subsystem: "registry",
			Name:      "broadcasts_total",
			Help:      "Total number of Notify calls",
		}),
		Delivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: "notify",
			Subsystem: "registry",
			Name:      "deliveries_total",
			Help:      "Total number of events delivered to live observers",
		}),
		Skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "notify",
			Subsystem: "registry",
			Name:      "stale_skipped_total",
			Help:      "Total number of registry entries skipped because their observer was gone",
		}),
	}
}

func (m *Metrics) broadcast() {
	if m != nil {
		m.Broadcasts.Inc()
	}
}

func (m *Metrics) delivered() {
	if m != nil {
		m.Delivered.Inc()
	}
}

func (m *Metrics) skipped() {
	if m != nil {
		m.Skipped.Inc()
	}
}
