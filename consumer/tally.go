package consumer

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tailored-agentic-units/notify/notify"
)

// Tally counts received events by type and level in a Prometheus counter.
type Tally struct {
	events *prometheus.CounterVec
}

// NewTally creates a Tally whose counter is registered with reg. A nil reg
// leaves the counter unregistered.
func NewTally(reg prometheus.Registerer) *Tally {
	return &Tally{
		events: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify",
				Subsystem: "consumer",
				Name:      "events_total",
				Help:      "Total number of events received by the tally observer",
			},
			[]string{"type", "level"},
		),
	}
}

func (t *Tally) OnEvent(ctx context.Context, event notify.Event) {
	t.events.WithLabelValues(string(event.Type), event.Level.String()).Inc()
}

// Series returns the counter for events with the given type and level.
func (t *Tally) Series(eventType notify.EventType, level notify.Level) prometheus.Counter {
	return t.events.WithLabelValues(string(eventType), level.String())
}
