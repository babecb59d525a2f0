// Package publisher implements the event generator: a subject that owns an
// observer registry and broadcasts one event through it each time it does a
// unit of work.
//
//	p := publisher.New(publisher.WithOutput(os.Stdout))
//	p.Register(notify.Weak(obs))
//	p.DoWork(ctx)
package publisher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/notify/notify"
)

// Publisher event types.
const (
	EventWorkDone notify.EventType = "publisher.work.done"
)

const defaultSource = "publisher.DoWork"

// Option configures a Publisher.
type Option func(*Publisher)

// WithOutput sets where progress markers are written. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Publisher) { p.out = w }
}

// WithLogger sets the logger used by the publisher and its registry. A nil
// logger falls back to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithSource overrides the Source stamped on emitted events.
func WithSource(source string) Option {
	return func(p *Publisher) { p.source = source }
}

// WithMetrics attaches delivery counters to the owned registry.
func WithMetrics(m *notify.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// Publisher owns a notify.Registry for its whole lifetime. It does not own
// the observers registered with it. Publisher is not safe for concurrent use.
type Publisher struct {
	registry   *notify.Registry
	out        io.Writer
	logger     *slog.Logger
	metrics    *notify.Metrics
	source     string
	broadcasts uint64
}

// New creates a Publisher with an empty registry.
func New(opts ...Option) *Publisher {
	p := &Publisher{
		out:    os.Stdout,
		logger: slog.Default(),
		source: defaultSource,
	}

	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	p.registry = notify.NewRegistry(
		notify.WithLogger(p.logger),
		notify.WithMetrics(p.metrics),
	)
	return p
}

// Register adds a non-owning observer reference to the registry.
func (p *Publisher) Register(ref notify.Ref) {
	p.registry.Register(ref)
}

// Registry returns the publisher's registry.
func (p *Publisher) Registry() *notify.Registry {
	return p.registry
}

// Broadcasts returns the number of completed DoWork calls.
func (p *Publisher) Broadcasts() uint64 {
	return p.broadcasts
}

// DoWork performs one unit of work and then notifies every live observer
// exactly once.
func (p *Publisher) DoWork(ctx context.Context) {
	fmt.Fprintln(p.out, "About to notify observers")

	seq := p.broadcasts + 1
	event := notify.Event{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Type:      EventWorkDone,
		Level:     notify.LevelInfo,
		Timestamp: time.Now(),
		Source:    p.source,
		Sequence:  seq,
		Data: map[string]any{
			"entries": p.registry.Len(),
			"live":    p.registry.Live(),
		},
	}

	p.logger.DebugContext(ctx, "publisher.notify.start", "sequence", seq, "id", event.ID)
	p.registry.Notify(ctx, event)
	p.broadcasts = seq

	fmt.Fprintln(p.out, "Finished notifying observers")
}
