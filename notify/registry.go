package notify

import (
	"context"
	"log/slog"
)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registry diagnostics. A nil logger
// falls back to slog.Default.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// WithMetrics attaches delivery counters to the registry.
func WithMetrics(m *Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// Registry holds an ordered sequence of non-owning observer references and
// broadcasts events to the ones that are still alive. Entries are visited in
// registration order on every Notify. An entry whose observer has been
// destroyed stays in the sequence and is skipped each time until Prune is
// called.
//
// The zero value is an empty registry that logs to slog.Default. Registry is
// not safe for concurrent use.
type Registry struct {
	entries []Ref
	logger  *slog.Logger
	metrics *Metrics
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends ref to the registry. A nil ref is ignored.
func (r *Registry) Register(ref Ref) {
	if ref == nil {
		r.log().Debug("registry.register.nil")
		return
	}
	r.entries = append(r.entries, ref)
	r.log().Debug("registry.register", "position", len(r.entries)-1)
}

// Notify delivers event to every live observer in registration order.
// Entries that no longer resolve are skipped without error.
func (r *Registry) Notify(ctx context.Context, event Event) {
	r.metrics.broadcast()
	for i, ref := range r.entries {
		obs, ok := resolve(ref)
		if !ok {
			r.metrics.skipped()
			r.log().DebugContext(ctx, "registry.notify.skip",
				"position", i,
				"event_type", string(event.Type),
				"sequence", event.Sequence,
			)
			continue
		}
		obs.OnEvent(ctx, event)
		r.metrics.delivered()
	}
}

// Len returns the number of entries, including stale ones.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Live returns the number of entries that currently resolve to an observer.
func (r *Registry) Live() int {
	n := 0
	for _, ref := range r.entries {
		if _, ok := resolve(ref); ok {
			n++
		}
	}
	return n
}

// Prune removes stale entries, keeping the relative order of live ones, and
// returns how many were removed. Notify never prunes on its own.
func (r *Registry) Prune() int {
	kept := r.entries[:0]
	for _, ref := range r.entries {
		if _, ok := resolve(ref); ok {
			kept = append(kept, ref)
		}
	}
	removed := len(r.entries) - len(kept)
	clear(r.entries[len(kept):])
	r.entries = kept
	if removed > 0 {
		r.log().Debug("registry.prune", "removed", removed, "remaining", len(kept))
	}
	return removed
}

func (r *Registry) log() *slog.Logger {
	if r.logger == nil {
		return slog.Default()
	}
	return r.logger
}

func resolve(ref Ref) (Observer, bool) {
	obs, ok := ref.Resolve()
	if !ok || obs == nil {
		return nil, false
	}
	return obs, true
}
