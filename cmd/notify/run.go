package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/tailored-agentic-units/notify/config"
	"github.com/tailored-agentic-units/notify/consumer"
	"github.com/tailored-agentic-units/notify/notify"
	"github.com/tailored-agentic-units/notify/publisher"
)

const (
	announcerKey = "announcer"
	counterKey   = "counter"
	tallyKey     = "tally"
	logKey       = "log"
)

// owners holds the driver's ownership of observers. In slot mode the
// observers live in a notify.Slots table; in weak mode the driver keeps
// plain strong references and the registry sees weak pointers.
type owners struct {
	weak    bool
	slots   *notify.Slots
	handles map[string]notify.Handle
	strong  map[string]notify.Observer
}

func newOwners(weak bool) *owners {
	return &owners{
		weak:    weak,
		slots:   notify.NewSlots(),
		handles: make(map[string]notify.Handle),
		strong:  make(map[string]notify.Observer),
	}
}

// own takes ownership of p under key and returns a non-owning reference.
func own[T any, P interface {
	*T
	notify.Observer
}](o *owners, key string, p P) notify.Ref {
	if o.weak {
		o.strong[key] = p
		return notify.Weak(p)
	}
	h := o.slots.Insert(p)
	o.handles[key] = h
	return o.slots.Ref(h)
}

// release destroys the observer owned under key.
func (o *owners) release(key string) error {
	if o.weak {
		if _, ok := o.strong[key]; !ok {
			return fmt.Errorf("observer %q is not owned", key)
		}
		delete(o.strong, key)
		runtime.GC()
		return nil
	}

	h, ok := o.handles[key]
	if !ok {
		return fmt.Errorf("observer %q is not owned", key)
	}
	delete(o.handles, key)
	return o.slots.Release(h)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	logger, err := newLogger(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()

	pub := publisher.New(
		publisher.WithOutput(stdout),
		publisher.WithLogger(logger),
		publisher.WithSource(cfg.Source),
		publisher.WithMetrics(notify.NewMetrics(promReg)),
	)

	owned := newOwners(cfg.Weak)
	counter := consumer.NewCounter(cfg.Observers.Counter, stdout)

	pub.Register(own(owned, announcerKey, consumer.NewAnnouncer(cfg.Observers.Announcer, stdout)))
	pub.Register(own(owned, counterKey, counter))
	pub.Register(own(owned, tallyKey, consumer.NewTally(promReg)))
	pub.Register(own(owned, logKey, notify.NewSlogObserver(logger)))

	logger.Debug("notify.run.start",
		"rounds", cfg.Rounds,
		"release_after", cfg.ReleaseAfter,
		"weak", cfg.Weak,
	)

	for round := 1; round <= cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		pub.DoWork(ctx)

		if round == cfg.ReleaseAfter {
			if err := owned.release(announcerKey); err != nil {
				return fmt.Errorf("failed to release %s: %w", cfg.Observers.Announcer, err)
			}
			fmt.Fprintf(stdout, "Released observer %s\n", cfg.Observers.Announcer)
		}
	}

	if err := counter.WriteReport(stdout); err != nil {
		return err
	}

	logger.Debug("notify.run.complete",
		"broadcasts", pub.Broadcasts(),
		"registered", pub.Registry().Len(),
		"live", pub.Registry().Live(),
	)

	if cfg.Metrics {
		if err := writeMetrics(stdout, promReg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	runtime.KeepAlive(owned)
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
