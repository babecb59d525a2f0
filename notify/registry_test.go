package notify_test

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/notify/notify"
)

// recorder appends its name to a shared log on every event.
type recorder struct {
	name string
	log  *[]string
}

func (r *recorder) OnEvent(ctx context.Context, event notify.Event) {
	*r.log = append(*r.log, r.name)
}

// tallier counts events it receives.
type tallier struct {
	count int
}

func (c *tallier) OnEvent(ctx context.Context, event notify.Event) {
	c.count++
}

func TestRegistry_NotifyPreservesRegistrationOrder(t *testing.T) {
	var log []string
	slots := notify.NewSlots()
	reg := notify.NewRegistry()

	names := []string{"first", "second", "third", "fourth"}
	for _, name := range names {
		h := slots.Insert(&recorder{name: name, log: &log})
		reg.Register(slots.Ref(h))
	}

	reg.Notify(context.Background(), notify.Event{Type: "test.event"})
	reg.Notify(context.Background(), notify.Event{Type: "test.event"})

	want := append(slices.Clone(names), names...)
	if !slices.Equal(log, want) {
		t.Errorf("delivery order = %v, want %v", log, want)
	}
}

func TestRegistry_NotifyEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := notify.NewMetrics(nil)

	reg := notify.NewRegistry(notify.WithLogger(logger), notify.WithMetrics(metrics))
	reg.Notify(context.Background(), notify.Event{Type: "test.event"})

	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output, got: %s", buf.String())
	}
}

func TestRegistry_SkipsReleasedObserver(t *testing.T) {
	var log []string
	slots := notify.NewSlots()
	reg := notify.NewRegistry()

	a := slots.Insert(&recorder{name: "a", log: &log})
	b := slots.Insert(&recorder{name: "b", log: &log})
	reg.Register(slots.Ref(a))
	reg.Register(slots.Ref(b))

	if err := slots.Release(a); err != nil {
		t.Fatalf("Release(a): %v", err)
	}

	reg.Notify(context.Background(), notify.Event{Type: "test.event"})

	if !slices.Equal(log, []string{"b"}) {
		t.Errorf("delivered to %v, want [b]", log)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (stale entry is kept)", reg.Len())
	}
	if reg.Live() != 1 {
		t.Errorf("Live() = %d, want 1", reg.Live())
	}
}

func TestRegistry_RepeatedNotifyKeepsSkipping(t *testing.T) {
	var log []string
	slots := notify.NewSlots()
	reg := notify.NewRegistry()

	a := slots.Insert(&recorder{name: "a", log: &log})
	b := slots.Insert(&recorder{name: "b", log: &log})
	reg.Register(slots.Ref(a))
	reg.Register(slots.Ref(b))

	if err := slots.Release(a); err != nil {
		t.Fatalf("Release(a): %v", err)
	}

	for range 5 {
		reg.Notify(context.Background(), notify.Event{Type: "test.event"})
	}

	if !slices.Equal(log, []string{"b", "b", "b", "b", "b"}) {
		t.Errorf("delivered to %v, want b five times", log)
	}
}

func TestRegistry_SlotReuseDoesNotReviveStaleEntry(t *testing.T) {
	var log []string
	slots := notify.NewSlots()
	reg := notify.NewRegistry()

	a := slots.Insert(&recorder{name: "a", log: &log})
	reg.Register(slots.Ref(a))
	if err := slots.Release(a); err != nil {
		t.Fatalf("Release(a): %v", err)
	}

	// Reuses a's slot under a new generation.
	slots.Insert(&recorder{name: "intruder", log: &log})

	reg.Notify(context.Background(), notify.Event{Type: "test.event"})

	if len(log) != 0 {
		t.Errorf("stale entry resolved to a reused slot: %v", log)
	}
}

func TestRegistry_ObserversAreIndependent(t *testing.T) {
	var log []string
	slots := notify.NewSlots()
	reg := notify.NewRegistry()

	stateless := &recorder{name: "stateless", log: &log}
	first := &tallier{}
	second := &tallier{}

	reg.Register(slots.Ref(slots.Insert(stateless)))
	reg.Register(slots.Ref(slots.Insert(first)))

	h := slots.Insert(second)
	reg.Register(slots.Ref(h))

	reg.Notify(context.Background(), notify.Event{Type: "test.event"})
	if err := slots.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}
	reg.Notify(context.Background(), notify.Event{Type: "test.event"})

	if first.count != 2 {
		t.Errorf("first.count = %d, want 2", first.count)
	}
	if second.count != 1 {
		t.Errorf("second.count = %d, want 1", second.count)
	}
	if !slices.Equal(log, []string{"stateless", "stateless"}) {
		t.Errorf("stateless log = %v, want two entries", log)
	}
}

func TestRegistry_RegisterNilIgnored(t *testing.T) {
	reg := notify.NewRegistry()
	reg.Register(nil)

	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
	reg.Notify(context.Background(), notify.Event{Type: "test.event"})
}

func TestRegistry_NilObserverInSlotIsSkipped(t *testing.T) {
	slots := notify.NewSlots()
	reg := notify.NewRegistry()
	reg.Register(slots.Ref(slots.Insert(nil)))

	reg.Notify(context.Background(), notify.Event{Type: "test.event"})

	if reg.Live() != 0 {
		t.Errorf("Live() = %d, want 0", reg.Live())
	}
}

func TestRegistry_Prune(t *testing.T) {
	var log []string
	slots := notify.NewSlots()
	reg := notify.NewRegistry()

	var handles []notify.Handle
	for _, name := range []string{"a", "b", "c", "d"} {
		h := slots.Insert(&recorder{name: name, log: &log})
		handles = append(handles, h)
		reg.Register(slots.Ref(h))
	}

	if got := reg.Prune(); got != 0 {
		t.Errorf("Prune() with no stale entries = %d, want 0", got)
	}

	for _, i := range []int{0, 2} {
		if err := slots.Release(handles[i]); err != nil {
			t.Fatalf("Release(%d): %v", i, err)
		}
	}

	if got := reg.Prune(); got != 2 {
		t.Errorf("Prune() = %d, want 2", got)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() after prune = %d, want 2", reg.Len())
	}

	reg.Notify(context.Background(), notify.Event{Type: "test.event"})
	if !slices.Equal(log, []string{"b", "d"}) {
		t.Errorf("delivery after prune = %v, want [b d]", log)
	}
}

func TestRegistry_LogsSkippedEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	slots := notify.NewSlots()
	reg := notify.NewRegistry(notify.WithLogger(logger))

	h := slots.Insert(&tallier{})
	reg.Register(slots.Ref(h))
	if err := slots.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}

	buf.Reset()
	reg.Notify(context.Background(), notify.Event{Type: "test.event", Sequence: 7})

	output := buf.String()
	for _, want := range []string{"registry.notify.skip", "position=0", "event_type=test.event", "sequence=7"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in log output, got: %s", want, output)
		}
	}
}

func TestRegistry_ZeroValue(t *testing.T) {
	var log []string
	var reg notify.Registry
	slots := notify.NewSlots()

	reg.Register(slots.Ref(slots.Insert(&recorder{name: "a", log: &log})))
	reg.Notify(context.Background(), notify.Event{Type: "test.event"})

	if !slices.Equal(log, []string{"a"}) {
		t.Errorf("delivery = %v, want [a]", log)
	}
	if got := reg.Prune(); got != 0 {
		t.Errorf("Prune() = %d, want 0", got)
	}
}

func TestRegistry_NilLoggerFallsBack(t *testing.T) {
	var log []string
	slots := notify.NewSlots()
	reg := notify.NewRegistry(notify.WithLogger(nil))

	h := slots.Insert(&recorder{name: "a", log: &log})
	reg.Register(slots.Ref(h))
	reg.Register(nil)
	if err := slots.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}
	reg.Notify(context.Background(), notify.Event{Type: "test.event"})

	if got := reg.Prune(); got != 1 {
		t.Errorf("Prune() = %d, want 1", got)
	}
	if len(log) != 0 {
		t.Errorf("delivery = %v, want none", log)
	}
}
