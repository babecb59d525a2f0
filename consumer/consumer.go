// Package consumer provides observers that react to publisher events: a
// stateless Announcer, a stateful Counter, and a metrics-backed Tally.
package consumer

import (
	"context"
	"fmt"
	"io"

	"github.com/tailored-agentic-units/notify/notify"
)

// Announcer writes a fixed line for every event it receives. It keeps no
// state between events.
type Announcer struct {
	name string
	out  io.Writer
}

// NewAnnouncer creates an Announcer that writes to out.
func NewAnnouncer(name string, out io.Writer) *Announcer {
	return &Announcer{name: name, out: out}
}

func (a *Announcer) OnEvent(ctx context.Context, event notify.Event) {
	fmt.Fprintf(a.out, "%s: discovered event\n", a.name)
}

// Counter counts the events it receives and writes the running total for
// each one. The count starts at zero and increases by exactly one per event.
type Counter struct {
	name  string
	out   io.Writer
	count uint64
}

// NewCounter creates a Counter that writes to out.
func NewCounter(name string, out io.Writer) *Counter {
	return &Counter{name: name, out: out}
}

func (c *Counter) OnEvent(ctx context.Context, event notify.Event) {
	c.count++
	fmt.Fprintf(c.out, "%s: discovered event: counter is %d\n", c.name, c.count)
}

// Report returns the number of events received so far.
func (c *Counter) Report() uint64 {
	return c.count
}

// WriteReport writes the final count to w.
func (c *Counter) WriteReport(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Final counter is %d\n", c.count)
	return err
}
