// Package notify implements a synchronous observer registry whose entries do
// not own the observers they reference. Observers are owned elsewhere and may
// be destroyed at any time; the registry resolves each reference at
// notification time and skips the ones that are gone.
//
//	slots := notify.NewSlots()
//	h := slots.Insert(obs)
//
//	reg := notify.NewRegistry()
//	reg.Register(slots.Ref(h))
//	reg.Notify(ctx, event)
//
// Level values align with OpenTelemetry SeverityNumbers so that events can be
// forwarded to OTel collectors without translation.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Level represents event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8), maps to slog.LevelDebug
	LevelInfo    Level = 9  // OTel INFO (9-12), maps to slog.LevelInfo
	LevelWarning Level = 13 // OTel WARN (13-16), maps to slog.LevelWarn
	LevelError   Level = 17 // OTel ERROR (17-20), maps to slog.LevelError
)

// String returns the severity band name: DEBUG, INFO, WARN or ERROR.
func (l Level) String() string {
	return l.SlogLevel().String()
}

// SlogLevel maps this level to the corresponding slog.Level for log emission.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of event. Publishers define their own
// constants using this type (e.g., "publisher.work.done").
type EventType string

// Event is delivered to every live observer during a broadcast.
type Event struct {
	ID        string
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Sequence  uint64 // 1-based broadcast number assigned by the publisher.
	Data      map[string]any
}

// Observer reacts to events delivered by a Registry. OnEvent runs on the
// notifying goroutine and must not register observers into the registry
// that is currently notifying.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
