package notify

import (
	"context"
	"log/slog"
)

// SlogObserver logs every event it receives. The event type is the message;
// identity fields are top-level attributes and Data is nested under "data".
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver that emits to the given logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	level := event.Level.SlogLevel()
	if !o.logger.Enabled(ctx, level) {
		return
	}

	data := make([]any, 0, len(event.Data))
	for k, v := range event.Data {
		data = append(data, slog.Any(k, v))
	}

	o.logger.LogAttrs(ctx, level, string(event.Type),
		slog.String("source", event.Source),
		slog.String("id", event.ID),
		slog.Uint64("sequence", event.Sequence),
		slog.Group("data", data...),
	)
}
