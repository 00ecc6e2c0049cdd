package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("listener_id", event.ListenerID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Hostname != "" {
		attrs = append(attrs, slog.String("hostname", event.Hostname))
	}

	// Add type-specific attributes
	switch {
	case event.Call != nil:
		attrs = append(attrs,
			slog.String("function", event.Call.Function.String()),
			slog.Int("size", event.Call.Size),
		)
		if event.Call.Code != nil {
			attrs = append(attrs, slog.String("code", event.Call.Code.String()))
		}
	case event.Record != nil:
		attrs = append(attrs, slog.String("code", event.Record.Code.String()))
		if event.Record.ConnID != 0 {
			attrs = append(attrs, slog.Uint64("conn_id", uint64(event.Record.ConnID)))
		}
		if event.Record.Peer != "" {
			attrs = append(attrs, slog.String("peer", event.Record.Peer))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
