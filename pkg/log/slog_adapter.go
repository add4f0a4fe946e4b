package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes acquisition events to an slog.Logger.
// Useful for development when you want to see acquisition events in console.
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
		slog.String("engine_id", event.EngineID),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.ItemID != 0 {
		attrs = append(attrs, slog.Uint64("item_id", uint64(event.ItemID)))
	}
	if event.NodeID != "" {
		attrs = append(attrs, slog.String("node_id", event.NodeID))
	}
	if event.Strategy != StrategyNone {
		attrs = append(attrs, slog.String("strategy", event.Strategy.String()))
	}

	// Add type-specific attributes
	switch {
	case event.Sample != nil:
		attrs = append(attrs,
			slog.String("kind", event.Sample.Kind.String()),
			slog.Uint64("status", uint64(event.Sample.Status)),
		)
		if event.Sample.Elapsed > 0 {
			attrs = append(attrs, slog.Duration("elapsed", event.Sample.Elapsed))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Scheduler != nil:
		attrs = append(attrs, slog.String("kind", event.Scheduler.Kind.String()))
		if event.Scheduler.Interval > 0 {
			attrs = append(attrs, slog.Duration("interval", event.Scheduler.Interval))
		}
		if event.Scheduler.OldInterval > 0 {
			attrs = append(attrs, slog.Duration("old_interval", event.Scheduler.OldInterval))
		}
	case event.Error != nil:
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "acquisition", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
