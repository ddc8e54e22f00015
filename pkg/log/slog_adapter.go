package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.DeviceName != "" {
		attrs = append(attrs, slog.String("device", event.DeviceName))
	}

	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Config != nil:
		attrs = append(attrs,
			slog.Int("resolution", event.Config.Resolution),
			slog.String("pixel_type", event.Config.PixelType),
			slog.Int("bit_depth", int(event.Config.BitDepth)),
			slog.Bool("feeder", event.Config.UseFeeder),
		)
		if event.Config.DocumentSize != "" {
			attrs = append(attrs, slog.String("document_size", event.Config.DocumentSize))
		}
	case event.Transfer != nil:
		attrs = append(attrs,
			slog.Int("page", event.Transfer.Page),
			slog.String("destination", event.Transfer.Destination),
			slog.Int64("bytes", event.Transfer.Bytes),
		)
		if event.Transfer.MIMEType != "" {
			attrs = append(attrs, slog.String("mime", event.Transfer.MIMEType))
		}
	case event.Request != nil:
		attrs = append(attrs,
			slog.String("direction", event.Request.Direction.String()),
			slog.String("method", event.Request.Method),
			slog.String("url", event.Request.URL),
		)
		if event.Request.Status != 0 {
			attrs = append(attrs, slog.Int("status", event.Request.Status))
		}
		if event.Request.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *event.Request.Duration))
		}
	case event.Discovery != nil:
		attrs = append(attrs,
			slog.String("action", event.Discovery.Action.String()),
			slog.String("name", event.Discovery.Name),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Kind != "" {
			attrs = append(attrs, slog.String("error_kind", event.Error.Kind))
		}
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
