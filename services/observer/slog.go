//go:build !(rp2040 || rp2350)

package observer

import (
	"context"
	"log/slog"
)

// Slog forwards events to a structured logger. Faults and failed requests
// log at warn, request traffic at debug, the rest at info.
type Slog struct {
	L *slog.Logger
}

func (s Slog) Observe(e Event) {
	l := s.L
	if l == nil {
		l = slog.Default()
	}
	level := slog.LevelInfo
	switch e.Kind {
	case KindFault, KindRequestFailed, KindQueueDrop:
		level = slog.LevelWarn
	case KindRequest:
		level = slog.LevelDebug
	}
	attrs := []slog.Attr{slog.String("kind", e.Kind.String())}
	if e.Op != "" {
		attrs = append(attrs, slog.String("op", e.Op))
	}
	switch e.Kind {
	case KindState, KindWake, KindReconnect:
		attrs = append(attrs, slog.String("state", e.State.String()))
	case KindReading:
		attrs = append(attrs,
			slog.Float64("temperature", e.Reading.Temperature),
			slog.Float64("humidity", e.Reading.Humidity),
			slog.Float64("dewpoint", e.Reading.DewPoint),
			slog.Float64("battery", e.Reading.Voltage),
		)
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.Any("error", e.Err))
	}
	l.LogAttrs(context.Background(), level, "node event", attrs...)
}
