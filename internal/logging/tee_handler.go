package logging

import (
	"context"
	"log/slog"
)

// teeHandler writes each record to every child that accepts its level. The
// daemon uses it to copy file output into the systemd journal.
type teeHandler []slog.Handler

// TeeHandler combines handlers, skipping nil entries. A single survivor is
// returned as is.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	var out teeHandler
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	switch len(out) {
	case 0:
		return NoopHandler{}
	case 1:
		return out[0]
	}
	return out
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	last := len(t) - 1
	for i, h := range t {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if i < last {
			// Handlers may add attrs; each gets its own copy.
			rec = record.Clone()
		}
		if err := h.Handle(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) derive(fn func(slog.Handler) slog.Handler) teeHandler {
	next := make(teeHandler, len(t))
	for i, h := range t {
		next[i] = fn(h)
	}
	return next
}
