package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

const redacted = "[redacted]"

// Attribute keys whose values never reach a sink. Sessions carry bearer
// tokens, and upstream errors sometimes echo headers back.
var secretKeys = map[string]struct{}{
	"access_token":  {},
	"authorization": {},
	"cookie":        {},
	"password":      {},
	"set-cookie":    {},
	"token":         {},
}

// MultiHandler fans records out to every enabled handler after masking
// secret attributes.
func MultiHandler(handlers ...slog.Handler) slog.Handler {
	filtered := make([]slog.Handler, 0, len(handlers))
	for _, handler := range handlers {
		if handler != nil {
			filtered = append(filtered, handler)
		}
	}
	if len(filtered) == 0 {
		return slog.NewTextHandler(io.Discard, nil)
	}
	return fanout(filtered)
}

type fanout []slog.Handler

func (h fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanout) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(redact(attr))
		return true
	})

	var handleErr error
	for _, handler := range h {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		handleErr = errors.Join(handleErr, handler.Handle(ctx, masked.Clone()))
	}
	return handleErr
}

func (h fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = redact(attr)
	}
	next := make(fanout, 0, len(h))
	for _, handler := range h {
		next = append(next, handler.WithAttrs(masked))
	}
	return next
}

func (h fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, 0, len(h))
	for _, handler := range h {
		next = append(next, handler.WithGroup(name))
	}
	return next
}

func redact(attr slog.Attr) slog.Attr {
	if _, ok := secretKeys[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, redacted)
	}
	if attr.Value.Kind() != slog.KindGroup {
		return attr
	}
	group := attr.Value.Group()
	masked := make([]slog.Attr, len(group))
	for i, member := range group {
		masked[i] = redact(member)
	}
	return slog.Attr{Key: attr.Key, Value: slog.GroupValue(masked...)}
}
