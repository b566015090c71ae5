package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// recordGroup nests the record-scoped fields of a JSON line:
//
//	{"ts":"...","level":"info","msg":"record reconciled","component":"reconcile",
//	 "record":{"source_id":7,"batch_id":"...","correlation_id":"..."},"status":"resolved"}
const recordGroup = "record"

// jsonHandler wraps slog's JSON handler and lifts source_id, service,
// batch_id and correlation_id into one "record" object so log shippers can
// index by record without knowing every event's shape.
type jsonHandler struct {
	inner  slog.Handler
	scoped []slog.Attr
	nested bool
}

func newJSONHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:       level,
		AddSource:   addSource,
		ReplaceAttr: replaceJSONAttr,
	}
	return &jsonHandler{inner: slog.NewJSONHandler(w, &opts)}
}

func replaceJSONAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339Nano))
		}
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	if attr.Value.Kind() == slog.KindDuration {
		attr.Key += "_ms"
		attr.Value = slog.Int64Value(attr.Value.Duration().Milliseconds())
	}
	return attr
}

func (h *jsonHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *jsonHandler) Handle(ctx context.Context, record slog.Record) error {
	scoped := h.scoped
	rest := make([]slog.Attr, 0, record.NumAttrs())
	record.Attrs(func(attr slog.Attr) bool {
		if !h.nested && isRecordScoped(attr.Key) {
			scoped = setScoped(scoped, attr)
		} else {
			rest = append(rest, attr)
		}
		return true
	})

	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	if len(scoped) > 0 {
		out.AddAttrs(slog.Attr{Key: recordGroup, Value: slog.GroupValue(orderScoped(scoped)...)})
	}
	out.AddAttrs(rest...)
	return h.inner.Handle(ctx, out)
}

func (h *jsonHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &jsonHandler{inner: h.inner, nested: h.nested}
	clone.scoped = append(clone.scoped, h.scoped...)
	var rest []slog.Attr
	for _, attr := range attrs {
		if !h.nested && isRecordScoped(attr.Key) {
			clone.scoped = setScoped(clone.scoped, attr)
			continue
		}
		rest = append(rest, attr)
	}
	if len(rest) > 0 {
		clone.inner = h.inner.WithAttrs(rest)
	}
	return clone
}

// WithGroup stops lifting: fields inside a caller's group stay where the
// caller put them.
func (h *jsonHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	inner := h.inner
	if len(h.scoped) > 0 {
		inner = inner.WithAttrs([]slog.Attr{{Key: recordGroup, Value: slog.GroupValue(orderScoped(h.scoped)...)}})
	}
	return &jsonHandler{inner: inner.WithGroup(name), nested: true}
}

// setScoped replaces an earlier value for the same key; the innermost
// context wins.
func setScoped(scoped []slog.Attr, attr slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(scoped)+1)
	for _, existing := range scoped {
		if existing.Key != attr.Key {
			out = append(out, existing)
		}
	}
	return append(out, attr)
}

func orderScoped(scoped []slog.Attr) []slog.Attr {
	ordered := make([]slog.Attr, 0, len(scoped))
	for _, key := range recordScopedFields {
		for _, attr := range scoped {
			if attr.Key == key {
				ordered = append(ordered, attr)
			}
		}
	}
	return ordered
}
