package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// shortIDLength truncates batch and correlation UUIDs in console output; the
// JSON format keeps them whole.
const shortIDLength = 8

// recordScope is the part of a console line that says which record and
// service it is about. It renders as the line header rather than as pairs.
type recordScope struct {
	component   string
	sourceID    string
	service     string
	batchID     string
	correlation string
}

func (s *recordScope) take(key string, value slog.Value) bool {
	var dst *string
	switch key {
	case FieldComponent:
		dst = &s.component
	case FieldSourceID:
		dst = &s.sourceID
	case FieldService:
		dst = &s.service
	case FieldBatchID:
		dst = &s.batchID
	case FieldCorrelationID:
		dst = &s.correlation
	default:
		return false
	}
	*dst = value.Resolve().String()
	return true
}

// subject renders "#7/imdb", "#7" or "imdb".
func (s recordScope) subject() string {
	switch {
	case s.sourceID != "" && s.service != "":
		return "#" + s.sourceID + "/" + s.service
	case s.sourceID != "":
		return "#" + s.sourceID
	default:
		return s.service
	}
}

type field struct {
	key   string
	value slog.Value
}

// consoleHandler writes one line per record:
//
//	2026-03-01T12:00:00Z INFO  resolver #7/imdb: candidate accepted imdb_id=tt0066498 batch=1a2b3c4d
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     slog.Leveler
	addSource bool
	scope     recordScope
	fields    []field
	prefix    string
}

func newConsoleHandler(out io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, out: out, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	scope := h.scope
	fields := append([]field(nil), h.fields...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = h.collect(&scope, fields, h.prefix, attr)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var buf bytes.Buffer
	buf.WriteString(ts.UTC().Format(time.RFC3339))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	buf.WriteByte(' ')
	if scope.component != "" {
		buf.WriteString(scope.component)
		if subject := scope.subject(); subject != "" {
			buf.WriteByte(' ')
			buf.WriteString(subject)
		}
		buf.WriteString(": ")
	} else if subject := scope.subject(); subject != "" {
		buf.WriteString(subject)
		buf.WriteString(": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf.WriteString(msg)

	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			buf.WriteString(" [")
			buf.WriteString(filepath.Base(src.File))
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(src.Line))
			buf.WriteByte(']')
		}
	}
	for _, f := range fields {
		writePair(&buf, f.key, formatValue(f.value))
	}
	if scope.batchID != "" {
		writePair(&buf, "batch", shortID(scope.batchID))
	}
	if scope.correlation != "" {
		writePair(&buf, "corr", shortID(scope.correlation))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

// collect routes top-level record-scoped attributes into scope and flattens
// everything else, groups included, into dotted key/value pairs.
func (h *consoleHandler) collect(scope *recordScope, dst []field, prefix string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if prefix == "" && scope.take(attr.Key, value) {
		return dst
	}
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = key
		}
		for _, member := range value.Group() {
			dst = h.collect(scope, dst, groupPrefix, member)
		}
		return dst
	}
	return append(dst, field{key: key, value: value})
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	for _, attr := range attrs {
		clone.fields = clone.collect(&clone.scope, clone.fields, clone.prefix, attr)
	}
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	if clone.prefix == "" {
		clone.prefix = name
	} else {
		clone.prefix += "." + name
	}
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	clone := *h
	clone.fields = append([]field(nil), h.fields...)
	return &clone
}

func writePair(buf *bytes.Buffer, key, value string) {
	if key == "" {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	buf.WriteString(value)
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().UTC().Format(time.RFC3339)
	case slog.KindFloat64:
		s = strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = v.String()
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}
