package logging

import "log/slog"

// WarnWithContext logs a degraded-but-continuing event. Every warning carries
// event_type, error_hint and impact; missing ones are filled with defaults
// so operators can filter and act on them uniformly.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "rerun with --log-level debug for request details")
	attrs = withDefault(attrs, FieldImpact, "record continues without this data")
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext logs a record-level failure with event_type and
// error_hint filled in when missing.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "rerun with --log-level debug for request details")
	logger.Error(msg, Args(attrs...)...)
}

func withDefault(attrs []Attr, key, value string) []Attr {
	for _, attr := range attrs {
		if attr.Key == key {
			return attrs
		}
	}
	return append(attrs, String(key, value))
}
