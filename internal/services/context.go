package services

import "context"

type contextKey string

const (
	sourceIDKey  contextKey = "source_id"
	serviceKey   contextKey = "service"
	batchIDKey   contextKey = "batch_id"
	requestIDKey contextKey = "request_id"
)

// WithSourceID annotates context with the catalog record identifier.
func WithSourceID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, sourceIDKey, id)
}

// SourceIDFromContext extracts the catalog record identifier if present.
func SourceIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(sourceIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithService annotates context with the metadata service being resolved.
func WithService(ctx context.Context, service string) context.Context {
	if service == "" {
		return ctx
	}
	return context.WithValue(ctx, serviceKey, service)
}

// ServiceFromContext returns the service name if present.
func ServiceFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(serviceKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithBatchID annotates context with the batch run identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext returns the batch run identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(batchIDKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
