package logging

import (
	"context"
	"log/slog"

	"filmbridge/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSourceID is the standardized structured logging key for catalog record identifiers.
	FieldSourceID = "source_id"
	// FieldService is the standardized structured logging key for the metadata service (imdb, tmdb).
	FieldService = "service"
	// FieldBatchID is the standardized structured logging key for sync batch identifiers.
	FieldBatchID = "batch_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldDecisionType names the decision recorded by DecisionAttrs.
	FieldDecisionType = "decision_type"
	// FieldImpact states what a warning cost the record being reconciled.
	FieldImpact = "impact"
)

// recordScopedFields are the keys that identify the record a line is about.
// Both handlers pull them out of the ordinary attribute list.
var recordScopedFields = []string{FieldSourceID, FieldService, FieldBatchID, FieldCorrelationID}

func isRecordScoped(key string) bool {
	for _, field := range recordScopedFields {
		if key == field {
			return true
		}
	}
	return false
}

// contextFields extracts the record-scoped attributes carried by ctx.
func contextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.SourceIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldSourceID, id))
	}
	if service, ok := services.ServiceFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldService, service))
	}
	if batch, ok := services.BatchIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBatchID, batch))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
