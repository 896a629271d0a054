package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldMediaTitle is the standardized structured logging key for the media title being processed.
	FieldMediaTitle = "media_title"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldStrategy is the standardized structured logging key for discovery strategy names.
	FieldStrategy = "strategy"
	// FieldAttemptID is the standardized structured logging key for per-attempt correlation identifiers.
	FieldAttemptID = "attempt_id"
	// FieldSourceID is the standardized structured logging key for catalog source identifiers.
	FieldSourceID = "source_id"
)

type contextKey int

const (
	mediaTitleKey contextKey = iota
	stageKey
	attemptIDKey
)

// WithMediaTitle stores the media title on the context for log correlation.
func WithMediaTitle(ctx context.Context, title string) context.Context {
	return context.WithValue(ctx, mediaTitleKey, title)
}

// WithStage stores the pipeline stage name on the context.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// WithAttemptID stores a per-attempt correlation identifier on the context.
func WithAttemptID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, attemptIDKey, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if title, ok := ctx.Value(mediaTitleKey).(string); ok && title != "" {
		fields = append(fields, slog.String(FieldMediaTitle, title))
	}
	if stage, ok := ctx.Value(stageKey).(string); ok && stage != "" {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if id, ok := ctx.Value(attemptIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldAttemptID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
