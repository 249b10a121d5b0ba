package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldPackKey is the standardized structured logging key for cache keys of decoded packs.
	FieldPackKey = "pack_key"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey string

const (
	requestIDKey contextKey = "correlation_id"
	packKeyKey   contextKey = "pack_key"
)

// WithRequestID annotates ctx with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation identifier stored in ctx.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// WithPackKey annotates ctx with the cache key of the pack being processed.
func WithPackKey(ctx context.Context, key string) context.Context {
	key = strings.TrimSpace(key)
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, packKeyKey, key)
}

// PackKeyFromContext returns the pack key stored in ctx.
func PackKeyFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	key, ok := ctx.Value(packKeyKey).(string)
	return key, ok && key != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if key, ok := PackKeyFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPackKey, key))
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, id))
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
	return logger.With(toArgs(fields)...)
}
