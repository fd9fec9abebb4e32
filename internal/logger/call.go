package logger

import (
	"context"

	"go.uber.org/zap"
)

type callFieldsKey struct{}

// WithFields returns a context whose loggers carry the given fields.
// Fields accumulate across nested calls.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	existing := callFields(ctx)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, callFieldsKey{}, merged)
}

// WithRequestID tags the context with an API request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return WithFields(ctx, zap.String("request_id", requestID))
}

// WithOperator tags the context with the authenticated API operator
func WithOperator(ctx context.Context, operator string) context.Context {
	return WithFields(ctx, zap.String("operator", operator))
}

// WithOperation tags the context with a ledger operation name and project id
func WithOperation(ctx context.Context, operation string, projectID string) context.Context {
	fields := []zap.Field{zap.String("operation", operation)}
	if projectID != "" {
		fields = append(fields, zap.String("project_id", projectID))
	}
	return WithFields(ctx, fields...)
}

func callFields(ctx context.Context) []zap.Field {
	fields, _ := ctx.Value(callFieldsKey{}).([]zap.Field)
	return fields
}
