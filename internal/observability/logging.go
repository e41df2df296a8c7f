// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// CorrelationID is the context key carrying the per-request correlation ID.
const CorrelationID LogContextKey = "correlation_id"

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationID).(string); ok {
		return id
	}
	return ""
}

// AuditLogger provides structured logging for moderation transitions.
type AuditLogger struct {
	logger *Logger
}

// NewAuditLogger creates a new AuditLogger.
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{logger: GlobalLogger}
}

// LogTransition logs one post state transition.
func (l *AuditLogger) LogTransition(ctx context.Context, postID uint, action string, actorID uint, fields map[string]interface{}) {
	attrs := []any{
		slog.Uint64("post_id", uint64(postID)),
		slog.String("action", action),
		slog.Uint64("actor_id", uint64(actorID)),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "moderation transition", attrs...)
}

// LogExternalFailure logs a swallowed downstream failure (publish, notify).
func LogExternalFailure(ctx context.Context, operation string, err error, fields map[string]interface{}) {
	attrs := []any{
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.ErrorContext(ctx, "external side effect failed", attrs...)
}
