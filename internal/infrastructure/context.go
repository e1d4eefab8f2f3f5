package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID returns a random UUID v4.
func GenerateTraceID() string {
	return uuid.New().String()
}

// EnsureTraceID gives ctx a trace id when neither a request id nor an active
// span supplies one. The extract command uses it so one run's log lines can
// be grouped.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// WithComponent tags every record of logger with component.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}
