package logger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
)

const RequestIDHeader = "X-Request-ID"

func NewRequestID() string {
	return uuid.New().String()
}

// WithRequestID stores requestID and a logger carrying it in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := Get().With(slog.String("request_id", requestID))
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	ctx = context.WithValue(ctx, loggerKey, l)
	return ctx
}

// WithAttrs adds attributes to the request logger in ctx.
func WithAttrs(ctx context.Context, attrs ...any) context.Context {
	return context.WithValue(ctx, loggerKey, FromContext(ctx).With(attrs...))
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return Get()
}

func RequestIDFromContext(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey).(string); ok {
		return reqID
	}
	return ""
}
