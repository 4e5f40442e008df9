package observability

import (
	"context"
	"fmt"

	"github.com/upb/chat-edge/internal/shared"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with context awareness.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
}

// Field represents a structured log field.
type Field = zap.Field

type contextLogger struct {
	base *zap.Logger
}

// NewLogger wraps a zap logger so that every entry carries the request ID
// found in the context, if any.
func NewLogger(base *zap.Logger) Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &contextLogger{base: base}
}

func (l *contextLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.from(ctx).Debug(msg, fields...)
}

func (l *contextLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.from(ctx).Info(msg, fields...)
}

func (l *contextLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.from(ctx).Warn(msg, fields...)
}

func (l *contextLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.from(ctx).Error(msg, fields...)
}

func (l *contextLogger) from(ctx context.Context) *zap.Logger {
	if id := shared.RequestID(ctx); id != "" {
		return l.base.With(zap.String("request_id", id))
	}
	return l.base
}

// NewZapLogger builds the process logger. Format "json" yields the production
// encoder; "console" and "text" yield the development encoder.
func NewZapLogger(level, format string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "", "json":
		cfg = zap.NewProductionConfig()
	case "console", "text":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
