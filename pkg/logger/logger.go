package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

type ctxKey int

const (
	correlationIDKey ctxKey = iota
	fieldsKey
)

// CorrelationIDField is the log field name carrying the request correlation ID.
const CorrelationIDField = "correlation_id"

// Init builds the process logger. Production uses JSON with ISO8601 timestamps,
// everything else the colored console encoder. level overrides the default
// level when it parses ("debug", "warn", ...).
func Init(environment, serviceName, level string) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if lvl, err := zapcore.ParseLevel(level); level != "" && err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	if serviceName != "" {
		built = built.With(zap.String("service", serviceName))
	}

	log = built
	return nil
}

// Replace swaps the process logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) func() {
	previous := log
	log = l
	return func() { log = previous }
}

// Get returns the process logger, falling back to a development logger when
// Init was never called.
func Get() *zap.Logger {
	if log == nil {
		log, _ = zap.NewDevelopment()
	}
	return log
}

// ContextWithCorrelationID returns a context carrying correlationID.
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext returns the correlation ID stored in ctx, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// ContextWithFields returns a context whose loggers add fields to every entry.
// Fields accumulate across nested calls.
func ContextWithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	existing := fieldsFromContext(ctx)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

func fieldsFromContext(ctx context.Context) []zap.Field {
	fields, _ := ctx.Value(fieldsKey).([]zap.Field)
	return fields
}

// WithContext returns the process logger with the correlation ID and any
// context-scoped fields attached.
func WithContext(ctx context.Context) *zap.Logger {
	l := Get()
	if ctx == nil {
		return l
	}

	if id := CorrelationIDFromContext(ctx); id != "" {
		l = l.With(zap.String(CorrelationIDField, id))
	}
	if fields := fieldsFromContext(ctx); len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}

func Info(msg string, fields ...zap.Field)  { Get().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Get().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Get().Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { Get().Debug(msg, fields...) }

// Fatal logs and exits the process.
func Fatal(msg string, fields ...zap.Field) { Get().Fatal(msg, fields...) }

func InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

func WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

func ErrorContext(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

func DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

// Sync flushes buffered entries.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}
