package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldProject carries the logging project identifier on every record.
	FieldProject = "project"
	// FieldTick is the standardized structured logging key for scan tick numbers.
	FieldTick = "tick"
	// FieldPath is the standardized structured logging key for local file paths.
	FieldPath = "path"
	// FieldKey is the standardized structured logging key for remote object keys.
	FieldKey = "key"
	// FieldContainer is the standardized structured logging key for the remote bucket.
	FieldContainer = "container"
	// FieldState is the standardized structured logging key for lifecycle states.
	FieldState = "state"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact describes what a warning means for the file being handled.
	FieldImpact = "impact"
)

type contextKey int

const tickKey contextKey = iota

// WithTick returns a context tagged with a scan tick number.
func WithTick(ctx context.Context, tick uint64) context.Context {
	return context.WithValue(ctx, tickKey, tick)
}

// TickFromContext returns the scan tick stored in ctx, if any.
func TickFromContext(ctx context.Context) (uint64, bool) {
	if ctx == nil {
		return 0, false
	}
	tick, ok := ctx.Value(tickKey).(uint64)
	return tick, ok
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 1)
	if tick, ok := TickFromContext(ctx); ok {
		fields = append(fields, slog.Uint64(FieldTick, tick))
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
	return logger.With(Args(fields...)...)
}
