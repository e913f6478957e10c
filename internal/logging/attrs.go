package logging

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Error records err under the "error" key, which the recorder lifts into
// Diagnostic.Error.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. The console handler
// prints it as the line prefix.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

const (
	defaultErrorHint = "check logs for details"
	defaultImpact    = "dashboard data may be partial or stale"
)

// WarnWithContext logs a warning carrying event_type, error_hint, and impact.
// Missing fields get defaults so every WARN line is actionable.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withRequired(attrs, eventType, true)
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

// ErrorWithContext logs an error carrying event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withRequired(attrs, eventType, false)
	logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

func withRequired(attrs []Attr, eventType string, impact bool) []Attr {
	has := func(key string) bool {
		return slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == key })
	}
	out := slices.Clip(attrs)
	if !has(FieldEventType) {
		out = append(out, String(FieldEventType, eventType))
	}
	if !has(FieldErrorHint) {
		out = append(out, String(FieldErrorHint, defaultErrorHint))
	}
	if impact && !has(FieldImpact) {
		out = append(out, String(FieldImpact, defaultImpact))
	}
	return out
}
