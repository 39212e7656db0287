package logging

import (
	"context"
	"log/slog"
	"slices"
)

// Attribute keys shared by every component. The console handler lifts
// component, spectrum, stage and run_id into the line header.
const (
	FieldComponent = "component"
	FieldSpectrum  = "spectrum"
	FieldStage     = "stage"
	FieldRunID     = "run_id"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
)

type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Spectrum tags a record with the spectrum name or source file it concerns.
func Spectrum(name string) Attr { return slog.String(FieldSpectrum, name) }

// Stage tags a record with a pipeline stage: detect, read, normalize, write,
// align or solve.
func Stage(name string) Attr { return slog.String(FieldStage, name) }

// RunID tags a record with a journal run identifier.
func RunID(id string) Attr { return slog.String(FieldRunID, id) }

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger derives a logger carrying the component attribute. A nil
// logger yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact. Missing hint and impact attributes receive defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	emit(logger, slog.LevelWarn, msg, eventType, attrs, true)
}

// ErrorWithContext logs an error that always carries event_type and
// error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	emit(logger, slog.LevelError, msg, eventType, attrs, false)
}

func emit(logger *slog.Logger, level slog.Level, msg, eventType string, attrs []Attr, impact bool) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "check logs for details")
	if impact {
		attrs = withDefault(attrs, FieldImpact, "processing continued")
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func withDefault(attrs []Attr, key, value string) []Attr {
	if slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == key }) {
		return attrs
	}
	return append(attrs, slog.String(key, value))
}
