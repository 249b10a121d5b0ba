package logging

import (
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Error keys err under "error". Errors that report a kind are expanded by the
// JSON handler.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func toArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. A nil logger yields a
// no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// Remedy describes a degraded path: what happened, what to do about it, and
// what the user loses meanwhile.
type Remedy struct {
	Event  string
	Hint   string
	Impact string
}

const (
	defaultHint   = "run packhub doctor"
	defaultImpact = "request completed without the cache"
)

func (r Remedy) attrs() []Attr {
	hint, impact := r.Hint, r.Impact
	if hint == "" {
		hint = defaultHint
	}
	if impact == "" {
		impact = defaultImpact
	}
	return []Attr{
		String(FieldEventType, r.Event),
		String(FieldErrorHint, hint),
		String(FieldImpact, impact),
	}
}

// Warn logs msg at warn level followed by attrs and the remedy fields.
// Warnings in packhub always mean a cache layer was skipped, so the fields
// are never omitted.
func Warn(logger *slog.Logger, msg string, r Remedy, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Warn(msg, toArgs(append(attrs, r.attrs()...))...)
}
