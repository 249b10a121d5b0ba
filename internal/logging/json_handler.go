package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// jsonTimeLayout keeps millisecond precision so decode latency can be read
// from consecutive records.
const jsonTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// kindedError is implemented by failures that carry a stable classification,
// such as decode errors.
type kindedError interface {
	error
	ErrorKind() string
}

// newJSONHandler emits one object per record with short top-level keys
// (ts, level, msg, source). Errors that report a kind are written as
// {"msg": ..., "kind": ...} so log pipelines can group rejected packs.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: replaceJSONAttr,
	})
}

func replaceJSONAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 {
		switch attr.Key {
		case slog.TimeKey:
			attr.Key = "ts"
			if attr.Value.Kind() == slog.KindTime {
				attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(jsonTimeLayout))
			}
			return attr
		case slog.LevelKey:
			attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			return attr
		case slog.SourceKey:
			if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
				attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
			}
			return attr
		}
	}
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	err, ok := attr.Value.Any().(error)
	if !ok {
		return attr
	}
	var kinded kindedError
	if errors.As(err, &kinded) {
		return slog.Group(attr.Key,
			slog.String("msg", err.Error()),
			slog.String("kind", kinded.ErrorKind()))
	}
	return attr
}
