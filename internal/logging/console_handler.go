package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logTimestampLayout = "2006-01-02 15:04:05"

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiGray   = "\x1b[90m"
)

type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
	color     bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource, color bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource, color: color}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	var component, packKey, correlationID string
	fields := make([]kv, 0, len(kvs))
	for _, kv := range kvs {
		switch kv.key {
		case FieldComponent:
			if component == "" {
				component = attrString(kv.value)
			}
			continue
		case FieldPackKey:
			if packKey == "" {
				packKey = attrString(kv.value)
			}
		case FieldCorrelationID:
			if correlationID == "" {
				correlationID = attrString(kv.value)
			}
		}
		fields = append(fields, kv)
	}
	fields = dedupeKVsByKey(fields)

	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}

	var buf bytes.Buffer
	buf.Grow(256 + len(fields)*32)
	h.writeHeader(&buf, timestamp, record.Level, component, composeSubject(packKey, correlationID), message, record.Source())
	buf.WriteByte('\n')

	// Info and above hide the subject fields already printed in the header.
	for _, kv := range fields {
		if kv.key == "" {
			continue
		}
		if record.Level >= slog.LevelInfo && (kv.key == FieldPackKey || kv.key == FieldCorrelationID) {
			continue
		}
		if record.Level >= slog.LevelInfo {
			buf.WriteString("    - ")
		} else {
			buf.WriteString("    ")
		}
		buf.WriteString(kv.key)
		buf.WriteString(": ")
		buf.WriteString(formatValue(kv.value))
		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) writeHeader(buf *bytes.Buffer, ts time.Time, level slog.Level, component, subject, message string, src *slog.Source) {
	buf.WriteString(ts.In(time.Local).Format(logTimestampLayout))
	buf.WriteByte(' ')
	buf.WriteString(h.paint(levelColor(level), levelLabel(level)))
	if component != "" {
		buf.WriteString(" [")
		buf.WriteString(component)
		buf.WriteByte(']')
	}
	if subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
	}
	buf.WriteString(" – ")
	buf.WriteString(message)
	if h.addSource && src != nil {
		buf.WriteByte(' ')
		buf.WriteString(h.paint(ansiGray, "["+filepath.Base(src.File)+":"+strconv.Itoa(src.Line)+"]"))
	}
}

func (h *prettyHandler) paint(code, text string) string {
	if !h.color || code == "" {
		return text
	}
	return code + text + ansiReset
}

func composeSubject(packKey, correlationID string) string {
	packKey = strings.TrimSpace(packKey)
	correlationID = strings.TrimSpace(correlationID)
	parts := make([]string, 0, 2)
	if packKey != "" {
		parts = append(parts, "Pack "+shortKey(packKey))
	}
	if correlationID != "" {
		parts = append(parts, "req "+shortKey(correlationID))
	}
	return strings.Join(parts, " · ")
}

// shortKey trims long hashes and UUIDs to a readable prefix.
func shortKey(value string) string {
	if len(value) <= 12 {
		return value
	}
	return value[:8]
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiCyan
	default:
		return ansiGray
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *prettyHandler) clone() *prettyHandler {
	clone := &prettyHandler{
		mu:        h.mu,
		writer:    h.writer,
		level:     h.level,
		addSource: h.addSource,
		color:     h.color,
	}
	if len(h.attrs) > 0 {
		clone.attrs = make([]slog.Attr, len(h.attrs))
		copy(clone.attrs, h.attrs)
	}
	if len(h.groups) > 0 {
		clone.groups = make([]string, len(h.groups))
		copy(clone.groups, h.groups)
	}
	return clone
}
