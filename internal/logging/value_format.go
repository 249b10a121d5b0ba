package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

type kv struct {
	key   string
	value slog.Value
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = appendPrefix(prefix, attr.Key)
		}
		flattenAttrs(dst, next, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		if key != "" {
			key = strings.Join(append(appendPrefix(nil, prefix...), key), ".")
		} else {
			key = strings.Join(prefix, ".")
		}
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func appendPrefix(prefix []string, values ...string) []string {
	out := make([]string, 0, len(prefix)+len(values))
	out = append(out, prefix...)
	return append(out, values...)
}

// dedupeKVsByKey keeps the last value for each key in first-seen order.
func dedupeKVsByKey(kvs []kv) []kv {
	if len(kvs) < 2 {
		return kvs
	}
	index := make(map[string]int, len(kvs))
	out := make([]kv, 0, len(kvs))
	for _, item := range kvs {
		if pos, ok := index[item.key]; ok {
			out[pos] = item
			continue
		}
		index[item.key] = len(out)
		out = append(out, item)
	}
	return out
}

func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return formatValue(v)
	}
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return quoteIfNeeded(v.String())
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprint(v.Any()))
	default:
		return quoteIfNeeded(v.String())
	}
}

func quoteIfNeeded(s string) string {
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
