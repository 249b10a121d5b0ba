package trainingpack

// TraceEvent describes one decoded header field or column.
type TraceEvent struct {
	Field  string
	Offset int // bit offset where the field started
	Bits   int // bits consumed
	Value  int // header value, or entry count for a column
	Column bool
}

// TraceFunc observes decode progress. It runs synchronously on the decoding
// goroutine and must not retain the Reader.
type TraceFunc func(TraceEvent)

// Option configures a decode call.
type Option func(*options)

type options struct {
	mode   Mode
	format Format
	trace  TraceFunc
}

func newOptions(opts []Option) options {
	o := options{mode: ModeStrict, format: Current}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithMode selects the buffer overrun policy. The default is ModeStrict.
func WithMode(mode Mode) Option {
	return func(o *options) { o.mode = mode }
}

// WithTrace attaches an observer called once per header field and column.
func WithTrace(fn TraceFunc) Option {
	return func(o *options) { o.trace = fn }
}
