package trainingpack

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind string

const (
	// KindInput means the Base64 text could not be turned into bytes.
	KindInput Kind = "input"
	// KindHeaderRange means a header field fell outside its allowed range.
	KindHeaderRange Kind = "header_range"
	// KindArrayLength means a decoded column did not hold the expected number of entries.
	KindArrayLength Kind = "array_length"
	// KindTruncatedStream means a strict-mode read ran past the end of the buffer.
	KindTruncatedStream Kind = "truncated_stream"
)

var (
	// ErrMalformed matches every decode failure.
	ErrMalformed       = errors.New("malformed training pack metadata")
	ErrInput           = errors.New("invalid base64 input")
	ErrHeaderRange     = errors.New("header field out of range")
	ErrArrayLength     = errors.New("column length mismatch")
	ErrTruncatedStream = errors.New("bitstream truncated")
)

// DecodeError is the single terminal failure returned by Decode. It never
// accompanies a partial result.
type DecodeError struct {
	Kind   Kind
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "malformed training pack metadata"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMalformed or the sentinel for e.Kind.
func (e *DecodeError) Is(target error) bool {
	if target == ErrMalformed {
		return true
	}
	return target == e.Kind.sentinel()
}

// ErrorKind returns the stable classification string for e.
func (e *DecodeError) ErrorKind() string { return string(e.Kind) }

func (k Kind) sentinel() error {
	switch k {
	case KindInput:
		return ErrInput
	case KindHeaderRange:
		return ErrHeaderRange
	case KindArrayLength:
		return ErrArrayLength
	case KindTruncatedStream:
		return ErrTruncatedStream
	default:
		return nil
	}
}

// KindOf returns the Kind of a decode failure wrapped anywhere in err.
func KindOf(err error) (Kind, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

func rangeError(field string, value, lo, hi int) *DecodeError {
	return &DecodeError{
		Kind:   KindHeaderRange,
		Field:  field,
		Reason: fmt.Sprintf("value %d outside %d..%d", value, lo, hi),
	}
}

func charError(field string, index int, value byte) *DecodeError {
	return &DecodeError{
		Kind:   KindHeaderRange,
		Field:  field,
		Reason: fmt.Sprintf("character %d is 0x%02X, outside ASCII", index, value),
	}
}

func lengthError(field string, got, want int) *DecodeError {
	return &DecodeError{
		Kind:   KindArrayLength,
		Field:  field,
		Reason: fmt.Sprintf("decoded %d entries, expected %d", got, want),
	}
}
