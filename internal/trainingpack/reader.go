package trainingpack

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects how a Reader treats reads that run past the end of its buffer.
type Mode int

const (
	// ModeStrict fails the read that crosses the end of the buffer.
	ModeStrict Mode = iota
	// ModePermissive reads missing bits as zero. The cursor still advances by
	// the full width so field offsets stay aligned with the producer's layout.
	//
	// The codec keeps only entries fully backed by buffer bits, so a
	// truncated pack still fails in this mode. The failure surfaces as a short
	// column (ArrayLength) or a zeroed header field (HeaderRange) instead of
	// TruncatedStream, and no zero-filled records are ever returned.
	ModePermissive
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModePermissive:
		return "permissive"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a configuration string to a Mode. The empty string selects
// ModeStrict.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "strict":
		return ModeStrict, nil
	case "permissive", "lenient":
		return ModePermissive, nil
	default:
		return ModeStrict, fmt.Errorf("unknown decode mode %q (want strict or permissive)", value)
	}
}

const maxReadBits = 32

// ErrReadWidth reports a read wider than 32 bits or narrower than zero. It
// signals a bad Format rather than bad input.
var ErrReadWidth = errors.New("read width out of range")

// Reader is a bit cursor over a byte buffer, MSB-first within each byte.
// A Reader is owned by one decode pass and is not safe for concurrent use.
type Reader struct {
	data    []byte
	pos     int // bit offset of the next read
	mode    Mode
	overrun bool
}

// NewReader returns a Reader positioned at bit 0 of data.
func NewReader(data []byte, mode Mode) *Reader {
	return &Reader{data: data, mode: mode}
}

// ReadBits returns the next n bits as an unsigned integer and advances the
// cursor by exactly n, whether or not the bits were available.
func (r *Reader) ReadBits(n int) (uint32, error) {
	if n < 0 || n > maxReadBits {
		return 0, fmt.Errorf("%w: %d outside 0..%d", ErrReadWidth, n, maxReadBits)
	}
	start := r.pos
	r.pos += n
	total := len(r.data) * 8

	var value uint32
	for i := 0; i < n; i++ {
		bit := start + i
		if bit >= total {
			r.overrun = true
			if r.mode == ModeStrict {
				return 0, fmt.Errorf("%w: %d bits at offset %d, %d available",
					ErrTruncatedStream, n, start, max(total-start, 0))
			}
			// missing bits stay zero
			value <<= uint(n - i)
			break
		}
		b := (r.data[bit/8] >> (7 - uint(bit%8))) & 1
		value = value<<1 | uint32(b)
	}
	return value, nil
}

// ReadBool reads a single bit.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}

// Pos returns the cursor offset in bits.
func (r *Reader) Pos() int { return r.pos }

// Len returns the buffer length in bits.
func (r *Reader) Len() int { return len(r.data) * 8 }

// Remaining returns the number of unread bits, or 0 once the cursor has
// passed the end.
func (r *Reader) Remaining() int { return max(r.Len()-r.pos, 0) }

// Overrun reports whether any read has touched bits past the end of the buffer.
func (r *Reader) Overrun() bool { return r.overrun }

// backed reports whether every bit before the cursor came from the buffer.
func (r *Reader) backed() bool { return r.pos <= r.Len() }
