package trainingpack

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Decode decodes Base64 metadata text into a Pack.
//
// Padded standard Base64 is tried first, then unpadded. Surrounding
// whitespace is ignored.
func Decode(payload string, opts ...Option) (*Pack, error) {
	data, err := DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data, opts...)
}

// DecodeBase64 converts metadata text to raw bytes, reporting failures as a
// KindInput *DecodeError.
func DecodeBase64(payload string) ([]byte, error) {
	text := strings.TrimSpace(payload)
	if text == "" {
		return nil, &DecodeError{Kind: KindInput, Reason: "empty payload"}
	}
	data, err := base64.StdEncoding.DecodeString(text)
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(text); rawErr == nil {
		return raw, nil
	}
	return nil, &DecodeError{Kind: KindInput, Err: err}
}

// DecodeBytes decodes an already Base64-decoded metadata buffer.
func DecodeBytes(data []byte, opts ...Option) (*Pack, error) {
	o := newOptions(opts)
	d := &decoder{r: NewReader(data, o.mode), f: o.format, trace: o.trace}

	header, code, err := d.header()
	if err != nil {
		return nil, err
	}
	name, err := d.text("name", header.NameLength, d.f.NameChar)
	if err != nil {
		return nil, err
	}
	cols, err := d.columns(header)
	if err != nil {
		return nil, err
	}

	if err := d.validate(header, code, name, cols); err != nil {
		return nil, err
	}

	pack := &Pack{
		Name:      name,
		ShotCount: header.ShotCount,
		Header:    header,
		Shots:     d.assemble(header.ShotCount, cols),
		Bits:      d.r.Pos(),
	}
	if header.HasCode {
		pack.Code = code
	}
	return pack, nil
}

type decoder struct {
	r     *Reader
	f     Format
	trace TraceFunc
}

// columns holds every per-shot array in wire order.
type columns struct {
	boost        []int
	velocity     []int
	linear       []Vector3
	angularFlags []bool
	angular      []Vector3
	blockX       []int // two entries per shot, shot-major
	blockZ       []int
	freeze       []bool
	jump         []bool
}

func (d *decoder) header() (Header, string, error) {
	var h Header
	var code string

	hasCode, err := d.read("has_code", 1)
	if err != nil {
		return h, "", err
	}
	h.HasCode = hasCode == 1
	if h.HasCode {
		if code, err = d.text("code", d.f.CodeChars, d.f.CodeBits); err != nil {
			return h, "", err
		}
		// Code characters are 8 bits wide but only ASCII is valid.
		for i := 0; i < len(code); i++ {
			if code[i] > unicode.MaxASCII {
				return h, "", charError("code", i, code[i])
			}
		}
	}

	if h.NameLength, err = d.read("name_length", d.f.NameLenBits); err != nil {
		return h, "", err
	}
	if h.NameLength < 1 || h.NameLength > d.f.MaxNameLen {
		return h, "", rangeError("name_length", h.NameLength, 1, d.f.MaxNameLen)
	}

	if h.ShotCount, err = d.read("shot_count", d.f.ShotBits); err != nil {
		return h, "", err
	}
	if h.ShotCount < 1 || h.ShotCount > d.f.MaxShots {
		return h, "", rangeError("shot_count", h.ShotCount, 1, d.f.MaxShots)
	}

	fields := []struct {
		name  string
		width int
		dst   *int
	}{
		{"min_boost", d.f.MinBoostBits, &h.MinBoost},
		{"min_velocity", d.f.MinVelocityBits, &h.MinVelocity},
		{"max_linear_magnitude", d.f.LinearMagBits, &h.MaxLinearMagnitude},
		{"max_angular_magnitude", d.f.AngularMagBits, &h.MaxAngularMagnitude},
		{"min_goal_block_x", d.f.MinBlockerBits, &h.MinGoalBlockX},
		{"min_goal_block_z", d.f.MinBlockerBits, &h.MinGoalBlockZ},
	}
	for _, field := range fields {
		if *field.dst, err = d.read(field.name, field.width); err != nil {
			return h, "", err
		}
	}

	packed, err := d.read("boost_velocity_widths", d.f.BoostVelBits)
	if err != nil {
		return h, "", err
	}
	h.BitsForBoost, h.BitsForVelocity = packed>>4, packed&0xF
	if h.BitsForBoost > d.f.MaxBoostWidth {
		return h, "", rangeError("bits_for_boost", h.BitsForBoost, 0, d.f.MaxBoostWidth)
	}
	if h.BitsForVelocity > d.f.MaxVelocityWidth {
		return h, "", rangeError("bits_for_velocity", h.BitsForVelocity, 0, d.f.MaxVelocityWidth)
	}

	if packed, err = d.read("blocker_widths", d.f.BlockerWidthBits); err != nil {
		return h, "", err
	}
	h.BitsForXBlocker, h.BitsForZBlocker = packed>>4, packed&0xF
	if h.BitsForXBlocker > d.f.MaxBlockerWidth {
		return h, "", rangeError("bits_for_x_blocker", h.BitsForXBlocker, 0, d.f.MaxBlockerWidth)
	}
	if h.BitsForZBlocker > d.f.MaxBlockerWidth {
		return h, "", rangeError("bits_for_z_blocker", h.BitsForZBlocker, 0, d.f.MaxBlockerWidth)
	}
	return h, code, nil
}

func (d *decoder) columns(h Header) (columns, error) {
	var (
		c   columns
		err error
		n   = h.ShotCount
	)
	if c.boost, err = d.ints("boost", n, h.BitsForBoost, h.MinBoost); err != nil {
		return c, err
	}
	if c.velocity, err = d.ints("starting_velocity", n, h.BitsForVelocity, h.MinVelocity); err != nil {
		return c, err
	}
	if c.linear, err = d.vectors("extended_velocity", n, h.MaxLinearMagnitude); err != nil {
		return c, err
	}
	if c.angularFlags, err = d.bools("has_angular_velocity", n); err != nil {
		return c, err
	}
	if c.angular, err = d.angular(c.angularFlags, h.MaxAngularMagnitude); err != nil {
		return c, err
	}
	if c.blockX, err = d.ints("goal_blocker_x", 2*n, h.BitsForXBlocker, h.MinGoalBlockX); err != nil {
		return c, err
	}
	if c.blockZ, err = d.ints("goal_blocker_z", 2*n, h.BitsForZBlocker, h.MinGoalBlockZ); err != nil {
		return c, err
	}
	if c.freeze, err = d.bools("freeze_car", n); err != nil {
		return c, err
	}
	if c.jump, err = d.bools("has_starting_jump", n); err != nil {
		return c, err
	}
	return c, nil
}

// angular reads one vector per set flag and scatters them back into shot
// order. Shots without the flag keep the zero vector.
func (d *decoder) angular(flags []bool, magnitude int) ([]Vector3, error) {
	set := 0
	for _, f := range flags {
		if f {
			set++
		}
	}
	out := make([]Vector3, len(flags))
	if set == 0 || magnitude == 0 {
		return out, nil
	}
	vecs, err := d.vectors("extended_angular_velocity", set, magnitude)
	if err != nil {
		return nil, err
	}
	if len(vecs) != set {
		return nil, lengthError("extended_angular_velocity", len(vecs), set)
	}
	j := 0
	for i, f := range flags {
		if f {
			out[i] = vecs[j]
			j++
		}
	}
	return out, nil
}

// ints decodes count delta-coded values. A zero width means every entry
// equals base and no bits follow. Entries read past the end of the buffer are
// dropped so the column comes up short.
func (d *decoder) ints(field string, count, width, base int) ([]int, error) {
	start := d.r.Pos()
	out := make([]int, 0, count)
	if width == 0 {
		for range count {
			out = append(out, base)
		}
		d.column(field, start, len(out))
		return out, nil
	}
	for range count {
		v, err := d.r.ReadBits(width)
		if err != nil {
			return nil, d.fail(field, err)
		}
		if d.r.backed() {
			out = append(out, int(v)+base)
		}
	}
	d.column(field, start, len(out))
	return out, nil
}

func (d *decoder) bools(field string, count int) ([]bool, error) {
	start := d.r.Pos()
	out := make([]bool, 0, count)
	for range count {
		v, err := d.r.ReadBool()
		if err != nil {
			return nil, d.fail(field, err)
		}
		if d.r.backed() {
			out = append(out, v)
		}
	}
	d.column(field, start, len(out))
	return out, nil
}

// vectors decodes count quantized vectors bounded by ±magnitude. A zero
// magnitude means the column is absent and every vector is zero.
func (d *decoder) vectors(field string, count, magnitude int) ([]Vector3, error) {
	start := d.r.Pos()
	out := make([]Vector3, 0, count)
	if magnitude == 0 {
		for range count {
			out = append(out, Vector3{})
		}
		d.column(field, start, len(out))
		return out, nil
	}

	scale := d.f.axisScale()
	span := float64(2 * magnitude)
	offset := float64(magnitude)
	var raw [3]uint32
	for range count {
		for axis := range raw {
			v, err := d.r.ReadBits(d.f.VectorAxisBits)
			if err != nil {
				return nil, d.fail(field, err)
			}
			raw[axis] = v
		}
		if !d.r.backed() {
			continue
		}
		out = append(out, Vector3{
			X: float64(raw[0])*scale*span - offset,
			Y: float64(raw[1])*scale*span - offset,
			Z: float64(raw[2])*scale*span - offset,
		})
	}
	d.column(field, start, len(out))
	return out, nil
}

// text reads count characters of width bits each. Characters past the end of
// the buffer are dropped.
func (d *decoder) text(field string, count, width int) (string, error) {
	start := d.r.Pos()
	var sb strings.Builder
	sb.Grow(count)
	for range count {
		v, err := d.r.ReadBits(width)
		if err != nil {
			return "", d.fail(field, err)
		}
		if d.r.backed() {
			sb.WriteByte(byte(v))
		}
	}
	d.column(field, start, sb.Len())
	return sb.String(), nil
}

func (d *decoder) validate(h Header, code, name string, c columns) error {
	n := h.ShotCount
	checks := []struct {
		field     string
		got, want int
	}{
		{"name", len(name), h.NameLength},
		{"boost", len(c.boost), n},
		{"starting_velocity", len(c.velocity), n},
		{"extended_velocity", len(c.linear), n},
		{"has_angular_velocity", len(c.angularFlags), n},
		{"extended_angular_velocity", len(c.angular), n},
		{"goal_blocker_x", len(c.blockX), 2 * n},
		{"goal_blocker_z", len(c.blockZ), 2 * n},
		{"freeze_car", len(c.freeze), n},
		{"has_starting_jump", len(c.jump), n},
	}
	if h.HasCode {
		if len(code) != d.f.CodeChars {
			return lengthError("code", len(code), d.f.CodeChars)
		}
	}
	for _, check := range checks {
		if check.got != check.want {
			return lengthError(check.field, check.got, check.want)
		}
	}
	return nil
}

func (d *decoder) assemble(n int, c columns) []Shot {
	shots := make([]Shot, n)
	for i := range shots {
		shots[i] = Shot{
			BoostAmount:             c.boost[i],
			StartingVelocity:        c.velocity[i] - d.f.VelocityOffset,
			ExtendedVelocity:        c.linear[i],
			ExtendedAngularVelocity: c.angular[i],
			FreezeCar:               c.freeze[i],
			HasStartingJump:         c.jump[i],
			GoalBlocker: GoalBlocker{
				FirstX:  c.blockX[2*i] - d.f.BlockerXOffset,
				FirstZ:  c.blockZ[2*i] - d.f.BlockerZOffset,
				SecondX: c.blockX[2*i+1] - d.f.BlockerXOffset,
				SecondZ: c.blockZ[2*i+1] - d.f.BlockerZOffset,
			},
		}
	}
	return shots
}

func (d *decoder) read(field string, width int) (int, error) {
	start := d.r.Pos()
	v, err := d.r.ReadBits(width)
	if err != nil {
		return 0, d.fail(field, err)
	}
	if d.trace != nil {
		d.trace(TraceEvent{Field: field, Offset: start, Bits: width, Value: int(v)})
	}
	return int(v), nil
}

func (d *decoder) column(field string, start, count int) {
	if d.trace == nil {
		return
	}
	d.trace(TraceEvent{Field: field, Offset: start, Bits: d.r.Pos() - start, Value: count, Column: true})
}

func (d *decoder) fail(field string, err error) error {
	if errors.Is(err, ErrTruncatedStream) {
		return &DecodeError{Kind: KindTruncatedStream, Field: field, Err: err}
	}
	// Any other reader error comes from the Format, not the payload.
	return fmt.Errorf("decode %s: %w", field, err)
}
