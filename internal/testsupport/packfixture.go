package testsupport

import (
	"encoding/base64"

	"packhub/internal/trainingpack"
)

// BitWriter appends MSB-first bit fields. It exists only to build fixtures.
type BitWriter struct {
	buf  []byte
	bits int
}

// Write appends the low width bits of v, most significant first.
func (w *BitWriter) Write(v uint32, width int) {
	for i := width - 1; i >= 0; i-- {
		if w.bits%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if (v>>uint(i))&1 == 1 {
			w.buf[w.bits/8] |= 1 << (7 - uint(w.bits%8))
		}
		w.bits++
	}
}

// WriteBool appends a single bit.
func (w *BitWriter) WriteBool(v bool) {
	if v {
		w.Write(1, 1)
		return
	}
	w.Write(0, 1)
}

// Bytes returns the written bits padded with zeros to a byte boundary.
func (w *BitWriter) Bytes() []byte { return w.buf }

// Len returns the number of bits written.
func (w *BitWriter) Len() int { return w.bits }

// PackFixture describes a metadata bitstream field by field. Column slices
// hold raw wire values (deltas above the header minimums, raw 16-bit axes)
// and are written as given, so a fixture can be deliberately inconsistent.
type PackFixture struct {
	Code  string // written when non-empty; must be 19 characters to be valid
	Name  string
	Shots int

	MinBoost    int
	MinVelocity int
	MaxLinear   int
	MaxAngular  int
	MinBlockX   int
	MinBlockZ   int

	BitsBoost    int
	BitsVelocity int
	BitsXBlocker int
	BitsZBlocker int

	Boost        []int
	Velocity     []int
	Linear       [][3]uint16
	AngularFlags []bool // padded with false up to Shots
	Angular      [][3]uint16
	BlockX       []int // two per shot, shot-major
	BlockZ       []int
	Freeze       []bool // padded with false up to Shots
	Jump         []bool
}

// Bytes encodes the fixture.
func (p PackFixture) Bytes() []byte {
	f := trainingpack.Current
	var w BitWriter

	w.WriteBool(p.Code != "")
	for i := 0; i < len(p.Code); i++ {
		w.Write(uint32(p.Code[i]), f.CodeBits)
	}
	w.Write(uint32(len(p.Name)), f.NameLenBits)
	w.Write(uint32(p.Shots), f.ShotBits)
	w.Write(uint32(p.MinBoost), f.MinBoostBits)
	w.Write(uint32(p.MinVelocity), f.MinVelocityBits)
	w.Write(uint32(p.MaxLinear), f.LinearMagBits)
	w.Write(uint32(p.MaxAngular), f.AngularMagBits)
	w.Write(uint32(p.MinBlockX), f.MinBlockerBits)
	w.Write(uint32(p.MinBlockZ), f.MinBlockerBits)
	w.Write(uint32(p.BitsBoost<<4|p.BitsVelocity), f.BoostVelBits)
	w.Write(uint32(p.BitsXBlocker<<4|p.BitsZBlocker), f.BlockerWidthBits)
	for i := 0; i < len(p.Name); i++ {
		w.Write(uint32(p.Name[i]), f.NameChar)
	}

	writeInts(&w, p.Boost, p.BitsBoost)
	writeInts(&w, p.Velocity, p.BitsVelocity)
	if p.MaxLinear != 0 {
		writeVectors(&w, p.Linear, f.VectorAxisBits)
	}
	writeFlags(&w, p.AngularFlags, p.Shots)
	if p.MaxAngular != 0 {
		writeVectors(&w, p.Angular, f.VectorAxisBits)
	}
	writeInts(&w, p.BlockX, p.BitsXBlocker)
	writeInts(&w, p.BlockZ, p.BitsZBlocker)
	writeFlags(&w, p.Freeze, p.Shots)
	writeFlags(&w, p.Jump, p.Shots)
	return w.Bytes()
}

// Base64 encodes the fixture as padded standard Base64.
func (p PackFixture) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Bytes())
}

// MinimalPack returns a valid single-shot fixture with every column at its
// header minimum.
func MinimalPack() PackFixture {
	return PackFixture{
		Name:        "Test",
		Shots:       1,
		MinBoost:    50,
		MinVelocity: 100,
		MinBlockX:   910,
		MinBlockZ:   20,
		Freeze:      []bool{true},
		Jump:        []bool{false},
	}
}

func writeInts(w *BitWriter, values []int, width int) {
	if width == 0 {
		return
	}
	for _, v := range values {
		w.Write(uint32(v), width)
	}
}

func writeVectors(w *BitWriter, values [][3]uint16, width int) {
	for _, v := range values {
		for _, axis := range v {
			w.Write(uint32(axis), width)
		}
	}
}

func writeFlags(w *BitWriter, values []bool, count int) {
	for i := 0; i < count; i++ {
		w.WriteBool(i < len(values) && values[i])
	}
}
