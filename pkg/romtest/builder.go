// Package romtest builds synthetic ROM images for tests.
package romtest

import (
	"encoding/binary"
	"math"

	"github.com/tosih/denso-rom-tool/pkg/models"
)

// Builder writes big-endian table records into a zero-filled buffer.
type Builder struct {
	Data []byte
}

// New returns a builder over a zero-filled image of the given size.
func New(size int) *Builder {
	return &Builder{Data: make([]byte, size)}
}

func (b *Builder) PutU8(pos int, v uint8) *Builder {
	b.Data[pos] = v
	return b
}

func (b *Builder) PutU16(pos int, v uint16) *Builder {
	binary.BigEndian.PutUint16(b.Data[pos:], v)
	return b
}

func (b *Builder) PutU16LE(pos int, v uint16) *Builder {
	binary.LittleEndian.PutUint16(b.Data[pos:], v)
	return b
}

func (b *Builder) PutU32(pos int, v uint32) *Builder {
	binary.BigEndian.PutUint32(b.Data[pos:], v)
	return b
}

func (b *Builder) PutU32LE(pos int, v uint32) *Builder {
	binary.LittleEndian.PutUint32(b.Data[pos:], v)
	return b
}

func (b *Builder) PutF32(pos int, v float32) *Builder {
	return b.PutU32(pos, math.Float32bits(v))
}

// PutFloats writes consecutive big-endian floats starting at pos.
func (b *Builder) PutFloats(pos int, values ...float32) *Builder {
	for i, v := range values {
		b.PutF32(pos+4*i, v)
	}
	return b
}

// PutU16s writes consecutive big-endian uint16 values starting at pos.
func (b *Builder) PutU16s(pos int, values ...uint16) *Builder {
	for i, v := range values {
		b.PutU16(pos+2*i, v)
	}
	return b
}

// PutBytes copies raw bytes to pos.
func (b *Builder) PutBytes(pos int, p []byte) *Builder {
	copy(b.Data[pos:], p)
	return b
}

// Record2D describes a 2D record header.
type Record2D struct {
	Count int16
	Type  models.ElementType
	PosX  int32
	PosY  int32
	Scale *models.AffineScale
}

// Put2D writes a 2D record header at pos and returns the record size.
func (b *Builder) Put2D(pos int, r Record2D) int {
	b.PutU16(pos, uint16(r.Count))
	b.PutU16LE(pos+2, uint16(r.Type))
	b.PutU32(pos+4, uint32(r.PosX))
	b.PutU32(pos+8, uint32(r.PosY))
	if r.Scale == nil {
		return 12
	}
	b.PutF32(pos+12, r.Scale.Multiplier)
	b.PutF32(pos+16, r.Scale.Offset)
	return 20
}

// Record3D describes a 3D record header.
type Record3D struct {
	CountX int16
	CountY int16
	PosX   int32
	PosY   int32
	PosZ   int32
	Type   models.ElementType
	Scale  *models.AffineScale
}

// Put3D writes a 3D record header at pos and returns the record size.
func (b *Builder) Put3D(pos int, r Record3D) int {
	b.PutU16(pos, uint16(r.CountX))
	b.PutU16(pos+2, uint16(r.CountY))
	b.PutU32(pos+4, uint32(r.PosX))
	b.PutU32(pos+8, uint32(r.PosY))
	b.PutU32(pos+12, uint32(r.PosZ))
	b.PutU32LE(pos+16, uint32(r.Type))
	if r.Scale == nil {
		return 20
	}
	b.PutF32(pos+20, r.Scale.Multiplier)
	b.PutF32(pos+24, r.Scale.Offset)
	return 28
}

// Axis returns n evenly spaced, strictly increasing floats starting at start.
func Axis(n int, start, step float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = start + float32(i)*step
	}
	return out
}
