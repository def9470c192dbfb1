// Package bytereader decodes big-endian primitives from an in-memory ROM image.
package bytereader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShortBuffer is returned when fewer bytes remain than a read needs.
	ErrShortBuffer = errors.New("bytereader: insufficient bytes")
	// ErrInvalidBCD is returned for packed BCD bytes with a nibble above 9.
	ErrInvalidBCD = errors.New("bytereader: invalid packed BCD byte")
	// ErrInvalidDate is returned when decoded date fields do not form a calendar date.
	ErrInvalidDate = errors.New("bytereader: invalid date")
)

// Reader is a cursor over a byte slice. It never copies the underlying data.
// A failed read leaves the cursor unchanged.
type Reader struct {
	data []byte
	pos  int
}

// New returns a Reader positioned at offset 0.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// NewAt returns a Reader positioned at pos.
func NewAt(data []byte, pos int) *Reader {
	return &Reader{data: data, pos: pos}
}

// Reset rebinds the reader to data and pos without allocating.
func (r *Reader) Reset(data []byte, pos int) {
	r.data = data
	r.pos = pos
}

func (r *Reader) Pos() int { return r.pos }

func (r *Reader) Len() int { return len(r.data) }

// Remaining returns the number of unread bytes, 0 if the cursor is past the end.
func (r *Reader) Remaining() int {
	if r.pos < 0 || r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Seek moves the cursor to an absolute position. Positions past the end are
// allowed; the next read fails.
func (r *Reader) Seek(pos int) {
	r.pos = pos
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) {
	r.pos += n
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: need %d at 0x%X, size 0x%X", ErrShortBuffer, n, r.pos, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBytes returns the next n bytes. The result aliases the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.take(n)
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

func (r *Reader) ReadUint16BE() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadInt16BE() (int16, error) {
	v, err := r.ReadUint16BE()
	return int16(v), err
}

func (r *Reader) ReadUint16LE() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) ReadInt16LE() (int16, error) {
	v, err := r.ReadUint16LE()
	return int16(v), err
}

func (r *Reader) ReadUint32BE() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32BE() (int32, error) {
	v, err := r.ReadUint32BE()
	return int32(v), err
}

func (r *Reader) ReadUint32LE() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32LE() (int32, error) {
	v, err := r.ReadUint32LE()
	return int32(v), err
}

// ReadFloat32BE reads an IEEE-754 single stored big-endian.
func (r *Reader) ReadFloat32BE() (float32, error) {
	v, err := r.ReadUint32BE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadASCII reads n raw bytes as a string.
func (r *Reader) ReadASCII(n int) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Uint16BE decodes a big-endian uint16 at index i.
func Uint16BE(b []byte, i int) (uint16, error) {
	if i < 0 || i+2 > len(b) {
		return 0, ErrShortBuffer
	}
	return binary.BigEndian.Uint16(b[i:]), nil
}

// Uint32BE decodes a big-endian uint32 at index i.
func Uint32BE(b []byte, i int) (uint32, error) {
	if i < 0 || i+4 > len(b) {
		return 0, ErrShortBuffer
	}
	return binary.BigEndian.Uint32(b[i:]), nil
}

// Float32BE decodes a big-endian float at index i.
func Float32BE(b []byte, i int) (float32, error) {
	v, err := Uint32BE(b, i)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}
