// Package codec decodes table value ranges under the Denso element types and
// converts them into normalized float arrays.
package codec

import (
	"fmt"

	"github.com/tosih/denso-rom-tool/pkg/bytereader"
	"github.com/tosih/denso-rom-tool/pkg/models"
)

// Values holds a decoded typed array: one of []float32, []uint8, []int8,
// []uint16, []int16 or []uint32.
type Values any

// Number is the set of element types a table can store.
type Number interface {
	~float32 | ~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32
}

// Width returns the byte width of t, 0 for invalid types.
func Width(t models.ElementType) int {
	return t.Width()
}

// Decode reads the elements covered by r as type t. The element count is
// r.Size divided by the element width.
func Decode(data []byte, r models.ByteRange, t models.ElementType) (Values, error) {
	w := t.Width()
	if w == 0 {
		return nil, fmt.Errorf("decode at 0x%X: invalid element type %d", r.Pos, int32(t))
	}
	if r.Size < 0 {
		return nil, fmt.Errorf("decode at 0x%X: negative size %d", r.Pos, r.Size)
	}
	count := r.Size / w
	rd := bytereader.NewAt(data, r.Pos)
	switch t {
	case models.Float32:
		return decodeFloat32(rd, count)
	case models.UInt8:
		return decodeUInt8(rd, count)
	case models.Int8:
		return decodeInt8(rd, count)
	case models.UInt16:
		return decodeUInt16(rd, count)
	case models.Int16:
		return decodeInt16(rd, count)
	default:
		return decodeUInt32(rd, count)
	}
}

// DecodeFloats reads count big-endian floats at pos. Axis arrays always use this.
func DecodeFloats(data []byte, pos, count int) ([]float32, error) {
	return decodeFloat32(bytereader.NewAt(data, pos), count)
}

func decodeFloat32(rd *bytereader.Reader, count int) ([]float32, error) {
	out := make([]float32, count)
	for i := range out {
		v, err := rd.ReadFloat32BE()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeUInt8(rd *bytereader.Reader, count int) ([]uint8, error) {
	b, err := rd.ReadBytes(count)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, count)
	copy(out, b)
	return out, nil
}

func decodeInt8(rd *bytereader.Reader, count int) ([]int8, error) {
	b, err := rd.ReadBytes(count)
	if err != nil {
		return nil, err
	}
	out := make([]int8, count)
	for i, v := range b {
		out[i] = int8(v)
	}
	return out, nil
}

func decodeUInt16(rd *bytereader.Reader, count int) ([]uint16, error) {
	out := make([]uint16, count)
	for i := range out {
		v, err := rd.ReadUint16BE()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeInt16(rd *bytereader.Reader, count int) ([]int16, error) {
	out := make([]int16, count)
	for i := range out {
		v, err := rd.ReadInt16BE()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeUInt32(rd *bytereader.Reader, count int) ([]uint32, error) {
	out := make([]uint32, count)
	for i := range out {
		v, err := rd.ReadUint32BE()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ToFloats widens a decoded typed array to float32, applying scale when non-nil.
func ToFloats(values Values, scale *models.AffineScale) ([]float32, error) {
	switch v := values.(type) {
	case []float32:
		return Widen(v, scale), nil
	case []uint8:
		return Widen(v, scale), nil
	case []int8:
		return Widen(v, scale), nil
	case []uint16:
		return Widen(v, scale), nil
	case []int16:
		return Widen(v, scale), nil
	case []uint32:
		return Widen(v, scale), nil
	default:
		return nil, fmt.Errorf("unsupported values type %T", values)
	}
}

// Widen converts src to float32. Signedness follows the source type.
func Widen[T Number](src []T, scale *models.AffineScale) []float32 {
	out := make([]float32, len(src))
	if scale != nil {
		m, o := scale.Multiplier, scale.Offset
		for i, v := range src {
			out[i] = float32(v)*m + o
		}
		return out
	}
	for i, v := range src {
		out[i] = float32(v)
	}
	return out
}

// DecodeFloatsAs decodes r as t and widens the result in one step.
func DecodeFloatsAs(data []byte, r models.ByteRange, t models.ElementType, scale *models.AffineScale) ([]float32, error) {
	values, err := Decode(data, r, t)
	if err != nil {
		return nil, err
	}
	return ToFloats(values, scale)
}

// ComputeStats returns min, max and average in a single pass.
// An empty slice yields NaN for all three.
func ComputeStats(values []float32) models.Stats {
	if len(values) == 0 {
		return models.Stats{Min: nan32, Max: nan32, Avg: nan32}
	}
	lo, hi := values[0], values[0]
	sum := values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		sum += v
	}
	return models.Stats{Min: lo, Max: hi, Avg: sum / float32(len(values))}
}
