// Package reader re-reads table values from an image after a table has been
// found, e.g. when the user picks a different element type.
package reader

import (
	"fmt"

	"github.com/tosih/denso-rom-tool/pkg/codec"
	"github.com/tosih/denso-rom-tool/pkg/models"
)

// ReadValue reads a single element at pos and applies scale if non-nil.
func ReadValue(data []byte, pos int, typ models.ElementType, scale *models.AffineScale) (float32, error) {
	values, err := codec.DecodeFloatsAs(data, models.ByteRange{Pos: pos, Size: typ.Width()}, typ, scale)
	if err != nil {
		return 0, err
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("invalid element type %s", typ)
	}
	return values[0], nil
}

// CellPos2D returns the position of value i of a 2D table.
func CellPos2D(t *models.Table2D, i int) (int, error) {
	if i < 0 || i >= t.CountX {
		return 0, fmt.Errorf("index %d out of range 0..%d", i, t.CountX-1)
	}
	return t.RangeY.Pos + i*t.Type.Width(), nil
}

// CellPos3D returns the position of the value at column x, row y.
func CellPos3D(t *models.Table3D, x, y int) (int, error) {
	if x < 0 || x >= t.CountX || y < 0 || y >= t.CountY {
		return 0, fmt.Errorf("cell [%d,%d] out of range %dx%d", x, y, t.CountX, t.CountY)
	}
	return t.RangeZ.Pos + (y*t.CountX+x)*t.Type.Width(), nil
}

// Retype2D reloads the values of t as newType. On error t is unchanged.
func Retype2D(data []byte, t *models.Table2D, newType models.ElementType) error {
	r, values, err := reload(data, t.RangeY.Pos, t.CountX, newType, t.Scale)
	if err != nil {
		return fmt.Errorf("retype 2D table 0x%X: %w", t.Location, err)
	}
	t.Type = newType
	t.TypeUncertain = false
	t.RangeY = r
	t.ValuesY = values
	t.Stats = codec.ComputeStats(values)
	return nil
}

// Retype3D reloads the values of t as newType. On error t is unchanged.
func Retype3D(data []byte, t *models.Table3D, newType models.ElementType) error {
	r, values, err := reload(data, t.RangeZ.Pos, t.CountZ(), newType, t.Scale)
	if err != nil {
		return fmt.Errorf("retype 3D table 0x%X: %w", t.Location, err)
	}
	t.Type = newType
	t.TypeUncertain = false
	t.RangeZ = r
	t.ValuesZ = values
	t.Stats = codec.ComputeStats(values)
	return nil
}

func reload(data []byte, pos, count int, typ models.ElementType, scale *models.AffineScale) (models.ByteRange, []float32, error) {
	if !typ.IsValid() {
		return models.ByteRange{}, nil, fmt.Errorf("invalid element type %s", typ)
	}
	r := models.ByteRange{Pos: pos, Size: typ.Width() * count}
	values, err := codec.DecodeFloatsAs(data, r, typ, scale)
	if err != nil {
		return models.ByteRange{}, nil, err
	}
	return r, values, nil
}
