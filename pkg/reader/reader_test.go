package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/romtest"
)

func TestReadValue(t *testing.T) {
	b := romtest.New(16).PutU16(0, 200).PutF32(4, 1.5)

	v, err := ReadValue(b.Data, 0, models.UInt16, &models.AffineScale{Multiplier: 0.5, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, float32(101), v)

	v, err = ReadValue(b.Data, 4, models.Float32, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), v)

	_, err = ReadValue(b.Data, 15, models.UInt16, nil)
	require.Error(t, err)
	_, err = ReadValue(b.Data, 0, models.Undefined, nil)
	require.Error(t, err)
}

func TestRetype2D(t *testing.T) {
	b := romtest.New(64).PutU16s(0x10, 0x0102, 0x0304)
	tbl := &models.Table2D{
		Location:      0x30,
		CountX:        2,
		Type:          models.UInt16,
		TypeUncertain: true,
		RangeY:        models.ByteRange{Pos: 0x10, Size: 4},
		ValuesY:       []float32{0x0102, 0x0304},
	}

	require.NoError(t, Retype2D(b.Data, tbl, models.UInt8))
	assert.Equal(t, models.UInt8, tbl.Type)
	assert.False(t, tbl.TypeUncertain)
	assert.Equal(t, models.ByteRange{Pos: 0x10, Size: 2}, tbl.RangeY)
	assert.Equal(t, []float32{1, 2}, tbl.ValuesY)
	assert.Equal(t, models.Stats{Min: 1, Max: 2, Avg: 1.5}, tbl.Stats)

	before := *tbl
	err := Retype2D(b.Data[:0x11], tbl, models.UInt32)
	require.Error(t, err)
	assert.Equal(t, before, *tbl, "unchanged on error")
}

func TestRetype3D(t *testing.T) {
	b := romtest.New(64).PutBytes(0x20, []byte{0xFF, 0x01, 0x80, 0x7F})
	tbl := &models.Table3D{
		CountX: 2,
		CountY: 2,
		Type:   models.UInt8,
		Scale:  &models.AffineScale{Multiplier: 2, Offset: 0},
		RangeZ: models.ByteRange{Pos: 0x20, Size: 4},
	}

	require.NoError(t, Retype3D(b.Data, tbl, models.Int8))
	assert.Equal(t, []float32{-2, 2, -256, 254}, tbl.ValuesZ)
	assert.Equal(t, float32(-256), tbl.Stats.Min)

	require.Error(t, Retype3D(b.Data, tbl, models.Undefined))
}

func TestCellPos(t *testing.T) {
	t2 := &models.Table2D{CountX: 4, Type: models.UInt16, RangeY: models.ByteRange{Pos: 0x100, Size: 8}}
	pos, err := CellPos2D(t2, 3)
	require.NoError(t, err)
	assert.Equal(t, 0x106, pos)
	_, err = CellPos2D(t2, 4)
	require.Error(t, err)

	t3 := &models.Table3D{CountX: 3, CountY: 2, Type: models.Float32, RangeZ: models.ByteRange{Pos: 0x200, Size: 24}}
	pos, err = CellPos3D(t3, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0x200+4*4, pos)
	_, err = CellPos3D(t3, 3, 0)
	require.Error(t, err)
}
