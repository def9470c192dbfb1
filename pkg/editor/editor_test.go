package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tosih/denso-rom-tool/pkg/checksum"
	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/romtest"
)

func TestEncodeValue(t *testing.T) {
	scale := &models.AffineScale{Multiplier: 0.5, Offset: -10}

	tests := []struct {
		name  string
		typ   models.ElementType
		scale *models.AffineScale
		value float32
		want  []byte
	}{
		{"uint8 scaled", models.UInt8, scale, -9, []byte{2}},
		{"uint8 rounds", models.UInt8, nil, 7.6, []byte{8}},
		{"int8 negative", models.Int8, nil, -2, []byte{0xFE}},
		{"uint16 big endian", models.UInt16, nil, 0x1234, []byte{0x12, 0x34}},
		{"int16 negative", models.Int16, nil, -1, []byte{0xFF, 0xFF}},
		{"uint32", models.UInt32, nil, 65536, []byte{0, 1, 0, 0}},
		{"float32", models.Float32, nil, 1.5, []byte{0x3F, 0xC0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeValue(tt.typ, tt.scale, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := EncodeValue(models.UInt8, nil, 256)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = EncodeValue(models.UInt16, nil, -1)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = EncodeValue(models.Undefined, nil, 1)
	require.Error(t, err)
	_, err = EncodeValue(models.UInt8, &models.AffineScale{}, 1)
	require.Error(t, err)
}

func TestSetCell2D(t *testing.T) {
	b := romtest.New(64).PutU16s(0x10, 10, 20, 30)
	tbl := &models.Table2D{
		CountX: 3, Type: models.UInt16,
		RangeY:  models.ByteRange{Pos: 0x10, Size: 6},
		ValuesY: []float32{10, 20, 30},
	}

	require.NoError(t, SetCell2D(b.Data, tbl, 1, 500))
	assert.Equal(t, []byte{0x01, 0xF4}, b.Data[0x12:0x14])
	assert.Equal(t, []float32{10, 500, 30}, tbl.ValuesY)
	assert.Equal(t, float32(500), tbl.Stats.Max)

	require.Error(t, SetCell2D(b.Data, tbl, 3, 1))
	require.ErrorIs(t, SetCell2D(b.Data, tbl, 0, 70000), ErrOutOfRange)
	assert.Equal(t, float32(10), tbl.ValuesY[0], "unchanged after failed write")
}

func TestSetCell3D(t *testing.T) {
	b := romtest.New(64).PutBytes(0x20, []byte{1, 2, 3, 4, 5, 6})
	tbl := &models.Table3D{
		CountX: 3, CountY: 2, Type: models.UInt8,
		Scale:   &models.AffineScale{Multiplier: 0.5, Offset: -10},
		RangeZ:  models.ByteRange{Pos: 0x20, Size: 6},
		ValuesZ: []float32{-9.5, -9, -8.5, -8, -7.5, -7},
	}

	require.NoError(t, SetCell3D(b.Data, tbl, 2, 1, 0))
	assert.Equal(t, byte(20), b.Data[0x25])
	assert.Equal(t, float32(0), tbl.Z(2, 1))
	assert.Equal(t, float32(0), tbl.Stats.Max)
}

func TestScaleTable(t *testing.T) {
	b := romtest.New(64).PutBytes(0x20, []byte{10, 20, 100})
	tbl := &models.Table2D{
		CountX: 3, Type: models.UInt8, TypeUncertain: true,
		RangeY:  models.ByteRange{Pos: 0x20, Size: 3},
		ValuesY: []float32{10, 20, 100},
	}

	require.NoError(t, ScaleTable(b.Data, tbl, 1.5))
	assert.Equal(t, []byte{15, 30, 150}, b.Data[0x20:0x23])
	assert.Equal(t, []float32{15, 30, 150}, tbl.ValuesY)
	assert.True(t, tbl.TypeUncertain)

	err := ScaleTable(b.Data, tbl, 2)
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, []byte{15, 30, 150}, b.Data[0x20:0x23], "nothing written")
}

func TestFixChecksums(t *testing.T) {
	layout, err := checksum.LayoutFor(models.SH7058)
	require.NoError(t, err)

	b := romtest.New(models.MiB)
	b.PutU32(0x1000, 1).PutU32(0x1004, 2)
	b.PutU32(0x2000, 0x10)
	putRecord := func(i int, start, end, sum uint32) {
		pos := layout.TablePos + i*checksum.RecordSize
		b.PutU32(pos, start).PutU32(pos+4, end).PutU32(pos+8, sum)
	}
	putRecord(0, 0x1000, 0x1007, checksum.Magic-3)
	putRecord(1, 0x2000, 0x2003, 0)
	for i := 2; i < checksum.RecordCount; i++ {
		putRecord(i, 0, 0, checksum.Magic)
	}

	changed, err := FixChecksums(b.Data, layout)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, changed)

	report, err := checksum.Verify(b.Data, layout, nil)
	require.NoError(t, err)
	assert.True(t, report.AllOK())

	changed, err = FixChecksums(b.Data, layout)
	require.NoError(t, err)
	assert.Empty(t, changed)

	_, err = FixChecksums(b.Data[:0x1000], layout)
	require.Error(t, err)
}

func TestWriteImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rom.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	backup, err := WriteImage(path, []byte{4, 5, 6})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5, 6}, got)

	old, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, old)

	_, err = WriteImage(filepath.Join(t.TempDir(), "missing.bin"), nil)
	require.Error(t, err)
}
