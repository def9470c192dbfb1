package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tosih/denso-rom-tool/pkg/bytereader"
	"github.com/tosih/denso-rom-tool/pkg/models"
)

func TestDecode_Types(t *testing.T) {
	data := []byte{0xFF, 0x80, 0x00, 0x10, 0x3F, 0x80, 0x00, 0x00}

	tests := []struct {
		name string
		typ  models.ElementType
		size int
		want []float32
	}{
		{"uint8 does not sign extend", models.UInt8, 2, []float32{255, 128}},
		{"int8 sign extends", models.Int8, 2, []float32{-1, -128}},
		{"uint16", models.UInt16, 4, []float32{0xFF80, 0x0010}},
		{"int16", models.Int16, 4, []float32{-128, 16}},
		{"uint32", models.UInt32, 4, []float32{0xFF800010}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeFloatsAs(data, models.ByteRange{Pos: 0, Size: tt.size}, tt.typ, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	f, err := DecodeFloatsAs(data, models.ByteRange{Pos: 4, Size: 4}, models.Float32, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, f)
}

func TestDecode_ShortBuffer(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3}, models.ByteRange{Pos: 0, Size: 4}, models.UInt16)
	require.ErrorIs(t, err, bytereader.ErrShortBuffer)

	_, err = Decode([]byte{1, 2, 3}, models.ByteRange{Pos: 0, Size: 4}, models.Undefined)
	require.Error(t, err)
}

func TestToFloats_Scale(t *testing.T) {
	scale := &models.AffineScale{Multiplier: 0.5, Offset: -10}
	got, err := ToFloats([]uint16{0, 20, 40}, scale)
	require.NoError(t, err)
	assert.Equal(t, []float32{-10, 0, 10}, got)

	got, err = ToFloats([]int8{-2}, scale)
	require.NoError(t, err)
	assert.Equal(t, []float32{-11}, got)

	_, err = ToFloats([]int64{1}, nil)
	require.Error(t, err)
}

func TestToFloats_IdentityPreservesValues(t *testing.T) {
	in := []int16{-32768, -1, 0, 1, 32767}
	got, err := ToFloats(in, &models.AffineScale{Multiplier: 1, Offset: 0})
	require.NoError(t, err)
	for i, v := range in {
		assert.Equal(t, float32(v), got[i])
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats([]float32{1, 2, 3, 4})
	assert.Equal(t, models.Stats{Min: 1, Max: 4, Avg: 2.5}, s)
	assert.False(t, s.IsConst())

	s = ComputeStats([]float32{7})
	assert.True(t, s.IsConst())
	assert.Equal(t, float32(7), s.Avg)

	s = ComputeStats(nil)
	assert.True(t, math.IsNaN(float64(s.Min)))
	assert.True(t, math.IsNaN(float64(s.Avg)))
}

func TestIsFloatValid(t *testing.T) {
	valid := []float32{0, 1, -1, 1e-12, 1e12, -1e12, 0.5, 8000}
	for _, f := range valid {
		assert.True(t, IsFloatValid(f), "%g", f)
	}
	invalid := []float32{
		float32(math.NaN()),
		float32(math.Inf(1)),
		float32(math.Inf(-1)),
		1.4e-40,
		-1e-13,
		2e12,
	}
	for _, f := range invalid {
		assert.False(t, IsFloatValid(f), "%g", f)
	}
}

func TestCheckAxis(t *testing.T) {
	assert.True(t, CheckAxis([]float32{0, 100, 200}))
	assert.True(t, CheckAxis([]float32{0, 100, 100, 200}), "repeated points are allowed")
	assert.False(t, CheckAxis([]float32{0, 200, 100}))
	assert.False(t, CheckAxis([]float32{0, float32(math.NaN())}))
	assert.True(t, CheckAxis(nil))
}

func TestPlausibleScale(t *testing.T) {
	s := PlausibleScale(0.5, -10)
	require.NotNil(t, s)
	assert.Equal(t, models.AffineScale{Multiplier: 0.5, Offset: -10}, *s)

	assert.Nil(t, PlausibleScale(0, 0))
	assert.Nil(t, PlausibleScale(float32(math.NaN()), 0))
	assert.Nil(t, PlausibleScale(1, float32(math.Inf(1))))
	assert.NotNil(t, PlausibleScale(1, 0))
}
