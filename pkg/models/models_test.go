package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteRange(t *testing.T) {
	r := ByteRange{Pos: 0x10, Size: 4}
	assert.Equal(t, 0x13, r.Last())
	assert.Equal(t, 0x14, r.End())
	assert.True(t, r.Contains(0x13))
	assert.False(t, r.Contains(0x14))

	assert.True(t, r.Intersects(ByteRange{Pos: 0x13, Size: 1}))
	assert.False(t, r.Intersects(ByteRange{Pos: 0x14, Size: 8}))
	assert.False(t, r.Intersects(ByteRange{Pos: 0x08, Size: 8}))
}

func TestExpression(t *testing.T) {
	tests := []struct {
		scale   *AffineScale
		forward string
		reverse string
	}{
		{nil, "x", "x"},
		{&AffineScale{Multiplier: 1}, "x", "x"},
		{&AffineScale{Multiplier: 0.5, Offset: -10}, "x*0.5-10", "(x+10)/0.5"},
		{&AffineScale{Multiplier: 2, Offset: 3}, "x*2+3", "(x-3)/2"},
		{&AffineScale{Multiplier: 0.01}, "x*0.01", "x/0.01"},
		{&AffineScale{Multiplier: 1, Offset: -40}, "x-40", "x+40"},
	}
	for _, tt := range tests {
		t.Run(tt.forward, func(t *testing.T) {
			assert.Equal(t, tt.forward, Expression(tt.scale, "x"))
			assert.Equal(t, tt.reverse, ExpressionReverse(tt.scale, "x"))
		})
	}
}

func TestParseElementType(t *testing.T) {
	for _, typ := range ElementTypes {
		got, err := ParseElementType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	got, err := ParseElementType(" Float32 ")
	require.NoError(t, err)
	assert.Equal(t, Float32, got)

	_, err = ParseElementType("int64")
	require.Error(t, err)
	assert.False(t, Undefined.IsValid())
	assert.Equal(t, 0, ElementType(0x18).Width())
}

func TestDetectRomType(t *testing.T) {
	assert.Equal(t, SH7055, DetectRomType(512*KiB))
	assert.Equal(t, SH7058, DetectRomType(MiB))
	assert.Equal(t, SH7059, DetectRomType(1536*KiB))
	assert.Equal(t, SH72531, DetectRomType(1280*KiB))
	assert.Equal(t, SH72543R, DetectRomType(2*MiB))
	assert.Equal(t, RomUnknown, DetectRomType(MiB+1))
	assert.Equal(t, "Unknown", RomUnknown.String())
}

func TestTitleAndCategoryForExport(t *testing.T) {
	tbl := &Table3D{Location: 0x8A2C4}
	assert.Equal(t, "Record 0x8A2C4", TitleForExport(tbl))
	assert.Equal(t, "Unknown 3D", CategoryForExport(tbl))

	tbl.Metadata = Metadata{Title: "Timing", Category: "Ignition"}
	assert.Equal(t, "Timing", TitleForExport(tbl))
	assert.Equal(t, "Ignition", CategoryForExport(tbl))
	assert.True(t, tbl.Metadata.HasMetadata())
}
