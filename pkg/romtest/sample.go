package romtest

import "github.com/tosih/denso-rom-tool/pkg/models"

// SampleSize is the size of the Sample image.
const SampleSize = 16 * models.KiB

// Sample locations.
const (
	Sample2D          = 0x3000
	Sample3D          = 0x3100
	Sample2DUncertain = 0x3200
)

// Sample returns an image holding three tables:
//
//	Sample2D           UInt16, 4 values 10..40, float axis 0..3
//	Sample3D           UInt8 3x2 with scale 0.5/-10, raw values 1..6
//	Sample2DUncertain  Float32 record whose values only decode as UInt16 1, 2
func Sample() *Builder {
	b := New(SampleSize)

	b.PutFloats(0x2000, 0, 1, 2, 3)
	b.PutU16s(0x2100, 10, 20, 30, 40)
	b.Put2D(Sample2D, Record2D{Count: 4, Type: models.UInt16, PosX: 0x2000, PosY: 0x2100})

	b.PutFloats(0x2200, 10, 20, 30)
	b.PutFloats(0x2300, 100, 200)
	b.PutBytes(0x2400, []byte{1, 2, 3, 4, 5, 6})
	b.Put3D(Sample3D, Record3D{
		CountX: 3, CountY: 2,
		PosX: 0x2200, PosY: 0x2300, PosZ: 0x2400,
		Type:  models.UInt8,
		Scale: &models.AffineScale{Multiplier: 0.5, Offset: -10},
	})

	b.PutU16s(0x2500, 1, 2, 3, 4)
	b.PutFloats(0x2600, 1, 2)
	b.Put2D(Sample2DUncertain, Record2D{Count: 2, Type: models.Float32, PosX: 0x2600, PosY: 0x2500})
	return b
}
