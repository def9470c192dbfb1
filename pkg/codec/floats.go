package codec

import (
	"math"

	"github.com/tosih/denso-rom-tool/pkg/models"
)

// Floats like 1.4E-40 are not realistic table content.
const (
	FloatMin = 1e-12
	FloatMax = 1e12
)

var nan32 = float32(math.NaN())

// IsFloatValid reports whether f is finite and either zero or of magnitude
// within [FloatMin, FloatMax].
func IsFloatValid(f float32) bool {
	if f != f {
		return false
	}
	if f == 0 {
		return true
	}
	if f < 0 {
		f = -f
	}
	return f >= FloatMin && f <= FloatMax
}

// CheckFloats reports whether every value is valid.
func CheckFloats(values []float32) bool {
	for _, v := range values {
		if !IsFloatValid(v) {
			return false
		}
	}
	return true
}

// CheckAxis reports whether values are valid and non-decreasing.
// Equal neighbours are allowed: some real axes (MAF sensor) repeat a point.
func CheckAxis(values []float32) bool {
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			return false
		}
	}
	return CheckFloats(values)
}

// PlausibleScale returns the scale if both floats are valid and the
// multiplier is non-zero, nil otherwise.
func PlausibleScale(multiplier, offset float32) *models.AffineScale {
	if !IsFloatValid(multiplier) || multiplier == 0 || !IsFloatValid(offset) {
		return nil
	}
	return &models.AffineScale{Multiplier: multiplier, Offset: offset}
}
