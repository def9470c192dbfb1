package renderer

import (
	"math"
	"strconv"
)

const maxDecimals = 8

// AutomaticMinDigits returns the fewest decimals that represent every value
// exactly, or maxDecimals+1 if none up to maxDecimals does.
func AutomaticMinDigits(values []float32) int {
	digits := 0
	for digits <= maxDecimals && !exactAt(values, digits) {
		digits++
	}
	return digits
}

func exactAt(values []float32, digits int) bool {
	p := math.Pow10(digits)
	for _, v := range values {
		rounded := float32(math.RoundToEven(float64(v)*p) / p)
		if rounded != v {
			return false
		}
	}
	return true
}

// AutomaticValueFormat picks the number of decimals used to print values.
// Values needing more than three decimals get a count based on magnitude.
func AutomaticValueFormat(values []float32, vmax float32) int {
	digits := AutomaticMinDigits(values)
	if digits > 3 {
		digits = 1
		if vmax < 30 {
			digits = 2
		}
		if vmax < 10 {
			digits = 3
		}
	}
	return digits
}

// FormatValue prints v with a fixed number of decimals.
func FormatValue(v float32, decimals int) string {
	return strconv.FormatFloat(float64(v), 'f', decimals, 32)
}
