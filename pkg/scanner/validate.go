package scanner

import "github.com/tosih/denso-rom-tool/pkg/models"

// Element counts per axis found in real records.
const (
	CountMin = 2
	CountMax = 255
)

func countValid(n int) bool {
	return n >= CountMin && n <= CountMax
}

// ValidatePositions reports whether all positions are inside bounds and
// pairwise distinct.
func ValidatePositions(bounds models.Bounds, positions ...int) bool {
	for i, p := range positions {
		if !bounds.Contains(p) {
			return false
		}
		for _, q := range positions[:i] {
			if p == q {
				return false
			}
		}
	}
	return true
}

// Disjoint reports whether no two ranges share a byte.
func Disjoint(ranges ...models.ByteRange) bool {
	for i, r := range ranges {
		for _, o := range ranges[:i] {
			if r.Intersects(o) {
				return false
			}
		}
	}
	return true
}
