package algorithms

import "math"

// clampByte rounds half to even and clamps to [0, 255], the conversion an
// 8-bit clamped pixel array applies on store. NaN maps to 0.
func clampByte(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}
