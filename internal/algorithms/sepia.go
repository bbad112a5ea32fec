package algorithms

import "image-enhancer/internal/core"

var sepiaMatrix = [3][3]float64{
	{0.393, 0.769, 0.189},
	{0.349, 0.686, 0.168},
	{0.272, 0.534, 0.131},
}

// Sepia remaps R, G and B through the fixed sepia matrix, capping at 255.
// The coefficients are non-negative, so no lower clamp is needed. Alpha is copied.
func Sepia(src *core.Raster) *core.Raster {
	dst := src.Clone()
	pix := dst.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])
		for c := 0; c < 3; c++ {
			m := sepiaMatrix[c]
			pix[i+c] = clampByte(r*m[0] + g*m[1] + b*m[2])
		}
	}
	return dst
}
