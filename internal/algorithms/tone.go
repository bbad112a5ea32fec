package algorithms

import "image-enhancer/internal/core"

// Rec. 709 luma weights used for the saturation gray point.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// AdjustTone applies brightness, contrast and saturation to R, G and B as one
// per-pixel formula; alpha is copied. Intermediate values stay unclamped and
// are rounded only once at the end:
//
//	v    = 128 + (c*brightness - 128) * contrast
//	gray = lumaR*v_r + lumaG*v_g + lumaB*v_b
//	out  = gray + (v - gray) * saturation
func AdjustTone(src *core.Raster, brightness, contrast, saturation float64) *core.Raster {
	dst := src.Clone()
	if brightness == 1 && contrast == 1 && saturation == 1 {
		return dst
	}

	pix := dst.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r := tone(pix[i], brightness, contrast)
		g := tone(pix[i+1], brightness, contrast)
		b := tone(pix[i+2], brightness, contrast)

		gray := lumaR*r + lumaG*g + lumaB*b
		pix[i] = clampByte(gray + (r-gray)*saturation)
		pix[i+1] = clampByte(gray + (g-gray)*saturation)
		pix[i+2] = clampByte(gray + (b-gray)*saturation)
	}
	return dst
}

func tone(c uint8, brightness, contrast float64) float64 {
	return 128 + (float64(c)*brightness-128)*contrast
}

// Luma returns the weighted gray value AdjustTone blends toward.
func Luma(r, g, b uint8) float64 {
	return lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b)
}
