package algorithms

import "image-enhancer/internal/core"

// Kernel3 is a 3×3 convolution matrix in row-major order.
type Kernel3 [9]float64

// SharpenKernel builds the cross-shaped sharpening kernel for strength s:
//
//	 0   -s    0
//	-s  1+4s  -s
//	 0   -s    0
func SharpenKernel(s float64) Kernel3 {
	return Kernel3{
		0, -s, 0,
		-s, 1 + 4*s, -s,
		0, -s, 0,
	}
}

// Convolve3 applies k to the R, G and B channels of every interior pixel.
// Border rows and columns and the whole alpha channel are copied from src;
// the kernel never reads outside the image. Sources smaller than 3×3 have
// no interior and come back as a copy.
func Convolve3(src *core.Raster, k Kernel3) *core.Raster {
	dst := src.Clone()
	w, h := src.Width, src.Height
	if w < 3 || h < 3 {
		return dst
	}

	in := src.Pix
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			out := (y*w + x) * 4
			for c := 0; c < 3; c++ {
				sum := 0.0
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						idx := ((y+ky)*w+(x+kx))*4 + c
						sum += float64(in[idx]) * k[(ky+1)*3+(kx+1)]
					}
				}
				dst.Pix[out+c] = clampByte(sum)
			}
		}
	}
	return dst
}

// Sharpen convolves src with SharpenKernel(strength). Non-positive strengths
// return an unmodified copy.
func Sharpen(src *core.Raster, strength float64) *core.Raster {
	if strength <= 0 {
		return src.Clone()
	}
	return Convolve3(src, SharpenKernel(strength))
}
