package algorithms

import "image-enhancer/internal/core"

// solid returns a w×h raster filled with one color.
func solid(w, h int, r, g, b, a uint8) *core.Raster {
	img := core.NewRaster(w, h)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
	return img
}

// gradient fills every channel with values derived from the pixel position.
func gradient(w, h int) *core.Raster {
	img := core.NewRaster(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8((x * 37) % 256)
			img.Pix[i+1] = uint8((y * 53) % 256)
			img.Pix[i+2] = uint8((x*y*11 + 7) % 256)
			img.Pix[i+3] = uint8(200 + (x+y)%56)
		}
	}
	return img
}
