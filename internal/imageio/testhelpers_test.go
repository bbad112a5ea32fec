package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"image-enhancer/internal/core"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(40 * x), G: uint8(60 * y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testRaster(w, h int) *core.Raster {
	r := core.NewRaster(w, h)
	for i := range r.Pix {
		r.Pix[i] = uint8(i * 7)
	}
	for i := 3; i < len(r.Pix); i += 4 {
		r.Pix[i] = 255
	}
	return r
}
