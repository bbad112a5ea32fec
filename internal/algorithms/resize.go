package algorithms

import (
	"image"
	"math"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"image-enhancer/internal/core"
)

// TargetSize returns round(w*scale) × round(h*scale), never below 1×1.
// Scale factors under core.MinScale are treated as core.MinScale.
func TargetSize(w, h int, scale float64) (int, int) {
	if scale < core.MinScale {
		scale = core.MinScale
	}
	tw := int(math.Round(float64(w) * scale))
	th := int(math.Round(float64(h) * scale))
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}

// Resize resamples src to w×h. Same-size requests return an exact copy.
func Resize(src *core.Raster, w, h int, interp Interpolation) *core.Raster {
	if w == src.Width && h == src.Height {
		return src.Clone()
	}

	var out image.Image
	switch interp {
	case MitchellNetravali:
		out = resize.Resize(uint(w), uint(h), src.ToImage(), resize.MitchellNetravali)
	case Lanczos3:
		out = resize.Resize(uint(w), uint(h), src.ToImage(), resize.Lanczos3)
	default:
		// 16-bit intermediate keeps the premultiplied round trip lossless for opaque pixels.
		dst := image.NewRGBA64(image.Rect(0, 0, w, h))
		scalerFor(interp).Scale(dst, dst.Bounds(), src.ToImage(), src.Bounds(), draw.Src, nil)
		out = dst
	}

	return core.ConvertImage(out)
}

func scalerFor(interp Interpolation) draw.Scaler {
	switch interp {
	case NearestNeighbor:
		return draw.NearestNeighbor
	case ApproxBilinear:
		return draw.ApproxBiLinear
	case CatmullRom:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}
