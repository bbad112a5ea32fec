package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"image-enhancer/internal/core"
)

// Decode turns encoded bytes into a validated source raster. name is only a
// hint for SVG detection when no raster decoder recognizes the data. The
// returned format is the decoder that succeeded. Undecodable data fails with
// core.ErrInvalidSource.
func Decode(data []byte, name string) (*core.Raster, string, error) {
	if len(data) == 0 {
		return nil, "", &core.SourceError{Reason: "no image data"}
	}

	// Raster decoders go first: their magic bytes are unambiguous, while
	// "<svg" can appear inside metadata of any format.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if isSVG(data, name) {
			r, svgErr := decodeSVG(data)
			return r, "svg", svgErr
		}
		// Formats without a Go decoder may still be readable by OpenCV.
		r, cvErr := decodeOpenCV(data)
		if cvErr != nil {
			return nil, "", &core.SourceError{Reason: fmt.Sprintf("cannot decode image: %v", err)}
		}
		return r, formatFromName(name, "opencv"), nil
	}
	if cfg.Width > core.MaxDimension || cfg.Height > core.MaxDimension {
		return nil, "", &core.SourceError{Width: cfg.Width, Height: cfg.Height, Reason: "image too large"}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &core.SourceError{Width: cfg.Width, Height: cfg.Height, Reason: fmt.Sprintf("cannot decode %s: %v", format, err)}
	}
	r, err := core.FromImage(img)
	if err != nil {
		return nil, "", err
	}
	if err := r.ValidateSource(); err != nil {
		return nil, "", err
	}
	return r, format, nil
}

func decodeOpenCV(data []byte) (*core.Raster, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("opencv could not decode image")
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("opencv conversion: %w", err)
	}
	r, err := core.FromImage(img)
	if err != nil {
		return nil, err
	}
	if err := r.ValidateSource(); err != nil {
		return nil, err
	}
	return r, nil
}

func isSVG(data []byte, name string) bool {
	if strings.EqualFold(filepath.Ext(stripQuery(name)), ".svg") {
		return true
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

func decodeSVG(data []byte) (*core.Raster, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, &core.SourceError{Reason: fmt.Sprintf("cannot parse svg: %v", err)}
	}

	w, h := int(icon.ViewBox.W+0.5), int(icon.ViewBox.H+0.5)
	if w <= 0 || h <= 0 {
		return nil, &core.SourceError{Width: w, Height: h, Reason: "svg has no size"}
	}
	if w > core.MaxDimension || h > core.MaxDimension {
		return nil, &core.SourceError{Width: w, Height: h, Reason: "image too large"}
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)

	return core.FromImage(rgba)
}

func formatFromName(name, fallback string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(stripQuery(name))), ".")
	if ext == "" {
		return fallback
	}
	return ext
}

func stripQuery(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		return name[:i]
	}
	return name
}
