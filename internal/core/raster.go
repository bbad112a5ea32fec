package core

import (
	"bytes"
	"image"

	"golang.org/x/image/draw"
)

// MaxDimension bounds the width and height of a source raster.
const MaxDimension = 16384

// Raster is a W×H grid of 8-bit RGBA pixels with straight (non-premultiplied) alpha.
// Pix holds the channels row by row, so len(Pix) is always Width*Height*4.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster allocates a zeroed raster.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// FromImage converts a decoded image into a raster with origin (0, 0) and
// rejects images without area.
func FromImage(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, &SourceError{Reason: "no image"}
	}
	r := ConvertImage(img)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// ConvertImage copies img into a new raster, converting to straight alpha.
func ConvertImage(img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy())
	if len(r.Pix) == 0 {
		return r
	}

	if src, ok := img.(*image.NRGBA); ok && src.Stride == b.Dx()*4 {
		copy(r.Pix, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):])
		return r
	}

	dst := r.ToImage()
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return r
}

// Validate checks the buffer invariant and that the raster has a usable area.
func (r *Raster) Validate() error {
	if r == nil {
		return &SourceError{Reason: "no image"}
	}
	if r.Width <= 0 || r.Height <= 0 {
		return &SourceError{Width: r.Width, Height: r.Height, Reason: "empty image"}
	}
	if len(r.Pix) != r.Width*r.Height*4 {
		return &SourceError{Width: r.Width, Height: r.Height, Reason: "pixel buffer size mismatch"}
	}
	return nil
}

// ValidateSource is Validate plus the MaxDimension limit applied to loaded images.
func (r *Raster) ValidateSource() error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Width > MaxDimension || r.Height > MaxDimension {
		return &SourceError{Width: r.Width, Height: r.Height, Reason: "image too large"}
	}
	return nil
}

func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// PixOffset returns the index of the first channel of pixel (x, y).
func (r *Raster) PixOffset(x, y int) int {
	return (y*r.Width + x) * 4
}

// Stride is the number of bytes per row.
func (r *Raster) Stride() int {
	return r.Width * 4
}

func (r *Raster) Clone() *Raster {
	c := &Raster{Width: r.Width, Height: r.Height, Pix: make([]uint8, len(r.Pix))}
	copy(c.Pix, r.Pix)
	return c
}

// Equal reports whether both rasters have the same size and pixels.
func (r *Raster) Equal(o *Raster) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Width == o.Width && r.Height == o.Height && bytes.Equal(r.Pix, o.Pix)
}

// ToImage wraps the pixel buffer without copying. Writes to the image are
// visible in the raster.
func (r *Raster) ToImage() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Stride(),
		Rect:   r.Bounds(),
	}
}
