package core

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaster(t *testing.T) {
	r := NewRaster(3, 2)
	assert.Equal(t, 3, r.Width)
	assert.Equal(t, 2, r.Height)
	assert.Len(t, r.Pix, 24)
	assert.Equal(t, 12, r.Stride())
	assert.Equal(t, 16, r.PixOffset(1, 1))

	empty := NewRaster(-1, 5)
	assert.Equal(t, 0, empty.Width)
	assert.Empty(t, empty.Pix)
}

func TestRasterValidate(t *testing.T) {
	tests := []struct {
		name string
		r    *Raster
	}{
		{"nil", nil},
		{"zero width", NewRaster(0, 4)},
		{"zero height", NewRaster(4, 0)},
		{"short buffer", &Raster{Width: 2, Height: 2, Pix: make([]uint8, 15)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSource))
			assert.False(t, errors.Is(err, ErrInvalidParameter))

			var se *SourceError
			assert.True(t, errors.As(err, &se))
		})
	}
	assert.NoError(t, NewRaster(1, 1).Validate())
}

func TestRasterValidateSourceLimit(t *testing.T) {
	wide := &Raster{Width: MaxDimension + 1, Height: 1, Pix: make([]uint8, (MaxDimension+1)*4)}
	assert.NoError(t, wide.Validate())

	err := wide.ValidateSource()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSource)
	assert.Contains(t, err.Error(), "too large")
}

func TestFromImage(t *testing.T) {
	_, err := FromImage(nil)
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = FromImage(image.NewRGBA(image.Rect(0, 0, 0, 3)))
	assert.ErrorIs(t, err, ErrInvalidSource)

	// Offset bounds and premultiplied input.
	src := image.NewRGBA(image.Rect(10, 20, 12, 21))
	src.Set(10, 20, color.RGBA{R: 255, A: 255})
	src.Set(11, 20, color.RGBA{R: 64, G: 32, B: 0, A: 128})

	r, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Width)
	assert.Equal(t, 1, r.Height)
	assert.Equal(t, []uint8{255, 0, 0, 255}, r.Pix[:4])
	assert.Equal(t, uint8(128), r.Pix[7])
	assert.InDelta(t, 127, int(r.Pix[4]), 1, "red should be un-premultiplied")
}

func TestFromImageNRGBAFastPath(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 9)
	}
	r, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, r.Pix)

	r.Pix[0] = 99
	assert.NotEqual(t, uint8(99), src.Pix[0], "raster must own its buffer")
}

func TestRasterCloneEqualToImage(t *testing.T) {
	r := NewRaster(2, 2)
	r.Pix[5] = 7
	c := r.Clone()
	assert.True(t, r.Equal(c))

	c.Pix[5] = 8
	assert.False(t, r.Equal(c))
	assert.False(t, r.Equal(NewRaster(4, 1)))
	assert.False(t, r.Equal(nil))
	assert.True(t, (*Raster)(nil).Equal(nil))

	img := r.ToImage()
	img.Pix[0] = 42
	assert.Equal(t, uint8(42), r.Pix[0], "ToImage shares the buffer")
	assert.Equal(t, r.Bounds(), img.Bounds())
}
