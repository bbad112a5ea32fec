// Side-by-side preview of the source and the enhanced output
package gui

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"image-enhancer/internal/core"
)

const noImageLabel = "No image"

// ImageCanvas shows the original and enhanced rasters next to each other.
type ImageCanvas struct {
	split *container.Split

	originalView  *widget.Card
	enhancedView  *widget.Card
	originalImage *canvas.Image
	enhancedImage *canvas.Image
	originalSize  *widget.Label
	enhancedSize  *widget.Label
}

func NewImageCanvas() *ImageCanvas {
	ic := &ImageCanvas{}
	ic.initializeUI()
	return ic
}

func (ic *ImageCanvas) initializeUI() {
	ic.originalImage = newPreviewImage()
	ic.enhancedImage = newPreviewImage()
	ic.originalSize = widget.NewLabelWithStyle(noImageLabel, fyne.TextAlignCenter, fyne.TextStyle{})
	ic.enhancedSize = widget.NewLabelWithStyle(noImageLabel, fyne.TextAlignCenter, fyne.TextStyle{})

	ic.originalView = widget.NewCard("Original", "",
		container.NewBorder(nil, ic.originalSize, nil, nil, ic.originalImage))
	ic.enhancedView = widget.NewCard("Enhanced", "",
		container.NewBorder(nil, ic.enhancedSize, nil, nil, ic.enhancedImage))

	ic.split = container.NewHSplit(ic.originalView, ic.enhancedView)
	ic.split.SetOffset(0.5)
}

func newPreviewImage() *canvas.Image {
	img := canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(320, 240))
	return img
}

func (ic *ImageCanvas) GetContainer() fyne.CanvasObject {
	return ic.split
}

// SetOriginal displays the source. The raster must not be modified afterwards.
func (ic *ImageCanvas) SetOriginal(r *core.Raster) {
	setPreview(ic.originalImage, ic.originalSize, r)
}

// SetEnhanced displays the latest render.
func (ic *ImageCanvas) SetEnhanced(r *core.Raster) {
	setPreview(ic.enhancedImage, ic.enhancedSize, r)
}

func (ic *ImageCanvas) Clear() {
	setPreview(ic.originalImage, ic.originalSize, nil)
	setPreview(ic.enhancedImage, ic.enhancedSize, nil)
}

func setPreview(img *canvas.Image, label *widget.Label, r *core.Raster) {
	if r == nil {
		img.Image = image.NewNRGBA(image.Rect(0, 0, 1, 1))
		label.SetText(noImageLabel)
	} else {
		img.Image = r.ToImage()
		label.SetText(sizeText(r))
	}
	img.File = ""
	img.Resource = nil
	img.Refresh()
}

func sizeText(r *core.Raster) string {
	return fmt.Sprintf("%d × %d px", r.Width, r.Height)
}
