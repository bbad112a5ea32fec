package gui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-enhancer/internal/imageio"
)

const loadTips = `Tips:
- Make sure the URL points directly to an image
- Try images from websites that allow hotlinking
- Some websites block external access to their images
- Try one of the sample images using the button above`

// SourcePanel collects the image to enhance: a URL, an uploaded file or a sample.
type SourcePanel struct {
	container *fyne.Container

	urlEntry     *widget.Entry
	loadButton   *widget.Button
	uploadButton *widget.Button
	sampleButton *widget.Button
	loading      *widget.ProgressBarInfinite
	errorCard    *widget.Card
	errorLabel   *widget.Label

	onLoadURL func(string)
	onUpload  func()
}

func NewSourcePanel() *SourcePanel {
	sp := &SourcePanel{}
	sp.initializeUI()
	return sp
}

func (sp *SourcePanel) initializeUI() {
	sp.urlEntry = widget.NewEntry()
	sp.urlEntry.SetPlaceHolder("https://example.com/photo.jpg")
	sp.urlEntry.OnSubmitted = func(string) { sp.submit() }

	sp.loadButton = widget.NewButtonWithIcon("Load Image", theme.DownloadIcon(), sp.submit)
	sp.loadButton.Importance = widget.HighImportance

	sp.uploadButton = widget.NewButtonWithIcon("Upload", theme.FolderOpenIcon(), func() {
		if sp.onUpload != nil {
			sp.onUpload()
		}
	})

	sp.sampleButton = widget.NewButtonWithIcon("Try Sample Image", theme.MediaPhotoIcon(), func() {
		sp.SetURL(imageio.RandomSample())
	})

	sp.loading = widget.NewProgressBarInfinite()
	sp.loading.Stop()
	sp.loading.Hide()

	sp.errorLabel = widget.NewLabel("")
	sp.errorLabel.Wrapping = fyne.TextWrapWord
	sp.errorLabel.Importance = widget.DangerImportance

	tips := widget.NewLabel(loadTips)
	tips.Wrapping = fyne.TextWrapWord

	sp.errorCard = widget.NewCard("Error", "", container.NewVBox(sp.errorLabel, tips))
	sp.errorCard.Hide()

	instructions := widget.NewLabel("1. Paste a URL and press Load Image\n2. Upload an image directly\n3. Try a sample image, then Load Image")

	sp.container = container.NewVBox(
		widget.NewCard("Image Source", "", container.NewVBox(
			container.NewBorder(nil, nil, nil, sp.loadButton, sp.urlEntry),
			container.NewHBox(sp.uploadButton, sp.sampleButton),
			instructions,
		)),
		sp.loading,
		sp.errorCard,
	)
}

func (sp *SourcePanel) submit() {
	if sp.onLoadURL != nil {
		sp.onLoadURL(strings.TrimSpace(sp.urlEntry.Text))
	}
}

func (sp *SourcePanel) SetCallbacks(onLoadURL func(string), onUpload func()) {
	sp.onLoadURL = onLoadURL
	sp.onUpload = onUpload
}

func (sp *SourcePanel) URL() string {
	return sp.urlEntry.Text
}

func (sp *SourcePanel) SetURL(url string) {
	sp.urlEntry.SetText(url)
}

// SetLoading shows the progress indicator and blocks new requests.
func (sp *SourcePanel) SetLoading(loading bool) {
	if loading {
		sp.loading.Show()
		sp.loading.Start()
		sp.loadButton.Disable()
		sp.uploadButton.Disable()
		return
	}
	sp.loading.Stop()
	sp.loading.Hide()
	sp.loadButton.Enable()
	sp.uploadButton.Enable()
}

func (sp *SourcePanel) ShowError(message string) {
	sp.errorLabel.SetText(message)
	sp.errorCard.Show()
}

func (sp *SourcePanel) HideError() {
	sp.errorLabel.SetText("")
	sp.errorCard.Hide()
}

func (sp *SourcePanel) GetContainer() fyne.CanvasObject {
	return sp.container
}
