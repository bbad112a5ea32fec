// Menu handler for application actions
package gui

import (
	"fmt"
	"io"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"image-enhancer/internal/config"
	"image-enhancer/internal/imageio"
	"image-enhancer/internal/pipeline"
)

// MenuHandler owns the file dialogs and the main menu.
type MenuHandler struct {
	window  fyne.Window
	session *pipeline.Session
	cfg     config.Config
	logger  logrus.FieldLogger

	onImageSelected func(io.ReadCloser, string)
	onImageSaved    func(string)
	onReset         func()
	onClose         func()
	onError         func(string, error)
}

func NewMenuHandler(window fyne.Window, session *pipeline.Session, cfg config.Config, logger logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{
		window:  window,
		session: session,
		cfg:     cfg,
		logger:  logger,
	}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mh.openImage),
		fyne.NewMenuItem("Save Enhanced Image...", mh.saveImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Close Image", func() {
			if mh.onClose != nil {
				mh.onClose()
			}
		}),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Reset All", func() {
			if mh.onReset != nil {
				mh.onReset()
			}
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, editMenu, helpMenu)
}

func (mh *MenuHandler) openImage() {
	mh.logger.Info("Opening file dialog for image selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}

		name := reader.URI().Name()
		mh.logger.WithField("file", reader.URI().Path()).Info("Loading selected image")

		if !imageio.IsSupportedFile(name) {
			reader.Close()
			mh.showError("Unsupported File", fmt.Errorf("%w: %s", imageio.ErrUnsupportedFormat, name))
			return
		}
		if mh.onImageSelected != nil {
			mh.onImageSelected(reader, name)
		} else {
			reader.Close()
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(imageio.SupportedExtensions()))
	fileDialog.Show()
}

func (mh *MenuHandler) saveImage() {
	output := mh.session.Output()
	if output == nil {
		mh.showError("No Image", fmt.Errorf("no enhanced image to download"))
		return
	}

	opts := mh.cfg.ExportOptions()
	mh.logger.Info("Opening file dialog for image saving")

	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}

		uri := writer.URI()
		exportOpts := opts
		if f, ok := imageio.FormatFromPath(uri.Name()); ok {
			exportOpts.Format = f
		}

		mh.logger.WithFields(logrus.Fields{
			"file":   uri.Path(),
			"format": exportOpts.Format,
		}).Info("Saving image")

		if err := imageio.Write(writer, output, exportOpts); err != nil {
			mh.showError("Failed to Save Image", err)
			return
		}

		mh.logger.WithField("file", uri.Path()).Info("Image saved successfully")
		if mh.onImageSaved != nil {
			mh.onImageSaved(uri.Path())
		}
	}, mh.window)

	fileDialog.SetFileName(imageio.DefaultFilename(time.Now(), opts.Format))
	if dir := mh.cfg.Export.Directory; dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fileDialog.SetLocation(lister)
		} else {
			mh.logger.WithError(err).WithField("dir", dir).Warn("Export directory unavailable")
		}
	}
	fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}))
	fileDialog.Show()
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabel(WindowTitle),
		widget.NewSeparator(),
		widget.NewLabel("Resize, tone, sharpen and filter images"),
		widget.NewLabel("with a live side-by-side preview."),
		widget.NewSeparator(),
		widget.NewLabel("Built with Go, Fyne and OpenCV"),
	)

	aboutDialog := dialog.NewCustom("About", "Close", content, mh.window)
	aboutDialog.Resize(fyne.NewSize(360, 240))
	aboutDialog.Show()
}

func (mh *MenuHandler) showError(title string, err error) {
	if mh.onError != nil {
		mh.onError(title, err)
		return
	}
	mh.logger.WithError(err).Error(title)
	dialog.ShowError(err, mh.window)
}

func (mh *MenuHandler) SetCallbacks(onImageSelected func(io.ReadCloser, string), onImageSaved func(string)) {
	mh.onImageSelected = onImageSelected
	mh.onImageSaved = onImageSaved
}

func (mh *MenuHandler) SetResetCallback(callback func()) {
	mh.onReset = callback
}

func (mh *MenuHandler) SetCloseCallback(callback func()) {
	mh.onClose = callback
}

func (mh *MenuHandler) SetErrorCallback(callback func(string, error)) {
	mh.onError = callback
}
