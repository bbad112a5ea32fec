// Main window: source input, controls, side-by-side preview and quality panel
package gui

import (
	"context"
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"github.com/sirupsen/logrus"

	"image-enhancer/internal/config"
	"image-enhancer/internal/imageio"
	"image-enhancer/internal/metrics"
	"image-enhancer/internal/pipeline"
	"image-enhancer/internal/store"
)

// WindowTitle is the title shown before an image is loaded.
const WindowTitle = "Image Enhancer"

// Application wires the enhancement session to the window.
type Application struct {
	app       fyne.App
	window    fyne.Window
	logger    logrus.FieldLogger
	cfg       config.Config
	debugMode bool

	// Core components
	store     *store.Store
	session   *pipeline.Session
	loader    *imageio.Loader
	evaluator *metrics.Evaluator

	// GUI components
	source      *SourcePanel
	controls    *ControlPanel
	canvas      *ImageCanvas
	rightPanel  *RightPanel
	menuHandler *MenuHandler

	mainContent *container.Split

	cancelLoad context.CancelFunc
}

func NewApplication(app fyne.App, logger logrus.FieldLogger, cfg config.Config, debugMode bool) *Application {
	window := app.NewWindow(WindowTitle)
	window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		cfg:       cfg,
		debugMode: debugMode,
	}

	a.initializeCore()
	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a
}

func (a *Application) initializeCore() {
	a.store = store.New()
	a.session = pipeline.NewSession(a.store, a.logger)
	a.session.SetInterpolation(a.cfg.Interpolation())
	if a.cfg.Render.Metrics {
		a.evaluator = metrics.NewEvaluator()
		a.session.SetEvaluator(a.evaluator)
	}
	initial, err := a.cfg.InitialPartial()
	if err != nil {
		a.logger.WithError(err).Warn("Ignoring configured initial scale")
	} else {
		a.store.Set(initial)
	}
	a.loader = imageio.NewLoader(a.logger, a.cfg.LoaderOptions())
}

func (a *Application) initializeGUI() {
	a.source = NewSourcePanel()
	a.controls = NewControlPanel(a.store, a.session.Interpolation(), a.logger)
	a.canvas = NewImageCanvas()
	a.rightPanel = NewRightPanel(a.logger)
	a.menuHandler = NewMenuHandler(a.window, a.session, a.cfg, a.logger)
}

func (a *Application) setupLayout() {
	left := container.NewBorder(
		a.source.GetContainer(),
		nil, nil, nil,
		a.controls.GetContainer(),
	)

	centerAndRight := container.NewHSplit(
		container.NewPadded(a.canvas.GetContainer()),
		a.rightPanel.GetContainer(),
	)
	centerAndRight.SetOffset(0.75)

	a.mainContent = container.NewHSplit(left, centerAndRight)
	a.mainContent.SetOffset(0.28)

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(a.mainContent)
}

func (a *Application) setupCallbacks() {
	// Renders run on whichever goroutine changed the store.
	a.session.SetCallbacks(
		// onPreviewUpdate
		func(result pipeline.Result) {
			fyne.Do(func() {
				a.canvas.SetEnhanced(result.Output)
				a.rightPanel.UpdateMetrics(result.Metrics, result.Duration)
			})
		},
		// onError
		func(err error) {
			fyne.Do(func() {
				a.showError("Processing Error", err)
			})
		},
	)

	a.store.Subscribe(func(state store.State) {
		fyne.Do(func() {
			a.controls.SyncState(state)
		})
	})

	a.source.SetCallbacks(a.LoadURL, a.menuHandler.openImage)
	a.controls.SetCallbacks(a.session.SetInterpolation, a.menuHandler.saveImage)

	a.menuHandler.SetCallbacks(
		// onImageSelected
		a.loadReader,
		// onImageSaved
		func(path string) {
			a.rightPanel.ShowMessage(fmt.Sprintf("Saved: %s", path))
		},
	)
	a.menuHandler.SetResetCallback(a.store.ResetAll)
	a.menuHandler.SetErrorCallback(a.showError)

	a.menuHandler.SetCloseCallback(a.closeImage)

	a.rightPanel.SetWindowTitleChangeCallback(a.window.SetTitle)
	a.rightPanel.SetMetricsToggleCallback(a.evaluator != nil, a.setMetrics)
}

// setMetrics switches quality metrics on or off and re-renders so the panel
// reflects the change at once.
func (a *Application) setMetrics(on bool) {
	if on {
		if a.evaluator == nil {
			a.evaluator = metrics.NewEvaluator()
		}
		a.session.SetEvaluator(a.evaluator)
	} else {
		a.session.SetEvaluator(nil)
	}
	a.logger.WithField("enabled", on).Info("Quality metrics toggled")
	a.session.Refresh()
}

// LoadURL validates raw and fetches it in the background. A load still in
// flight is canceled.
func (a *Application) LoadURL(raw string) {
	if err := imageio.ValidateURL(raw); err != nil {
		a.showLoadError(err)
		return
	}

	ctx := a.beginLoad()
	go func() {
		src, err := a.loader.LoadURL(ctx, raw)
		if ctx.Err() != nil {
			return
		}
		fyne.Do(func() {
			a.deliverLoad(ctx, src, err, "Image loaded successfully!")
		})
	}()
}

func (a *Application) loadReader(r io.ReadCloser, name string) {
	ctx := a.beginLoad()
	go func() {
		defer r.Close()
		src, err := a.loader.LoadReader(r, name)
		if ctx.Err() != nil {
			return
		}
		fyne.Do(func() {
			a.deliverLoad(ctx, src, err, "Image uploaded successfully!")
		})
	}()
}

func (a *Application) beginLoad() context.Context {
	if a.cancelLoad != nil {
		a.cancelLoad()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelLoad = cancel

	a.source.HideError()
	a.source.SetLoading(true)
	a.rightPanel.UpdateStatus("Loading", "Fetching image")
	return ctx
}

// deliverLoad drops results of loads superseded after they finished but
// before the UI goroutine picked them up.
func (a *Application) deliverLoad(ctx context.Context, src imageio.Source, err error, notice string) {
	if ctx.Err() != nil {
		return
	}
	a.finishLoad(src, err, notice)
}

// finishLoad runs on the UI goroutine with the outcome of a load.
func (a *Application) finishLoad(src imageio.Source, err error, notice string) {
	a.source.SetLoading(false)
	if err != nil {
		a.showLoadError(err)
		return
	}

	// The session renders synchronously, so the preview is current on return.
	if err := a.session.Load(src.Raster, src.Metadata()); err != nil {
		a.showLoadError(err)
		return
	}

	a.canvas.SetOriginal(src.Raster)
	a.rightPanel.ShowImageInfo(a.session.Metadata())
	a.controls.Enable()
	a.notify(notice)
}

func (a *Application) showLoadError(err error) {
	a.logger.WithError(err).Warn("Image load failed")
	a.source.ShowError(imageio.Describe(err))
	a.rightPanel.ShowError(err.Error())
}

func (a *Application) notify(message string) {
	a.rightPanel.UpdateStatus("Image Loaded", message)
	a.app.SendNotification(fyne.NewNotification(WindowTitle, message))
}

func (a *Application) ShowAndRun() {
	a.logger.Info("Showing main application window")

	a.window.SetCloseIntercept(func() {
		a.cleanup()
		a.app.Quit()
	})

	a.window.ShowAndRun()
}

// closeImage drops the current source and returns the window to its
// initial state. A load in flight is canceled.
func (a *Application) closeImage() {
	if a.cancelLoad != nil {
		a.cancelLoad()
		a.cancelLoad = nil
	}
	a.source.SetLoading(false)
	a.session.Clear()
	a.canvas.Clear()
	a.rightPanel.Clear()
	a.controls.Disable()
}

func (a *Application) cleanup() {
	a.logger.Info("Cleaning up application resources")
	a.closeImage()
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	dialog.ShowError(err, a.window)
	a.rightPanel.ShowError(err.Error())
}
