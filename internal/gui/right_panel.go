package gui

import (
	"fmt"
	"path"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"image-enhancer/internal/core"
)

type RightPanel struct {
	container *container.Scroll
	logger    logrus.FieldLogger

	// Status section
	statusCard      *widget.Card
	stateLabel      *widget.Label
	lastActionLabel *widget.Label

	// Image information section
	imageInfoCard *widget.Card
	nameLabel     *widget.Label
	sizeLabel     *widget.Label
	formatLabel   *widget.Label

	// Quality metrics section
	qualityCard    *widget.Card
	psnrLabel      *widget.Label
	ssimLabel      *widget.Label
	psnrBar        *widget.ProgressBar
	ssimBar        *widget.ProgressBar
	sharpnessLabel *widget.Label
	contrastLabel  *widget.Label
	timingLabel    *widget.Label
	metricsCheck   *widget.Check

	onWindowTitleChange func(title string)
	onMetricsToggled    func(bool)
}

func NewRightPanel(logger logrus.FieldLogger) *RightPanel {
	rp := &RightPanel{
		logger: logger,
	}

	rp.createStatusSection()
	rp.createImageInfoSection()
	rp.createQualitySection()

	rp.container = container.NewVScroll(container.NewVBox(
		rp.statusCard,
		rp.imageInfoCard,
		rp.qualityCard,
	))

	return rp
}

func (rp *RightPanel) createStatusSection() {
	rp.stateLabel = widget.NewLabel("Ready")
	rp.lastActionLabel = widget.NewLabel("Load an image to start")
	rp.lastActionLabel.Wrapping = fyne.TextWrapWord

	rp.statusCard = widget.NewCard("STATUS", "", container.NewVBox(
		widget.NewLabelWithStyle("State:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		rp.stateLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Last:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		rp.lastActionLabel,
	))
}

func (rp *RightPanel) createImageInfoSection() {
	rp.nameLabel = widget.NewLabel("No image")
	rp.nameLabel.Truncation = fyne.TextTruncateEllipsis
	rp.sizeLabel = widget.NewLabel("No size")
	rp.formatLabel = widget.NewLabel("No format")

	rp.imageInfoCard = widget.NewCard("IMAGE INFORMATION", "", container.NewVBox(
		rp.nameLabel,
		rp.sizeLabel,
		rp.formatLabel,
	))
}

func (rp *RightPanel) createQualitySection() {
	rp.psnrLabel = widget.NewLabel("PSNR: --")
	rp.ssimLabel = widget.NewLabel("SSIM: --")
	rp.psnrBar = widget.NewProgressBar()
	rp.ssimBar = widget.NewProgressBar()
	rp.sharpnessLabel = widget.NewLabel("Sharpness: --")
	rp.contrastLabel = widget.NewLabel("Contrast: --")
	rp.timingLabel = widget.NewLabel("Render: --")
	rp.metricsCheck = widget.NewCheck("Compute metrics", func(on bool) {
		if rp.onMetricsToggled != nil {
			rp.onMetricsToggled(on)
		}
	})

	rp.qualityCard = widget.NewCard("QUALITY METRICS", "Compared with the plain resized source", container.NewVBox(
		rp.psnrLabel,
		rp.psnrBar,
		widget.NewSeparator(),
		rp.ssimLabel,
		rp.ssimBar,
		widget.NewSeparator(),
		rp.sharpnessLabel,
		rp.contrastLabel,
		rp.timingLabel,
		widget.NewSeparator(),
		rp.metricsCheck,
	))
}

// ShowImageInfo describes a freshly loaded source and retitles the window.
func (rp *RightPanel) ShowImageInfo(meta core.ImageMetadata) {
	name := meta.Name
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	rp.nameLabel.SetText(name)
	rp.sizeLabel.SetText(fmt.Sprintf("%d × %d px", meta.Width, meta.Height))
	rp.formatLabel.SetText(fmt.Sprintf("%s, %s", strings.ToUpper(meta.Format), formatBytes(meta.Size)))

	title := fmt.Sprintf("%s - %s", WindowTitle, name)
	rp.logger.WithField("title", title).Debug("Updating window title")
	if rp.onWindowTitleChange != nil {
		rp.onWindowTitleChange(title)
	}
}

// UpdateMetrics shows the latest scores. A nil map means metrics are off.
func (rp *RightPanel) UpdateMetrics(m map[string]float64, d time.Duration) {
	rp.timingLabel.SetText(fmt.Sprintf("Render: %d ms", d.Milliseconds()))
	if m == nil {
		rp.clearMetrics()
		return
	}

	psnr, ssim := m["psnr"], m["ssim"]
	rp.psnrLabel.SetText(fmt.Sprintf("PSNR: %.2f dB", psnr))
	rp.ssimLabel.SetText(fmt.Sprintf("SSIM: %.4f", ssim))
	rp.sharpnessLabel.SetText(fmt.Sprintf("Sharpness: %.2fx", m["sharpness"]))
	rp.contrastLabel.SetText(fmt.Sprintf("Contrast: %.2fx", m["contrast_ratio"]))

	// PSNR bar spans 0-50 dB.
	rp.psnrBar.SetValue(clamp01(psnr / 50))
	rp.ssimBar.SetValue(clamp01(ssim))

	rp.logger.WithFields(logrus.Fields{"psnr": psnr, "ssim": ssim}).Debug("Metrics updated")
}

func (rp *RightPanel) UpdateStatus(state, lastAction string) {
	rp.stateLabel.SetText(state)
	rp.lastActionLabel.SetText(lastAction)
}

func (rp *RightPanel) ShowError(message string) {
	rp.stateLabel.SetText("Error")
	rp.lastActionLabel.SetText(message)
}

func (rp *RightPanel) ShowMessage(message string) {
	rp.lastActionLabel.SetText(message)
}

// Clear returns the panel to its state before the first load.
func (rp *RightPanel) Clear() {
	rp.nameLabel.SetText("No image")
	rp.sizeLabel.SetText("No size")
	rp.formatLabel.SetText("No format")
	rp.stateLabel.SetText("Ready")
	rp.lastActionLabel.SetText("Load an image to start")
	rp.timingLabel.SetText("Render: --")
	rp.clearMetrics()
	if rp.onWindowTitleChange != nil {
		rp.onWindowTitleChange(WindowTitle)
	}
}

func (rp *RightPanel) clearMetrics() {
	rp.psnrLabel.SetText("PSNR: --")
	rp.ssimLabel.SetText("SSIM: --")
	rp.sharpnessLabel.SetText("Sharpness: --")
	rp.contrastLabel.SetText("Contrast: --")
	rp.psnrBar.SetValue(0)
	rp.ssimBar.SetValue(0)
}

func (rp *RightPanel) SetWindowTitleChangeCallback(callback func(string)) {
	rp.onWindowTitleChange = callback
}

// SetMetricsToggleCallback sets the handler of the metrics check box and
// moves the box to enabled without calling it.
func (rp *RightPanel) SetMetricsToggleCallback(enabled bool, callback func(bool)) {
	rp.onMetricsToggled = nil
	rp.metricsCheck.SetChecked(enabled)
	rp.onMetricsToggled = callback
}

func (rp *RightPanel) GetContainer() fyne.CanvasObject {
	return rp.container
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatBytes(n int64) string {
	switch {
	case n <= 0:
		return "size unknown"
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	}
}
