package gui

import (
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"image-enhancer/internal/algorithms"
	"image-enhancer/internal/core"
	"image-enhancer/internal/presets"
	"image-enhancer/internal/store"
)

// ControlPanel holds the parameter sliders, preset buttons and export action.
// Slider moves write to the store; store changes are pushed back through
// SyncState without writing again.
type ControlPanel struct {
	store  *store.Store
	logger logrus.FieldLogger

	container *container.Scroll

	sliders       map[string]*widget.Slider
	valueLabels   map[string]*widget.Label
	presetButtons map[presets.Name]*widget.Button
	resetButton   *widget.Button
	interpSelect  *widget.Select
	downloadBtn   *widget.Button

	// State
	syncing bool
	enabled bool

	// Callbacks
	onInterpolationChanged func(algorithms.Interpolation)
	onDownload             func()
}

func NewControlPanel(st *store.Store, interp algorithms.Interpolation, logger logrus.FieldLogger) *ControlPanel {
	panel := &ControlPanel{
		store:         st,
		logger:        logger,
		sliders:       make(map[string]*widget.Slider),
		valueLabels:   make(map[string]*widget.Label),
		presetButtons: make(map[presets.Name]*widget.Button),
	}

	panel.initializeUI(interp)
	return panel
}

func (cp *ControlPanel) initializeUI(interp algorithms.Interpolation) {
	state := cp.store.State()

	adjustments := container.NewVBox()
	for _, info := range core.ParameterInfos() {
		adjustments.Add(cp.createParameterWidget(info, state.Params))
	}

	presetRow := container.NewGridWithColumns(3)
	for _, p := range presets.All() {
		name := p.Name
		btn := widget.NewButton(p.Label, func() {
			cp.applyPreset(name)
		})
		cp.presetButtons[name] = btn
		presetRow.Add(btn)
	}
	cp.highlightPreset(state.Preset)

	cp.resetButton = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() {
		cp.logger.Debug("Resetting all parameters")
		cp.store.ResetAll()
	})

	cp.interpSelect = widget.NewSelect(algorithms.InterpolationNames(), nil)
	cp.interpSelect.SetSelected(interp.String())
	cp.interpSelect.OnChanged = func(name string) {
		selected, err := algorithms.ParseInterpolation(name)
		if err != nil {
			cp.logger.WithError(err).Warn("Unknown interpolation selected")
			return
		}
		if cp.onInterpolationChanged != nil {
			cp.onInterpolationChanged(selected)
		}
	}

	cp.downloadBtn = widget.NewButtonWithIcon("Download Enhanced Image", theme.DocumentSaveIcon(), func() {
		if cp.onDownload != nil {
			cp.onDownload()
		}
	})
	cp.downloadBtn.Importance = widget.HighImportance

	content := container.NewVBox(
		widget.NewCard("Adjustments", "", adjustments),
		widget.NewCard("Filters", "", presetRow),
		widget.NewCard("Resampling", "", cp.interpSelect),
		container.NewGridWithColumns(2, cp.resetButton, cp.downloadBtn),
	)
	cp.container = container.NewVScroll(content)

	cp.Disable()
}

func (cp *ControlPanel) createParameterWidget(info core.ParameterInfo, params core.Params) fyne.CanvasObject {
	value, _ := params.Get(info.Name)

	slider := widget.NewSlider(info.Min, info.Max)
	slider.Step = info.Step
	slider.Value = value

	valueLabel := widget.NewLabel(info.FormatValue(value))
	field := info.Name
	slider.OnChanged = func(v float64) {
		// Steps of 0.1 accumulate float error.
		v = math.Round(v*100) / 100
		valueLabel.SetText(info.FormatValue(v))
		if cp.syncing {
			return
		}
		p, err := core.PartialOf(field, v)
		if err != nil {
			cp.logger.WithError(err).Error("Slider bound to unknown parameter")
			return
		}
		cp.store.Set(p)
	}

	cp.sliders[field] = slider
	cp.valueLabels[field] = valueLabel

	label := widget.NewLabelWithStyle(info.Label, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	return container.NewBorder(nil, nil, label, valueLabel, slider)
}

func (cp *ControlPanel) applyPreset(name presets.Name) {
	if err := cp.store.ApplyPreset(string(name)); err != nil {
		cp.logger.WithError(err).Error("Failed to apply preset")
		return
	}
	cp.logger.WithField("preset", name).Debug("Preset applied")
}

// SyncState moves the controls to state without writing back to the store.
func (cp *ControlPanel) SyncState(state store.State) {
	cp.syncing = true
	defer func() { cp.syncing = false }()

	for _, info := range core.ParameterInfos() {
		v, _ := state.Params.Get(info.Name)
		cp.sliders[info.Name].SetValue(v)
		// The slider clamps to its range; the label shows the real value.
		cp.valueLabels[info.Name].SetText(info.FormatValue(v))
	}
	cp.highlightPreset(state.Preset)
}

func (cp *ControlPanel) highlightPreset(active presets.Name) {
	for name, btn := range cp.presetButtons {
		if name == active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

func (cp *ControlPanel) SetCallbacks(onInterpolationChanged func(algorithms.Interpolation), onDownload func()) {
	cp.onInterpolationChanged = onInterpolationChanged
	cp.onDownload = onDownload
}

func (cp *ControlPanel) Enable() {
	cp.enabled = true
	for _, s := range cp.sliders {
		s.Enable()
	}
	for _, b := range cp.presetButtons {
		b.Enable()
	}
	cp.resetButton.Enable()
	cp.interpSelect.Enable()
	cp.downloadBtn.Enable()
}

func (cp *ControlPanel) Disable() {
	cp.enabled = false
	for _, s := range cp.sliders {
		s.Disable()
	}
	for _, b := range cp.presetButtons {
		b.Disable()
	}
	cp.resetButton.Disable()
	cp.interpSelect.Disable()
	cp.downloadBtn.Disable()
}

func (cp *ControlPanel) GetContainer() fyne.CanvasObject {
	return cp.container
}
