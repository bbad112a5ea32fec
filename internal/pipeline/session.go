package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"image-enhancer/internal/algorithms"
	"image-enhancer/internal/core"
	"image-enhancer/internal/store"
)

// Evaluator scores an enhanced output against the plain resized source.
type Evaluator interface {
	Evaluate(reference, output *core.Raster) (map[string]float64, error)
}

// Result is what a finished render reports to the preview callback.
type Result struct {
	Output   *core.Raster
	State    store.State
	Metrics  map[string]float64
	Duration time.Duration
}

// Session re-renders the current source whenever the store changes. At most
// one render runs at a time; changes that arrive during a render are folded
// into one follow-up render with the latest state.
type Session struct {
	mu        sync.Mutex
	imageData *core.ImageData
	store     *store.Store
	logger    logrus.FieldLogger

	interp    algorithms.Interpolation
	evaluator Evaluator

	// Callbacks run on the rendering goroutine.
	onPreviewUpdate func(Result)
	onError         func(error)

	rendering bool
	pending   bool
	last      Result
}

// NewSession subscribes to st. A nil logger discards output.
func NewSession(st *store.Store, logger logrus.FieldLogger) *Session {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	s := &Session{
		imageData: core.NewImageData(),
		store:     st,
		logger:    logger,
		interp:    algorithms.Bilinear,
	}
	st.Subscribe(func(state store.State) {
		s.logger.WithFields(logrus.Fields{
			"params": state.Params.String(),
			"preset": state.Preset,
			"sepia":  state.Sepia,
		}).Debug("SESSION: parameters changed")
		s.requestRender()
	})
	return s
}

// SetCallbacks sets preview update and error callbacks
func (s *Session) SetCallbacks(onPreviewUpdate func(Result), onError func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPreviewUpdate = onPreviewUpdate
	s.onError = onError
}

func (s *Session) Store() *store.Store {
	return s.store
}

// Load replaces the source raster and renders it with the current parameters.
func (s *Session) Load(src *core.Raster, meta core.ImageMetadata) error {
	if err := s.imageData.SetOriginal(src, meta); err != nil {
		s.logger.WithError(err).Warn("SESSION: rejected source image")
		return fmt.Errorf("load %q: %w", meta.Name, err)
	}

	s.mu.Lock()
	s.last = Result{}
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"name":   meta.Name,
		"origin": meta.Origin,
		"width":  src.Width,
		"height": src.Height,
	}).Info("SESSION: source image loaded")

	s.requestRender()
	return nil
}

// Refresh renders again with the current state.
func (s *Session) Refresh() {
	s.requestRender()
}

// SetInterpolation changes the resize kernel and re-renders.
func (s *Session) SetInterpolation(interp algorithms.Interpolation) {
	s.mu.Lock()
	changed := s.interp != interp
	s.interp = interp
	s.mu.Unlock()

	if changed {
		s.logger.WithField("interpolation", interp.String()).Info("SESSION: interpolation changed")
		s.requestRender()
	}
}

func (s *Session) Interpolation() algorithms.Interpolation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interp
}

// SetEvaluator enables quality metrics for subsequent renders. Nil disables them.
func (s *Session) SetEvaluator(e Evaluator) {
	s.mu.Lock()
	s.evaluator = e
	s.mu.Unlock()
}

// Output returns the last rendered raster, or nil before the first render.
func (s *Session) Output() *core.Raster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Output
}

// LastResult returns the most recent successful render.
func (s *Session) LastResult() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Session) Source() *core.Raster {
	return s.imageData.GetOriginal()
}

func (s *Session) Metadata() core.ImageMetadata {
	return s.imageData.GetMetadata()
}

func (s *Session) HasImage() bool {
	return s.imageData.HasImage()
}

// Clear drops the source and the last output.
func (s *Session) Clear() {
	s.imageData.Clear()
	s.mu.Lock()
	s.last = Result{}
	s.mu.Unlock()
	s.logger.Debug("SESSION: cleared")
}

func (s *Session) requestRender() {
	s.mu.Lock()
	if s.rendering {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.rendering = true
	s.mu.Unlock()

	for {
		s.render()

		s.mu.Lock()
		again := s.pending
		s.pending = false
		if !again {
			s.rendering = false
		}
		s.mu.Unlock()

		if !again {
			return
		}
	}
}

func (s *Session) render() {
	src := s.imageData.GetOriginal()
	if src == nil {
		s.logger.Debug("SESSION: no image loaded, skipping render")
		return
	}

	state := s.store.State()
	s.mu.Lock()
	interp := s.interp
	evaluator := s.evaluator
	s.mu.Unlock()

	start := time.Now()
	out, err := Render(src, state.Params,
		WithSepia(state.Sepia),
		WithInterpolation(interp),
		WithStageHook(s.logStage),
	)
	if err != nil {
		s.logger.WithError(err).WithField("params", state.Params.String()).Error("SESSION: render failed")
		s.fail(fmt.Errorf("render failed: %w", err))
		return
	}
	if err := s.imageData.SetProcessed(out); err != nil {
		// The source was cleared while rendering.
		s.logger.WithError(err).Debug("SESSION: dropping render result")
		return
	}
	duration := time.Since(start)

	result := Result{Output: out, State: state, Duration: duration}
	if evaluator != nil {
		result.Metrics = s.evaluate(evaluator, src, state.Params, interp, out)
	}

	s.logger.WithFields(logrus.Fields{
		"width":       out.Width,
		"height":      out.Height,
		"duration_ms": duration.Milliseconds(),
		"preset":      state.Preset,
	}).Debug("SESSION: render complete")

	s.mu.Lock()
	s.last = result
	callback := s.onPreviewUpdate
	s.mu.Unlock()

	if callback != nil {
		callback(result)
	}
}

func (s *Session) logStage(stage string, r *core.Raster) {
	s.logger.WithFields(logrus.Fields{
		"stage":  stage,
		"width":  r.Width,
		"height": r.Height,
	}).Debug("SESSION: stage applied")
}

// evaluate scores out against the source resized with the same kernel and
// no further enhancement. Metric failures are logged, never fatal.
func (s *Session) evaluate(e Evaluator, src *core.Raster, p core.Params, interp algorithms.Interpolation, out *core.Raster) map[string]float64 {
	refParams := core.DefaultParams()
	refParams.Scale = p.Scale

	reference, err := Render(src, refParams, WithInterpolation(interp))
	if err != nil {
		s.logger.WithError(err).Warn("SESSION: cannot build metrics reference")
		return nil
	}
	m, err := e.Evaluate(reference, out)
	if err != nil {
		s.logger.WithError(err).Warn("SESSION: metrics failed")
		return nil
	}
	s.logger.WithFields(logrus.Fields{
		"psnr": m["psnr"],
		"ssim": m["ssim"],
	}).Debug("SESSION: metrics calculated")
	return m
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	callback := s.onError
	s.mu.Unlock()
	if callback != nil {
		callback(err)
	}
}
