// Package pipeline turns a source raster and a parameter vector into the
// enhanced output, and drives re-rendering for an interactive session.
package pipeline

import (
	"fmt"

	"image-enhancer/internal/algorithms"
	"image-enhancer/internal/core"
)

// Stage names, in execution order.
const (
	StageResize  = "resize"
	StageTone    = "tone"
	StageSharpen = "sharpen"
	StageSepia   = "sepia"
)

// RenderOptions tunes a Render call.
type RenderOptions struct {
	// Sepia enables the final sepia remap.
	Sepia bool
	// Interpolation selects the resize kernel.
	Interpolation algorithms.Interpolation
	// OnStage, if set, sees every stage result that was produced. It must not
	// modify the raster.
	OnStage func(stage string, r *core.Raster)
}

// ProcessingStep is one stage of the fixed enhancement order.
type ProcessingStep struct {
	Name    string
	Enabled bool
	Apply   func(*core.Raster) *core.Raster
}

// Steps builds the stage list for p. Disabled steps stay in the list so
// callers can report them.
func Steps(p core.Params, o RenderOptions) []ProcessingStep {
	scale := p.EffectiveScale()
	return []ProcessingStep{
		{
			Name:    StageResize,
			Enabled: true,
			Apply: func(r *core.Raster) *core.Raster {
				w, h := algorithms.TargetSize(r.Width, r.Height, scale)
				return algorithms.Resize(r, w, h, o.Interpolation)
			},
		},
		{
			Name:    StageTone,
			Enabled: !p.NeutralTone(),
			Apply: func(r *core.Raster) *core.Raster {
				return algorithms.AdjustTone(r, p.Brightness, p.Contrast, p.Saturation)
			},
		},
		{
			Name:    StageSharpen,
			Enabled: p.Sharpness > 0,
			Apply: func(r *core.Raster) *core.Raster {
				return algorithms.Sharpen(r, p.Sharpness)
			},
		},
		{
			Name:    StageSepia,
			Enabled: o.Sepia,
			Apply:   algorithms.Sepia,
		},
	}
}

// Render runs resize, tone, sharpen and sepia over src and returns a new
// raster. src is never modified. Zero-area sources fail with
// core.ErrInvalidSource; non-finite or negative parameters, and scales whose
// output would exceed core.MaxDimension, with core.ErrInvalidParameter.
func Render(src *core.Raster, p core.Params, opts ...func(*RenderOptions)) (*core.Raster, error) {
	if err := src.ValidateSource(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if w, h := algorithms.TargetSize(src.Width, src.Height, p.EffectiveScale()); w > core.MaxDimension || h > core.MaxDimension {
		return nil, &core.ParamError{
			Field:  core.FieldScale,
			Value:  p.Scale,
			Reason: fmt.Sprintf("output %d × %d exceeds %d px", w, h, core.MaxDimension),
		}
	}

	o := RenderOptions{Interpolation: algorithms.Bilinear}
	for _, opt := range opts {
		opt(&o)
	}

	current := src
	for _, step := range Steps(p, o) {
		if !step.Enabled {
			continue
		}
		current = step.Apply(current)
		if o.OnStage != nil {
			o.OnStage(step.Name, current)
		}
	}
	return current, nil
}

// WithSepia sets the sepia remap flag.
func WithSepia(on bool) func(*RenderOptions) {
	return func(o *RenderOptions) { o.Sepia = on }
}

// WithInterpolation selects the resize kernel.
func WithInterpolation(interp algorithms.Interpolation) func(*RenderOptions) {
	return func(o *RenderOptions) { o.Interpolation = interp }
}

// WithStageHook installs a per-stage observer.
func WithStageHook(fn func(stage string, r *core.Raster)) func(*RenderOptions) {
	return func(o *RenderOptions) { o.OnStage = fn }
}
