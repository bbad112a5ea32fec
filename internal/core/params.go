package core

import (
	"fmt"
	"math"
	"strconv"
)

// Parameter names, shared by the GUI, the CLI flags and the config file.
const (
	FieldScale      = "scale"
	FieldBrightness = "brightness"
	FieldContrast   = "contrast"
	FieldSaturation = "saturation"
	FieldSharpness  = "sharpness"
)

// MinScale is the smallest effective scale factor; smaller positive values are clamped to it.
const MinScale = 0.01

// MaxScale bounds the scale factor independently of the source size.
const MaxScale = 100

// Params is the enhancement parameter vector.
type Params struct {
	Scale      float64 `json:"scale" toml:"scale"`
	Brightness float64 `json:"brightness" toml:"brightness"`
	Contrast   float64 `json:"contrast" toml:"contrast"`
	Saturation float64 `json:"saturation" toml:"saturation"`
	Sharpness  float64 `json:"sharpness" toml:"sharpness"`
}

// DefaultParams returns the neutral vector (1, 1, 1, 1, 0).
func DefaultParams() Params {
	return Params{
		Scale:      1,
		Brightness: 1,
		Contrast:   1,
		Saturation: 1,
		Sharpness:  0,
	}
}

// Validate checks every field against its domain.
func (p Params) Validate() error {
	if err := checkField(FieldScale, p.Scale); err != nil {
		return err
	}
	if p.Scale <= 0 {
		return &ParamError{Field: FieldScale, Value: p.Scale, Reason: "must be greater than 0"}
	}
	if p.Scale > MaxScale {
		return &ParamError{Field: FieldScale, Value: p.Scale, Reason: fmt.Sprintf("must not exceed %d", MaxScale)}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{FieldBrightness, p.Brightness},
		{FieldContrast, p.Contrast},
		{FieldSaturation, p.Saturation},
		{FieldSharpness, p.Sharpness},
	} {
		if err := checkField(f.name, f.value); err != nil {
			return err
		}
		if f.value < 0 {
			return &ParamError{Field: f.name, Value: f.value, Reason: "must not be negative"}
		}
	}
	return nil
}

func checkField(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ParamError{Field: name, Value: v, Reason: "must be a finite number"}
	}
	return nil
}

// EffectiveScale clamps the scale factor to MinScale.
func (p Params) EffectiveScale() float64 {
	if p.Scale < MinScale {
		return MinScale
	}
	return p.Scale
}

// NeutralTone reports whether brightness, contrast and saturation leave pixels unchanged.
func (p Params) NeutralTone() bool {
	return p.Brightness == 1 && p.Contrast == 1 && p.Saturation == 1
}

// Get returns a field by name.
func (p Params) Get(field string) (float64, bool) {
	switch field {
	case FieldScale:
		return p.Scale, true
	case FieldBrightness:
		return p.Brightness, true
	case FieldContrast:
		return p.Contrast, true
	case FieldSaturation:
		return p.Saturation, true
	case FieldSharpness:
		return p.Sharpness, true
	}
	return 0, false
}

// Merge overwrites the fields set in o.
func (p Params) Merge(o Partial) Params {
	if o.Scale != nil {
		p.Scale = *o.Scale
	}
	if o.Brightness != nil {
		p.Brightness = *o.Brightness
	}
	if o.Contrast != nil {
		p.Contrast = *o.Contrast
	}
	if o.Saturation != nil {
		p.Saturation = *o.Saturation
	}
	if o.Sharpness != nil {
		p.Sharpness = *o.Sharpness
	}
	return p
}

func (p Params) String() string {
	return fmt.Sprintf("scale=%g brightness=%g contrast=%g saturation=%g sharpness=%g",
		p.Scale, p.Brightness, p.Contrast, p.Saturation, p.Sharpness)
}

// Partial is a sparse parameter update. Nil fields are left untouched by Merge.
type Partial struct {
	Scale      *float64
	Brightness *float64
	Contrast   *float64
	Saturation *float64
	Sharpness  *float64
}

// Float returns a pointer to v, for building Partial literals.
func Float(v float64) *float64 { return &v }

// PartialOf builds a single-field update.
func PartialOf(field string, v float64) (Partial, error) {
	var p Partial
	switch field {
	case FieldScale:
		p.Scale = Float(v)
	case FieldBrightness:
		p.Brightness = Float(v)
	case FieldContrast:
		p.Contrast = Float(v)
	case FieldSaturation:
		p.Saturation = Float(v)
	case FieldSharpness:
		p.Sharpness = Float(v)
	default:
		return p, &ParamError{Field: field, Value: v, Reason: "unknown parameter"}
	}
	return p, nil
}

// Validate checks the set fields the same way Params.Validate does.
func (o Partial) Validate() error {
	return DefaultParams().Merge(o).Validate()
}

// IsEmpty reports whether no field is set.
func (o Partial) IsEmpty() bool {
	return o.Scale == nil && o.Brightness == nil && o.Contrast == nil && o.Saturation == nil && o.Sharpness == nil
}

// ParameterInfo describes one parameter for control generation.
type ParameterInfo struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Step        float64 `json:"step"`
	Default     float64 `json:"default"`
	Description string  `json:"description"`
	Percent     bool    `json:"percent"`
}

// FormatValue renders a value the way the controls display it: "1.5x" for
// the scale factor and a rounded percentage for everything else.
func (pi ParameterInfo) FormatValue(v float64) string {
	if !pi.Percent {
		return strconv.FormatFloat(v, 'f', -1, 64) + "x"
	}
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

// ParameterInfos lists the parameters in display order.
func ParameterInfos() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        FieldScale,
			Label:       "Scale",
			Min:         0.1,
			Max:         3.0,
			Step:        0.1,
			Default:     1.0,
			Description: "Output size relative to the source",
		},
		{
			Name:        FieldBrightness,
			Label:       "Brightness",
			Min:         0,
			Max:         2.0,
			Step:        0.1,
			Default:     1.0,
			Description: "Channel multiplier",
			Percent:     true,
		},
		{
			Name:        FieldContrast,
			Label:       "Contrast",
			Min:         0,
			Max:         2.0,
			Step:        0.1,
			Default:     1.0,
			Description: "Spread around mid-gray",
			Percent:     true,
		},
		{
			Name:        FieldSaturation,
			Label:       "Saturation",
			Min:         0,
			Max:         2.0,
			Step:        0.1,
			Default:     1.0,
			Description: "Blend between grayscale and oversaturated color",
			Percent:     true,
		},
		{
			Name:        FieldSharpness,
			Label:       "Sharpness",
			Min:         0,
			Max:         1.0,
			Step:        0.1,
			Default:     0,
			Description: "Strength of the 3x3 sharpening kernel",
			Percent:     true,
		},
	}
}

// LookupParameter finds the description of a parameter by name.
func LookupParameter(name string) (ParameterInfo, bool) {
	for _, pi := range ParameterInfos() {
		if pi.Name == name {
			return pi, true
		}
	}
	return ParameterInfo{}, false
}
