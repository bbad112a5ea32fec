// Package presets maps named looks to parameter overrides.
package presets

import (
	"fmt"
	"strings"

	"image-enhancer/internal/core"
)

// Name identifies a preset.
type Name string

const (
	None       Name = "none"
	Vintage    Name = "vintage"
	BlackWhite Name = "blackwhite"
	Sepia      Name = "sepia"
	Vibrant    Name = "vibrant"
)

// ErrUnknownPreset is returned by Resolve for names outside the table.
var ErrUnknownPreset = fmt.Errorf("%w: unknown preset", core.ErrInvalidParameter)

// Preset is a partial parameter override plus the sepia remap flag.
// Presets never touch the scale factor.
type Preset struct {
	Name        Name
	Label       string
	Description string
	Override    core.Partial
	ApplySepia  bool
}

var order = []Name{None, Vintage, BlackWhite, Sepia, Vibrant}

func table(name Name) (Preset, bool) {
	switch name {
	case None:
		return Preset{
			Name:        None,
			Label:       "None",
			Description: "Neutral tone, no sharpening",
			Override: core.Partial{
				Brightness: core.Float(1),
				Contrast:   core.Float(1),
				Saturation: core.Float(1),
				Sharpness:  core.Float(0),
			},
		}, true
	case Vintage:
		return Preset{
			Name:        Vintage,
			Label:       "Vintage",
			Description: "Warm, slightly faded",
			Override: core.Partial{
				Brightness: core.Float(1.1),
				Contrast:   core.Float(1.2),
				Saturation: core.Float(0.8),
			},
		}, true
	case BlackWhite:
		return Preset{
			Name:        BlackWhite,
			Label:       "B&W",
			Description: "Luminance only, extra contrast",
			Override: core.Partial{
				Contrast:   core.Float(1.2),
				Saturation: core.Float(0),
			},
		}, true
	case Sepia:
		return Preset{
			Name:        Sepia,
			Label:       "Sepia",
			Description: "Muted tone with a brown remap",
			Override: core.Partial{
				Brightness: core.Float(1.1),
				Contrast:   core.Float(1.1),
				Saturation: core.Float(0.6),
			},
			ApplySepia: true,
		}, true
	case Vibrant:
		return Preset{
			Name:        Vibrant,
			Label:       "Vibrant",
			Description: "Punchy color and contrast",
			Override: core.Partial{
				Brightness: core.Float(1.1),
				Contrast:   core.Float(1.3),
				Saturation: core.Float(1.4),
			},
		}, true
	}
	return Preset{}, false
}

// Resolve looks a preset up by name, ignoring case and surrounding space.
func Resolve(name string) (Preset, error) {
	p, ok := table(Name(strings.ToLower(strings.TrimSpace(name))))
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// Names lists the presets in display order.
func Names() []Name {
	out := make([]Name, len(order))
	copy(out, order)
	return out
}

// All returns every preset in display order.
func All() []Preset {
	out := make([]Preset, 0, len(order))
	for _, n := range order {
		p, _ := table(n)
		out = append(out, p)
	}
	return out
}
