// Resampling registry used by the resize stage
package algorithms

import (
	"fmt"
	"sort"
	"strings"

	"image-enhancer/internal/core"
)

// Interpolation selects the resampling kernel of the resize stage.
type Interpolation int

const (
	// Bilinear is the default: smooth and exact at integer ratios.
	Bilinear Interpolation = iota
	NearestNeighbor
	ApproxBilinear
	CatmullRom
	MitchellNetravali
	Lanczos3
)

// InterpolationInfo describes a resampler for UI generation.
type InterpolationInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var interpolations = make(map[string]Interpolation)
var interpolationInfo = make(map[Interpolation]InterpolationInfo)

func Register(name string, interp Interpolation, description string) {
	interpolations[name] = interp
	interpolationInfo[interp] = InterpolationInfo{Name: name, Description: description}
}

// ParseInterpolation resolves a registered name, case-insensitively.
func ParseInterpolation(name string) (Interpolation, error) {
	interp, exists := interpolations[strings.ToLower(strings.TrimSpace(name))]
	if !exists {
		return Bilinear, fmt.Errorf("%w: interpolation not found: %s", core.ErrInvalidParameter, name)
	}
	return interp, nil
}

func (i Interpolation) String() string {
	if info, ok := interpolationInfo[i]; ok {
		return info.Name
	}
	return fmt.Sprintf("interpolation(%d)", int(i))
}

func (i Interpolation) Description() string {
	return interpolationInfo[i].Description
}

// InterpolationNames lists registered names in declaration order.
func InterpolationNames() []string {
	all := make([]Interpolation, 0, len(interpolationInfo))
	for interp := range interpolationInfo {
		all = append(all, interp)
	}
	sort.Slice(all, func(a, b int) bool { return all[a] < all[b] })

	names := make([]string, len(all))
	for i, interp := range all {
		names[i] = interp.String()
	}
	return names
}

func init() {
	Register("bilinear", Bilinear, "Bilinear interpolation (default)")
	Register("nearest", NearestNeighbor, "Nearest neighbor, blocky but fast")
	Register("approx-bilinear", ApproxBilinear, "Fast approximation of bilinear")
	Register("catmull-rom", CatmullRom, "Catmull-Rom cubic, sharper edges")
	Register("mitchell", MitchellNetravali, "Mitchell-Netravali cubic")
	Register("lanczos3", Lanczos3, "Lanczos with a=3, best for downscaling")
}
