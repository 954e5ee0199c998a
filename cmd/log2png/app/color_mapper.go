package app

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for power visualization.
// Each theme is optimized for different visualization needs:
// - CubehelixTheme: Perceptually ordered, lightness grows with power
// - ClassicTheme: Traditional spectrum display (blue to red)
// - GrayscaleTheme: Monochrome visualization
// - JungleTheme: Nature-inspired colors for better contrast
// - ThermalTheme: Heat map visualization
// - MarineTheme: Water-depth inspired colors
type ColorTheme string

const (
	CubehelixTheme ColorTheme = "cubehelix" // Black to white with one hue rotation
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorTheme   = CubehelixTheme
	DefaultColorMapSize = 256 // Default number of colors in the map
)

// Cubehelix parameters, see D. A. Green (2011), "A colour scheme for the
// display of astronomical intensity images".
const (
	cubehelixStart     = 0.5
	cubehelixRotations = -1.5
	cubehelixHue       = 1.0
	cubehelixGamma     = 1.0
)

var colorThemes = map[ColorTheme]func(float64) colorful.Color{
	CubehelixTheme: cubehelix(cubehelixStart, cubehelixRotations, cubehelixHue, cubehelixGamma),
	ClassicTheme:   classic,
	GrayscaleTheme: grayscale,
	JungleTheme:    jungle,
	ThermalTheme:   thermal,
	MarineTheme:    marine,
}

// ParseColorTheme returns the theme with the given case-insensitive name.
func ParseColorTheme(name string) (ColorTheme, error) {
	theme := ColorTheme(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := colorThemes[theme]; !ok {
		return "", fmt.Errorf("unknown color theme: %s", name)
	}
	return theme, nil
}

// ColorMapper maps power readings in dBm to colors. Power is normalized to
// [0, 1] over the bounds and looked up in a pre-computed table. Values
// outside the bounds get the color of the nearest bound.
type ColorMapper struct {
	colorMap    []color.RGBA // Pre-computed colors
	theme       func(float64) colorful.Color
	themeName   ColorTheme
	size        int     // Cache size
	boundsMin   float64 // Cached bounds.Min
	boundsRange float64 // Cached bounds.Max - bounds.Min
}

// NewColorMapper creates a new color mapper with specified theme and bounds.
// Uses default size (256) for the color map.
func NewColorMapper(theme ColorTheme, bounds PowerBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a new color mapper with specified size.
// Size determines the number of pre-computed colors in the map. An unknown
// theme falls back to DefaultColorTheme.
func NewColorMapperWithSize(theme ColorTheme, bounds PowerBounds, size int) *ColorMapper {
	if size <= 1 {
		size = DefaultColorMapSize
	}

	fn, ok := colorThemes[theme]
	if !ok {
		theme = DefaultColorTheme
		fn = colorThemes[theme]
	}

	cm := &ColorMapper{
		colorMap:  make([]color.RGBA, size),
		theme:     fn,
		themeName: theme,
		size:      size,
	}
	for i := 0; i < cm.size; i++ {
		r, g, b := fn(float64(i) / float64(cm.size-1)).Clamped().RGB255()
		cm.colorMap[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds changes the power window. The color table does not depend on
// the bounds and is kept.
func (cm *ColorMapper) UpdateBounds(bounds PowerBounds) {
	cm.boundsMin = bounds.Min
	cm.boundsRange = bounds.Max - bounds.Min
}

// Normalize maps power onto [0, 1] over the current bounds.
func (cm *ColorMapper) Normalize(power float32) float64 {
	if !(cm.boundsRange > 0) {
		if float64(power) > cm.boundsMin {
			return 1
		}
		return 0
	}

	v := (float64(power) - cm.boundsMin) / cm.boundsRange
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 1:
		return 1
	}
	return v
}

// GetColor returns a color for the given power value
func (cm *ColorMapper) GetColor(power float32) color.RGBA {
	index := int(math.Round(cm.Normalize(power) * float64(cm.size-1)))
	return cm.colorMap[index]
}

// ThemeName returns the current color theme name
func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}

// Size returns the color map size
func (cm *ColorMapper) Size() int {
	return cm.size
}

// cubehelix returns a palette whose perceived lightness grows monotonically
// from black to white while the hue rotates around the color wheel.
func cubehelix(start, rotations, hue, gamma float64) func(float64) colorful.Color {
	return func(x float64) colorful.Color {
		xg := math.Pow(x, gamma)
		phi := 2 * math.Pi * (start/3 + rotations*x)
		amp := hue * xg * (1 - xg) / 2

		cos, sin := math.Cos(phi), math.Sin(phi)
		return colorful.Color{
			R: xg + amp*(-0.14861*cos+1.78277*sin),
			G: xg + amp*(-0.29227*cos-0.90649*sin),
			B: xg + amp*(1.97294*cos),
		}
	}
}

func classic(power float64) colorful.Color {
	return colorful.Hsv(
		240-(power*240),
		0.9+(power*0.1),
		math.Pow(power, 0.7),
	)
}

func grayscale(power float64) colorful.Color {
	v := math.Pow(power, 0.7)
	return colorful.Color{R: v, G: v, B: v}
}

func jungle(power float64) colorful.Color {
	return colorful.Hsv(
		120-(power*60),
		1.0,
		0.3+(math.Pow(power, 0.6)*0.7),
	)
}

func thermal(power float64) colorful.Color {
	switch {
	case power < 0.33:
		return colorful.Color{R: power * 3}
	case power < 0.66:
		return colorful.Color{R: 1, G: (power - 0.33) * 3}
	default:
		return colorful.Color{R: 1, G: 1, B: (power - 0.66) * 3}
	}
}

func marine(power float64) colorful.Color {
	return colorful.Hsv(
		240-(power*60),
		1.0-(power*0.8),
		0.3+(math.Pow(power, 0.6)*0.7),
	)
}
