package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"runtime"
	"sync"
	"time"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

const (
	DefaultBannerHeight = 24
	DefaultFooterHeight = 24

	gridlineAlpha = 0x60
)

var (
	backgroundColor = color.RGBA{A: 0xff}
	gridlineColor   = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: gridlineAlpha}
)

// RenderConfig holds all configuration options for spectrum visualization
type RenderConfig struct {
	// Layout configuration
	BannerHeight int // Rows above the spectrum holding the title
	FooterHeight int // Rows below the spectrum holding the summary

	// Visual configuration
	FontSize     float64      // Font size in points
	ColorTheme   ColorTheme   // Color scheme for power values
	ColorMapSize int          // Number of colors in gradient (0 for default)
	Bounds       *PowerBounds // Display window, nil for the default window
	AutoBounds   bool         // Derive the display window from the samples

	// Gridline configuration
	Gridlines    bool
	MinGridlines int

	// Workers is the number of goroutines filling the spectrum rows,
	// 0 for GOMAXPROCS.
	Workers int

	// Now returns the generation time printed in the footer.
	Now func() time.Time
}

// SpectrumRenderer handles the visualization of radio spectrum data
type SpectrumRenderer struct {
	config RenderConfig
}

// NewSpectrumRenderer creates a new spectrum renderer with the given configuration
func NewSpectrumRenderer(config RenderConfig) (*SpectrumRenderer, error) {
	if config.BannerHeight < 0 || config.FooterHeight < 0 {
		return nil, fmt.Errorf("banner and footer heights must not be negative: %d, %d", config.BannerHeight, config.FooterHeight)
	}
	if config.Bounds != nil && !(config.Bounds.Min < config.Bounds.Max) {
		return nil, fmt.Errorf("minimum power %.1f dBm must be below maximum power %.1f dBm", config.Bounds.Min, config.Bounds.Max)
	}

	// Set defaults for zero values
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.ColorTheme == "" {
		config.ColorTheme = DefaultColorTheme
	}
	if config.MinGridlines <= 0 {
		config.MinGridlines = DefaultMinGridlines
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &SpectrumRenderer{config: config}, nil
}

// Render creates an image of the spectrum data with annotations. The image is
// steps pixels wide; every sweep is one row between the banner and the footer.
func (r *SpectrumRenderer) Render(doc *spectrum.Document, title string) (*image.RGBA, error) {
	if doc == nil || doc.Len() == 0 {
		return nil, errors.New("nothing to render")
	}

	spec := NewSpectrumData(doc)

	var gridlines []int
	if r.config.Gridlines {
		var err error
		gridlines, err = ComputeGridlines(spec.FrequencyMin, spec.FrequencyMax, spec.Width, r.config.MinGridlines)
		if err != nil {
			return nil, fmt.Errorf("computing gridlines: %w", err)
		}
	}

	height := r.config.BannerHeight + spec.Height + r.config.FooterHeight
	img := image.NewRGBA(image.Rect(0, 0, spec.Width, height))

	// Fill with black background
	draw.Draw(img, img.Bounds(), &image.Uniform{C: backgroundColor}, image.Point{}, draw.Src)

	// Define spectrum area (1:1 mapping)
	spectrumArea := image.Rect(0, r.config.BannerHeight, spec.Width, r.config.BannerHeight+spec.Height)

	colorMap := NewColorMapperWithSize(r.config.ColorTheme, r.Bounds(doc), r.config.ColorMapSize)
	r.renderSpectrum(img, spectrumArea, doc, colorMap)

	// Everything below reads back pixels, so the rows must be complete.
	drawGridlines(img, spectrumArea, gridlines)

	if r.config.BannerHeight == 0 && r.config.FooterHeight == 0 {
		return img, nil
	}

	ann, err := NewAnnotator(r.config.FontSize)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	if err = ann.Annotate(img, layout{
		banner: image.Rect(0, 0, spec.Width, r.config.BannerHeight),
		footer: image.Rect(0, spectrumArea.Max.Y, spec.Width, height),
	}, title, spec, r.config.Now()); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}

	return img, nil
}

// Bounds returns the display window used for doc.
func (r *SpectrumRenderer) Bounds(doc *spectrum.Document) PowerBounds {
	switch {
	case r.config.AutoBounds:
		return HistogramOf(doc).GetPercentileBounds()
	case r.config.Bounds != nil:
		return *r.config.Bounds
	default:
		return DefaultPowerBounds()
	}
}

// renderSpectrum draws the actual spectrum data using the color map. Rows are
// split between workers; each worker writes only its own rows.
func (r *SpectrumRenderer) renderSpectrum(img *image.RGBA, area image.Rectangle, doc *spectrum.Document, colorMap *ColorMapper) {
	rows := doc.Len()
	workers := min(r.config.Workers, rows)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(first int) {
			defer wg.Done()

			for y := first; y < rows; y += workers {
				imgY := area.Min.Y + y
				for x, power := range doc.Sweep(y) {
					img.SetRGBA(area.Min.X+x, imgY, colorMap.GetColor(power))
				}
			}
		}(w)
	}
	wg.Wait()
}

// drawGridlines blends one pixel wide vertical lines over the spectrum area.
func drawGridlines(img *image.RGBA, area image.Rectangle, columns []int) {
	src := &image.Uniform{C: gridlineColor}
	for _, x := range columns {
		line := image.Rect(area.Min.X+x, area.Min.Y, area.Min.X+x+1, area.Max.Y)
		draw.Draw(img, line, src, image.Point{}, draw.Over)
	}
}
