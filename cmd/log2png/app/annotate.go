package app

import (
	"fmt"
	"image"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

const (
	dpi         float64 = 72
	hinting     string  = "full"
	fontSize    float64 = 12
	textPadding         = 4 // px between text and the image edge
)

// layout holds the text regions of the image.
type layout struct {
	banner image.Rectangle
	footer image.Rectangle
}

type Annotator struct {
	context  *freetype.Context
	fontFace font.Face
}

func NewAnnotator(size float64) (*Annotator, error) {
	parsedFont, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	var h font.Hinting
	switch hinting {
	case "full":
		h = font.HintingFull
	default:
		h = font.HintingNone
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(size)
	context.SetHinting(h)
	context.SetSrc(image.White)

	return &Annotator{
		context: context,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    size,
			DPI:     dpi,
			Hinting: h,
		}),
	}, nil
}

func (a *Annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

// Annotate draws the title left-aligned into the banner and the summary
// right-aligned into the footer. Empty regions are skipped.
func (a *Annotator) Annotate(img *image.RGBA, l layout, title string, spec *SpectrumData, now time.Time) error {
	a.context.SetDst(img)

	ops := []struct {
		msg    string
		region image.Rectangle
		fn     func(image.Rectangle) error
	}{
		{"drawing banner", l.banner, func(r image.Rectangle) error {
			return a.drawText(r, title, false)
		}},
		{"drawing footer", l.footer, func(r image.Rectangle) error {
			return a.drawText(r, Summary(spec, now), true)
		}},
	}
	for _, op := range ops {
		if op.region.Empty() {
			continue
		}
		if err := op.fn(op.region); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

// drawText draws a single line vertically centered in region, clipped to it.
func (a *Annotator) drawText(region image.Rectangle, text string, alignRight bool) error {
	if text == "" {
		return nil
	}

	a.context.SetClip(region)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := region.Min.Y + (region.Dy()+fontHeight)/2 - metrics.Descent.Round()

	textX := region.Min.X + textPadding
	if alignRight {
		width := font.MeasureString(a.fontFace, text).Round()
		textX = region.Max.X - textPadding - width
	}

	_, err := a.context.DrawString(text, freetype.Pt(textX, textY))
	return err
}

// Summary describes the rendered document in a single line.
func Summary(spec *SpectrumData, now time.Time) string {
	return fmt.Sprintf("%s - %s, %s sweeps x %s steps, RBW %s, generated %s",
		humanHz(spec.FrequencyMin),
		humanHz(spec.FrequencyMax),
		humanize.Comma(int64(spec.Height)),
		humanize.Comma(int64(spec.Width)),
		humanHz(spec.RBW),
		spectrum.FormatTimestamp(now))
}

func humanHz(hz float64) string {
	fpxSI, fpxSuffix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.2f %sHz", fpxSI, fpxSuffix)
}
