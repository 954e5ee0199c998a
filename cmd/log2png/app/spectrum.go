package app

import (
	"time"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

// SpectrumData summarizes a document for annotation and logging.
type SpectrumData struct {
	Width, Height                int // body size in pixels: steps x records
	FrequencyMin, FrequencyMax   float64
	RBW                          float64 // Hz
	TimestampStart, TimestampEnd time.Time
}

func NewSpectrumData(doc *spectrum.Document) *SpectrumData {
	first, last := doc.First(), doc.Last()

	return &SpectrumData{
		Width:          doc.Steps(),
		Height:         doc.Len(),
		FrequencyMin:   first.StartFreqHz(),
		FrequencyMax:   first.StopFreqHz(),
		RBW:            float64(first.RBWkHz) * 1e3,
		TimestampStart: first.StartTime,
		TimestampEnd:   last.EndTime,
	}
}

// HzPerPixel returns the frequency resolution of one pixel column.
func (s *SpectrumData) HzPerPixel() float64 {
	if s.Width <= 1 {
		return s.FrequencyMax - s.FrequencyMin
	}
	return (s.FrequencyMax - s.FrequencyMin) / float64(s.Width-1)
}
