package app

import (
	"math"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

const (
	DefaultMinPower = -120.0 // dBm
	DefaultMaxPower = -20.0  // dBm

	// For 20 samples:
	// - 5% percentile  = 1 sample
	// - 95% percentile = 19th sample
	minimumSampleCount = 20

	minimumWindow = 30 // dB
)

// PowerBounds represents the display window of power values
type PowerBounds struct {
	Min  float64 // Lower bound in dBm, rendered with the first palette color
	Max  float64 // Upper bound in dBm, rendered with the last palette color
	Mean float64 // Mean power level in dBm
}

// DefaultPowerBounds returns the fixed −120..−20 dBm window.
func DefaultPowerBounds() PowerBounds {
	return PowerBounds{
		Min:  DefaultMinPower,
		Max:  DefaultMaxPower,
		Mean: (DefaultMinPower + DefaultMaxPower) / 2,
	}
}

// PowerHistogram maintains a histogram of power values with 1dBm bins
type PowerHistogram struct {
	bins       map[int]uint32 // Map of bin index to count
	totalCount uint64         // Total number of samples
	sum        float64        // Sum of all samples, for the mean
	minBin     int            // Cache for min bin
	maxBin     int            // Cache for max bin
}

// NewPowerHistogram creates a new histogram
func NewPowerHistogram() *PowerHistogram {
	return &PowerHistogram{
		bins:   make(map[int]uint32),
		minBin: math.MaxInt32,
		maxBin: math.MinInt32,
	}
}

// HistogramOf builds a histogram over every sample of doc.
func HistogramOf(doc *spectrum.Document) *PowerHistogram {
	h := NewPowerHistogram()
	for _, p := range doc.Samples {
		h.Update(p)
	}
	return h
}

// getBinIndex converts power value to bin index
func getBinIndex(power float32) int {
	return int(math.Floor(float64(power))) // 1dBm bins
}

// Update adds new power reading to the histogram
func (h *PowerHistogram) Update(power float32) {
	if math.IsNaN(float64(power)) || math.IsInf(float64(power), 0) {
		return
	}

	bin := getBinIndex(power)

	h.bins[bin]++
	h.totalCount++
	h.sum += float64(power)

	if bin < h.minBin {
		h.minBin = bin
	}
	if bin > h.maxBin {
		h.maxBin = bin
	}
}

// Count returns the number of samples in the histogram
func (h *PowerHistogram) Count() uint64 {
	return h.totalCount
}

// Clear resets the histogram
func (h *PowerHistogram) Clear() {
	h.bins = make(map[int]uint32)
	h.totalCount = 0
	h.sum = 0
	h.minBin = math.MaxInt32
	h.maxBin = math.MinInt32
}

// GetPercentileBounds returns power bounds based on the 5th and 95th
// percentiles, widened to at least 30 dB plus a 10% margin. With fewer than
// 20 samples the default window is returned.
func (h *PowerHistogram) GetPercentileBounds() PowerBounds {
	if h.totalCount < minimumSampleCount { // Require minimum samples
		return DefaultPowerBounds()
	}

	// Calculate target counts for 5th and 95th percentiles
	target5th := h.totalCount * 5 / 100

	// Find the bins corresponding to these percentiles
	var count uint64
	var min5th, max95th int

	// Find 5th percentile
	for bin := h.minBin; bin <= h.maxBin; bin++ {
		count += uint64(h.bins[bin])
		if count >= target5th {
			min5th = bin
			break
		}
	}

	// Find 95th percentile
	count = 0
	for bin := h.maxBin; bin >= h.minBin; bin-- {
		count += uint64(h.bins[bin])
		if count >= target5th {
			max95th = bin
			break
		}
	}

	// Ensure minimum range of 30dB
	if max95th-min5th < minimumWindow {
		center := (max95th + min5th) / 2
		min5th = center - minimumWindow/2
		max95th = center + minimumWindow/2
	}

	// Add small margin
	margin := (max95th - min5th) * 1 / 10 // 10% margin

	return PowerBounds{
		Min:  float64(min5th - margin),
		Max:  float64(max95th + margin),
		Mean: h.sum / float64(h.totalCount),
	}
}
