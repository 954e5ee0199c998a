package app

import (
	"fmt"
	"math"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

const (
	DefaultMinGridlines = 6

	// largest spacing exponent tried, 10^11 Hz = 100 GHz
	maxSpacingExponent = 11
)

// niceMultipliers are tried in order for each power of ten.
var niceMultipliers = [...]float64{5, 2, 1}

// GridSpacing returns the largest 1, 2 or 5 times power of ten spacing in Hz,
// not above 500 GHz, that fits at least minLines times into freqRange. When
// no such spacing down to 1 Hz exists, 1 Hz is returned.
func GridSpacing(freqRange float64, minLines int) float64 {
	for e := maxSpacingExponent; e >= 0; e-- {
		p := math.Pow10(e)
		for _, m := range niceMultipliers {
			spacing := m * p
			if freqRange/spacing >= float64(minLines) {
				return spacing
			}
		}
	}
	return 1
}

// ComputeGridlines returns the pixel columns of vertical gridlines for a sweep
// of steps points between startHz and stopHz, right to left. Columns are
// strictly decreasing and within [0, steps). Gridlines that would fall onto
// an already used column are dropped.
func ComputeGridlines(startHz, stopHz float64, steps, minLines int) ([]int, error) {
	if steps <= 1 {
		return nil, &spectrum.FormatError{
			Kind:     spectrum.ErrDegenerateSteps,
			Expected: "at least 2 steps",
			Got:      fmt.Sprint(steps),
		}
	}
	if !(startHz < stopHz) {
		return nil, fmt.Errorf("start frequency %v Hz must be below stop frequency %v Hz", startHz, stopHz)
	}
	if minLines <= 0 {
		minLines = DefaultMinGridlines
	}

	freqRange := stopHz - startHz
	spacing := GridSpacing(freqRange, minLines)
	hzPerStep := freqRange / float64(steps-1)

	anchor := math.Floor(stopHz/spacing) * spacing
	count := int(freqRange/spacing) + 1

	lines := make([]int, 0, min(count, steps))
	for i := 0; i < count; i++ {
		freq := anchor - float64(i)*spacing
		if freq < startHz {
			break
		}

		px := int(math.Round((freq - startHz) / hzPerStep))
		px = max(0, min(px, steps-1))

		if n := len(lines); n > 0 && px >= lines[n-1] {
			continue
		}
		lines = append(lines, px)
		if px == 0 {
			break
		}
	}
	return lines, nil
}
