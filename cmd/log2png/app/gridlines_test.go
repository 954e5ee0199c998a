package app

import (
	"errors"
	"testing"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

func TestGridSpacing(t *testing.T) {
	testCases := []struct {
		name      string
		freqRange float64
		minLines  int
		expected  float64
	}{
		{"HF band", 29e6, 6, 2e6},
		{"100 MHz", 100e6, 6, 10e6},
		{"wide range", 1e12, 6, 1e11},
		{"exactly six hertz", 6, 6, 1},
		{"too narrow", 3, 6, 1},
		{"fewer lines", 29e6, 2, 10e6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GridSpacing(tc.freqRange, tc.minLines); got != tc.expected {
				t.Errorf("Expected spacing %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestComputeGridlines(t *testing.T) {
	lines, err := ComputeGridlines(1e6, 30e6, 30, DefaultMinGridlines)
	if err != nil {
		t.Fatalf("Failed to compute gridlines: %v", err)
	}

	// 2 MHz spacing, one step per MHz: 30 MHz is column 29, 2 MHz is column 1
	var expected []int
	for px := 29; px >= 1; px -= 2 {
		expected = append(expected, px)
	}

	if len(lines) != len(expected) {
		t.Fatalf("Expected %d gridlines, got %d: %v", len(expected), len(lines), lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("Gridline %d: expected column %d, got %d", i, expected[i], lines[i])
		}
	}
}

func TestComputeGridlines_Properties(t *testing.T) {
	testCases := []struct {
		name          string
		start, stop   float64
		steps         int
		minLines      int
		enoughColumns bool
	}{
		{"HF", 1e6, 30e6, 10_000, 6, true},
		{"FM broadcast", 88e6, 108e6, 2_000, 6, true},
		{"ISM 433", 433.05e6, 434.79e6, 1_000, 6, true},
		{"ISM 2.4", 2.4e9, 2.5e9, 290, 6, true},
		{"full range", 0, 6e9, 20_000, 6, true},
		{"hundred hertz", 100, 200, 10_000, 6, true},
		{"many lines", 1e6, 30e6, 10_000, 40, true},
		{"fewer columns than lines", 1e6, 30e6, 4, 6, false},
		{"two steps", 1e6, 30e6, 2, 6, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lines, err := ComputeGridlines(tc.start, tc.stop, tc.steps, tc.minLines)
			if err != nil {
				t.Fatalf("Failed to compute gridlines: %v", err)
			}

			if tc.enoughColumns && len(lines) < tc.minLines {
				t.Errorf("Expected at least %d gridlines, got %d", tc.minLines, len(lines))
			}
			for i, px := range lines {
				if px < 0 || px >= tc.steps {
					t.Errorf("Gridline %d at column %d is outside [0, %d)", i, px, tc.steps)
				}
				if i > 0 && px >= lines[i-1] {
					t.Errorf("Gridlines are not strictly decreasing: %v", lines)
					break
				}
			}
		})
	}
}

func TestComputeGridlines_Errors(t *testing.T) {
	for _, steps := range []int{-1, 0, 1} {
		_, err := ComputeGridlines(1e6, 30e6, steps, DefaultMinGridlines)
		if !errors.Is(err, spectrum.ErrDegenerateSteps) {
			t.Errorf("steps=%d: expected ErrDegenerateSteps, got %v", steps, err)
		}

		var fe *spectrum.FormatError
		if !errors.As(err, &fe) {
			t.Errorf("steps=%d: expected *spectrum.FormatError, got %T", steps, err)
		}
	}

	if _, err := ComputeGridlines(30e6, 1e6, 100, DefaultMinGridlines); err == nil {
		t.Error("Expected error for inverted frequency range")
	}
	if _, err := ComputeGridlines(1e6, 1e6, 100, DefaultMinGridlines); err == nil {
		t.Error("Expected error for empty frequency range")
	}
}
