package spectrum

import (
	"fmt"
	"math"
	"time"
)

// TimestampLayout is the fixed-width layout of sweep timestamps in log headers.
const TimestampLayout = "20060102T150405"

// MaxRBW is the largest accepted resolution bandwidth in kHz.
const MaxRBW = 1000

// Record represents the metadata of a single sweep. The instrument configuration
// (frequency range, number of steps and RBW) is constant for a whole log.
type Record struct {
	StartFreqMHz float64   `json:"startFreqMHz"` // Sweep start frequency in MHz
	StopFreqMHz  float64   `json:"stopFreqMHz"`  // Sweep stop frequency in MHz
	Steps        uint64    `json:"steps"`        // Number of measurement points per sweep
	RBWkHz       float32   `json:"rbwKHz"`       // Resolution bandwidth in kHz
	StartTime    time.Time `json:"startTime"`    // When the sweep started (UTC)
	EndTime      time.Time `json:"endTime"`      // When the sweep ended (UTC)
}

// Validate checks the invariants of a single record.
func (r Record) Validate() error {
	switch {
	case math.IsNaN(r.StartFreqMHz) || math.IsInf(r.StartFreqMHz, 0):
		return fmt.Errorf("start frequency %v is not finite", r.StartFreqMHz)
	case math.IsNaN(r.StopFreqMHz) || math.IsInf(r.StopFreqMHz, 0):
		return fmt.Errorf("stop frequency %v is not finite", r.StopFreqMHz)
	case !(r.StartFreqMHz < r.StopFreqMHz):
		return fmt.Errorf("start frequency %v MHz must be below stop frequency %v MHz", r.StartFreqMHz, r.StopFreqMHz)
	case r.Steps == 0:
		return fmt.Errorf("steps must be greater than zero")
	case !(r.RBWkHz > 0 && r.RBWkHz <= MaxRBW):
		return fmt.Errorf("rbw %v kHz is outside (0, %d]", r.RBWkHz, MaxRBW)
	}
	return nil
}

// StartFreqHz returns the sweep start frequency in Hz.
func (r Record) StartFreqHz() float64 {
	return r.StartFreqMHz * 1e6
}

// StopFreqHz returns the sweep stop frequency in Hz.
func (r Record) StopFreqHz() float64 {
	return r.StopFreqMHz * 1e6
}

// Duration returns the time the sweep took.
func (r Record) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Document is the result of parsing a sweep log: an ordered sequence of records
// and a flat buffer of power samples in dBm, ordered record-major then step-minor.
// Sample i belongs to record i / Steps, step i % Steps.
type Document struct {
	Records []Record
	Samples []float32
}

// NewDocument checks that records and samples form a consistent document.
func NewDocument(records []Record, samples []float32) (*Document, error) {
	if len(records) == 0 {
		return nil, &FormatError{Kind: ErrNoRecords}
	}
	steps := records[0].Steps
	if want := uint64(len(records)) * steps; uint64(len(samples)) != want {
		return nil, &FormatError{
			Kind:     ErrSampleCount,
			Expected: fmt.Sprintf("%d", want),
			Got:      fmt.Sprintf("%d", len(samples)),
		}
	}
	return &Document{Records: records, Samples: samples}, nil
}

// Len returns the number of sweeps in the document.
func (d *Document) Len() int {
	return len(d.Records)
}

// Steps returns the number of measurement points per sweep.
func (d *Document) Steps() int {
	if len(d.Records) == 0 {
		return 0
	}
	return int(d.Records[0].Steps)
}

// Sweep returns the samples of the i-th record.
func (d *Document) Sweep(i int) []float32 {
	steps := d.Steps()
	return d.Samples[i*steps : (i+1)*steps]
}

// First returns the first record. The document must not be empty.
func (d *Document) First() Record {
	return d.Records[0]
}

// Last returns the last record. The document must not be empty.
func (d *Document) Last() Record {
	return d.Records[len(d.Records)-1]
}

// ParseTimestamp parses a timestamp in the YYYYMMDDTHHMMSS layout as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) != len(TimestampLayout) {
		return time.Time{}, fmt.Errorf("timestamp %q does not match layout YYYYMMDDTHHMMSS", s)
	}
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatTimestamp formats t in the YYYYMMDDTHHMMSS layout, in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
