// Package logfile reads and writes sweep logs.
//
// A log is a sequence of records. Each record is a header line starting with
// HeaderSigil, one data line per step holding a power sample in dBm, and a
// terminating blank line. Lines starting with CommentSigil are ignored anywhere.
//
//	$ 1.000000,30.000000,3,10.000,20230101T000000,20230101T000010
//	-50
//	-60
//	-70
//	<blank>
package logfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

const (
	HeaderSigil  = '$'
	CommentSigil = '#'

	headerFields       = 6
	maxTimestampLength = 31
	maxLineLength      = 1 << 20
	maxPreallocSamples = 1 << 16
)

// Parse reads a complete sweep log from r. Any structural problem is reported
// as a *spectrum.FormatError carrying the 1-based line number.
func Parse(r io.Reader) (*spectrum.Document, error) {
	p := parser{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(strings.TrimSuffix(scanner.Text(), "\r")); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}

	return p.finish()
}

type parser struct {
	line int // current 1-based line number

	// k is the position within the current record, counted over non-comment
	// lines. It is reset to 0 by the trailing blank line.
	k              uint64
	linesPerRecord uint64

	reference *spectrum.Record
	records   []spectrum.Record
	samples   []float32
}

func (p *parser) parseLine(line string) error {
	if len(line) > 0 && line[0] == CommentSigil {
		return nil
	}

	p.k++

	switch {
	case p.k == 1 || (p.linesPerRecord > 0 && p.k%p.linesPerRecord == 1):
		return p.parseHeaderLine(line)
	case p.linesPerRecord > 0 && p.k%p.linesPerRecord == 0:
		if line != "" {
			return p.errorf(spectrum.ErrUnexpectedLine, "blank line", line)
		}
		p.k = 0
		return nil
	default:
		return p.parseDataLine(line)
	}
}

func (p *parser) parseHeaderLine(line string) error {
	if len(line) == 0 || line[0] != HeaderSigil {
		return p.errorf(spectrum.ErrUnexpectedLine, "header", line)
	}

	rec, err := parseHeader(line[1:])
	if err != nil {
		return &spectrum.FormatError{Kind: spectrum.ErrMalformedHeader, Line: p.line, Err: err}
	}

	if p.reference == nil {
		p.reference = &rec
		p.linesPerRecord = rec.Steps + 2
		p.samples = make([]float32, 0, min(rec.Steps, maxPreallocSamples))
	} else if err = p.matchReference(rec); err != nil {
		return err
	}

	p.records = append(p.records, rec)
	return nil
}

// matchReference compares the instrument configuration of rec with the first
// header of the log. Floating point fields must be bit-exact.
func (p *parser) matchReference(rec spectrum.Record) error {
	ref := p.reference

	mismatch := func(field string, expected, got any) error {
		return &spectrum.FormatError{
			Kind:     spectrum.ErrHeaderMismatch,
			Line:     p.line,
			Field:    field,
			Expected: fmt.Sprint(expected),
			Got:      fmt.Sprint(got),
		}
	}

	switch {
	case math.Float64bits(rec.StartFreqMHz) != math.Float64bits(ref.StartFreqMHz):
		return mismatch("start_freq", ref.StartFreqMHz, rec.StartFreqMHz)
	case math.Float64bits(rec.StopFreqMHz) != math.Float64bits(ref.StopFreqMHz):
		return mismatch("stop_freq", ref.StopFreqMHz, rec.StopFreqMHz)
	case rec.Steps != ref.Steps:
		return mismatch("steps", ref.Steps, rec.Steps)
	case math.Float32bits(rec.RBWkHz) != math.Float32bits(ref.RBWkHz):
		return mismatch("rbw", ref.RBWkHz, rec.RBWkHz)
	}
	return nil
}

func (p *parser) parseDataLine(line string) error {
	v, err := parseSample(line)
	if err != nil {
		return &spectrum.FormatError{Kind: spectrum.ErrInvalidSample, Line: p.line, Got: strconv.Quote(line), Err: err}
	}

	p.samples = append(p.samples, v)
	return nil
}

func (p *parser) finish() (*spectrum.Document, error) {
	if len(p.records) == 0 {
		return nil, &spectrum.FormatError{Kind: spectrum.ErrNoRecords, Line: p.line}
	}
	if p.k != 0 {
		return nil, &spectrum.FormatError{
			Kind:     spectrum.ErrTruncated,
			Line:     p.line,
			Expected: fmt.Sprintf("%d lines per record", p.linesPerRecord),
			Got:      fmt.Sprintf("%d", p.k),
		}
	}
	return spectrum.NewDocument(p.records, p.samples)
}

func (p *parser) errorf(kind error, expected, got string) error {
	return &spectrum.FormatError{Kind: kind, Line: p.line, Expected: expected, Got: strconv.Quote(got)}
}

// parseHeader parses the header fields following the sigil:
// start_freq,stop_freq,steps,rbw,start_time,end_time
func parseHeader(s string) (spectrum.Record, error) {
	var rec spectrum.Record

	fields := strings.Split(strings.TrimSpace(s), ",")
	if len(fields) != headerFields {
		return rec, fmt.Errorf("expected %d comma separated fields, got %d", headerFields, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	var err error
	if rec.StartFreqMHz, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return rec, fmt.Errorf("start_freq: %w", err)
	}
	if rec.StopFreqMHz, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return rec, fmt.Errorf("stop_freq: %w", err)
	}
	if rec.Steps, err = strconv.ParseUint(fields[2], 10, 64); err != nil {
		return rec, fmt.Errorf("steps: %w", err)
	}

	rbw, err := strconv.ParseFloat(fields[3], 32)
	if err != nil {
		return rec, fmt.Errorf("rbw: %w", err)
	}
	rec.RBWkHz = float32(rbw)

	if rec.StartTime, err = parseTimestampField("start_time", fields[4]); err != nil {
		return rec, err
	}
	if rec.EndTime, err = parseTimestampField("end_time", fields[5]); err != nil {
		return rec, err
	}

	return rec, rec.Validate()
}

func parseTimestampField(name, raw string) (time.Time, error) {
	if len(raw) > maxTimestampLength {
		return time.Time{}, fmt.Errorf("%s: longer than %d characters", name, maxTimestampLength)
	}
	t, err := spectrum.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

func parseSample(s string) (float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty sample")
	}

	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("sample is not finite")
	}
	return float32(v), nil
}
