package logfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

// Writer serializes sweep records into the log format. Floating point values
// are written in their shortest form that parses back to the same bits.
type Writer struct {
	w     *bufio.Writer
	steps uint64
	buf   []byte
}

// NewWriter creates a new Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteComment writes every line of text as a comment line.
func (w *Writer) WriteComment(text string) error {
	for _, line := range strings.Split(text, "\n") {
		if _, err := fmt.Fprintf(w.w, "%c %s\n", CommentSigil, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecord writes a header, one data line per sample and the trailing blank
// line. All records written by one Writer must have the same number of steps.
func (w *Writer) WriteRecord(rec spectrum.Record, samples []float32) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	if uint64(len(samples)) != rec.Steps {
		return fmt.Errorf("record has %d steps but %d samples", rec.Steps, len(samples))
	}
	if w.steps != 0 && w.steps != rec.Steps {
		return fmt.Errorf("record has %d steps, previous records had %d", rec.Steps, w.steps)
	}
	w.steps = rec.Steps

	b := w.buf[:0]
	b = append(b, HeaderSigil, ' ')
	b = strconv.AppendFloat(b, rec.StartFreqMHz, 'f', -1, 64)
	b = append(b, ',')
	b = strconv.AppendFloat(b, rec.StopFreqMHz, 'f', -1, 64)
	b = append(b, ',')
	b = strconv.AppendUint(b, rec.Steps, 10)
	b = append(b, ',')
	b = strconv.AppendFloat(b, float64(rec.RBWkHz), 'f', -1, 32)
	b = append(b, ',')
	b = append(b, spectrum.FormatTimestamp(rec.StartTime)...)
	b = append(b, ',')
	b = append(b, spectrum.FormatTimestamp(rec.EndTime)...)
	b = append(b, '\n')

	for _, v := range samples {
		b = strconv.AppendFloat(b, float64(v), 'f', -1, 32)
		b = append(b, '\n')
	}
	b = append(b, '\n')

	w.buf = b
	_, err := w.w.Write(b)
	return err
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Write serializes a whole document, preceded by an optional comment.
func Write(dst io.Writer, doc *spectrum.Document, comment string) error {
	w := NewWriter(dst)
	if comment != "" {
		if err := w.WriteComment(comment); err != nil {
			return fmt.Errorf("writing comment: %w", err)
		}
	}
	for i, rec := range doc.Records {
		if err := w.WriteRecord(rec, doc.Sweep(i)); err != nil {
			return fmt.Errorf("writing record #%d: %w", i+1, err)
		}
	}
	return w.Flush()
}
