package spectrum

import (
	"errors"
	"strconv"
	"strings"
)

// Kinds of FormatError. Use errors.Is to test for them.
var (
	ErrMalformedHeader = errors.New("malformed header")
	ErrHeaderMismatch  = errors.New("header mismatch")
	ErrInvalidSample   = errors.New("invalid sample")
	ErrUnexpectedLine  = errors.New("unexpected line")
	ErrNoRecords       = errors.New("no records")
	ErrSampleCount     = errors.New("sample count mismatch")
	ErrTruncated       = errors.New("truncated record")
	ErrDegenerateSteps = errors.New("degenerate step count")
)

// FormatError is a fatal structural problem with a sweep log. Line is 1-based
// and zero when the problem is not tied to a single line.
type FormatError struct {
	Kind     error
	Line     int
	Field    string
	Expected string
	Got      string
	Err      error
}

func (e *FormatError) Error() string {
	var sb strings.Builder
	if e.Line > 0 {
		sb.WriteString("line ")
		sb.WriteString(strconv.Itoa(e.Line))
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.Error())
	if e.Field != "" {
		sb.WriteString(" in field ")
		sb.WriteString(e.Field)
	}
	if e.Expected != "" || e.Got != "" {
		sb.WriteString(": expected ")
		sb.WriteString(e.Expected)
		sb.WriteString(", got ")
		sb.WriteString(e.Got)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
