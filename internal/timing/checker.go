// Package timing checks the cadence of consecutive sweeps. Its findings are
// advisory: a log with timing anomalies is still rendered.
package timing

import (
	"fmt"
	"time"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

// Anomaly describes a single timing problem. Record is the 0-based index of
// the record the problem was found at.
type Anomaly struct {
	Record  int
	Message string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("record #%d: %s", a.Record, a.Message)
}

// Report is the outcome of Check. Each flag is set independently.
type Report struct {
	Skipped bool // fewer than two records, nothing was checked

	RangeNotDivisible     bool // total span is not a multiple of record count - 1
	IntervalNotFactorOf60 bool // nominal interval does not divide a minute
	Overlap               bool // start/end ordering of adjacent records is violated
	EndBeforeStart        bool // a record ends before it starts
	VariantInterval       bool // gap between starts changed
	NegativeInterval      bool // a record starts before its predecessor

	Interval           time.Duration // nominal interval, whole seconds
	InconsistencyCount int
	Anomalies          []Anomaly
}

// Consistent reports whether no anomaly was found.
func (r *Report) Consistent() bool {
	return !(r.RangeNotDivisible ||
		r.IntervalNotFactorOf60 ||
		r.Overlap ||
		r.EndBeforeStart ||
		r.VariantInterval ||
		r.NegativeInterval)
}

func (r *Report) addf(record int, format string, args ...any) {
	r.InconsistencyCount++
	r.Anomalies = append(r.Anomalies, Anomaly{Record: record, Message: fmt.Sprintf(format, args...)})
}

// Check inspects the timestamps of records. It never fails.
func Check(records []spectrum.Record) *Report {
	report := &Report{}

	n := len(records)
	if n < 2 {
		report.Skipped = true
		return report
	}

	first, last := records[0], records[n-1]
	span := int64(last.StartTime.Sub(first.StartTime) / time.Second)
	intervals := int64(n - 1)

	interval := span / intervals
	report.Interval = time.Duration(interval) * time.Second

	if span%intervals != 0 {
		report.RangeNotDivisible = true
		report.addf(n-1, "span of %ds is not divisible by %d intervals", span, intervals)
	}
	if interval <= 0 || 60%interval != 0 {
		report.IntervalNotFactorOf60 = true
		report.addf(n-1, "interval of %ds does not divide 60s", interval)
	}

	reference := interval
	for i := 0; i < n; i++ {
		cur := records[i]

		if cur.EndTime.Before(cur.StartTime) {
			report.EndBeforeStart = true
			report.addf(i, "ends at %s before it starts at %s",
				spectrum.FormatTimestamp(cur.EndTime), spectrum.FormatTimestamp(cur.StartTime))
		}

		if i == n-1 {
			break
		}
		next := records[i+1]

		if !ordered(cur, next) {
			report.Overlap = true
			report.addf(i+1, "overlaps previous record: %s-%s then %s-%s",
				spectrum.FormatTimestamp(cur.StartTime), spectrum.FormatTimestamp(cur.EndTime),
				spectrum.FormatTimestamp(next.StartTime), spectrum.FormatTimestamp(next.EndTime))
		}

		gap := int64(next.StartTime.Sub(cur.StartTime) / time.Second)
		if gap < 0 {
			report.NegativeInterval = true
			report.addf(i+1, "starts %ds before previous record", -gap)
		}
		if gap != reference {
			report.VariantInterval = true
			report.addf(i+1, "interval changed from %ds to %ds", reference, gap)
			reference = gap
		}
	}

	return report
}

// ordered reports whether a and b satisfy
// a.start <= a.end <= b.start <= b.end and a.start < b.start.
func ordered(a, b spectrum.Record) bool {
	return !a.EndTime.Before(a.StartTime) &&
		!b.StartTime.Before(a.EndTime) &&
		!b.EndTime.Before(b.StartTime) &&
		a.StartTime.Before(b.StartTime)
}
