package timing

import (
	"strings"
	"testing"
	"time"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

var base = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// records builds records starting at the given second offsets, each lasting
// duration seconds.
func records(duration int, starts ...int) []spectrum.Record {
	recs := make([]spectrum.Record, len(starts))
	for i, s := range starts {
		start := base.Add(time.Duration(s) * time.Second)
		recs[i] = spectrum.Record{
			StartFreqMHz: 1,
			StopFreqMHz:  30,
			Steps:        3,
			RBWkHz:       10,
			StartTime:    start,
			EndTime:      start.Add(time.Duration(duration) * time.Second),
		}
	}
	return recs
}

func TestCheck_Consistent(t *testing.T) {
	report := Check(records(5, 0, 10, 20, 30, 40))

	if !report.Consistent() {
		t.Fatalf("Expected consistent report, got anomalies: %v", report.Anomalies)
	}
	if report.Interval != 10*time.Second {
		t.Errorf("Expected interval 10s, got %s", report.Interval)
	}
	if report.InconsistencyCount != 0 {
		t.Errorf("Expected no inconsistencies, got %d", report.InconsistencyCount)
	}
}

func TestCheck_VariantInterval(t *testing.T) {
	report := Check(records(5, 0, 10, 30))

	if !report.VariantInterval {
		t.Error("Expected variant interval flag")
	}
	if report.Interval != 15*time.Second {
		t.Errorf("Expected interval 15s, got %s", report.Interval)
	}
	if report.Overlap || report.NegativeInterval || report.EndBeforeStart {
		t.Errorf("Unexpected flags: %+v", report)
	}
	if report.Consistent() {
		t.Error("Expected inconsistent report")
	}
}

func TestCheck_DriftReportedOnce(t *testing.T) {
	// the cadence changes from 10s to 12s once and then stays at 12s
	report := Check(records(5, 0, 10, 20, 30, 42, 54))

	var changed []Anomaly
	for _, a := range report.Anomalies {
		if strings.HasPrefix(a.Message, "interval changed") {
			changed = append(changed, a)
		}
	}
	if !report.VariantInterval || len(changed) != 1 || changed[0].Record != 4 {
		t.Errorf("Expected a single interval change at record 4, got %v", report.Anomalies)
	}
}

func TestCheck_Flags(t *testing.T) {
	testCases := []struct {
		name    string
		records []spectrum.Record
		check   func(*Report) bool
	}{
		{
			name:    "range not divisible",
			records: records(1, 0, 10, 25),
			check:   func(r *Report) bool { return r.RangeNotDivisible },
		},
		{
			name:    "interval not a factor of 60",
			records: records(1, 0, 7, 14),
			check:   func(r *Report) bool { return r.IntervalNotFactorOf60 },
		},
		{
			name:    "zero interval",
			records: records(0, 0, 0),
			check:   func(r *Report) bool { return r.IntervalNotFactorOf60 && r.Overlap },
		},
		{
			name:    "overlap",
			records: records(15, 0, 10, 20),
			check:   func(r *Report) bool { return r.Overlap && !r.VariantInterval },
		},
		{
			name:    "negative interval",
			records: records(1, 0, 20, 10),
			check:   func(r *Report) bool { return r.NegativeInterval && r.Overlap && r.VariantInterval },
		},
		{
			name: "end before start",
			records: func() []spectrum.Record {
				recs := records(5, 0, 10, 20)
				recs[2].EndTime = recs[2].StartTime.Add(-time.Second)
				return recs
			}(),
			check: func(r *Report) bool { return r.EndBeforeStart },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			report := Check(tc.records)
			if !tc.check(report) {
				t.Errorf("Unexpected report: %+v", report)
			}
			if report.Consistent() {
				t.Error("Expected inconsistent report")
			}
			if report.InconsistencyCount != len(report.Anomalies) {
				t.Errorf("Inconsistency count %d does not match %d anomalies", report.InconsistencyCount, len(report.Anomalies))
			}
		})
	}
}

func TestCheck_SingleRecordSkipped(t *testing.T) {
	for _, recs := range [][]spectrum.Record{nil, records(5, 0)} {
		report := Check(recs)
		if !report.Skipped {
			t.Errorf("Expected %d records to be skipped", len(recs))
		}
		if !report.Consistent() {
			t.Errorf("Expected skipped report to be consistent: %+v", report)
		}
	}
}
