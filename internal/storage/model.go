package storage

import (
	"time"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

// LogInfo describes an archived log.
type LogInfo struct {
	ID         int64
	UID        string    // Random identifier that survives export and re-import
	Source     string    // Where the log was read from
	ImportedAt time.Time // When the log was archived
	Records    int       // Number of sweeps

	StartFreqMHz float64
	StopFreqMHz  float64
	Steps        uint64
	RBWkHz       float32
}

// Record returns the instrument configuration of the log as a record without
// timestamps.
func (l *LogInfo) Record() spectrum.Record {
	return spectrum.Record{
		StartFreqMHz: l.StartFreqMHz,
		StopFreqMHz:  l.StopFreqMHz,
		Steps:        l.Steps,
		RBWkHz:       l.RBWkHz,
	}
}

// Sweep is a single archived record with its samples.
type Sweep struct {
	Seq     int // 0-based position in the log
	Record  spectrum.Record
	Samples []float32
}

type sweepData struct {
	Seq       int
	StartTime int64
	EndTime   int64
	Samples   []byte
}
