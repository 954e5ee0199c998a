package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"
)

// ReaderOption configures a SqliteSweepReader with specific filtering criteria.
type ReaderOption func(*SqliteSweepReader)

// WithStartTime sets the start time filter for the sweep reader.
// Sweeps starting before this time will be excluded.
func WithStartTime(t time.Time) ReaderOption {
	return func(r *SqliteSweepReader) {
		r.startTime = &t
	}
}

// WithEndTime sets the end time filter for the sweep reader.
// Sweeps starting after this time will be excluded.
func WithEndTime(t time.Time) ReaderOption {
	return func(r *SqliteSweepReader) {
		r.endTime = &t
	}
}

// WithTimeRange sets both start and end time filters.
// This is a convenience function equivalent to applying both WithStartTime
// and WithEndTime.
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(r *SqliteSweepReader) {
		r.startTime = &startTime
		r.endTime = &endTime
	}
}

// SqliteSweepReader iterates over the sweeps of an archived log in their
// original order.
type SqliteSweepReader struct {
	db    *sql.DB
	logID int64
	log   *LogInfo

	startTime *time.Time // Optional start of time range filter
	endTime   *time.Time // Optional end of time range filter

	current *Sweep
	rows    *sql.Rows
	err     error
}

// newSqliteSweepReader creates a new reader for the sweeps of a log, applying
// optional filters.
func newSqliteSweepReader(ctx context.Context, db *sql.DB, logID int64, opts ...ReaderOption) (*SqliteSweepReader, error) {
	sr := &SqliteSweepReader{
		db:    db,
		logID: logID,
	}
	for _, opt := range opts {
		opt(sr)
	}
	if err := sr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return sr, nil
}

func (sr *SqliteSweepReader) init(ctx context.Context) error {
	if sr.db == nil {
		return errors.New("database connection required")
	}
	if sr.logID <= 0 {
		return errors.New("log ID required")
	}
	if sr.startTime != nil && sr.endTime != nil && sr.startTime.After(*sr.endTime) {
		return fmt.Errorf("start time %s is after end time %s", sr.startTime, sr.endTime)
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading log", fn: sr.loadLog},
		{msg: "initializing query", fn: sr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (sr *SqliteSweepReader) loadLog(ctx context.Context) (err error) {
	stmt, err := sr.db.PrepareContext(ctx, selectLogSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if sr.log, err = scanLog(stmt.QueryRowContext(ctx, sr.logID)); err != nil {
		return fmt.Errorf("querying log: %w", err)
	}
	return nil
}

func (sr *SqliteSweepReader) initQuery(ctx context.Context) error {
	from, to := int64(math.MinInt64), int64(math.MaxInt64)
	if sr.startTime != nil {
		from = toUnix(*sr.startTime)
	}
	if sr.endTime != nil {
		to = toUnix(*sr.endTime)
	}

	rows, err := sr.db.QueryContext(ctx, selectSweepsSQL, sr.logID, from, to)
	if err != nil {
		return err
	}
	sr.rows = rows
	return nil
}

// Log returns the archived log this reader is accessing.
func (sr *SqliteSweepReader) Log() *LogInfo {
	return sr.log
}

// Next advances the iterator and returns true if there is another sweep to
// read, false when the iteration is complete or if an error occurred.
func (sr *SqliteSweepReader) Next(ctx context.Context) bool {
	if sr.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		sr.err = err
		return false
	}
	if !sr.rows.Next() {
		return false
	}

	var data sweepData
	if err := sr.rows.Scan(&data.Seq, &data.StartTime, &data.EndTime, &data.Samples); err != nil {
		sr.err = fmt.Errorf("scanning sweep: %w", err)
		return false
	}

	samples, err := decodeSamples(data.Samples)
	if err != nil {
		sr.err = fmt.Errorf("decoding sweep #%d: %w", data.Seq+1, err)
		return false
	}
	if uint64(len(samples)) != sr.log.Steps {
		sr.err = fmt.Errorf("sweep #%d has %d samples, log has %d steps", data.Seq+1, len(samples), sr.log.Steps)
		return false
	}

	rec := sr.log.Record()
	rec.StartTime = fromUnix(data.StartTime)
	rec.EndTime = fromUnix(data.EndTime)

	sr.current = &Sweep{Seq: data.Seq, Record: rec, Samples: samples}
	return true
}

// Current returns the current sweep in the iteration.
// If called after Next() returns false, the behavior is undefined.
func (sr *SqliteSweepReader) Current() *Sweep {
	return sr.current
}

// Error returns any error that occurred during iteration.
func (sr *SqliteSweepReader) Error() error {
	if sr.err != nil {
		return sr.err
	}
	return sr.rows.Err()
}

// Close releases the database resources.
func (sr *SqliteSweepReader) Close() error {
	return sr.rows.Close()
}
