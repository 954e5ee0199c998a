package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

var _ Store = (*SqliteStore)(nil)

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the sqlite database at dbPath.
// Connections are opened on first use; the schema is created by the first
// write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}
		db.SetMaxOpenConns(1)

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) StoreDocument(ctx context.Context, source string, doc *spectrum.Document) (logID int64, err error) {
	if doc == nil || doc.Len() == 0 {
		return 0, errors.New("document has no records")
	}

	db, err := s.getWriteDB()
	if err != nil {
		return 0, fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	ref := doc.First()
	result, err := tx.ExecContext(ctx, insertLogSQL,
		uuid.NewString(),
		source,
		ref.StartFreqMHz,
		ref.StopFreqMHz,
		int64(ref.Steps),
		float64(ref.RBWkHz),
		doc.Len(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting log: %w", err)
	}

	if logID, err = result.LastInsertId(); err != nil {
		return 0, fmt.Errorf("getting log ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSweepSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for i, rec := range doc.Records {
		if _, err = stmt.ExecContext(ctx,
			logID,
			i,
			toUnix(rec.StartTime),
			toUnix(rec.EndTime),
			encodeSamples(doc.Sweep(i)),
		); err != nil {
			return 0, fmt.Errorf("inserting sweep #%d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return logID, nil
}

func (s *SqliteStore) Log(ctx context.Context, id int64) (info *LogInfo, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, selectLogSQL)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if info, err = scanLog(stmt.QueryRowContext(ctx, id)); err != nil {
		return nil, fmt.Errorf("scanning log %d: %w", id, err)
	}
	return info, nil
}

func (s *SqliteStore) Logs(ctx context.Context) (logs []*LogInfo, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectLogsSQL)
	if err != nil {
		err = fmt.Errorf("querying logs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var info *LogInfo
		if info, err = scanLog(rows); err != nil {
			err = fmt.Errorf("scanning log: %w", err)
			return
		}
		logs = append(logs, info)
	}
	err = rows.Err()
	return
}

func scanLog(row interface{ Scan(...any) error }) (*LogInfo, error) {
	var info LogInfo
	var steps int64
	var rbw float64
	if err := row.Scan(
		&info.ID,
		&info.UID,
		&info.Source,
		&info.ImportedAt,
		&info.StartFreqMHz,
		&info.StopFreqMHz,
		&steps,
		&rbw,
		&info.Records,
	); err != nil {
		return nil, err
	}
	info.Steps = uint64(steps)
	info.RBWkHz = float32(rbw)
	return &info, nil
}

// ReadSweeps creates a new SweepReader over the sweeps of an archived log.
//
// The returned SweepReader must be closed after use to release database
// resources. Each reader instance should only be used from a single goroutine.
func (s *SqliteStore) ReadSweeps(ctx context.Context, logID int64, opts ...ReaderOption) (*SqliteSweepReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqliteSweepReader(ctx, db, logID, opts...)
}

func (s *SqliteStore) ReadDocument(ctx context.Context, id int64) (doc *spectrum.Document, err error) {
	iter, err := s.ReadSweeps(ctx, id)
	if err != nil {
		return nil, err
	}
	defer closeWithError(iter, &err)

	info := iter.Log()
	records := make([]spectrum.Record, 0, info.Records)
	samples := make([]float32, 0, uint64(info.Records)*info.Steps)
	for iter.Next(ctx) {
		sweep := iter.Current()
		if err = sweep.Record.Validate(); err != nil {
			return nil, fmt.Errorf("sweep #%d of log %d: %w", sweep.Seq+1, id, err)
		}
		records = append(records, sweep.Record)
		samples = append(samples, sweep.Samples...)
	}
	if err = iter.Error(); err != nil {
		return nil, err
	}

	return spectrum.NewDocument(records, samples)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
