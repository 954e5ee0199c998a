package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_sweeps_start_time ON sweeps (log_id, start_time);`

	insertLogSQL = `
INSERT INTO logs (uid,
                  source,
                  start_freq,
                  stop_freq,
                  steps,
                  rbw,
                  records)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	insertSweepSQL = `
INSERT INTO sweeps (log_id,
                    seq,
                    start_time,
                    end_time,
                    samples)
VALUES (?, ?, ?, ?, ?)`

	selectLogSQL = `
SELECT
    id,
    uid,
    source,
    imported_at,
    start_freq,
    stop_freq,
    steps,
    rbw,
    records
FROM logs
WHERE
    id = ?`

	selectLogsSQL = `
SELECT
    id,
    uid,
    source,
    imported_at,
    start_freq,
    stop_freq,
    steps,
    rbw,
    records
FROM logs
ORDER BY id`

	selectSweepsSQL = `
SELECT
    seq,
    start_time,
    end_time,
    samples
FROM sweeps
WHERE
    log_id = ?
    AND start_time BETWEEN ? AND ?
ORDER BY seq`
)
