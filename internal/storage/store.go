package storage

import (
	"context"

	"github.com/roman-kulish/sweeplog/internal/spectrum"
)

// Store archives parsed sweep logs.
type Store interface {
	// StoreDocument saves all records and samples of doc in a single
	// transaction and returns the ID of the new log.
	StoreDocument(ctx context.Context, source string, doc *spectrum.Document) (logID int64, err error)

	// Log returns the description of a single archived log.
	Log(ctx context.Context, id int64) (*LogInfo, error)

	// Logs returns all archived logs ordered by ID.
	Logs(ctx context.Context) ([]*LogInfo, error)

	// ReadDocument loads a whole archived log. The result satisfies the same
	// invariants as a freshly parsed document.
	ReadDocument(ctx context.Context, id int64) (*spectrum.Document, error)

	// Close releases all database connections. It is safe to call Close
	// multiple times.
	Close() error
}
