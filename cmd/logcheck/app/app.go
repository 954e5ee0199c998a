package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/sweeplog/internal/logfile"
	"github.com/roman-kulish/sweeplog/internal/spectrum"
	"github.com/roman-kulish/sweeplog/internal/storage"
	"github.com/roman-kulish/sweeplog/internal/timing"
)

// ErrInvalidLogs is returned by Run when at least one log failed to parse.
var ErrInvalidLogs = errors.New("invalid logs")

type Config struct {
	Paths       []string
	ArchivePath string
	List        bool
	Verbose     bool
}

func NewConfigFromCLI() (*Config, error) {
	return NewConfigFromArgs(flag.CommandLine, os.Args[1:])
}

func NewConfigFromArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	c := &Config{}

	fs.StringVar(&c.ArchivePath, "archive", "", "Path to a sqlite archive; valid logs are stored in it")
	fs.BoolVar(&c.List, "list", false, "List the logs stored in the archive")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c.Paths = fs.Args()

	var err error
	if c.List && c.ArchivePath == "" {
		err = errors.New("archive path is required to list logs")
	} else if !c.List && len(c.Paths) == 0 {
		err = errors.New("at least one log path is required")
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}
	return c, nil
}

// Run checks every path and writes a report per log to w. Timing anomalies
// are reported but do not fail the run.
func Run(ctx context.Context, config *Config, w io.Writer, logger *slog.Logger) error {
	var store *storage.SqliteStore
	if config.ArchivePath != "" {
		store = storage.NewSqliteStore(config.ArchivePath)
		defer store.Close()
	}

	var failed int
	for _, path := range config.Paths {
		doc, err := check(path, w)
		if err != nil {
			var fe *spectrum.FormatError
			if !errors.As(err, &fe) {
				return err
			}
			logger.Error("invalid log", slog.String("path", path), slog.String("error", err.Error()))
			failed++
			continue
		}

		if store != nil {
			logID, err := store.StoreDocument(ctx, path, doc)
			if err != nil {
				return fmt.Errorf("archiving '%s': %w", path, err)
			}
			logger.Debug("log archived", slog.String("path", path), slog.Int64("logID", logID))
		}
	}

	if config.List {
		if err := list(ctx, store, w); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidLogs, failed, len(config.Paths))
	}
	return nil
}

func check(path string, w io.Writer) (*spectrum.Document, error) {
	rc, err := logfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := logfile.Parse(rc)
	if err != nil {
		return nil, err
	}

	first, last := doc.First(), doc.Last()
	fmt.Fprintf(w, "%s: %s sweeps x %s steps, %s - %s, RBW %s, %s - %s\n",
		path,
		humanize.Comma(int64(doc.Len())),
		humanize.Comma(int64(doc.Steps())),
		humanHz(first.StartFreqHz()),
		humanHz(first.StopFreqHz()),
		humanHz(float64(first.RBWkHz)*1e3),
		spectrum.FormatTimestamp(first.StartTime),
		spectrum.FormatTimestamp(last.EndTime))

	report := timing.Check(doc.Records)
	switch {
	case report.Skipped:
		fmt.Fprintln(w, "  timing: single record, not checked")
	case report.Consistent():
		fmt.Fprintf(w, "  timing: consistent, interval %s\n", report.Interval)
	default:
		fmt.Fprintf(w, "  timing: %d inconsistencies, nominal interval %s\n", report.InconsistencyCount, report.Interval)
		for _, a := range report.Anomalies {
			fmt.Fprintf(w, "    %s\n", a)
		}
	}

	return doc, nil
}

func list(ctx context.Context, store *storage.SqliteStore, w io.Writer) error {
	logs, err := store.Logs(ctx)
	if err != nil {
		return fmt.Errorf("listing archived logs: %w", err)
	}

	for _, l := range logs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s sweeps x %s steps\t%s - %s\timported %s\n",
			l.ID,
			l.UID,
			l.Source,
			humanize.Comma(int64(l.Records)),
			humanize.Comma(int64(l.Steps)),
			humanHz(l.StartFreqMHz*1e6),
			humanHz(l.StopFreqMHz*1e6),
			humanize.Time(l.ImportedAt))
	}
	return nil
}

func humanHz(hz float64) string {
	fpxSI, fpxSuffix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.2f %sHz", fpxSI, fpxSuffix)
}
