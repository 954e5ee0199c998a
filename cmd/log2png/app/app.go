package app

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/sweeplog/internal/logfile"
	"github.com/roman-kulish/sweeplog/internal/spectrum"
	"github.com/roman-kulish/sweeplog/internal/storage"
	"github.com/roman-kulish/sweeplog/internal/timing"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	var store *storage.SqliteStore
	if config.ArchivePath != "" {
		store = storage.NewSqliteStore(config.ArchivePath)
		defer store.Close()
	}

	doc, err := loadDocument(ctx, store, config, logger)
	if err != nil {
		return err
	}

	logTiming(logger, timing.Check(doc.Records))

	output, err := renderDocument(doc, config, logger)
	if err != nil {
		return err
	}

	logger.Info("spectrogram written", slog.String("destination", output))
	return nil
}

func loadDocument(ctx context.Context, store *storage.SqliteStore, config *Config, logger *slog.Logger) (*spectrum.Document, error) {
	if config.LogID > 0 {
		logger.Info("reading log from archive",
			slog.String("archive", config.ArchivePath),
			slog.Int64("logID", config.LogID))

		doc, err := store.ReadDocument(ctx, config.LogID)
		if err != nil {
			return nil, fmt.Errorf("reading log %d from archive: %w", config.LogID, err)
		}
		return doc, nil
	}

	doc, err := parseInput(config.Input)
	if err != nil {
		return nil, err
	}

	first := doc.First()
	logger.Info("parsed log",
		slog.Group("stats",
			slog.String("source", config.Input),
			slog.Int("records", doc.Len()),
			slog.Int("steps", doc.Steps()),
			slog.String("minFreq", humanHz(first.StartFreqHz())),
			slog.String("maxFreq", humanHz(first.StopFreqHz())),
			slog.String("rbw", humanHz(float64(first.RBWkHz)*1e3)),
			slog.String("startTime", first.StartTime.Format(time.DateTime)),
			slog.String("endTime", doc.Last().EndTime.Format(time.DateTime)),
		))

	if store != nil {
		logID, err := store.StoreDocument(ctx, config.Input, doc)
		if err != nil {
			return nil, fmt.Errorf("archiving log: %w", err)
		}
		logger.Info("log archived", slog.String("archive", config.ArchivePath), slog.Int64("logID", logID))
	}

	return doc, nil
}

// parseInput parses a single log file, every .log file of a directory, or
// standard input.
func parseInput(path string) (*spectrum.Document, error) {
	rc, err := logfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := logfile.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing '%s': %w", path, err)
	}
	return doc, nil
}

func logTiming(logger *slog.Logger, report *timing.Report) {
	if report.Skipped {
		logger.Debug("single record, timing check skipped")
		return
	}

	for _, a := range report.Anomalies {
		logger.Warn("timing anomaly", slog.Int("record", a.Record), slog.String("problem", a.Message))
	}

	attrs := []any{
		slog.String("interval", report.Interval.String()),
		slog.Int("inconsistencies", report.InconsistencyCount),
	}
	if report.Consistent() {
		logger.Info("sweep timing is consistent", attrs...)
		return
	}

	logger.Warn("sweep timing is inconsistent",
		append(attrs, slog.Group("flags",
			slog.Bool("rangeNotDivisible", report.RangeNotDivisible),
			slog.Bool("intervalNotFactorOf60", report.IntervalNotFactorOf60),
			slog.Bool("overlap", report.Overlap),
			slog.Bool("endBeforeStart", report.EndBeforeStart),
			slog.Bool("variantInterval", report.VariantInterval),
			slog.Bool("negativeInterval", report.NegativeInterval),
		))...)
}

// OutputPath returns <prefix>.<end time of the last record>.png.
func OutputPath(prefix string, doc *spectrum.Document) string {
	return fmt.Sprintf("%s.%s.png", prefix, spectrum.FormatTimestamp(doc.Last().EndTime))
}

func renderDocument(doc *spectrum.Document, config *Config, logger *slog.Logger) (string, error) {
	var bounds *PowerBounds
	if config.MinPower != nil || config.MaxPower != nil {
		b := config.PowerBounds()
		bounds = &b
	}

	renderer, err := NewSpectrumRenderer(RenderConfig{
		BannerHeight: config.BannerHeight,
		FooterHeight: config.FooterHeight,
		ColorTheme:   config.Theme,
		Bounds:       bounds,
		AutoBounds:   config.AutoWindow,
		Gridlines:    config.Gridlines,
		MinGridlines: config.MinGridlines,
	})
	if err != nil {
		return "", fmt.Errorf("creating spectrum renderer: %w", err)
	}

	spec := NewSpectrumData(doc)
	window := renderer.Bounds(doc)
	output := OutputPath(config.OutputPrefix, doc)

	logger.Info("rendering spectrum",
		slog.Group("image",
			slog.String("destination", output),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", spec.Width),
			slog.Int("height", config.BannerHeight+spec.Height+config.FooterHeight),
			slog.String("resolution", humanHz(spec.HzPerPixel())+"/px"),
			slog.String("period", spec.TimestampEnd.Sub(spec.TimestampStart).String()),
			slog.String("minPower", fmt.Sprintf("%0.2fdBm", window.Min)),
			slog.String("maxPower", fmt.Sprintf("%0.2fdBm", window.Max)),
			slog.String("meanPower", fmt.Sprintf("%0.2fdBm", window.Mean)),
			slog.String("samples", humanize.Comma(int64(len(doc.Samples)))),
		))

	img, err := renderer.Render(doc, config.Title)
	if err != nil {
		return "", fmt.Errorf("rendering spectrum: %w", err)
	}

	if err = writePNG(output, img); err != nil {
		return "", err
	}
	return output, nil
}

func writePNG(path string, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating '%s': %w", path, err)
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing '%s': %w", path, cErr)
		}
	}()

	if err = png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding '%s': %w", path, err)
	}
	return nil
}
