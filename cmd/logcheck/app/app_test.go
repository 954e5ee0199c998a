package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const driftingLog = "$ 1.000000,30.000000,3,10.000,20230101T000000,20230101T000005\n-50\n-60\n-70\n\n" +
	"$ 1.000000,30.000000,3,10.000,20230101T000010,20230101T000015\n-55\n-65\n-75\n\n" +
	"$ 1.000000,30.000000,3,10.000,20230101T000030,20230101T000035\n-52\n-62\n-72\n\n"

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ReportsTiming(t *testing.T) {
	path := writeLog(t, t.TempDir(), "drift.log", driftingLog)

	var out bytes.Buffer
	if err := Run(context.Background(), &Config{Paths: []string{path}}, &out, discardLogger()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	report := out.String()
	for _, want := range []string{"3 sweeps x 3 steps", "1.00 MHz - 30.00 MHz", "inconsistencies", "interval changed from 15s to 10s"} {
		if !strings.Contains(report, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, report)
		}
	}
}

func TestRun_InvalidLogContinues(t *testing.T) {
	dir := t.TempDir()
	bad := writeLog(t, dir, "bad.log", "$ 1.0,30.0,3,10.0,20230101T000000,20230101T000005\n-50\n-60\n\n")
	good := writeLog(t, dir, "good.log", driftingLog)

	var out bytes.Buffer
	err := Run(context.Background(), &Config{Paths: []string{bad, good}}, &out, discardLogger())
	if !errors.Is(err, ErrInvalidLogs) {
		t.Fatalf("Expected ErrInvalidLogs, got %v", err)
	}
	if !strings.Contains(out.String(), good) {
		t.Errorf("Expected the valid log to be reported, got:\n%s", out.String())
	}
}

func TestRun_MissingFile(t *testing.T) {
	config := &Config{Paths: []string{filepath.Join(t.TempDir(), "missing.log")}}
	err := Run(context.Background(), config, io.Discard, discardLogger())
	if err == nil || errors.Is(err, ErrInvalidLogs) {
		t.Fatalf("Expected an I/O error, got %v", err)
	}
}

func TestRun_ArchiveAndList(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "hf.log", driftingLog)
	config := &Config{
		Paths:       []string{path},
		ArchivePath: filepath.Join(dir, "archive.db"),
	}

	if err := Run(context.Background(), config, io.Discard, discardLogger()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var out bytes.Buffer
	config = &Config{ArchivePath: config.ArchivePath, List: true}
	if err := Run(context.Background(), config, &out, discardLogger()); err != nil {
		t.Fatalf("Listing failed: %v", err)
	}

	listing := out.String()
	if !strings.HasPrefix(listing, "1\t") || !strings.Contains(listing, "\t"+path+"\t") {
		t.Errorf("Unexpected listing:\n%s", listing)
	}
}

func TestNewConfigFromArgs(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"paths", []string{"a.log", "logs/"}, false},
		{"list", []string{"-archive", "a.db", "-list"}, false},
		{"no paths", []string{"-verbose"}, true},
		{"list without archive", []string{"-list"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := flag.NewFlagSet("logcheck", flag.ContinueOnError)
			fs.SetOutput(io.Discard)

			_, err := NewConfigFromArgs(fs, tc.args)
			if (err != nil) != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}
