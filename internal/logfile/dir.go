package logfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

const (
	// Extension is the file name extension of sweep logs.
	Extension = ".log"

	// StdinPath is the path Open reads standard input for.
	StdinPath = "-"
)

// Open opens a single log file, every log of a directory, or standard input
// when path is StdinPath.
func Open(path string) (io.ReadCloser, error) {
	if path == StdinPath {
		return io.NopCloser(os.Stdin), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input '%s': %w", path, err)
	}
	if info.IsDir() {
		return OpenDir(path)
	}
	return OpenFiles(path)
}

// ListDir returns the paths of all sweep logs in dir, sorted by name.
// Subdirectories are not descended into.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory '%s': %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files in directory '%s'", Extension, dir)
	}
	return paths, nil
}

// OpenDir opens every sweep log in dir and returns a reader that yields their
// contents concatenated in name order. Closing it closes all files.
func OpenDir(dir string) (io.ReadCloser, error) {
	paths, err := ListDir(dir)
	if err != nil {
		return nil, err
	}
	return OpenFiles(paths...)
}

// OpenFiles opens the given files and concatenates them in the given order.
func OpenFiles(paths ...string) (io.ReadCloser, error) {
	mr := &multiFile{}
	readers := make([]io.Reader, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			_ = mr.Close()
			return nil, fmt.Errorf("opening '%s': %w", path, err)
		}
		mr.files = append(mr.files, f)
		readers = append(readers, f)
	}
	mr.Reader = io.MultiReader(readers...)
	return mr, nil
}

type multiFile struct {
	io.Reader
	files []*os.File
}

func (m *multiFile) Close() error {
	var errs []error
	for _, f := range m.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.files = nil
	return errors.Join(errs...)
}
