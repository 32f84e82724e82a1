/*
Package io persists analysis snapshots to the append-only CSV history log and
manages copies of it.
*/
package io

/*
srvdomains — server domain distribution tracker in Go
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/x-stp/srvdomains/internal/core"
)

// maxRowBytes bounds a single history line when reading back.
const maxRowBytes = 1024 * 1024

// CSVTracker reads and appends the history log. It holds no file handles between
// calls. The log is assumed to have a single writer; concurrent runs against the
// same path may interleave rows.
type CSVTracker struct {
	logger *zap.Logger
}

// NewCSVTracker returns a tracker logging to logger (nil means no logging).
func NewCSVTracker(logger *zap.Logger) *CSVTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVTracker{logger: logger}
}

// SaveResults appends one row per result to path, creating parent directories
// and writing the header first when the file is missing or empty. Existing
// content is never truncated.
func (t *CSVTracker) SaveResults(path string, results []core.AnalysisResult) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	needsHeader := true
	st, err := os.Stat(path)
	switch {
	case err == nil:
		needsHeader = st.Size() == 0
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if needsHeader {
		if _, err := w.WriteString(core.CSVHeader + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("failed to write header to %s: %w", path, err)
		}
	}
	for _, r := range results {
		if _, err := w.WriteString(r.ToCSVLine()); err != nil {
			f.Close()
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	t.logger.Debug("appended history rows",
		zap.String("path", path),
		zap.Int("rows", len(results)),
		zap.Bool("header", needsHeader))
	return nil
}

// ReadResults parses every data row of path. A missing file yields an empty slice.
// Rows that cannot be parsed are dropped: short rows silently, rows with bad
// numbers with a warning.
func (t *CSVTracker) ReadResults(path string) ([]core.AnalysisResult, error) {
	results := make([]core.AnalysisResult, 0)
	err := t.scanRows(path, func(line string) {
		r, err := core.ParseCSVLine(line)
		if err != nil {
			if errors.Is(err, core.ErrShortRow) {
				t.logger.Debug("skipping short CSV line", zap.String("line", line))
				return
			}
			t.logger.Warn("could not parse CSV line", zap.String("line", line), zap.Error(err))
			return
		}
		results = append(results, r)
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FileExists reports whether path exists and can be opened for reading.
func (t *CSVTracker) FileExists(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// RecordCount returns the number of non-blank lines after the header, or 0
// when the file is absent. Malformed rows are counted.
func (t *CSVTracker) RecordCount(path string) (int64, error) {
	if !t.FileExists(path) {
		return 0, nil
	}
	var n int64
	if err := t.scanRows(path, func(string) { n++ }); err != nil {
		return 0, err
	}
	return n, nil
}

// scanRows calls fn for every non-blank line after the first one. A missing
// file is not an error.
func (t *CSVTracker) scanRows(path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxRowBytes)
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fn(line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed reading %s: %w", path, err)
	}
	return nil
}
