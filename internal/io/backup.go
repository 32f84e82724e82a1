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
	"compress/gzip"
	"errors"
	"fmt"
	stdio "io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

// GzipSuffix on a backup path selects a gzip-compressed copy.
const GzipSuffix = ".gz"

// CreateBackup copies path to backupPath, replacing any file already there.
// The copy is written next to backupPath under a ".tmp" name and renamed into
// place once complete. A backupPath ending in GzipSuffix is gzip-compressed.
// When path does not exist nothing happens and backupPath is left untouched.
func (t *CSVTracker) CreateBackup(path, backupPath string) error {
	src, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Debug("no history to back up", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	if dir := filepath.Dir(backupPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmpPath := backupPath + ".tmp"
	dst, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmpPath, err)
	}

	if err := copyInto(dst, src, strings.HasSuffix(backupPath, GzipSuffix)); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy %s to %s: %w", path, tmpPath, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, backupPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s to %s: %w", tmpPath, backupPath, err)
	}

	t.logger.Info("history backed up", zap.String("path", path), zap.String("backup", backupPath))
	return nil
}

// copyInto closes the gzip stream, if any, but leaves dst open.
func copyInto(dst *os.File, src stdio.Reader, compress bool) error {
	if !compress {
		_, err := stdio.Copy(dst, src)
		return err
	}
	gz, err := gzip.NewWriterLevel(dst, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := stdio.Copy(gz, src); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// Checksum returns the xxh3 digest of the content of path as lowercase hex. Files
// ending in GzipSuffix are hashed after decompression, so a compressed backup has
// the same checksum as its source. This is NOT a cryptographic digest.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r stdio.Reader = f
	if strings.HasSuffix(path, GzipSuffix) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	h := xxh3.New()
	if _, err := stdio.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

// VerifyBackup reports whether backupPath holds the same content as path.
func VerifyBackup(path, backupPath string) (bool, error) {
	want, err := Checksum(path)
	if err != nil {
		return false, err
	}
	got, err := Checksum(backupPath)
	if err != nil {
		return false, err
	}
	return want == got, nil
}
