// Package util holds small path helpers shared by the commands.
package util

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
	"path/filepath"
	"strings"
	"time"
)

// maxNameLength keeps generated names well under common filesystem limits.
const maxNameLength = 100

// SanitizeFilename makes input usable as a single path element on every platform
// by replacing separators and reserved characters with underscores.
func SanitizeFilename(input string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(input))
	if len(replaced) > maxNameLength {
		return replaced[:maxNameLength]
	}
	return replaced
}

// BackupPath names a backup of historyPath inside dir, stamped with at:
// "output/domain_history.csv" at 12:30:45 becomes
// "<dir>/domain_history_2025-03-01T12_30_45.csv". With compress the name gets ".gz".
func BackupPath(historyPath, dir string, at time.Time, compress bool) string {
	base := filepath.Base(historyPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".csv"
	}
	name := SanitizeFilename(stem + "_" + at.Format("2006-01-02T15:04:05"))
	name += ext
	if compress {
		name += ".gz"
	}
	return filepath.Join(dir, name)
}
