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
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input string
		want  string
	}{
		{"domain_history", "domain_history"},
		{"2025-03-01T12:30:45", "2025-03-01T12_30_45"},
		{"a/b\\c", "a_b_c"},
		{" spaced name ", "spaced_name"},
		{strings.Repeat("x", 150), strings.Repeat("x", 100)},
	}
	for _, tc := range testCases {
		if got := SanitizeFilename(tc.input); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q; want %q", tc.input, got, tc.want)
		}
	}
}

func TestBackupPath(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, time.March, 1, 12, 30, 45, 0, time.Local)

	got := BackupPath("output/domain_history.csv", "output/backups", at, false)
	want := filepath.Join("output/backups", "domain_history_2025-03-01T12_30_45.csv")
	if got != want {
		t.Errorf("BackupPath() = %q; want %q", got, want)
	}

	got = BackupPath("history", "bk", at, true)
	want = filepath.Join("bk", "history_2025-03-01T12_30_45.csv.gz")
	if got != want {
		t.Errorf("BackupPath(compress) = %q; want %q", got, want)
	}
}
