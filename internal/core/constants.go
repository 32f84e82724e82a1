/*
Package core constants shared by the analyzer, the report and the command line.
*/
package core

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

const (
	// DefaultInputFile is read when no input path is given.
	DefaultInputFile = "input/servers.txt"

	// DefaultOutputCSV is the history log each run appends to.
	DefaultOutputCSV = "output/domain_history.csv"

	// DefaultBackupDir receives backups when no destination is given.
	DefaultBackupDir = "output/backups"

	// TimestampLayout renders local date-times as ISO-8601 without a zone,
	// with the fractional second trimmed of trailing zeros.
	TimestampLayout = "2006-01-02T15:04:05.999999999"

	// CommentPrefix marks server list lines that are skipped.
	CommentPrefix = "#"

	// ReportRule underlines the report title.
	ReportRule = "=========================================="

	// DomainColumnWidth is the width the domain is padded to in report lines.
	DomainColumnWidth = 20

	// maxServerLineBytes bounds a single line of the server list.
	maxServerLineBytes = 1024 * 1024
)
