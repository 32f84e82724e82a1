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

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteReport prints the human-readable summary of snap, titled with generatedAt.
func WriteReport(w io.Writer, snap Snapshot, generatedAt time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\nServer Domain Analysis - %s\n", FormatTimestamp(generatedAt))
	b.WriteString(ReportRule + "\n")
	fmt.Fprintf(&b, "Total Servers: %d\n", snap.TotalServers)
	fmt.Fprintf(&b, "Servers with Domains: %d\n", snap.ServersWithDomains)
	if snap.TotalServers != snap.ServersWithDomains {
		fmt.Fprintf(&b, "Servers without Domains: %d\n", snap.ServersWithoutDomains())
	}

	b.WriteString("\nDomain Distribution:\n")
	writeDistribution(&b, snap.Results)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteRollup prints the registrable-domain grouping of snap.
func WriteRollup(w io.Writer, snap Snapshot) error {
	var b strings.Builder
	b.WriteString("\nRegistrable Domain Rollup:\n")
	writeDistribution(&b, snap.Rollup())
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteHistory prints every snapshot read back from the history log.
func WriteHistory(w io.Writer, source string, snaps []Snapshot) error {
	var b strings.Builder
	records := 0
	for _, s := range snaps {
		records += len(s.Results)
	}
	fmt.Fprintf(&b, "History: %s (%d snapshots, %d records)\n", source, len(snaps), records)
	for _, s := range snaps {
		fmt.Fprintf(&b, "\n%s  total=%d with_domains=%d\n", s.Timestamp, s.TotalServers, s.ServersWithDomains)
		writeDistribution(&b, s.Results)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDistribution(b *strings.Builder, results []AnalysisResult) {
	for _, r := range results {
		fmt.Fprintf(b, "- %-*s: %d servers (%s%%)\n", DomainColumnWidth, r.Domain, r.ServerCount, FormatFixed(r.Percentage, 1))
	}
}
