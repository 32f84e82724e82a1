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
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CSVHeader is the first line of every history log.
const CSVHeader = "timestamp,domain,percentage,total_servers"

// ErrShortRow is returned by ParseCSVLine for rows with fewer than four fields.
var ErrShortRow = errors.New("csv row has fewer than 4 fields")

// AnalysisResult is one (snapshot, domain) row of the distribution.
// Results are values; nothing mutates one after the analyzer or the parser built it.
type AnalysisResult struct {
	Timestamp    string  // shared by every result of one run
	Domain       string  // lowercase
	Percentage   float64 // ServerCount * 100 / TotalServers
	TotalServers int
	ServerCount  int
}

// ResultKey identifies a logical history record. Two results with the same key
// are the same record even when their counts differ.
type ResultKey struct {
	Timestamp string
	Domain    string
}

// Key returns the identity of r.
func (r AnalysisResult) Key() ResultKey {
	return ResultKey{Timestamp: r.Timestamp, Domain: r.Domain}
}

// Equal compares identity only, see ResultKey.
func (r AnalysisResult) Equal(other AnalysisResult) bool {
	return r.Key() == other.Key()
}

// ToCSVLine renders the history row for r, newline included.
// Format: timestamp,domain,percentage(2 decimals),total_servers
func (r AnalysisResult) ToCSVLine() string {
	return fmt.Sprintf("%s,%s,%s,%d\n", r.Timestamp, r.Domain, FormatFixed(r.Percentage, 2), r.TotalServers)
}

func (r AnalysisResult) String() string {
	return fmt.Sprintf("AnalysisResult{timestamp='%s', domain='%s', percentage=%s%%, totalServers=%d, serverCount=%d}",
		r.Timestamp, r.Domain, FormatFixed(r.Percentage, 2), r.TotalServers, r.ServerCount)
}

// ParseCSVLine reads a history row back. Fields are split on ',' with no quoting
// support; extra fields past the fourth are ignored. ServerCount is not stored and
// is recomputed as round(percentage * total / 100), so it may be off by one.
func ParseCSVLine(line string) (AnalysisResult, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 4 {
		return AnalysisResult{}, ErrShortRow
	}

	percentage, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("parsing percentage: %w", err)
	}
	total, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("parsing total_servers: %w", err)
	}

	return AnalysisResult{
		Timestamp:    strings.TrimSpace(parts[0]),
		Domain:       strings.TrimSpace(parts[1]),
		Percentage:   percentage,
		TotalServers: total,
		ServerCount:  int(math.Round(percentage * float64(total) / 100.0)),
	}, nil
}

// DedupeResults collapses results sharing a ResultKey. The last occurrence wins
// but keeps the position of the first.
func DedupeResults(results []AnalysisResult) []AnalysisResult {
	index := make(map[ResultKey]int, len(results))
	out := make([]AnalysisResult, 0, len(results))
	for _, r := range results {
		if i, ok := index[r.Key()]; ok {
			out[i] = r
			continue
		}
		index[r.Key()] = len(out)
		out = append(out, r)
	}
	return out
}

// GroupSnapshots rebuilds one Snapshot per timestamp, in order of first
// appearance. TotalServers comes from the first row of each group and
// ServersWithDomains is the sum of the recomputed counts.
func GroupSnapshots(results []AnalysisResult) []Snapshot {
	index := make(map[string]int)
	var snaps []Snapshot
	for _, r := range results {
		i, ok := index[r.Timestamp]
		if !ok {
			i = len(snaps)
			index[r.Timestamp] = i
			snaps = append(snaps, Snapshot{Timestamp: r.Timestamp, TotalServers: r.TotalServers})
		}
		snaps[i].ServersWithDomains += r.ServerCount
		snaps[i].Results = append(snaps[i].Results, r)
	}
	for i := range snaps {
		sortResults(snaps[i].Results)
	}
	return snaps
}

// FormatFixed renders v with places decimals. Rounding is half up on the
// shortest decimal form of v, so 12.125 becomes "12.13" where %.2f gives "12.12".
func FormatFixed(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', places, 64)
	}
	sign := ""
	if math.Signbit(v) {
		sign = "-"
	}
	intPart, frac, _ := strings.Cut(strconv.FormatFloat(math.Abs(v), 'f', -1, 64), ".")
	if len(frac) < places {
		frac += strings.Repeat("0", places-len(frac))
	}

	digits := []byte(intPart + frac[:places])
	if len(frac) > places && frac[places] >= '5' {
		i := len(digits) - 1
		for ; i >= 0; i-- {
			if digits[i] != '9' {
				digits[i]++
				break
			}
			digits[i] = '0'
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		}
	}

	if places == 0 {
		return sign + string(digits)
	}
	point := len(digits) - places
	return sign + string(digits[:point]) + "." + string(digits[point:])
}
