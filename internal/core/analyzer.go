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
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/x-stp/srvdomains/internal/domainlib"
)

// Snapshot is the outcome of one analysis run. Every result shares Timestamp.
type Snapshot struct {
	Timestamp          string
	TotalServers       int // retained lines, with or without a domain
	ServersWithDomains int
	Results            []AnalysisResult // sorted, see sortResults
}

// ServersWithoutDomains is the number of retained lines no domain was extracted from.
func (s Snapshot) ServersWithoutDomains() int {
	return s.TotalServers - s.ServersWithDomains
}

// Rollup groups the results by registrable domain (eTLD+1). Percentages stay
// relative to TotalServers. The history log never sees rolled-up rows.
func (s Snapshot) Rollup() []AnalysisResult {
	counts := make(map[string]int, len(s.Results))
	for _, r := range s.Results {
		counts[domainlib.RegistrableDomain(r.Domain)] += r.ServerCount
	}
	return buildResults(s.Timestamp, counts, s.TotalServers)
}

// Analyzer turns a list of server names into a Snapshot.
type Analyzer struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyzer returns an Analyzer stamping snapshots with the local time.
// A nil logger is replaced by a no-op logger.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger, now: time.Now}
}

// FormatTimestamp renders t the way snapshots and the report do.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Now returns the analyzer's current time.
func (a *Analyzer) Now() time.Time {
	return a.now()
}

// Analyze counts one server per name and one domain hit per name a domain can be
// extracted from. The per-domain counts live only for the duration of the call.
func (a *Analyzer) Analyze(serverNames []string) Snapshot {
	counts := make(map[string]int)
	withDomains := 0

	for _, name := range serverNames {
		domain, ok := domainlib.ExtractDomain(name)
		if !ok {
			host, _ := domainlib.ExtractHostname(name)
			a.logger.Debug("no domain for server", zap.String("server", name), zap.String("hostname", host))
			continue
		}
		counts[domain]++
		withDomains++
	}

	snap := Snapshot{
		Timestamp:          FormatTimestamp(a.now()),
		TotalServers:       len(serverNames),
		ServersWithDomains: withDomains,
	}
	snap.Results = buildResults(snap.Timestamp, counts, snap.TotalServers)

	a.logger.Debug("analysis complete",
		zap.Int("total_servers", snap.TotalServers),
		zap.Int("servers_with_domains", withDomains),
		zap.Int("domains", len(snap.Results)))
	return snap
}

func buildResults(timestamp string, counts map[string]int, total int) []AnalysisResult {
	results := make([]AnalysisResult, 0, len(counts))
	for domain, count := range counts {
		percentage := 0.0
		if total > 0 {
			percentage = float64(count) * 100.0 / float64(total)
		}
		results = append(results, AnalysisResult{
			Timestamp:    timestamp,
			Domain:       domain,
			Percentage:   percentage,
			TotalServers: total,
			ServerCount:  count,
		})
	}
	sortResults(results)
	return results
}

// sortResults orders by percentage descending, then domain ascending.
func sortResults(results []AnalysisResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Percentage != results[j].Percentage {
			return results[i].Percentage > results[j].Percentage
		}
		return results[i].Domain < results[j].Domain
	})
}

// ParseServerNames reads one server name per line, trimming each and skipping
// blank lines and lines starting with CommentPrefix.
func ParseServerNames(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxServerLineBytes)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// ReadServerNames opens path and parses it with ParseServerNames. A missing file
// yields a KindInputNotFound error; any other failure is KindIO.
func ReadServerNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewInputNotFound(path)
		}
		return nil, WrapIO("opening server list", path, err)
	}
	defer f.Close()

	names, err := ParseServerNames(f)
	if err != nil {
		return nil, WrapIO("reading server list", path, err)
	}
	return names, nil
}
