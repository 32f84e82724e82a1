package metrics

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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-stp/srvdomains/internal/core"
)

func sampleSnapshot() core.Snapshot {
	return core.Snapshot{
		Timestamp:          "2025-03-01T12:30:45",
		TotalServers:       4,
		ServersWithDomains: 3,
		Results: []core.AnalysisResult{
			{Domain: "corp.example.com", Percentage: 50, TotalServers: 4, ServerCount: 2},
			{Domain: "other.net", Percentage: 25, TotalServers: 4, ServerCount: 1},
		},
	}
}

func TestObserveSnapshot(t *testing.T) {
	t.Parallel()

	m := New()
	takenAt := time.Unix(1740832245, 0)
	m.ObserveSnapshot(sampleSnapshot(), takenAt)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.ServersTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ServersWithDomains))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DomainServers.WithLabelValues("corp.example.com")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.DomainShare.WithLabelValues("other.net")))
	assert.Equal(t, float64(takenAt.Unix()), testutil.ToFloat64(m.SnapshotTimestamp))

	// A second snapshot replaces the per-domain series.
	m.ObserveSnapshot(core.Snapshot{TotalServers: 1, ServersWithDomains: 1, Results: []core.AnalysisResult{
		{Domain: "only.example", Percentage: 100, TotalServers: 1, ServerCount: 1},
	}}, takenAt)
	assert.Equal(t, 1, testutil.CollectAndCount(m.DomainShare))
}

func TestRecordFailureUsesKind(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordFailure("analyze", nil)
	m.RecordFailure("analyze", core.NewInputNotFound("x"))
	m.RecordFailure("analyze", core.WrapIO("appending history", "y", errors.New("disk full")))
	m.RecordFailure("analyze", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunFailures.WithLabelValues("analyze", "input_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunFailures.WithLabelValues("analyze", "io")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunFailures.WithLabelValues("analyze", "unexpected")))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveSnapshot(sampleSnapshot(), time.Now())
	m.HistoryRowsAppended.Add(2)
	m.MeasureDuration("analyze")()

	path := filepath.Join(t.TempDir(), "textfile", "srvdomains.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `srvdomains_domain_servers{domain="corp.example.com"} 2`)
	assert.Contains(t, out, "srvdomains_history_rows_appended_total 2")
	assert.Contains(t, out, `srvdomains_run_duration_seconds_count{command="analyze"} 1`)
	assert.False(t, strings.Contains(out, "go_goroutines"), "fresh registry must not carry runtime collectors")
}
