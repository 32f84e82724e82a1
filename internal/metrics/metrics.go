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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/x-stp/srvdomains/internal/core"
)

// Metrics holds the Prometheus collectors of one srvdomains invocation.
// A run is short-lived, so nothing is served over HTTP; WriteTextfile exports the
// registry in the node_exporter textfile collector format instead.
type Metrics struct {
	registry *prometheus.Registry

	// Snapshot metrics
	ServersTotal       prometheus.Gauge
	ServersWithDomains prometheus.Gauge
	DomainServers      *prometheus.GaugeVec
	DomainShare        *prometheus.GaugeVec
	SnapshotTimestamp  prometheus.Gauge

	// History log metrics
	HistoryRowsAppended  prometheus.Counter
	HistoryRecords       prometheus.Gauge
	HistoryMalformedRows prometheus.Gauge

	// Run metrics
	RunDuration *prometheus.HistogramVec
	RunFailures *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	f := promauto.With(registry)
	buckets := []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

	return &Metrics{
		registry: registry,

		ServersTotal: f.NewGauge(prometheus.GaugeOpts{
			Name: "srvdomains_servers_total",
			Help: "Server names read in the last analysis run",
		}),
		ServersWithDomains: f.NewGauge(prometheus.GaugeOpts{
			Name: "srvdomains_servers_with_domain",
			Help: "Server names a domain was extracted from in the last analysis run",
		}),
		DomainServers: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srvdomains_domain_servers",
			Help: "Servers per domain in the last analysis run",
		}, []string{"domain"}),
		DomainShare: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srvdomains_domain_share_percent",
			Help: "Share of all servers per domain in the last analysis run (0-100)",
		}, []string{"domain"}),
		SnapshotTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "srvdomains_snapshot_timestamp_seconds",
			Help: "Unix time of the last analysis snapshot",
		}),

		HistoryRowsAppended: f.NewCounter(prometheus.CounterOpts{
			Name: "srvdomains_history_rows_appended_total",
			Help: "Rows appended to the history log by this invocation",
		}),
		HistoryRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "srvdomains_history_records",
			Help: "Data rows in the history log, header excluded",
		}),
		HistoryMalformedRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "srvdomains_history_malformed_rows",
			Help: "History rows that could not be parsed back",
		}),

		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "srvdomains_run_duration_seconds",
			Help:    "Wall time of a command",
			Buckets: buckets,
		}, []string{"command"}),
		RunFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "srvdomains_run_failures_total",
			Help: "Failed commands by error kind",
		}, []string{"command", "kind"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSnapshot records the distribution of snap, stamped at takenAt.
func (m *Metrics) ObserveSnapshot(snap core.Snapshot, takenAt time.Time) {
	m.ServersTotal.Set(float64(snap.TotalServers))
	m.ServersWithDomains.Set(float64(snap.ServersWithDomains))
	m.DomainServers.Reset()
	m.DomainShare.Reset()
	for _, r := range snap.Results {
		m.DomainServers.WithLabelValues(r.Domain).Set(float64(r.ServerCount))
		m.DomainShare.WithLabelValues(r.Domain).Set(r.Percentage)
	}
	m.SnapshotTimestamp.Set(float64(takenAt.Unix()))
}

// MeasureDuration starts timing command and returns the function that records it.
func (m *Metrics) MeasureDuration(command string) func() {
	start := time.Now()
	return func() {
		m.RunDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
	}
}

// RecordFailure counts a failed command under the Kind of err.
func (m *Metrics) RecordFailure(command string, err error) {
	if err == nil {
		return
	}
	m.RunFailures.WithLabelValues(command, core.KindOf(err).String()).Inc()
}

// WriteTextfile writes the registry to path atomically, creating its directory.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
