/*
Package main is the entry point for the srvdomains command-line application.

srvdomains reads a list of server hostnames, groups them by the domain that
follows the first label and reports how the servers are spread across those
domains. Every analysis run appends a timestamped snapshot to a CSV history
log so the distribution can be followed over time.

Commands:
  - `srvdomains [input]` or `srvdomains analyze [input]`: analyze a server list,
    print the report and append the snapshot to the history log.
  - `srvdomains history`: print the snapshots stored in the history log.
  - `srvdomains count`: print the number of records in the history log.
  - `srvdomains backup [dest]`: copy the history log, optionally gzip-compressed.

Settings come from struct defaults, an optional JSON file (--config),
SRVDOMAINS_* environment variables and finally the flags that were set
explicitly. Metrics can be written in the Prometheus text format with
--metrics-file for collection by a node exporter textfile collector.

Exit codes: 0 on success, 1 on I/O failure, 2 when the input file is missing
and 3 for configuration or unexpected errors.
*/
package main

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
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/x-stp/srvdomains/internal/config"
	"github.com/x-stp/srvdomains/internal/core"
	srvio "github.com/x-stp/srvdomains/internal/io"
	"github.com/x-stp/srvdomains/internal/metrics"
	"github.com/x-stp/srvdomains/internal/util"
)

// options holds the raw flag values of one invocation.
type options struct {
	configFile  string
	logLevel    string
	output      string
	backupDir   string
	metricsFile string

	// analyze
	backup bool
	rollup bool

	// history
	domain string
	dedupe bool

	// backup
	compress bool
}

// app carries what the commands share once configuration is resolved.
type app struct {
	opts    options
	cfg     config.Config
	logger  *zap.Logger
	tracker *srvio.CSVTracker
	metrics *metrics.Metrics
	stdout  io.Writer
	stderr  io.Writer

	// command is the name used for metric labels.
	command string
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		cfg:     config.Default(),
		logger:  zap.NewNop(),
		metrics: metrics.New(),
		stdout:  stdout,
		stderr:  stderr,
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "srvdomains [input]",
		Short: "srvdomains - Server domain distribution tracker",
		Long: `Reads server hostnames (one per line), extracts the domain after the first label,
prints the distribution of servers across domains and appends the snapshot to a CSV history log.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(inputArg(a.cfg, args))
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.opts.configFile, "config", "", "JSON config file")
	pf.StringVar(&a.opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVarP(&a.opts.output, "output", "o", "", "History CSV path (default \""+core.DefaultOutputCSV+"\")")
	pf.StringVar(&a.opts.backupDir, "backup-dir", "", "Directory for history backups (default \""+core.DefaultBackupDir+"\")")
	pf.StringVar(&a.opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [input]",
		Short: "Analyze a server list and append the snapshot to the history log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(inputArg(a.cfg, args))
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print the snapshots stored in the history log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory()
		},
	}
	historyCmd.Flags().StringVar(&a.opts.domain, "domain", "", "Only show rows for this domain")
	historyCmd.Flags().BoolVar(&a.opts.dedupe, "dedupe", false, "Collapse rows with the same timestamp and domain, keeping the last")

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of records in the history log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCount()
		},
	}

	backupCmd := &cobra.Command{
		Use:   "backup [dest]",
		Short: "Copy the history log to a backup file",
		Long: `Copies the history log to dest. Without dest the copy goes to the backup directory,
named after the history file and the current time. A dest ending in .gz is gzip-compressed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := ""
			if len(args) == 1 {
				dest = args[0]
			}
			return a.runBackup(dest)
		},
	}
	backupCmd.Flags().BoolVar(&a.opts.compress, "compress", false, "Gzip the default backup destination")

	bindAnalyzeFlags(rootCmd.Flags(), &a.opts)
	bindAnalyzeFlags(analyzeCmd.Flags(), &a.opts)

	rootCmd.AddCommand(analyzeCmd, historyCmd, countCmd, backupCmd)
	return rootCmd
}

func bindAnalyzeFlags(fs *pflag.FlagSet, opts *options) {
	fs.BoolVar(&opts.backup, "backup", false, "Back up the history log before appending")
	fs.BoolVar(&opts.rollup, "rollup", false, "Also print the distribution by registrable domain")
}

func inputArg(cfg config.Config, args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return cfg.Input
}

// setup resolves configuration and builds the logger and tracker. Flags only
// override the loaded config when they were set on the command line.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.command = cmd.Name()
	if cmd == cmd.Root() {
		a.command = "analyze"
	}

	cfg, err := config.Load(a.opts.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.opts.logLevel
	}
	if flags.Changed("output") {
		cfg.Output = a.opts.output
	}
	if flags.Changed("backup-dir") {
		cfg.BackupDir = a.opts.backupDir
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = a.opts.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.tracker = srvio.NewCSVTracker(logger)
	return nil
}

func (a *app) runAnalyze(input string) error {
	defer a.metrics.MeasureDuration("analyze")()

	names, err := core.ReadServerNames(input)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintf(a.stdout, "No server names found in file: %s\n", input)
		return nil
	}
	a.logger.Debug("server names read", zap.String("input", input), zap.Int("count", len(names)))

	analyzer := core.NewAnalyzer(a.logger)
	generatedAt := analyzer.Now()
	snap := analyzer.Analyze(names)

	if err := core.WriteReport(a.stdout, snap, generatedAt); err != nil {
		return core.WrapIO("write", "report", err)
	}
	if a.opts.rollup {
		if err := core.WriteRollup(a.stdout, snap); err != nil {
			return core.WrapIO("write", "rollup", err)
		}
	}

	output := a.cfg.Output
	if a.opts.backup {
		dest := util.BackupPath(output, a.cfg.BackupDir, generatedAt, false)
		if err := a.tracker.CreateBackup(output, dest); err != nil {
			return core.WrapIO("backup", output, err)
		}
	}

	if err := a.tracker.SaveResults(output, snap.Results); err != nil {
		return core.WrapIO("save results", output, err)
	}
	fmt.Fprintf(a.stdout, "\nResults saved to %s\n", output)

	a.metrics.ObserveSnapshot(snap, generatedAt)
	a.metrics.HistoryRowsAppended.Add(float64(len(snap.Results)))
	a.observeHistory(output)

	a.logger.Info("analysis complete",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("servers", snap.TotalServers),
		zap.Int("domains", len(snap.Results)))
	return nil
}

// observeHistory refreshes the history gauges. Failures only cost the gauges.
func (a *app) observeHistory(path string) {
	count, err := a.tracker.RecordCount(path)
	if err != nil {
		a.logger.Warn("could not count history records", zap.String("path", path), zap.Error(err))
		return
	}
	results, err := a.tracker.ReadResults(path)
	if err != nil {
		a.logger.Warn("could not read history", zap.String("path", path), zap.Error(err))
		return
	}
	a.metrics.HistoryRecords.Set(float64(count))
	a.metrics.HistoryMalformedRows.Set(float64(count - int64(len(results))))
}

func (a *app) runHistory() error {
	defer a.metrics.MeasureDuration("history")()

	path := a.cfg.Output
	results, err := a.tracker.ReadResults(path)
	if err != nil {
		return core.WrapIO("read", path, err)
	}
	a.observeHistory(path)

	if a.opts.dedupe {
		results = core.DedupeResults(results)
	}
	if a.opts.domain != "" {
		filtered := results[:0:0]
		for _, r := range results {
			if r.Domain == a.opts.domain {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if err := core.WriteHistory(a.stdout, path, core.GroupSnapshots(results)); err != nil {
		return core.WrapIO("write", "history", err)
	}
	return nil
}

func (a *app) runCount() error {
	defer a.metrics.MeasureDuration("count")()

	path := a.cfg.Output
	count, err := a.tracker.RecordCount(path)
	if err != nil {
		return core.WrapIO("count", path, err)
	}
	a.metrics.HistoryRecords.Set(float64(count))
	fmt.Fprintf(a.stdout, "%d\n", count)
	return nil
}

func (a *app) runBackup(dest string) error {
	defer a.metrics.MeasureDuration("backup")()

	path := a.cfg.Output
	if !a.tracker.FileExists(path) {
		fmt.Fprintf(a.stdout, "No history file at %s, nothing to back up\n", path)
		return nil
	}
	if dest == "" {
		dest = util.BackupPath(path, a.cfg.BackupDir, core.NewAnalyzer(a.logger).Now(), a.opts.compress)
	}

	if err := a.tracker.CreateBackup(path, dest); err != nil {
		return core.WrapIO("backup", path, err)
	}
	ok, err := srvio.VerifyBackup(path, dest)
	if err != nil {
		return core.WrapIO("verify", dest, err)
	}
	if !ok {
		return core.WrapIO("verify", dest, errors.New("backup contents differ from source"))
	}
	sum, err := srvio.Checksum(path)
	if err != nil {
		return core.WrapIO("checksum", path, err)
	}

	fmt.Fprintf(a.stdout, "Backup written to %s (xxh3 %s)\n", dest, sum)
	return nil
}

// finish reports err on the console, records it and flushes metrics. It
// returns the process exit code.
func (a *app) finish(err error) int {
	if err != nil {
		a.metrics.RecordFailure(a.command, err)
		switch core.KindOf(err) {
		case core.KindInputNotFound:
			fmt.Fprintln(a.stdout, err)
		case core.KindIO:
			fmt.Fprintf(a.stderr, "Error processing file: %v\n", err)
		default:
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	}

	if a.cfg.MetricsFile != "" {
		if werr := a.metrics.WriteTextfile(a.cfg.MetricsFile); werr != nil {
			a.logger.Warn("could not write metrics", zap.String("path", a.cfg.MetricsFile), zap.Error(werr))
		}
	}
	_ = a.logger.Sync()
	return core.ExitCode(err)
}

// execute runs the command tree for args and returns the exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	return executeCmd(a, newRootCmd(a), args)
}

// executeCmd runs rootCmd on behalf of a. Panics are logged with their stack
// and reported as unexpected errors.
func executeCmd(a *app, rootCmd *cobra.Command, args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("unexpected error", zap.Any("panic", r), zap.Stack("stack"))
			code = a.finish(fmt.Errorf("unexpected error: %v", r))
		}
	}()

	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)
	return a.finish(rootCmd.Execute())
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
