// Package config loads srvdomains settings and builds the logger.
package config

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
	"strings"

	"github.com/cristalhq/aconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/x-stp/srvdomains/internal/core"
)

// EnvPrefix prefixes every environment variable, e.g. SRVDOMAINS_OUTPUT.
const EnvPrefix = "SRVDOMAINS"

// Config holds the run settings. Precedence, lowest first: struct defaults,
// the JSON config file, SRVDOMAINS_* environment variables, then command-line flags
// applied by the caller.
type Config struct {
	Input       string `json:"input" env:"INPUT" default:"input/servers.txt"`
	Output      string `json:"output" env:"OUTPUT" default:"output/domain_history.csv"`
	BackupDir   string `json:"backup_dir" env:"BACKUP_DIR" default:"output/backups"`
	MetricsFile string `json:"metrics_file" env:"METRICS_FILE"`
	LogLevel    string `json:"log_level" env:"LOG_LEVEL" default:"info"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Input:     core.DefaultInputFile,
		Output:    core.DefaultOutputCSV,
		BackupDir: core.DefaultBackupDir,
		LogLevel:  "info",
	}
}

// Load reads defaults, the optional JSON file at path (skipped when empty) and
// the environment. Command-line flags are left to the caller.
func Load(path string) (Config, error) {
	var cfg Config
	acfg := aconfig.Config{
		SkipFlags:          true,
		EnvPrefix:          EnvPrefix,
		AllowUnknownEnvs:   true,
		FailOnFileNotFound: true,
	}
	if path != "" {
		acfg.Files = []string{path}
	} else {
		acfg.SkipFiles = true
	}

	loader := aconfig.LoaderFor(&cfg, acfg)
	if err := loader.Load(); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings a run cannot work with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return fmt.Errorf("input path must not be empty")
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLogLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}
}

// NewLogger builds a console logger writing to stderr, keeping stdout for the report.
// Stack traces are attached explicitly with zap.Stack where wanted.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	zc.Sampling = nil
	return zc.Build()
}
