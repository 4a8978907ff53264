// Package cli implements the pybundle command-line interface.
//
// The root command builds an offline bundle from the Python imports found
// under a directory. Subcommands expose the individual steps:
//   - bundle: scan, resolve and download into a bundle (the default)
//   - scan: print the requirement set as a table, JSON, YAML or text
//   - aliases: show the import name to package name table
//   - graph: emit the file to package import graph as DOT or SVG
//   - serve: run the HTTP scan API with Prometheus metrics
//   - cache: manage the package index response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and handed to the pipeline runner.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a leveled logger that stamps each line with a
// centisecond clock, e.g. "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stageTimer logs the end of a long-running stage with its elapsed time.
type stageTimer struct {
	logger *log.Logger
	start  time.Time
}

func startStage(l *log.Logger) stageTimer {
	return stageTimer{logger: l, start: time.Now()}
}

// done logs msg at info level. keyvals are appended after an "elapsed"
// field rounded to milliseconds.
func (s stageTimer) done(msg string, keyvals ...any) {
	kv := append([]any{"elapsed", time.Since(s.start).Round(time.Millisecond)}, keyvals...)
	s.logger.Info(msg, kv...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default when a command runs outside of it.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
