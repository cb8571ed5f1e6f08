// Package logging builds the run logger: a console handler honoring the
// requested verbosity plus an optional per-run UTF-8 log file that always
// records at debug level. Old run logs are pruned so only the most recent
// few remain.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// KeepRunLogs is how many run_*.log files Prune retains.
const KeepRunLogs = 5

// Options control logger construction.
type Options struct {
	Level slog.Level
	// Quiet suppresses console output entirely; the file handler, when
	// configured, still records everything.
	Quiet bool
	// FilePath, when non-empty, adds a debug-level text handler writing to
	// that file.
	FilePath string
	// ConsoleWriter defaults to os.Stderr.
	ConsoleWriter io.Writer
}

// New builds the logger. The returned closer flushes and closes the log
// file, if any, and is safe to call when no file was configured.
func New(opts Options) (*slog.Logger, func() error, error) {
	var handlers []slog.Handler

	if !opts.Quiet {
		w := opts.ConsoleWriter
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level}))
	}

	closer := func() error { return nil }
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.FilePath, err)
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closer = f.Close
	}

	if len(handlers) == 0 {
		return slog.New(slog.DiscardHandler), closer, nil
	}
	if len(handlers) == 1 {
		return slog.New(handlers[0]), closer, nil
	}
	return slog.New(fanout{handlers}), closer, nil
}

// RunLogPath names the per-run log file: run_<type>_<yyyymm>_<timestamp>.log
// under dir.
func RunLogPath(dir, reportType string, year, month int, now time.Time) string {
	name := fmt.Sprintf("run_%s_%d%02d_%s.log", reportType, year, month, now.Format("20060102_150405"))
	return filepath.Join(dir, name)
}

// Prune removes old run_*.log files from dir, keeping the newest `keep` by
// modification time. A missing directory is not an error.
func Prune(dir string, keep int) error {
	matches, err := filepath.Glob(filepath.Join(dir, "run_*.log"))
	if err != nil {
		return err
	}
	if len(matches) <= keep {
		return nil
	}

	type entry struct {
		path string
		mod  time.Time
	}
	entries := make([]entry, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		entries = append(entries, entry{m, info.ModTime()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].mod.After(entries[j].mod) })

	var errs []error
	for _, e := range entries[keep:] {
		if err := os.Remove(e.path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fanout dispatches each record to every handler that accepts its level.
type fanout struct {
	handlers []slog.Handler
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if h.Enabled(ctx, rec.Level) {
			if err := h.Handle(ctx, rec.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return fanout{next}
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return fanout{next}
}
