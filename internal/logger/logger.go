// Package logger builds the slog loggers used by the allocator and heapctl.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnvLogAlloc enables allocation logging to stderr when set to a non-empty value.
const EnvLogAlloc = "HEAPKIT_LOG_ALLOC"

const (
	logPrefix     = "heapctl-"
	logSuffix     = ".log"
	retentionDays = 30
)

// L is the global logger instance. It discards output unless HEAPKIT_LOG_ALLOC
// is set or Init is called.
var L = fromEnv()

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Output  io.Writer  // Text output. Ignored when LogDir is set
	LogDir  string     // Directory for dated JSON log files
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
}

// New builds a logger from opts without touching L. The returned closer
// releases the log file, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if !opts.Enabled {
		return Discard(), noop, nil
	}

	level := opts.Level
	if level == 0 {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.LogDir == "" {
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		return slog.New(slog.NewTextHandler(out, handlerOpts)), noop, nil
	}

	if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
		return nil, noop, err
	}

	// Clean up old logs (best-effort, ignore errors)
	cleanOldLogs(opts.LogDir, time.Now())

	filename := filepath.Join(opts.LogDir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, noop, err
	}
	return slog.New(slog.NewJSONHandler(f, handlerOpts)), f.Close, nil
}

// Init replaces L. Call before building allocators that should use it.
func Init(opts Options) (func() error, error) {
	l, closer, err := New(opts)
	if err != nil {
		return closer, err
	}
	L = l
	return closer, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fromEnv() *slog.Logger {
	if os.Getenv(EnvLogAlloc) == "" {
		return Discard()
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// cleanOldLogs removes log files older than retentionDays.
func cleanOldLogs(logDir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}

		// Parse date from filename: heapctl-2024-01-05.log
		dateStr := strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), logPrefix)
		logDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		if logDate.Before(cutoff) {
			os.Remove(filepath.Join(logDir, name))
		}
	}
}
