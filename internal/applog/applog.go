// Package applog builds the structured logger the core accepts as an
// optional collaborator: size-rotated files under a configured
// directory, named by creation epoch-nanoseconds, fronted by log/slog.
package applog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the sink. Zero value is not directly usable; callers
// normally derive this from internal/config.LoggingConfig.
type Options struct {
	Directory string
	Level     string // "info" or "debug"
	MaxSizeMB int
	Backups   int
	// Now is overridable for tests; nil uses time.Now.
	Now func() time.Time
}

// New opens (creating if needed) the configured log directory and
// returns a ready slog.Logger plus an io.Closer to flush and release the
// underlying file on shutdown.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
		return nil, nil, fmt.Errorf("applog: create log directory %s: %w", opts.Directory, err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	filename := filepath.Join(opts.Directory, fmt.Sprintf("%d.log", now().UnixNano()))

	sink := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.Backups,
		Compress:   false,
	}

	level := slog.LevelInfo
	if opts.Level == "debug" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level})
	return slog.New(handler), sink, nil
}

// ActionCompleted logs one `info` line per completed Action: its id and
// elapsed time.
func ActionCompleted(logger *slog.Logger, id fmt.Stringer, elapsedSeconds float64) {
	logger.Info("action completed", "id", id.String(), "elapsed_seconds", elapsedSeconds)
}
