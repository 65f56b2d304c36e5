package main

import (
	"io"
	"log/slog"

	"github.com/pedregon/pasta/internal/applog"
	"github.com/pedregon/pasta/internal/config"
)

// resolveConfig loads the effective configuration and overlays any
// persistent flags the caller set, flags winning over the file.
func resolveConfig(g *globalFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logDir != "" {
		cfg.Logging.Directory = g.logDir
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logMaxSize > 0 {
		cfg.Logging.MaxSize = g.logMaxSize
	}
	if g.logBackups > 0 {
		cfg.Logging.Backups = g.logBackups
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	return applog.New(applog.Options{
		Directory: cfg.Logging.Directory,
		Level:     cfg.Logging.Level,
		MaxSizeMB: cfg.Logging.MaxSize,
		Backups:   cfg.Logging.Backups,
	})
}
