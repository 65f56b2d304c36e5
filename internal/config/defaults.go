package config

const appName = "pasta"

func applyDefaults(cfg Config) Config {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSize <= 0 {
		cfg.Logging.MaxSize = 2048
	}
	if cfg.Logging.Backups <= 0 {
		cfg.Logging.Backups = 3
	}
	if cfg.Logging.Directory == "" {
		cfg.Logging.Directory = defaultLogDirectory()
	}
	return cfg
}

// isDefault reports whether cfg is indistinguishable from applyDefaults
// applied to a zero Config, field by field — used by the `config`
// subcommand to decide whether to comment out the whole emitted tree.
func isDefault(cfg Config) bool {
	return cfg.Logging == applyDefaults(Config{}).Logging && len(cfg.Prompt) == 0
}
