package config

// LoggingConfig controls the applog sink.
type LoggingConfig struct {
	Level     string `toml:"level"`
	Directory string `toml:"directory"`
	MaxSize   int    `toml:"max_size"`
	Backups   int    `toml:"backups"`
}

// PromptRule names a handler-facing convention for recognizing a child's
// prompt. It is made available to handlers but does not itself alter the
// segmenter's default classification.
type PromptRule struct {
	Command     string `toml:"command"`
	Description string `toml:"description"`
	Pattern     string `toml:"pattern"`
}

// Config is the top-level `[pasta]` table.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Prompt  []PromptRule  `toml:"prompt"`
}
