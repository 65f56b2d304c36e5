// Package config loads pasta's TOML configuration: discovery across the
// current directory, XDG_CONFIG_HOME, and ancestor directories, plus the
// defaulting and re-serialization the `config` subcommand needs.
package config

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// LoadConfig loads configuration from path. If path is empty, Discover
// is used to find the effective file; if discovery also comes up empty,
// LoadConfig returns the all-defaults Config rather than an error — an
// absent config file is a normal, documented state.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = Discover()
	}
	if path == "" {
		cfg := applyDefaults(Config{})
		return &cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	var doc root
	if _, err := toml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := applyDefaults(doc.Pasta)
	return &cfg, nil
}

// root wraps Config under the top-level table named after the
// application: the file is `[pasta]`/`[pasta.logging]`/`[[pasta.prompt]]`,
// not a bare top-level document.
type root struct {
	Pasta Config `toml:"pasta"`
}

// ToHash returns an MD5 hash of the marshaled configuration, for change
// detection between loads.
func (cfg *Config) ToHash() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(root{Pasta: *cfg}); err != nil {
		return "", err
	}
	sum := md5.Sum(buf.Bytes())
	return fmt.Sprintf("%x", sum), nil
}

// Render serializes cfg as TOML under the `[pasta]` table. If cfg is
// indistinguishable from the built-in defaults, every line is emitted
// commented out, so the file documents the defaults without silently
// pinning them.
func Render(cfg *Config) (string, error) {
	var body bytes.Buffer
	if err := toml.NewEncoder(&body).Encode(root{Pasta: *cfg}); err != nil {
		return "", err
	}

	if !isDefault(*cfg) {
		return body.String(), nil
	}

	var buf bytes.Buffer
	for _, line := range bytes.Split(body.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		buf.WriteString("# ")
		buf.Write(line)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}
