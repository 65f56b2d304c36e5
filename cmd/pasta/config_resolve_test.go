package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pasta.toml")
	contents := "[pasta.logging]\nlevel = \"info\"\nmax_size = 100\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	g := &globalFlags{configPath: path, logLevel: "debug"}
	cfg, err := resolveConfig(g)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug (flag should win)", cfg.Logging.Level)
	}
	if cfg.Logging.MaxSize != 100 {
		t.Errorf("Logging.MaxSize = %d, want 100 (from file, untouched by flags)", cfg.Logging.MaxSize)
	}
}

func TestResolveConfig_NoFlagsKeepsFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pasta.toml")
	contents := "[pasta.logging]\nlevel = \"debug\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	g := &globalFlags{configPath: path}
	cfg, err := resolveConfig(g)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}
