package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig_MissingExplicitPathReturnsError(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err == nil {
		t.Fatalf("expected an error for a path that does not exist")
	}
	_ = cfg
}

func TestLoadConfig_EmptyPathFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	old, _ := os.Getwd()
	defer os.Chdir(old)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "nonexistent-xdg"))

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.MaxSize != 2048 {
		t.Errorf("Logging.MaxSize = %d, want 2048", cfg.Logging.MaxSize)
	}
	if cfg.Logging.Backups != 3 {
		t.Errorf("Logging.Backups = %d, want 3", cfg.Logging.Backups)
	}
}

func TestLoadConfig_ParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pasta.toml")
	contents := `
[pasta.logging]
level = "debug"
max_size = 10
backups = 1

[[pasta.prompt]]
command = "bash"
description = "bash prompt"
pattern = "\\$ $"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Logging.MaxSize != 10 {
		t.Errorf("Logging.MaxSize = %d, want 10", cfg.Logging.MaxSize)
	}
	if len(cfg.Prompt) != 1 || cfg.Prompt[0].Command != "bash" {
		t.Fatalf("Prompt = %+v", cfg.Prompt)
	}
}

func TestRender_CommentsWhenAllDefaults(t *testing.T) {
	cfg := applyDefaults(Config{})
	out, err := Render(&cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if !strings.HasPrefix(line, "# ") {
			t.Errorf("expected every line commented, got %q", line)
		}
	}
}

func TestRender_UncommentedWhenCustomized(t *testing.T) {
	cfg := applyDefaults(Config{})
	cfg.Logging.Level = "debug"
	out, err := Render(&cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "#") {
		t.Errorf("expected uncommented output for a customized config, got %q", out)
	}
}

func TestToHash_StableForEqualConfigs(t *testing.T) {
	a := applyDefaults(Config{})
	b := applyDefaults(Config{})
	ha, err := a.ToHash()
	if err != nil {
		t.Fatalf("ToHash: %v", err)
	}
	hb, err := b.ToHash()
	if err != nil {
		t.Fatalf("ToHash: %v", err)
	}
	if ha != hb {
		t.Errorf("expected equal configs to hash equally: %q != %q", ha, hb)
	}
}
