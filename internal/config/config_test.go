package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"atlastag/internal/config"
)

func TestLoadWithoutFileUsesDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Paths.AssetsDir != filepath.Join(tempHome, "assets") {
		t.Fatalf("unexpected assets dir: %q", cfg.Paths.AssetsDir)
	}
	if cfg.Paths.DBPath != filepath.Join(tempHome, "assets", "sprites.db") {
		t.Fatalf("unexpected db path: %q", cfg.Paths.DBPath)
	}
	if cfg.Oracle.Binary != "claude" {
		t.Fatalf("unexpected oracle binary: %q", cfg.Oracle.Binary)
	}
	if cfg.Oracle.MaxAttempts != 3 {
		t.Fatalf("unexpected max attempts: %d", cfg.Oracle.MaxAttempts)
	}
	if cfg.Enrich.BatchSize != 12 || cfg.Enrich.VerifyBatchSize != 36 {
		t.Fatalf("unexpected batch sizes: %d/%d", cfg.Enrich.BatchSize, cfg.Enrich.VerifyBatchSize)
	}
}

func TestLoadExplicitFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[oracle]
model = "opus"
timeout_seconds = 30

[enrich]
batch_size = 4

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config to exist at %q", path)
	}
	if cfg.Oracle.Model != "opus" {
		t.Fatalf("unexpected model: %q", cfg.Oracle.Model)
	}
	if cfg.Oracle.TimeoutSeconds != 30 {
		t.Fatalf("unexpected timeout: %d", cfg.Oracle.TimeoutSeconds)
	}
	if cfg.Enrich.BatchSize != 4 {
		t.Fatalf("unexpected batch size: %d", cfg.Enrich.BatchSize)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	// Unset keys keep defaults.
	if cfg.Enrich.VerifyBatchSize != 36 {
		t.Fatalf("expected default verify batch size, got %d", cfg.Enrich.VerifyBatchSize)
	}
}

func TestValidateRejectsBadFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad log format")
	}
}
