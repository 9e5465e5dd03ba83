package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atlastag/internal/catalog"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
assets_dir = %q
log_dir = %q

[logging]
format = "console"
level = "error"
`, filepath.Join(base, "assets"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func writeKenneyIndex(t *testing.T, base string) {
	t.Helper()
	dir := filepath.Join(base, "assets", "kenney")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	cat := catalog.New(16, 16, 48)
	for i, key := range []string{"tiles/crate_a.png", "tiles/crate_b.png", "tiles/crate_c.png"} {
		cat.Put(key, &catalog.Sprite{Row: 0, Col: i, TilesX: 1, TilesY: 1})
	}
	if err := catalog.Save(cat, filepath.Join(dir, "kenney_atlas_index.json")); err != nil {
		t.Fatalf("save index: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	ctx := &commandContext{}
	root := newRootCommand(ctx)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

func TestEnrichDryRunPlansBatches(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	writeKenneyIndex(t, base)

	out, err := runCLI(t, configPath, "enrich", "--atlas", "kenney", "--dry-run", "--batch-size", "2")
	if err != nil {
		t.Fatalf("enrich --dry-run: %v\n%s", err, out)
	}
	requireContains(t, out, "kenney: 3 of 3 sprites need enrichment, 2 batches")
	requireContains(t, out, "tiles/crate_a.png .. tiles/crate_b.png")
}

func TestUnknownAtlasRejected(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	_, err := runCLI(t, configPath, "check", "--atlas", "nonesuch")
	if err == nil || !strings.Contains(err.Error(), "unknown atlas") {
		t.Fatalf("expected unknown atlas error, got %v", err)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "fresh", "config.toml")

	out, err := runCLI(t, target, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --force must refuse to clobber.
	_, err = runCLI(t, target, "config", "init")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already-exists error, got %v", err)
	}
}

func TestConfigShowPrintsResolvedValues(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	requireContains(t, out, configPath)
	requireContains(t, out, "assets_dir")
	requireContains(t, out, "batch_size")
}
