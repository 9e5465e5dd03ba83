package deps

import (
	"os"
	"path/filepath"
	"testing"

	"atlastag/internal/config"
)

func TestRequirementsUseConfiguredBinary(t *testing.T) {
	cfg := config.Default()
	cfg.Oracle.Binary = "my-oracle"
	reqs := Requirements(&cfg)
	if len(reqs) != 1 || reqs[0].Command != "my-oracle" {
		t.Fatalf("unexpected requirements: %+v", reqs)
	}
}

func TestCheckBinaries(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "present-tool")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write stub binary: %v", err)
	}
	t.Setenv("PATH", dir)

	statuses := CheckBinaries([]Requirement{
		{Name: "present", Command: "present-tool"},
		{Name: "absent", Command: "missing-tool"},
		{Name: "unset", Command: ""},
	})
	if !statuses[0].Available {
		t.Fatalf("expected present-tool to be found: %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Detail == "" {
		t.Fatalf("expected missing-tool to be reported missing: %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("expected unset command detail: %+v", statuses[2])
	}
}
