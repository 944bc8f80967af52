package deps

import (
	"os"
	"path/filepath"
	"testing"

	"legenda/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestRequirementsFromConfig(t *testing.T) {
	defaults := config.Default()
	cfg := &defaults
	cfg.Whisper.Binary = "whisper-ctranslate2"
	cfg.Whisper.FallbackBinary = "whisper"
	cfg.FFmpeg.Binary = "ffmpeg"

	reqs := Requirements(cfg)
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	if reqs[0].Optional || reqs[1].Optional {
		t.Fatal("primary engine and encoder must be required")
	}
	if !reqs[2].Optional {
		t.Fatal("fallback engine must be optional")
	}

	cfg.Whisper.FallbackBinary = ""
	if got := Requirements(cfg); len(got) != 2 {
		t.Fatalf("no fallback configured, expected 2 requirements, got %d", len(got))
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "A", Available: true},
		{Name: "B", Available: false, Optional: true},
		{Name: "C", Available: false},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "C" {
		t.Fatalf("unexpected missing list %v", missing)
	}
}
