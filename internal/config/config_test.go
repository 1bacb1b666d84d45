package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load with no config file should succeed: %v", err)
	}

	if len(cfg.Source.Extensions) != 1 || cfg.Source.Extensions[0] != ".rs" {
		t.Errorf("expected default extensions [.rs], got %v", cfg.Source.Extensions)
	}
	if cfg.Output.SnapshotDir != "architecture" {
		t.Errorf("expected default snapshot dir 'architecture', got %q", cfg.Output.SnapshotDir)
	}
	if cfg.Render.Command != "mmdc" {
		t.Errorf("expected default render command mmdc, got %q", cfg.Render.Command)
	}
}

func TestLoadFromFile(t *testing.T) {
	root := t.TempDir()
	content := []byte(`
source:
  ignoreDirs: ["target", "examples"]
extract:
  workers: 3
output:
  snapshotDir: arch-snap
render:
  timeoutSeconds: 10
`)
	if err := os.WriteFile(filepath.Join(root, ".archscope.yaml"), content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Extract.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Extract.Workers)
	}
	if cfg.Output.SnapshotDir != "arch-snap" {
		t.Errorf("expected snapshot dir arch-snap, got %q", cfg.Output.SnapshotDir)
	}
	if cfg.Render.TimeoutSeconds != 10 {
		t.Errorf("expected render timeout 10, got %d", cfg.Render.TimeoutSeconds)
	}
	// Untouched sections keep defaults
	if cfg.Output.DiagramDir != "diagrams" {
		t.Errorf("expected default diagram dir, got %q", cfg.Output.DiagramDir)
	}
}

func TestEffectiveWorkers(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.EffectiveWorkers(); got < 1 {
		t.Errorf("default workers should be at least 1, got %d", got)
	}
	cfg.Extract.Workers = 7
	if got := cfg.EffectiveWorkers(); got != 7 {
		t.Errorf("explicit workers should win, got %d", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Extract.Workers = 5

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}
	if loaded.Extract.Workers != 5 {
		t.Errorf("expected saved workers 5, got %d", loaded.Extract.Workers)
	}
}
