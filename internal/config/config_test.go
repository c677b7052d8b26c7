// # internal/config/config_test.go
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `
project = "payments"
snapshot_dir = "./typing/snapshots"
history_path = "./typing/history.db"

[report]
colors = false

[watch]
debounce = "1s"
renders_per_second = 4.0

[timeline]
window = "72h"
format = "json"

[exclude]
files = ["*.tmp.json"]
`
	tmpfile, err := os.CreateTemp("", "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Project != "payments" {
		t.Errorf("Expected project payments, got %s", cfg.Project)
	}
	if cfg.SnapshotDir != "./typing/snapshots" {
		t.Errorf("Unexpected snapshot_dir: %s", cfg.SnapshotDir)
	}
	if cfg.Report.Colors {
		t.Error("Expected colors disabled")
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.RendersPerSecond != 4.0 {
		t.Errorf("Expected renders_per_second 4.0, got %v", cfg.Watch.RendersPerSecond)
	}
	if cfg.Timeline.Window != 72*time.Hour {
		t.Errorf("Expected window 72h, got %v", cfg.Timeline.Window)
	}
	if cfg.Timeline.Format != "json" {
		t.Errorf("Expected format json, got %s", cfg.Timeline.Format)
	}
	if len(cfg.Exclude.Files) != 1 || cfg.Exclude.Files[0] != "*.tmp.json" {
		t.Errorf("Unexpected exclude files: %v", cfg.Exclude.Files)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Project != "default" {
		t.Errorf("Expected project default, got %s", cfg.Project)
	}
	if !cfg.Report.Colors {
		t.Error("Expected colors enabled by default")
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.HistoryPath != ".typecov/history.db" {
		t.Errorf("Unexpected default history_path: %s", cfg.HistoryPath)
	}
	if cfg.Timeline.Format != "tsv" {
		t.Errorf("Expected default format tsv, got %s", cfg.Timeline.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/typecov.toml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}
