package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.Restore.PollAttempts != 3 {
		t.Errorf("PollAttempts = %d, want 3", cfg.Restore.PollAttempts)
	}
	if cfg.Restore.PollInterval() != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", cfg.Restore.PollInterval())
	}
	if len(cfg.Capture.ExcludedProcesses) == 0 {
		t.Error("default process deny-list empty")
	}
	if cfg.Capture.IncludeMinimized {
		t.Error("minimized capture should default off")
	}
	if len(cfg.Restore.SessionManagedApps) == 0 {
		t.Error("default session-managed list empty")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
restore:
  poll_attempts: 5
capture:
  include_minimized: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Restore.PollAttempts != 5 {
		t.Errorf("PollAttempts = %d, want 5", cfg.Restore.PollAttempts)
	}
	// Unset numbers fall back to defaults.
	if cfg.Restore.PollIntervalMS != 2000 {
		t.Errorf("PollIntervalMS = %d, want default 2000", cfg.Restore.PollIntervalMS)
	}
	if cfg.Restore.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want default 4", cfg.Restore.Concurrency)
	}
	if !cfg.Capture.IncludeMinimized {
		t.Error("include_minimized not honored")
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\nnot yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestDataDirEnvOverride(t *testing.T) {
	t.Setenv("SNAPBACK_DATA_DIR", "/tmp/custom-data")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.DataDir != "/tmp/custom-data" {
		t.Errorf("DataDir = %q, want env override", cfg.DataDir)
	}
}
