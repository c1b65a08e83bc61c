// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pressroom.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: development
store:
  path: /srv/pressroom/documents.db
collaboration:
  lock_timeout: 45m
  warn_after: 40m
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.Path != "/srv/pressroom/documents.db" {
		t.Errorf("store.path = %q, want the file's value", cfg.Store.Path)
	}
	if cfg.Collaboration.LockTimeout != "45m" {
		t.Errorf("lock_timeout = %q, want 45m", cfg.Collaboration.LockTimeout)
	}
	// Untouched sections keep their defaults.
	if cfg.Collaboration.PollInterval != "60s" {
		t.Errorf("poll_interval = %q, want default 60s", cfg.Collaboration.PollInterval)
	}
	if cfg.Translation.QueueSize != 64 {
		t.Errorf("queue_size = %d, want default 64", cfg.Translation.QueueSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEnvironmentOverridesApply(t *testing.T) {
	path := writeConfig(t, `
environment: staging
store:
  path: /srv/pressroom/documents.db
staging:
  collaboration:
    lock_timeout: 10m
    warn_after: 8m
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Collaboration.LockTimeout != "10m" {
		t.Errorf("lock_timeout = %q, want the staging override 10m", cfg.Collaboration.LockTimeout)
	}
}

func TestProductionFailsClosedByDefault(t *testing.T) {
	path := writeConfig(t, `
environment: production
store:
  path: /srv/pressroom/documents.db
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Collaboration.FailOpenEnabled() {
		t.Error("production defaults to fail-open; want fail-closed")
	}
}

func TestExplicitFailOpenSurvivesProduction(t *testing.T) {
	path := writeConfig(t, `
environment: production
store:
  path: /srv/pressroom/documents.db
production:
  collaboration:
    fail_open: true
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !cfg.Collaboration.FailOpenEnabled() {
		t.Error("explicit production fail_open: true was not honored")
	}
}

func TestVariableExpansion(t *testing.T) {
	t.Setenv("HOME", "/home/editor")
	path := writeConfig(t, `
store:
  path: ${HOME}/pressroom/documents.db
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.Path != "/home/editor/pressroom/documents.db" {
		t.Errorf("store.path = %q, want ${HOME} expanded", cfg.Store.Path)
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := Default()
	lockTimeout, err := cfg.Collaboration.LockTimeoutDuration()
	if err != nil {
		t.Fatalf("LockTimeoutDuration: %v", err)
	}
	if lockTimeout != 30*time.Minute {
		t.Errorf("lock timeout = %v, want 30m", lockTimeout)
	}
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := Default()
	cfg.Collaboration.WarnAfter = "31m"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("warn_after above lock_timeout passed validation")
	}
	if !strings.Contains(err.Error(), "warn_after") {
		t.Errorf("error %q does not name warn_after", err)
	}
}

func TestValidateRejectsBadDuration(t *testing.T) {
	cfg := Default()
	cfg.Collaboration.PollInterval = "soon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unparseable poll_interval passed validation")
	}
}

func TestLoadRequiresEnvVar(t *testing.T) {
	t.Setenv("PRESSROOM_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without PRESSROOM_CONFIG")
	}
}
