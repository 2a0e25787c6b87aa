package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSeedsDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults should be written to disk: %v", err)
	}
	if cfg.Policy.Mode != "standard" {
		t.Fatalf("default mode = %q, want standard", cfg.Policy.Mode)
	}
	if cfg.Policy.AllowCriticalOverride {
		t.Fatal("critical override must default off")
	}
	if len(cfg.Security.ProtectedPaths) == 0 {
		t.Fatal("default protected paths must not be empty")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	bad := []byte("policy:\n  mode: lenient\naudit:\n  path: /tmp/a.db\n")
	if err := os.WriteFile(path, bad, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("invalid mode must not load")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("policy: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("malformed yaml must not load")
	}
}
