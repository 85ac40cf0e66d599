package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"babble/internal/config"
)

func TestEnsureAt(t *testing.T) {
	base := filepath.Join(t.TempDir(), BaseDirName)
	layout, err := EnsureAt(base)
	if err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}

	for _, p := range []string{layout.DataDir, layout.LogDir, layout.ImportsDir, layout.ConfigPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected path to exist %s: %v", p, err)
		}
	}

	cfg, err := config.Load(layout.ConfigPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DB.Path != layout.DBPath {
		t.Fatalf("expected db path %s, got %s", layout.DBPath, cfg.DB.Path)
	}
}

func TestEnsureAtKeepsExistingConfig(t *testing.T) {
	base := filepath.Join(t.TempDir(), BaseDirName)
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(base, config.FileName)
	if err := os.WriteFile(path, []byte("db:\n  path: elsewhere.db\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := EnsureAt(base); err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DB.Path != "elsewhere.db" {
		t.Fatalf("expected existing config to survive, got %s", cfg.DB.Path)
	}
}

func TestSaveImport(t *testing.T) {
	layout, err := EnsureAt(filepath.Join(t.TempDir(), BaseDirName))
	if err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}

	rec := ImportRecord{Scope: "chat-1", Source: "/tmp/../history.json", Entries: 10, Stored: 7, Rejected: 3, At: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	path, err := layout.SaveImport(rec)
	if err != nil {
		t.Fatalf("save import: %v", err)
	}
	if filepath.Base(path) != "20260301T100000-history.json.json" {
		t.Fatalf("unexpected record name %s", filepath.Base(path))
	}

	records, err := layout.Imports("chat-1")
	if err != nil {
		t.Fatalf("list imports: %v", err)
	}
	if len(records) != 1 || records[0].Stored != 7 {
		t.Fatalf("expected one record with 7 stored, got %+v", records)
	}
	if ScopeID("Chat-1") != ScopeID("chat-1") {
		t.Fatal("expected scope id to ignore case")
	}
}
