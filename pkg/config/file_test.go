package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsWhenFileMissing(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "caltrack.json"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	if got := f.Listen(); got != "127.0.0.1:3002" {
		t.Errorf("Listen = %s", got)
	}
	if got := f.DueScanCron(); got != "@daily" {
		t.Errorf("DueScanCron = %s", got)
	}
	if got := f.DefaultCadenceDays(); got != 365 {
		t.Errorf("DefaultCadenceDays = %d, want 365", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caltrack.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	f.SetListen("0.0.0.0:3003")
	f.SetDatabasePath("/tmp/test.db")
	f.SetDueScanCron("@every 6h")
	if err := f.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if g.Listen() != "0.0.0.0:3003" || g.DatabasePath() != "/tmp/test.db" || g.DueScanCron() != "@every 6h" {
		t.Errorf("reloaded config = %+v", g.LogrusFields())
	}
	// Untouched fields still fall back to defaults.
	if g.DefaultCadenceDays() != 365 {
		t.Errorf("DefaultCadenceDays = %d", g.DefaultCadenceDays())
	}
}

func TestEmptyFileIsEmptyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caltrack.json")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if got := f.Listen(); got != "127.0.0.1:3002" {
		t.Errorf("Listen = %s", got)
	}
}

func TestMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caltrack.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFile(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
