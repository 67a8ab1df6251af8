package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want text", cfg.Log.Format)
	}
	if cfg.DB.Path != "" {
		t.Errorf("DB.Path = %q, want empty", cfg.DB.Path)
	}
	if cfg.Cascade.Trace {
		t.Error("Cascade.Trace should be false by default")
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default() does not validate: %v", errs)
	}
}

func TestLoadDefaults(t *testing.T) {
	v, err := New("")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[db]
path = "/tmp/graph.sqlite"

[log]
level = "DEBUG"
format = "json"

[cascade]
trace = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	v, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DB.Path != "/tmp/graph.sqlite" {
		t.Errorf("DB.Path = %q", cfg.DB.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if !cfg.Cascade.Trace {
		t.Error("Cascade.Trace should be true")
	}
}

func TestMissingFileIsIgnored(t *testing.T) {
	v, err := New(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := Load(v); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log\nlevel = "), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if _, err := New(path); err == nil {
		t.Error("New() should fail on malformed TOML")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	t.Setenv("TASKGRAPH_LOG_LEVEL", "error")
	t.Setenv("TASKGRAPH_DB_PATH", "/data/tg.sqlite")

	v, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
	if cfg.DB.Path != "/data/tg.sqlite" {
		t.Errorf("DB.Path = %q, want /data/tg.sqlite", cfg.DB.Path)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	v, err := New("")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	v.Set("log.level", "loud")
	v.Set("log.format", "xml")

	_, err = Load(v)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Load() error = %v, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Fatalf("got %d validation errors, want 2", len(verrs))
	}
	if !strings.Contains(err.Error(), "2 validation errors") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidationErrorMessage(t *testing.T) {
	e := ValidationError{Field: "log.level", Value: "loud", Message: "must be one of debug, info, warn, error"}
	want := "log.level: must be one of debug, info, warn, error (got: loud)"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
	if ValidationErrors(nil).Error() != "" {
		t.Error("empty ValidationErrors should have empty message")
	}
	if (ValidationErrors{e}).Error() != want {
		t.Error("single ValidationErrors should match the element")
	}
}
