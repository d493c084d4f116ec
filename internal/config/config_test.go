package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

// chdir changes the working directory for the test, restoring it on cleanup.
// Equivalent to testing.T.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore chdir: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if filepath.Base(cfg.DataFile) != DefaultDataFile {
		t.Errorf("DataFile = %q, want base %q", cfg.DataFile, DefaultDataFile)
	}
	if !filepath.IsAbs(cfg.DataFile) {
		t.Errorf("DataFile %q should be absolute", cfg.DataFile)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, DefaultLogFormat)
	}
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := strings.Join([]string{
		`data_file = "my-tasks.json"`,
		`default_category = "inbox"`,
		`log_level = "debug"`,
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "todoman.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if filepath.Base(cfg.DataFile) != "my-tasks.json" {
		t.Errorf("DataFile = %q, want base my-tasks.json", cfg.DataFile)
	}
	if cfg.DefaultCategory != "inbox" {
		t.Errorf("DefaultCategory = %q, want inbox", cfg.DefaultCategory)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "todoman.toml"), []byte(`log_level = "debug"`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TODOMAN_LOG_LEVEL", "error")
	t.Setenv("TODOMAN_DEFAULT_CATEGORY", "chores")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error (env should win over file)", cfg.LogLevel)
	}
	if cfg.DefaultCategory != "chores" {
		t.Errorf("DefaultCategory = %q, want chores", cfg.DefaultCategory)
	}
}

func TestFlagsOverrideEverything(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TODOMAN_LOG_LEVEL", "error")

	cfg, err := Load(newFlagSet(), []string{"-log-level", "warn", "-data", "flagged.json"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn (flag should win)", cfg.LogLevel)
	}
	if filepath.Base(cfg.DataFile) != "flagged.json" {
		t.Errorf("DataFile = %q, want base flagged.json", cfg.DataFile)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~", home},
		{"~/tasks.json", filepath.Join(home, "tasks.json")},
		{"/abs/tasks.json", "/abs/tasks.json"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
