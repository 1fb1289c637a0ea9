package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `
root_paths = [".", "/opt/hol-light"]
base_library = "/opt/hol-light"

[exclude]
dirs = [".git"]
files = ["update_database*"]

[keywords]
imports = ["my_needs"]
theorems = ["my_prove"]

[watch]
debounce = "1s"

[index]
rate = 5.0
burst = 10

[output]
metrics_addr = ":9105"
alert_summary = true

[history]
path = "holindex.db"
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

	if len(cfg.RootPaths) != 2 || cfg.RootPaths[1] != "/opt/hol-light" {
		t.Errorf("Unexpected RootPaths: %v", cfg.RootPaths)
	}
	if cfg.BaseLibrary != "/opt/hol-light" {
		t.Errorf("Expected base library /opt/hol-light, got %s", cfg.BaseLibrary)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if len(cfg.Keywords.Imports) != 1 || cfg.Keywords.Imports[0] != "my_needs" {
		t.Errorf("Unexpected import keywords: %v", cfg.Keywords.Imports)
	}
	if cfg.Output.MetricsAddr != ":9105" {
		t.Errorf("Expected metrics addr :9105, got %s", cfg.Output.MetricsAddr)
	}
	if cfg.Index.Rate != 5.0 || cfg.Index.Burst != 10 {
		t.Errorf("Unexpected index throttle: %+v", cfg.Index)
	}
	if cfg.History.Path != "holindex.db" {
		t.Errorf("Expected history path holindex.db, got %s", cfg.History.Path)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())
	tmpfile.Write([]byte(`base_library = "/lib"`))
	tmpfile.Close()

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if len(cfg.RootPaths) != 1 || cfg.RootPaths[0] != "." {
		t.Errorf("Expected default root '.', got %v", cfg.RootPaths)
	}
	if len(cfg.Exclude.Files) != 2 {
		t.Errorf("Expected generator-script excludes by default, got %v", cfg.Exclude.Files)
	}
	if cfg.Index.Rate == 0 || cfg.Index.Burst == 0 {
		t.Errorf("Expected default index throttle, got %+v", cfg.Index)
	}
}

func TestLoadError(t *testing.T) {
	_, err := Load("nonexistent.toml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}

	tmpfile, _ := os.CreateTemp("", "badconfig*.toml")
	defer os.Remove(tmpfile.Name())
	tmpfile.Write([]byte("bad = toml = format"))
	tmpfile.Close()

	_, err = Load(tmpfile.Name())
	if err == nil {
		t.Error("Expected error for malformed TOML")
	}
}
