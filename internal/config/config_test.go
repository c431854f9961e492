package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME at an empty temp dir so a developer's real global
// config cannot leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.MaxOutputLines != 200 {
		t.Errorf("expected MaxOutputLines=200, got=%d", cfg.MaxOutputLines)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got=%s", cfg.LogLevel)
	}
	if d, _ := cfg.BuildTimeout(); d != time.Hour {
		t.Errorf("expected build timeout 1h, got=%s", d)
	}
}

func TestLoadMergeGlobalThenExplicit(t *testing.T) {
	home := isolate(t)
	globalDir := filepath.Join(home, ".config", "xcodebuild-mcp")
	os.MkdirAll(globalDir, 0o755)
	os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(`{
		"developer_dir": "/Applications/Xcode.app/Contents/Developer",
		"max_output_lines": 50,
		"history_dir": "~/.xcb-history"
	}`), 0o644)

	explicit := filepath.Join(t.TempDir(), "override.yaml")
	os.WriteFile(explicit, []byte("max_output_lines: 80\ntimeouts:\n  build: 15m\n"), 0o644)

	cfg, err := Load(explicit)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DeveloperDir != "/Applications/Xcode.app/Contents/Developer" {
		t.Errorf("expected developer_dir from global config, got=%s", cfg.DeveloperDir)
	}
	if cfg.MaxOutputLines != 80 {
		t.Errorf("expected explicit file to override max_output_lines, got=%d", cfg.MaxOutputLines)
	}
	if cfg.HistoryDir != filepath.Join(home, ".xcb-history") {
		t.Errorf("expected history dir expanded under home, got=%s", cfg.HistoryDir)
	}
	if d, _ := cfg.BuildTimeout(); d != 15*time.Minute {
		t.Errorf("expected build timeout 15m, got=%s", d)
	}
	// Query timeout should still be default since not overridden
	if d, _ := cfg.QueryTimeout(); d != 2*time.Minute {
		t.Errorf("expected default query timeout 2m, got=%s", d)
	}
}

func TestLoadGlobalYAML(t *testing.T) {
	home := isolate(t)
	globalDir := filepath.Join(home, ".config", "xcodebuild-mcp")
	os.MkdirAll(globalDir, 0o755)
	os.WriteFile(filepath.Join(globalDir, "config.yml"), []byte("log_level: debug\n"), 0o644)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level=debug, got=%s", cfg.LogLevel)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"timeouts": {"query": "soon"}}`), 0o644)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "timeouts.query") {
		t.Fatalf("expected timeouts.query error, got %v", err)
	}
}

func TestMarshalYAML(t *testing.T) {
	out, err := Defaults().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), "max_output_lines: 200") {
		t.Errorf("expected max_output_lines in output, got:\n%s", out)
	}
}
