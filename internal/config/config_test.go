package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	d := Default()
	if d.Render.WorkerThreads != 3 {
		t.Fatalf("worker_threads default: got %d", d.Render.WorkerThreads)
	}
	if d.Render.MaxRenderScale != 2.5 {
		t.Fatalf("max_render_scale default: got %v", d.Render.MaxRenderScale)
	}
	if d.Cache.L1MaxEntries != 128 || d.Cache.L2MaxEntries != 96 {
		t.Fatalf("cache entry defaults: got %+v", d.Cache)
	}
	if d.Keymap.Preset != "default" {
		t.Fatalf("keymap preset default: got %q", d.Keymap.Preset)
	}
}

func TestLoadFromPathMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromPath(filepath.Join(dir, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("missing config file should yield Default()")
	}
}

func TestLoadFromPathParsesPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := "[render]\nworker_threads = 7\n\n[keymap]\npreset = \"emacs\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Render.WorkerThreads != 7 {
		t.Fatalf("worker_threads override: got %d", cfg.Render.WorkerThreads)
	}
	if cfg.Keymap.Preset != "emacs" {
		t.Fatalf("keymap override: got %q", cfg.Keymap.Preset)
	}
	if cfg.Render.MaxRenderScale != 2.5 {
		t.Fatalf("unset fields should keep defaults, got max_render_scale=%v", cfg.Render.MaxRenderScale)
	}
}

func TestSanitizedRejectsInvalidPreset(t *testing.T) {
	cfg := Default()
	cfg.Keymap.Preset = "vim"
	if got := cfg.sanitized().Keymap.Preset; got != "default" {
		t.Fatalf("unknown preset should fall back to default, got %q", got)
	}
}

func TestSanitizedFloorsNonPositiveNumerics(t *testing.T) {
	cfg := Default()
	cfg.Render.WorkerThreads = 0
	cfg.Render.MaxRenderScale = -1
	cfg.Cache.L1MaxEntries = 0
	got := cfg.sanitized()
	if got.Render.WorkerThreads != 1 {
		t.Fatalf("worker_threads should floor to 1, got %d", got.Render.WorkerThreads)
	}
	if got.Render.MaxRenderScale != 2.5 {
		t.Fatalf("negative max_render_scale should reset to default, got %v", got.Render.MaxRenderScale)
	}
	if got.Cache.L1MaxEntries != 128 {
		t.Fatalf("non-positive l1_max_entries should reset to default, got %d", got.Cache.L1MaxEntries)
	}
}

func TestDefaultConfigPathPrefersExplicitEnvVar(t *testing.T) {
	t.Setenv("PVF_CONFIG_PATH", "/tmp/custom.toml")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigPath(); got != "/tmp/custom.toml" {
		t.Fatalf("PVF_CONFIG_PATH should take precedence, got %q", got)
	}
}

func TestDefaultConfigPathFallsBackToXDGThenHome(t *testing.T) {
	t.Setenv("PVF_CONFIG_PATH", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/xdg", "pvf", "config.toml") {
		t.Fatalf("should fall back to XDG_CONFIG_HOME, got %q", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/reader")
	if got := DefaultConfigPath(); got != filepath.Join("/home/reader", ".config", "pvf", "config.toml") {
		t.Fatalf("should fall back to HOME, got %q", got)
	}
}
