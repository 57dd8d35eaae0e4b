// Package config loads and sanitizes the TOML configuration file.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/shiguri-01/preview-pdf/internal/apperr"
)

// RenderConfig controls the coordinator loop, scheduler, and worker pools.
type RenderConfig struct {
	WorkerThreads                 int     `toml:"worker_threads"`
	InputPollTimeoutIdleMs        int64   `toml:"input_poll_timeout_idle_ms"`
	InputPollTimeoutBusyMs        int64   `toml:"input_poll_timeout_busy_ms"`
	PrefetchPauseMs               int64   `toml:"prefetch_pause_ms"`
	PrefetchTickMs                int64   `toml:"prefetch_tick_ms"`
	PendingRedrawIntervalMs       int64   `toml:"pending_redraw_interval_ms"`
	PrefetchDispatchBudgetPerTick int     `toml:"prefetch_dispatch_budget_per_tick"`
	MaxRenderScale                float32 `toml:"max_render_scale"`
}

func defaultRenderConfig() RenderConfig {
	return RenderConfig{
		WorkerThreads:                 3,
		InputPollTimeoutIdleMs:        16,
		InputPollTimeoutBusyMs:        8,
		PrefetchPauseMs:               120,
		PrefetchTickMs:                8,
		PendingRedrawIntervalMs:       33,
		PrefetchDispatchBudgetPerTick: 6,
		MaxRenderScale:                2.5,
	}
}

// CacheConfig bounds the L1/L2 caches.
type CacheConfig struct {
	L1MemoryBudgetMB int `toml:"l1_memory_budget_mb"`
	L2MemoryBudgetMB int `toml:"l2_memory_budget_mb"`
	L1MaxEntries     int `toml:"l1_max_entries"`
	L2MaxEntries     int `toml:"l2_max_entries"`
}

func defaultCacheConfig() CacheConfig {
	return CacheConfig{
		L1MemoryBudgetMB: 512,
		L2MemoryBudgetMB: 64,
		L1MaxEntries:     128,
		L2MaxEntries:     96,
	}
}

const mebibyte = 1024 * 1024

// L1MemoryBudgetBytes and L2MemoryBudgetBytes convert the MB config values
// to byte budgets, with a floor of 1 byte.
func (c CacheConfig) L1MemoryBudgetBytes() int {
	if b := c.L1MemoryBudgetMB * mebibyte; b > 0 {
		return b
	}
	return 1
}

func (c CacheConfig) L2MemoryBudgetBytes() int {
	if b := c.L2MemoryBudgetMB * mebibyte; b > 0 {
		return b
	}
	return 1
}

// KeymapConfig selects the keybinding preset. Only "default" and "emacs" are
// recognized; anything else falls back to "default".
type KeymapConfig struct {
	Preset string `toml:"preset"`
}

func defaultKeymapConfig() KeymapConfig {
	return KeymapConfig{Preset: "default"}
}

// Config is the full TOML configuration document.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Keymap KeymapConfig `toml:"keymap"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Render: defaultRenderConfig(),
		Cache:  defaultCacheConfig(),
		Keymap: defaultKeymapConfig(),
	}
}

// Load resolves the config path via env vars and loads it, falling back to
// Default when no config file exists.
func Load() (Config, error) {
	path := DefaultConfigPath()
	if path == "" {
		return Default(), nil
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and parses the TOML config at path, sanitizing the
// result. A missing file yields Default(), not an error.
func LoadFromPath(path string) (Config, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, apperr.IOWithContext(err, "failed to stat config: "+path)
	}
	if info.IsDir() {
		return Config{}, apperr.InvalidArgumentf("config path is not a regular file: %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, apperr.IOWithContext(err, "failed to read config: "+path)
	}

	cfg := Default()
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, apperr.InvalidArgumentf("failed to parse config %s: %v", path, err)
	}
	return cfg.sanitized(), nil
}

// sanitized raises worker_threads and the prefetch dispatch budget to at
// least 1, clamps durations to a minimum of 1ms, replaces a non-finite or
// non-positive max_render_scale and any non-positive cache limit with its
// default, and falls back to the "default" keymap preset for unknown names.
func (c Config) sanitized() Config {
	d := defaultRenderConfig()
	if c.Render.WorkerThreads < 1 {
		c.Render.WorkerThreads = 1
	}
	if c.Render.InputPollTimeoutIdleMs < 1 {
		c.Render.InputPollTimeoutIdleMs = 1
	}
	if c.Render.InputPollTimeoutBusyMs < 1 {
		c.Render.InputPollTimeoutBusyMs = 1
	}
	if c.Render.PrefetchPauseMs < 1 {
		c.Render.PrefetchPauseMs = 1
	}
	if c.Render.PrefetchTickMs < 1 {
		c.Render.PrefetchTickMs = 1
	}
	if c.Render.PendingRedrawIntervalMs < 1 {
		c.Render.PendingRedrawIntervalMs = 1
	}
	if c.Render.PrefetchDispatchBudgetPerTick < 1 {
		c.Render.PrefetchDispatchBudgetPerTick = 1
	}
	if c.Render.MaxRenderScale <= 0 || isNonFinite(c.Render.MaxRenderScale) {
		c.Render.MaxRenderScale = d.MaxRenderScale
	}

	dc := defaultCacheConfig()
	if c.Cache.L1MemoryBudgetMB <= 0 {
		c.Cache.L1MemoryBudgetMB = dc.L1MemoryBudgetMB
	}
	if c.Cache.L2MemoryBudgetMB <= 0 {
		c.Cache.L2MemoryBudgetMB = dc.L2MemoryBudgetMB
	}
	if c.Cache.L1MaxEntries <= 0 {
		c.Cache.L1MaxEntries = dc.L1MaxEntries
	}
	if c.Cache.L2MaxEntries <= 0 {
		c.Cache.L2MaxEntries = dc.L2MaxEntries
	}

	if c.Keymap.Preset != "default" && c.Keymap.Preset != "emacs" {
		c.Keymap.Preset = "default"
	}
	return c
}

func isNonFinite(f float32) bool {
	return f != f || f > 3.4e38 || f < -3.4e38
}

// DefaultConfigPath returns the config path from the first of these that is
// set: PVF_CONFIG_PATH (used as the file path itself),
// $XDG_CONFIG_HOME/pvf/config.toml, $HOME/.config/pvf/config.toml, or
// $APPDATA/pvf/config.toml. It returns "" when none is set and does not
// check that the file exists.
func DefaultConfigPath() string {
	if explicit := os.Getenv("PVF_CONFIG_PATH"); explicit != "" {
		return explicit
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pvf", "config.toml")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "pvf", "config.toml")
	}
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "pvf", "config.toml")
	}
	return ""
}
