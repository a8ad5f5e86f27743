// Package config loads the engine-wide settings a host embedding
// tickscript needs outside of any single script: the instruction budget,
// the bytecode cache location and retention, and named hotkey bindings.
// It is ported from original_source/services/config_manager.py's
// ConfigManager.load/save (a single file, sane defaults on a missing or
// corrupt file), expressed with this corpus's own stack: gopkg.in/yaml.v3
// for the file format in place of the original's JSON, and
// github.com/caarlos0/env/v6 to let a host override any setting with an
// environment variable without touching the file.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name Load looks for, the analogue
// of ConfigManager.CONFIG_FILE.
const FileName = "tickscript.yaml"

// Config holds engine-wide settings. Every field has a yaml tag (file
// form) and an env tag (override form); env wins when both are set.
type Config struct {
	// InstructionLimit bounds the per-run/resume/call instruction budget
	// spec.md §3 describes; 0 means unbounded.
	InstructionLimit int `yaml:"instruction_limit" env:"TICKSCRIPT_INSTRUCTION_LIMIT"`

	// CacheDir is the bytecode cache.Store directory.
	CacheDir string `yaml:"cache_dir" env:"TICKSCRIPT_CACHE_DIR"`

	// CacheMaxAge is the age past which cache.Store.Cleanup considers an
	// entry stale, the Go analogue of cache_manager.py's max_age_days.
	// Read from the environment directly as a Duration string (e.g.
	// "168h"); the file form is CacheMaxAgeDays, an integer, since yaml.v3
	// has no built-in time.Duration scalar decoding.
	CacheMaxAge time.Duration `yaml:"-" env:"TICKSCRIPT_CACHE_MAX_AGE"`

	// CacheMaxAgeDays is the file-config form of CacheMaxAge, matching
	// cache_manager.py's own `max_age_days` unit.
	CacheMaxAgeDays int `yaml:"cache_max_age_days" env:"-"`

	// Hotkeys maps a host-defined action name to the key combination that
	// triggers it, carried over from config_manager.py's default
	// `{"hotkeys": {}}` shape; tickscript itself does not interpret these
	// (OS-level hotkey capture is a Non-goal), a host embedding the engine
	// reads them to wire its own key bindings.
	Hotkeys map[string]string `yaml:"hotkeys" env:"-"`
}

// Default returns the zero-file configuration: no instruction limit, a
// ".cache" directory, a 7-day cache retention, and no hotkeys, matching
// ConfigManager.load's fallback `{"hotkeys": {}}` generalized with the
// other settings this engine adds.
func Default() Config {
	return Config{
		CacheDir:    ".cache",
		CacheMaxAge: 7 * 24 * time.Hour,
		Hotkeys:     map[string]string{},
	}
}

// Load reads path (defaulting to FileName if empty), falling back to
// Default on a missing file, then overlays any set environment variables.
// A present-but-corrupt file is also treated as Default, matching
// config_manager.py's `except Exception: pass` fallback behavior.
func Load(path string) (Config, error) {
	if path == "" {
		path = FileName
	}

	cfg := Default()
	if data, err := os.ReadFile(path); err == nil {
		var fromFile Config
		if err := yaml.Unmarshal(data, &fromFile); err == nil {
			cfg = mergeFile(cfg, fromFile)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path (defaulting to FileName if empty) as YAML,
// the analogue of ConfigManager.save.
func Save(path string, cfg Config) error {
	if path == "" {
		path = FileName
	}
	cfg.CacheMaxAgeDays = int(cfg.CacheMaxAge / (24 * time.Hour))
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// mergeFile layers fromFile's explicitly-set fields over defaults: a zero
// value in the decoded file means "not specified", so the default stands.
func mergeFile(defaults, fromFile Config) Config {
	out := defaults
	if fromFile.InstructionLimit != 0 {
		out.InstructionLimit = fromFile.InstructionLimit
	}
	if fromFile.CacheDir != "" {
		out.CacheDir = fromFile.CacheDir
	}
	if fromFile.CacheMaxAgeDays != 0 {
		out.CacheMaxAge = time.Duration(fromFile.CacheMaxAgeDays) * 24 * time.Hour
	}
	if len(fromFile.Hotkeys) > 0 {
		out.Hotkeys = fromFile.Hotkeys
	}
	return out
}
