package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/config"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadReadsFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickscript.yaml")
	require.NoError(t, config.Save(path, config.Config{
		InstructionLimit: 50000,
		CacheDir:         "/tmp/tscache",
		CacheMaxAge:      48 * time.Hour,
		Hotkeys:          map[string]string{"toggle": "ctrl+alt+t"},
	}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 50000, cfg.InstructionLimit)
	require.Equal(t, "/tmp/tscache", cfg.CacheDir)
	require.Equal(t, 48*time.Hour, cfg.CacheMaxAge)
	require.Equal(t, "ctrl+alt+t", cfg.Hotkeys["toggle"])
}

func TestLoadCorruptFileFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickscript.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: yaml"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickscript.yaml")
	require.NoError(t, config.Save(path, config.Config{CacheDir: "/from/file"}))

	t.Setenv("TICKSCRIPT_CACHE_DIR", "/from/env")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/from/env", cfg.CacheDir)
}

