package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.6, cfg.Search.CommandWeight)
	assert.Equal(t, 0.25, cfg.Search.DescriptionWeight)
	assert.Equal(t, 0.15, cfg.Search.TagWeight)
	assert.Equal(t, 0.3, cfg.Search.Threshold)
	assert.Equal(t, 0.75, cfg.Search.ContainmentFloor)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 1000, cfg.Store.MaxCandidates)
	assert.Equal(t, "info", cfg.Log.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Search, cfg.Search)
}

func TestLoadFromFile_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  threshold: 0.5\n  default_limit: 25\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	// Overridden values stick, everything else keeps its default.
	assert.Equal(t, 0.5, cfg.Search.Threshold)
	assert.Equal(t, 25, cfg.Search.DefaultLimit)
	assert.Equal(t, 0.6, cfg.Search.CommandWeight)
	assert.Equal(t, 1000, cfg.Store.MaxCandidates)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  threshold: 2.0\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [not a map"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CMDBOX_DB", "/tmp/override.db")
	t.Setenv("CMDBOX_LOG_LEVEL", "warn")

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Store.DBPath)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestEnvOverridesAreValidated(t *testing.T) {
	t.Setenv("CMDBOX_LOG_LEVEL", "verbose")

	// Env-supplied values go through the same validation as file values,
	// even when no config file exists.
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvDebugOverridesLevel(t *testing.T) {
	t.Setenv("CMDBOX_DEBUG", "1")

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max_candidates", func(c *Config) { c.Store.MaxCandidates = 0 }},
		{"negative weight", func(c *Config) { c.Search.CommandWeight = -0.1 }},
		{"all weights zero", func(c *Config) {
			c.Search.CommandWeight = 0
			c.Search.DescriptionWeight = 0
			c.Search.TagWeight = 0
		}},
		{"threshold above one", func(c *Config) { c.Search.Threshold = 1.5 }},
		{"zero default_limit", func(c *Config) { c.Search.DefaultLimit = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
