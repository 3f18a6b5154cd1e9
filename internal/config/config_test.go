package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bamsammich/pdd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "pdd")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.BlockSize)
	assert.Nil(t, cfg.Defaults.Threads)
	assert.Nil(t, cfg.Defaults.Direct)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
bs = "1M"
threads = 8
direct = "o"
verify = true
verbose = false
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.BlockSize)
	assert.Equal(t, "1M", *cfg.Defaults.BlockSize)

	require.NotNil(t, cfg.Defaults.Threads)
	assert.Equal(t, 8, *cfg.Defaults.Threads)

	require.NotNil(t, cfg.Defaults.Direct)
	assert.Equal(t, "o", *cfg.Defaults.Direct)

	require.NotNil(t, cfg.Defaults.Verify)
	assert.True(t, *cfg.Defaults.Verify)

	require.NotNil(t, cfg.Defaults.Verbose)
	assert.False(t, *cfg.Defaults.Verbose)
}

func TestLoad_PartialConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
threads = 4
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.Threads)
	assert.Equal(t, 4, *cfg.Defaults.Threads)
	assert.Nil(t, cfg.Defaults.BlockSize)
	assert.Nil(t, cfg.Defaults.Verify)
}

func TestLoad_InvalidTOML(t *testing.T) {
	writeConfig(t, `[defaults`)

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_UnknownKeys(t *testing.T) {
	writeConfig(t, `
[defaults]
threads = 2
workers = 9
`)

	cfg, err := config.Load()
	var unknown *config.UnknownKeysError
	require.True(t, errors.As(err, &unknown))
	assert.Contains(t, unknown.Error(), "defaults.workers")

	require.NotNil(t, cfg.Defaults.Threads)
	assert.Equal(t, 2, *cfg.Defaults.Threads)
}

func TestPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/pdd/config.toml", config.Path())
}

func TestPath_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "pdd", "config.toml"), config.Path())
}
