package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoConfigFile(t *testing.T) {
	v := viper.New()
	cfg, err := Load(v, filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 4712, cfg.Port)
	assert.Equal(t, "ectl", cfg.ClientName)
	assert.Equal(t, "table", cfg.Output)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: amule.example.com\nport: 4000\n"), 0644))

	v := viper.New()
	cfg, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, "amule.example.com", cfg.Host)
	assert.Equal(t, 4000, cfg.Port)
}

// TestEnvOverridesConfigFile is the P11 precedence test: an AMULEC_* env
// var overrides the same field's value in the config file.
func TestEnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: from-file.example.com\nport: 4000\n"), 0644))

	t.Setenv("AMULEC_HOST", "from-env.example.com")

	v := viper.New()
	cfg, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.example.com", cfg.Host, "env var must win over config file")
	assert.Equal(t, 4000, cfg.Port, "unset env var leaves the file value untouched")
}

// TestDefaultAppliesOnlyWhenUnset is the other half of P11: a field present
// in neither the env nor the config file falls back to its default.
func TestDefaultAppliesOnlyWhenUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: from-file.example.com\n"), 0644))

	v := viper.New()
	cfg, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, "from-file.example.com", cfg.Host)
	assert.Equal(t, 4712, cfg.Port, "port absent from file and env falls back to default")
}

func TestDefaultConfigPathUsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	assert.Equal(t, "/tmp/xdgtest/amulec/config.yaml", DefaultConfigPath())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := &Config{Host: "amule.example.com", Port: 4712, ClientName: "ectl", Output: "json"}
	require.NoError(t, Save(cfg, path))

	v := viper.New()
	loaded, err := Load(v, path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Host, loaded.Host)
	assert.Equal(t, cfg.Output, loaded.Output)
}
