// Package config loads ectl's connection and display settings.
//
// Configuration sources, in order of precedence:
//  1. CLI flags (highest priority)
//  2. Environment variables (AMULEC_*)
//  3. Configuration file (YAML, $XDG_CONFIG_HOME/amulec/config.yaml)
//  4. Default values (lowest priority)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds everything ectl needs to dial and authenticate against an
// aMule daemon, plus display preferences.
type Config struct {
	Host          string `mapstructure:"host" yaml:"host"`
	Port          int    `mapstructure:"port" yaml:"port"`
	Password      string `mapstructure:"password" yaml:"password"`
	ClientName    string `mapstructure:"client_name" yaml:"client_name"`
	ClientVersion string `mapstructure:"client_version" yaml:"client_version"`
	Output        string `mapstructure:"output" yaml:"output"`
	NoColor       bool   `mapstructure:"no_color" yaml:"no_color"`
}

// ApplyDefaults fills any zero-valued field with its default. Explicit
// values (from flag, env, or file) are preserved.
func ApplyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 4712
	}
	if cfg.ClientName == "" {
		cfg.ClientName = "ectl"
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "0.1.0"
	}
	if cfg.Output == "" {
		cfg.Output = "table"
	}
}

// Load reads configuration from configPath (or the default XDG location if
// empty), layering environment variables and defaults beneath it. It does
// not apply CLI flag overrides; callers (cmd/ectl) bind flags to the same
// viper instance before calling Unmarshal, or override fields on the
// returned Config directly.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("AMULEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Save writes cfg as YAML to path, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// getConfigDir returns $XDG_CONFIG_HOME/amulec, or ~/.config/amulec, or "."
// if the home directory can't be determined.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "amulec")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "amulec")
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
