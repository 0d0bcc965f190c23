package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the per-user configuration directory
	AppName = "blurinspector"

	// DefaultConfigFile is looked up in the working directory
	DefaultConfigFile = ".blurinspector.yaml"

	userConfigFile = "config.yaml"
)

// ConfigDir returns the XDG configuration directory for the application
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// FindConfigFile searches for the configuration file in the following order:
// 1. configPath, when given
// 2. .blurinspector.yaml in the current directory
// 3. config.yaml in the XDG configuration directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	userConfig := filepath.Join(ConfigDir(), userConfigFile)
	if _, err := os.Stat(userConfig); err == nil {
		return userConfig
	}

	return ""
}

// LoadConfigFile overlays the YAML file at path onto cfg. Keys missing from
// the file keep their current values.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // config path comes from the operator
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigNotFound
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from defaults, then the YAML file, then the
// environment. An explicit configPath that does not exist is an error; a
// missing default file is not.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	path := FindConfigFile(configPath)
	if path == "" && configPath != "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}
	if path != "" {
		if err := LoadConfigFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
