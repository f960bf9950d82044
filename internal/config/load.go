package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load assembles the effective configuration. Explicit flags win over file
// values, file values win over defaults. A missing config file is not an
// error; a file named with -config that fails to parse is.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)
	return cfg, nil
}

// findConfigFile probes the working directory, then the per-user config
// directory, and returns the first atlaspack.yaml that exists.
func findConfigFile() string {
	for _, path := range []string{
		"atlaspack.yaml",
		filepath.Join(ConfigDir(), "atlaspack.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user configuration directory for atlaspack.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "atlaspack")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "atlaspack")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "atlaspack")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "atlaspack")
	}
}

// loadFromFile overlays YAML values from path onto cfg. Keys absent from the
// file keep whatever cfg already holds.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// SaveTo writes the config as YAML, creating parent directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
