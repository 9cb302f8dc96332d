package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds bridge server configuration. Values come from an optional
// YAML file; command-line flags override.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DataDir    string `yaml:"data_dir"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	// SessionSecret signs bearer session tokens. RegistrationSecret
	// gates the machine-client bootstrap endpoint; empty disables it.
	SessionSecret      string `yaml:"session_secret"`
	RegistrationSecret string `yaml:"registration_secret"`

	// AdminUsers satisfy admin-level permission checks.
	AdminUsers []string `yaml:"admin_users"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		DataDir:    "./data",
		LogLevel:   "info",
	}
}

// Load reads configuration from a YAML file over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
