package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Config represents the snapdiff.yaml configuration structure
type Config struct {
	Naming struct {
		// Strategy names a built-in naming strategy; empty keeps the
		// truncation heuristics.
		Strategy  string `yaml:"strategy"`
		MaxLength int    `yaml:"max_length" default:"63"`
	} `yaml:"naming"`

	Snapshot struct {
		Exclude []string `yaml:"exclude"`
		Workers int      `yaml:"workers" default:"4"`
		Dir     string   `yaml:"dir" default:"./snapshots"`
	} `yaml:"snapshot"`

	Log struct {
		Level string `yaml:"level" default:"info"`
	} `yaml:"log"`
}

// DefaultLocations are searched when no config path is given
var DefaultLocations = []string{"snapdiff.yaml", "snapdiff.yml", ".snapdiff.yaml", ".snapdiff.yml"}

// Default returns a configuration with all defaults applied
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads the configuration at path. With an empty path the default
// locations are tried, and when none exists the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, loc := range DefaultLocations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
		if path == "" {
			return Default()
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration data and fills in defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Naming.MaxLength < 16 {
		return fmt.Errorf("naming.max_length must be at least 16, got %d", c.Naming.MaxLength)
	}
	if c.Snapshot.Workers < 1 {
		return fmt.Errorf("snapshot.workers must be positive, got %d", c.Snapshot.Workers)
	}
	return nil
}
