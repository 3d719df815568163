// Package config holds engine-wide constants and the session configuration
// file format.
//
// A session is configured by a small YAML file:
//
//	max_constraint_depth: 32
//	trace: true
//	color: never
//	prelude: ./my-prelude.yaml
//	strict_registry: true
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level session configuration.
type Config struct {
	// MaxConstraintDepth bounds how deeply where-clause matching may recurse
	// into overload resolution before the call is rejected.
	MaxConstraintDepth int `yaml:"max_constraint_depth,omitempty"`

	// Trace logs every overload candidate and coercion registration.
	Trace bool `yaml:"trace,omitempty"`

	// Color is one of auto, always or never.
	Color string `yaml:"color,omitempty"`

	// Prelude is a path to a manifest that replaces the embedded default
	// prelude. Relative paths are resolved against the config file.
	Prelude string `yaml:"prelude,omitempty"`

	// StrictRegistry freezes the coercion registry once the prelude is
	// installed, so later registrations fail instead of silently extending
	// the graph.
	StrictRegistry bool `yaml:"strict_registry,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	if cfg.Prelude != "" && !filepath.IsAbs(cfg.Prelude) {
		cfg.Prelude = filepath.Join(filepath.Dir(path), cfg.Prelude)
	}
	return cfg, nil
}

// ParseConfig parses config content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for a config file starting from dir and walking up to
// parent directories. It returns "" and a nil error when none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	if c.MaxConstraintDepth < 0 {
		return fmt.Errorf("%s: max_constraint_depth must not be negative, got %d", path, c.MaxConstraintDepth)
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", path, c.Color)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.MaxConstraintDepth == 0 {
		c.MaxConstraintDepth = DefaultMaxConstraintDepth
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
}
