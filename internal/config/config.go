// Package config loads tool configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config is the full tool configuration.
type Config struct {
	// BaseURL is the fixed prefix every resolved anchor is appended to.
	BaseURL string `koanf:"base_url" yaml:"base_url"`

	Datasets DatasetConfig `koanf:"datasets" yaml:"datasets"`

	// MarkerClass overrides the class markers are emitted with. Empty
	// keeps the built-in default.
	MarkerClass string `koanf:"marker_class" yaml:"marker_class,omitempty"`

	// ExcludeTags extends the built-in container exclusion set.
	ExcludeTags []string `koanf:"exclude_tags" yaml:"exclude_tags,omitempty"`

	Serve ServeConfig `koanf:"serve" yaml:"serve"`
	Watch WatchConfig `koanf:"watch" yaml:"watch"`
}

// DatasetConfig names the JSON dataset files for each partition.
type DatasetConfig struct {
	Primary []string `koanf:"primary" yaml:"primary"`
	Exact   []string `koanf:"exact" yaml:"exact,omitempty"`
}

// ServeConfig configures the HTTP preview server.
type ServeConfig struct {
	Addr string `koanf:"addr" yaml:"addr"`
	Root string `koanf:"root" yaml:"root"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Dirs     []string `koanf:"dirs" yaml:"dirs,omitempty"`
	Patterns []string `koanf:"patterns" yaml:"patterns"`
	OutDir   string   `koanf:"out_dir" yaml:"out_dir,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Serve: ServeConfig{
			Addr: ":8750",
			Root: ".",
		},
		Watch: WatchConfig{
			Patterns: []string{"**/*.html", "**/*.htm", "**/*.md"},
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (LINKMARK_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("LINKMARK_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "LINKMARK_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration can drive a scan.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if len(c.Datasets.Primary) == 0 && len(c.Datasets.Exact) == 0 {
		return fmt.Errorf("at least one dataset file is required")
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr must not be empty")
	}
	return nil
}
