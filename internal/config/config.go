// Package config holds the settings shared by the uidtable programs.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/tamirms/uidtable"
	"github.com/tamirms/uidtable/internal/corpus"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration file layout. Every field is optional.
type Config struct {
	Table           string `yaml:"table"`     // Serialized table path
	ListsDir        string `yaml:"lists_dir"` // Local word lists for "generate"
	Listen          string `yaml:"listen"`    // HTTP listen address
	Workers         int    `yaml:"workers"`   // 0 means GOMAXPROCS
	Strict          bool   `yaml:"strict"`    // Validate tables when opening
	CollisionPolicy string `yaml:"collision_policy"`
	LogLevel        string `yaml:"log_level"` // debug, info, warn, error
	FetchTimeout    string `yaml:"fetch_timeout"`

	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig names one remote word list.
type SourceConfig struct {
	URL  string `yaml:"url"`
	Kind string `yaml:"kind"` // plain or diceware
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	specs := corpus.DefaultSpecs()
	sources := make([]SourceConfig, len(specs))
	for i, s := range specs {
		sources[i] = SourceConfig{URL: s.URL, Kind: s.Kind.String()}
	}
	return &Config{
		Table:           "table.bin",
		ListsDir:        "lists/",
		Listen:          "0.0.0.0:3000",
		Strict:          true,
		CollisionPolicy: uidtable.PolicySmallest.String(),
		LogLevel:        "info",
		FetchTimeout:    "10m",
		Sources:         sources,
	}
}

// Load loads configuration from a YAML file. An empty path or a missing file
// yields the defaults. Environment overrides are applied in either case.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("UIDTABLE_TABLE"); v != "" {
		c.Table = v
	}
	if v := os.Getenv("UIDTABLE_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("UIDTABLE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("no table path configured")
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if _, err := uidtable.ParseCollisionPolicy(c.CollisionPolicy); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.FetchTimeout); err != nil {
		return fmt.Errorf("invalid fetch_timeout: %w", err)
	}
	for _, s := range c.Sources {
		if s.URL == "" {
			return fmt.Errorf("source without url")
		}
		if _, err := corpus.ParseKind(s.Kind); err != nil {
			return err
		}
	}
	return nil
}

// GetFetchTimeout returns the word list download timeout.
func (c *Config) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// Policy returns the configured collision policy, PolicySmallest if invalid.
func (c *Config) Policy() uidtable.CollisionPolicy {
	p, _ := uidtable.ParseCollisionPolicy(c.CollisionPolicy)
	return p
}

// Specs converts the configured sources, skipping ones Validate rejects.
func (c *Config) Specs() []corpus.Spec {
	specs := make([]corpus.Spec, 0, len(c.Sources))
	for _, s := range c.Sources {
		kind, err := corpus.ParseKind(s.Kind)
		if err != nil || s.URL == "" {
			continue
		}
		specs = append(specs, corpus.Spec{URL: s.URL, Kind: kind})
	}
	return specs
}
