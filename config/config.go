// Package config holds the demonstration driver's settings. Files may be
// JSON, YAML or TOML, chosen by extension; loaded values are merged over
// DefaultConfig.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	defaultRounds   = 2
	defaultLogLevel = "warn"
	defaultSource   = "publisher.DoWork"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// ObserverConfig names the two demonstration observers.
type ObserverConfig struct {
	Announcer string `json:"announcer,omitempty" yaml:"announcer" toml:"announcer"`
	Counter   string `json:"counter,omitempty" yaml:"counter" toml:"counter"`
}

// Config holds the driver settings.
type Config struct {
	Rounds       int            `json:"rounds,omitempty" yaml:"rounds" toml:"rounds"`
	ReleaseAfter int            `json:"release_after,omitempty" yaml:"release_after" toml:"release_after"`
	Weak         bool           `json:"weak,omitempty" yaml:"weak" toml:"weak"`
	LogLevel     string         `json:"log_level,omitempty" yaml:"log_level" toml:"log_level"`
	Source       string         `json:"source,omitempty" yaml:"source" toml:"source"`
	Metrics      bool           `json:"metrics,omitempty" yaml:"metrics" toml:"metrics"`
	Observers    ObserverConfig `json:"observers" yaml:"observers" toml:"observers"`
}

// DefaultConfig returns the settings that reproduce the plain demonstration:
// two rounds, nothing released.
func DefaultConfig() Config {
	return Config{
		Rounds:   defaultRounds,
		LogLevel: defaultLogLevel,
		Source:   defaultSource,
		Observers: ObserverConfig{
			Announcer: "A",
			Counter:   "B",
		},
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Rounds > 0 {
		c.Rounds = source.Rounds
	}
	if source.ReleaseAfter > 0 {
		c.ReleaseAfter = source.ReleaseAfter
	}
	if source.Weak {
		c.Weak = true
	}
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
	if source.Source != "" {
		c.Source = source.Source
	}
	if source.Metrics {
		c.Metrics = true
	}
	if source.Observers.Announcer != "" {
		c.Observers.Announcer = source.Observers.Announcer
	}
	if source.Observers.Counter != "" {
		c.Observers.Counter = source.Observers.Counter
	}
}

// Load reads a config file, merges it with defaults, and returns the result.
// Supports: .json, .yaml/.yml, .toml
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("empty config path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &loaded)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	case ".toml":
		err = toml.Unmarshal(data, &loaded)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Merge(&loaded)
	return &cfg, nil
}
