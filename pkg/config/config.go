// Package config holds the process-wide defaults for pagekit. Defaults are
// carried by an explicit Config object passed into pages and elements rather
// than ambient globals; per-element and per-call overrides are nullable and
// resolve through the Effective* precedence functions.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in defaults.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Config is the process-wide default policy for waits and caching.
type Config struct {
	// Timeout is the default wait budget for each element.
	Timeout time.Duration

	// Reraise controls timeout behavior: true surfaces a TimeoutError,
	// false returns an unsatisfied result instead.
	Reraise bool

	// Cache enables reuse of previously located handles.
	Cache bool

	// PollInterval is the sleep between predicate re-evaluations.
	PollInterval time.Duration
}

// Default returns a Config with the library defaults.
func Default() *Config {
	return &Config{
		Timeout:      DefaultTimeout,
		Reraise:      true,
		Cache:        true,
		PollInterval: DefaultPollInterval,
	}
}

// EffectiveTimeout resolves the three-level timeout chain:
// call override > element default > process default.
func (c *Config) EffectiveTimeout(call, element *time.Duration) time.Duration {
	if call != nil {
		return *call
	}
	if element != nil {
		return *element
	}
	return c.Timeout
}

// EffectiveReraise resolves the three-level reraise chain:
// call override > element default > process default. An explicit true or
// false always wins; nil defers to the next level.
func (c *Config) EffectiveReraise(call, element *bool) bool {
	if call != nil {
		return *call
	}
	if element != nil {
		return *element
	}
	return c.Reraise
}

// EffectiveCache resolves the per-element cache switch against the
// process default.
func (c *Config) EffectiveCache(element *bool) bool {
	if element != nil {
		return *element
	}
	return c.Cache
}

// file is the on-disk YAML shape. Durations are strings in Go duration
// syntax ("30s", "500ms"); missing fields keep the built-in defaults.
type file struct {
	Timeout      string `yaml:"timeout"`
	PollInterval string `yaml:"pollInterval"`
	Reraise      *bool  `yaml:"reraise"`
	Cache        *bool  `yaml:"cache"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	cfg := Default()
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if f.PollInterval != "" {
		d, err := time.ParseDuration(f.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("parse pollInterval: %w", err)
		}
		cfg.PollInterval = d
	}
	if f.Reraise != nil {
		cfg.Reraise = *f.Reraise
	}
	if f.Cache != nil {
		cfg.Cache = *f.Cache
	}
	return cfg, nil
}

// LoadFromDir looks for pagekit.yaml or pagekit.yml in the directory.
// If neither exists, the defaults are returned.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"pagekit.yaml", "pagekit.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}
