// Package config provides YAML configuration parsing for httpstat.
//
// The config file is optional: it carries operational defaults that would
// otherwise be flags, so a monitor deployed alongside other tooling can
// share one file instead of a wrapper script. Positional arguments (url,
// delay, count) stay on the command line; flags override file values.
//
// Example configuration:
//
//	timeout: 5s
//	delay: 1s
//	num_datapoints: 500
//	keepalive: false
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for httpstat.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Timeout bounds each individual HEAD or GET attempt.
	// Accepts duration strings like "5s", "500ms". Defaults to 5s.
	Timeout Duration `yaml:"timeout"`

	// Delay is the default pause between probe starts when the delay
	// positional argument is not given. Defaults to 1s.
	Delay Duration `yaml:"delay"`

	// NumDatapoints is the number of samples retained per channel.
	// Defaults to 500.
	NumDatapoints int `yaml:"num_datapoints"`

	// Keepalive enables HTTP connection reuse across requests.
	// Defaults to false so every request measures a fresh connection.
	Keepalive bool `yaml:"keepalive"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Timeout:       Duration(5 * time.Second),
		Delay:         Duration(time.Second),
		NumDatapoints: 500,
	}
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applying defaults for any field
// left unset and validating the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = Duration(5 * time.Second)
	}
	if cfg.Delay == 0 {
		cfg.Delay = Duration(time.Second)
	}
	if cfg.NumDatapoints == 0 {
		cfg.NumDatapoints = 500
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects values the monitor cannot run with.
func (c *Config) validate() error {
	if c.Timeout.Duration() < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout.Duration())
	}
	if c.Delay.Duration() < 0 {
		return fmt.Errorf("delay cannot be negative, got %s", c.Delay.Duration())
	}
	if c.NumDatapoints < 0 {
		return fmt.Errorf("num_datapoints must be positive, got %d", c.NumDatapoints)
	}
	return nil
}
