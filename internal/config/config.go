// Package config provides configuration loading for fetchd.
//
// Configuration is loaded from a YAML file, then overridden by
// FETCHD_-prefixed environment variables.
package config

import (
	"fmt"

	"github.com/fyrsmithlabs/fetchd/internal/logging"
)

// Config holds the complete fetchd configuration.
type Config struct {
	Logging logging.Config `koanf:"logging"`
	Metrics MetricsConfig  `koanf:"metrics"`
	Seen    SeenConfig     `koanf:"seen"`

	// Tasks maps task names to their plugin configuration. The per-plugin
	// sub-values are consumed as already-parsed maps by the task engine;
	// plugin validators check their shape during the validation gate.
	Tasks map[string]map[string]any `koanf:"tasks"`
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	// Addr is the listen address for the /metrics endpoint.
	// Empty disables the endpoint.
	Addr string `koanf:"addr"`
}

// SeenConfig holds the seen-entry state database configuration.
type SeenConfig struct {
	// Path is the SQLite database path. Empty uses the default under the
	// user config directory.
	Path string `koanf:"path"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	for name, taskCfg := range c.Tasks {
		if name == "" {
			return fmt.Errorf("task with empty name")
		}
		if len(taskCfg) == 0 {
			return fmt.Errorf("task %q has no plugins configured", name)
		}
	}
	return nil
}

// applyDefaults fills in missing values.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = logging.NewDefaultConfig().Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = logging.NewDefaultConfig().Format
	}
}
