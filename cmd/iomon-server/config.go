package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration. Flags override file values.
type Config struct {
	// Name is the server name used for mDNS advertising.
	Name string `yaml:"name"`

	// Listen is the metrics/health listen address.
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// EventLog is the acquisition event log path ("" disables).
	EventLog string `yaml:"eventLog"`

	// PushPrefix routes matching node identifiers to the push strategy.
	PushPrefix string `yaml:"pushPrefix"`

	// Advertise enables mDNS advertising.
	Advertise bool `yaml:"advertise"`

	// Interface restricts advertising to one network interface.
	Interface string `yaml:"interface"`

	// Simulate enables the synthetic plant signal generator.
	Simulate bool `yaml:"simulate"`

	// Host enables gopsutil-backed host targets (cpu, memory).
	Host bool `yaml:"host"`

	// Items are the monitored items created at startup.
	Items []ItemConfig `yaml:"items"`
}

// ItemConfig describes one monitored item created at startup.
type ItemConfig struct {
	// Node is the target node identifier.
	Node string `yaml:"node"`

	// IntervalMS is the requested sampling interval in milliseconds.
	// Ignored for push-routed nodes.
	IntervalMS int `yaml:"intervalMs"`

	// Queue is the requested queue size (0 uses the default of 10).
	Queue uint32 `yaml:"queue"`

	// Disabled creates the item with monitoring disabled.
	Disabled bool `yaml:"disabled"`
}

// Interval returns the requested interval as a duration.
func (ic ItemConfig) Interval() time.Duration {
	return time.Duration(ic.IntervalMS) * time.Millisecond
}

// loadConfigFile reads a YAML config file into cfg, leaving unset fields
// at their current values.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// validateConfig checks the merged configuration.
func validateConfig(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", cfg.LogLevel)
	}

	for i, ic := range cfg.Items {
		if ic.Node == "" {
			return fmt.Errorf("items[%d]: node identifier required", i)
		}
		if ic.IntervalMS < 0 {
			return fmt.Errorf("items[%d]: negative interval", i)
		}
	}
	return nil
}
