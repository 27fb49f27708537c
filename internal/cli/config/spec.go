package config

import "time"

// Defaults for a missing or partial configuration file.
const (
	DefaultAddr    = "127.0.0.1:6379"
	DefaultOutput  = "raw"
	DefaultTimeout = 5 * time.Second
)

// CLIConfig is the configuration for reactorkv-cli.
type CLIConfig struct {
	DefaultAddr   string        `yaml:"default_addr"`
	DefaultOutput string        `yaml:"default_output"` // raw, json, yaml
	Timeout       time.Duration `yaml:"timeout"`

	// HistoryFile overrides ~/.reactorkv/history. "-" disables history.
	HistoryFile string `yaml:"history_file,omitempty"`

	// Connections maps names to server addresses.
	Connections map[string]string `yaml:"connections,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultAddr:   DefaultAddr,
		DefaultOutput: DefaultOutput,
		Timeout:       DefaultTimeout,
		Connections:   make(map[string]string),
	}
}

// Resolve returns the address saved under name, or name itself.
func (c *CLIConfig) Resolve(name string) string {
	if addr, ok := c.Connections[name]; ok {
		return addr
	}
	return name
}
