// Package config provides reactorkv-cli configuration.
//
//   - spec.go: CLIConfig struct (~/.reactorkv/cli.yaml)
//   - loader.go: YAML loading and saving
//
// Values from the file are defaults; command-line flags and environment
// variables take precedence.
package config
