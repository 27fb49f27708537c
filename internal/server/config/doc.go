// Package config provides server configuration for reactorkv.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (address formats, sizes, log settings)
//   - redis.go: Conversion to the Redis server's runtime config
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
package config
