//go:build linux

// Package main provides the entry point for reactorkv-server.
//
// The server runs a single-threaded epoll event loop that speaks the Redis
// protocol (PING, ECHO, SET, GET) over an in-memory store with lazy key
// expiry. An optional HTTP listener serves health, readiness, version and
// Prometheus metrics.
//
// Usage:
//
//	reactorkv-server [flags]
//	reactorkv-server --config /etc/reactorkv/server.yaml
//	REACTORKV_SERVER_REDIS_ADDR=:7000 reactorkv-server
//
// Settings are resolved from built-in defaults, then the configuration
// file, then REACTORKV_* environment variables, then command-line flags.
// When a configuration file is given, changes to log.level are applied
// without a restart.
package main
