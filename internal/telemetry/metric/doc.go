// Package metric provides Prometheus metrics for reactorkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: the Registry of server metrics and its HTTP handler
//   - collector.go: the build information collector
//
// Metrics include:
//
//   - Connection counters and the active connection gauge
//   - Per-command counters
//   - Protocol error, expiry and dropped reply byte counters
//
// A nil *Registry is valid and records nothing, so components can be
// built without metrics in tests.
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
