// Package logger provides structured logging for reactorkv.
//
// This package wraps log/slog:
//
//   - logger.go: logger configuration and the package-level default
//   - context.go: carrying a request-scoped logger in a context
//   - redact.go: sensitive field masking and payload previews
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime
//   - Automatic sensitive data masking
//   - Request-scoped loggers for HTTP handlers
package logger
