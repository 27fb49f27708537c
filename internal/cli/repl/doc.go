// Package repl provides the interactive mode of reactorkv-cli.
//
//   - repl.go: read-eval-print loop and built-in commands
//   - split.go: tokenizing of input lines with quoting
//   - completer.go: command name completion
//   - history.go: command history persistence
package repl
