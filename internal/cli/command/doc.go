// Package command defines the reactorkv-cli commands using urfave/cli/v2.
//
//   - root.go: application, global flags, configuration merge
//   - redis.go: one-shot commands (ping, echo, get, set, exec)
//   - repl.go: interactive mode, the default without a command
//
// Each one-shot command opens a connection, sends a single request and
// prints the reply with the selected output format.
package command
