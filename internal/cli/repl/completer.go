package repl

import (
	"sort"
	"strings"
)

// DefaultCommands are the server commands and REPL built-ins offered for
// completion.
var DefaultCommands = []string{
	"PING", "ECHO", "SET", "GET", "QUIT", "COMMAND",
	"connect", "help", "history", "exit",
}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over commands, or DefaultCommands when
// none are given.
func NewCompleter(commands ...string) *Completer {
	if len(commands) == 0 {
		commands = DefaultCommands
	}
	c := &Completer{commands: append([]string(nil), commands...)}
	sort.Strings(c.commands)
	return c
}

// Complete returns the commands that start with prefix, ignoring case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToLower(cmd), prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
