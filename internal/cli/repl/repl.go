package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ExecFunc runs one tokenized command line.
type ExecFunc func(args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    func() string
	exec      ExecFunc
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithPrompt sets a function that renders the prompt before each line.
func WithPrompt(prompt func() string) Option {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// New creates a REPL that passes each command to exec.
func New(exec ExecFunc, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    func() string { return "reactorkv> " },
		exec:      exec,
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads commands until exit, quit or end of input. Command errors are
// printed and the loop continues.
func (r *REPL) Run() error {
	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, r.prompt())

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		eof := err == io.EOF

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		r.history.Add(line)

		args, err := Split(line)
		if err != nil {
			fmt.Fprintf(r.output, "(error) %v\n", err)
		} else if len(args) > 0 && r.dispatch(args) {
			return nil
		}

		if eof {
			return nil
		}
	}
}

// dispatch runs REPL built-ins locally and everything else through exec.
// It reports true when the loop should stop.
func (r *REPL) dispatch(args []string) (stop bool) {
	switch strings.ToLower(args[0]) {
	case "exit", "quit":
		return true
	case "help":
		prefix := ""
		if len(args) > 1 {
			prefix = args[1]
		}
		for _, cmd := range r.completer.Complete(prefix) {
			fmt.Fprintln(r.output, cmd)
		}
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
	default:
		if err := r.exec(args); err != nil {
			fmt.Fprintf(r.output, "(error) %v\n", err)
		}
	}
	return false
}
