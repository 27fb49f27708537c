package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/reactorkv/internal/cli/connection"
	"github.com/yndnr/reactorkv/internal/cli/output"
	"github.com/yndnr/reactorkv/internal/cli/repl"
)

// REPLCommand returns the interactive mode command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start interactive mode (default)",
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	cfg := cliConfig(c)
	out := c.App.Writer

	mgr := connection.NewManager(flags.Timeout)
	defer mgr.Disconnect()
	if err := mgr.Connect(flags.Addr); err != nil {
		fmt.Fprintf(out, "could not connect to %s: %v\n", flags.Addr, err)
	}

	historyFile := flags.History
	switch historyFile {
	case "":
		historyFile = repl.DefaultHistoryPath()
	case "-":
		historyFile = ""
	}
	history := repl.NewHistory(historyFile)
	if err := history.Load(); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "load history: %v\n", err)
	}

	exec := func(args []string) error {
		if args[0] == "connect" {
			if len(args) != 2 {
				return fmt.Errorf("usage: connect ADDR")
			}
			return mgr.Connect(cfg.Resolve(args[1]))
		}
		v, err := mgr.Do(args...)
		if err != nil {
			return err
		}
		return output.NewFormatter(flags.Output).Format(out, v)
	}

	prompt := func() string {
		if cur := mgr.Current(); cur != nil {
			return cur.Addr() + "> "
		}
		return "not connected> "
	}

	r := repl.New(exec,
		repl.WithIO(c.App.Reader, out),
		repl.WithHistory(history),
		repl.WithPrompt(prompt),
	)
	runErr := r.Run()

	if err := history.Save(); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "save history: %v\n", err)
	}
	return runErr
}
