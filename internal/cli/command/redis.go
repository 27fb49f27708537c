package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Check that the server is reachable",
		ArgsUsage: "[MESSAGE]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return fmt.Errorf("ping takes at most one argument")
			}
			args := []string{"PING"}
			if c.NArg() == 1 {
				args = append(args, c.Args().First())
			}
			return run(c, args...)
		},
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message",
		ArgsUsage: "MESSAGE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("echo requires exactly one argument")
			}
			return run(c, "ECHO", c.Args().First())
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("get requires exactly one argument")
			}
			return run(c, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key, optionally with an expiry",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "ex",
				Usage: "expire after `SECONDS`",
			},
			&cli.Int64Flag{
				Name:  "px",
				Usage: "expire after `MILLISECONDS`",
			},
			&cli.BoolFlag{
				Name:  "keepttl",
				Usage: "keep the existing expiry",
			},
		},
		Action: setAction,
	}
}

func setAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("set requires KEY and VALUE")
	}

	set := 0
	for _, name := range []string{"ex", "px", "keepttl"} {
		if c.IsSet(name) {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("--ex, --px and --keepttl are mutually exclusive")
	}

	args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
	switch {
	case c.IsSet("ex"):
		args = append(args, "EX", strconv.FormatInt(c.Int64("ex"), 10))
	case c.IsSet("px"):
		args = append(args, "PX", strconv.FormatInt(c.Int64("px"), 10))
	case c.Bool("keepttl"):
		args = append(args, "KEEPTTL")
	}
	return run(c, args...)
}

// ExecCommand returns the exec command, which sends arguments verbatim.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Send a raw command",
		ArgsUsage: "COMMAND [ARG...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("exec requires a command")
			}
			return run(c, c.Args().Slice()...)
		},
	}
}
