package command

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/reactorkv/internal/cli/config"
	"github.com/yndnr/reactorkv/internal/cli/connection"
	"github.com/yndnr/reactorkv/internal/cli/output"
	"github.com/yndnr/reactorkv/internal/infra/buildinfo"
)

// ErrReplyError reports that the server answered with an error reply. The
// reply has already been printed.
var ErrReplyError = errors.New("server returned an error reply")

const metaConfig = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "reactorkv-cli",
		Usage:   "reactorkv command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			ExecCommand(),
			REPLCommand(),
		},
		Action: replAction,
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("load cli config: %w", err)
			}
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[metaConfig] = cfg
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "server address or saved connection name",
			EnvVars: []string{"REACTORKV_ADDR"},
			Value:   config.DefaultAddr,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: raw, json, yaml",
			Value:   config.DefaultOutput,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "dial and request timeout",
			Value: config.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI configuration file",
			EnvVars: []string{"REACTORKV_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
	}
}

// GlobalFlags are the effective global settings: explicit flags first,
// then the CLI configuration file, then built-in defaults.
type GlobalFlags struct {
	Addr    string
	Output  output.Format
	Timeout time.Duration
	History string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg := cliConfig(c)

	addr := c.String("addr")
	if !c.IsSet("addr") && cfg.DefaultAddr != "" {
		addr = cfg.DefaultAddr
	}

	format := c.String("output")
	if !c.IsSet("output") && cfg.DefaultOutput != "" {
		format = cfg.DefaultOutput
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	timeout := c.Duration("timeout")
	if !c.IsSet("timeout") && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &GlobalFlags{
		Addr:    cfg.Resolve(addr),
		Output:  f,
		Timeout: timeout,
		History: cfg.HistoryFile,
	}, nil
}

func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// run sends one command and prints the reply.
func run(c *cli.Context, args ...string) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	client, err := connection.Dial(flags.Addr, flags.Timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	v, err := client.Do(args...)
	if err != nil {
		return err
	}
	return printReply(c.App.Writer, flags.Output, output.FromValue(v))
}

func printReply(w io.Writer, format output.Format, r output.Reply) error {
	if err := output.NewFormatter(format).Format(w, r); err != nil {
		return err
	}
	if r.Type == output.TypeError {
		return ErrReplyError
	}
	return nil
}
