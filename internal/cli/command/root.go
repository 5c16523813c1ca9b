package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/validator-node/internal/cli/output"
	"github.com/yndnr/validator-node/internal/infra/buildinfo"
	"github.com/yndnr/validator-node/internal/server/config"
	"github.com/yndnr/validator-node/internal/storage"
	"github.com/yndnr/validator-node/internal/telemetry/logger"
)

const loggerKey = "logger"

// App creates the validator-tool application.
func App() *cli.App {
	return &cli.App{
		Name:     "validator-tool",
		Usage:    "Inspect and maintain a validator node database",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Commands: []*cli.Command{DBCommand()},
		Before: func(c *cli.Context) error {
			flags := ParseGlobalFlags(c)
			if _, err := output.ParseFormat(flags.Output); err != nil {
				return err
			}
			l, err := logger.New(logger.Config{
				Level:  flags.LogLevel,
				Format: "text",
				Output: errWriter(c),
			})
			if err != nil {
				return err
			}
			c.App.Metadata[loggerKey] = l
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db-path",
			Aliases: []string{"d"},
			Usage:   "Path to the node database directory",
			EnvVars: []string{"VALIDATOR_DB_PATH"},
			Value:   config.DefaultDataDir,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level for storage diagnostics",
			Value: "warn",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	DBPath   string
	Output   string
	LogLevel string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		DBPath:   c.String("db-path"),
		Output:   c.String("output"),
		LogLevel: c.String("log-level"),
	}
}

// openStore opens the database named by --db-path. Inspection commands
// open it read-only.
func openStore(c *cli.Context, readOnly bool) (*storage.BadgerStore, error) {
	flags := ParseGlobalFlags(c)
	if flags.DBPath == "" {
		return nil, fmt.Errorf("--db-path is required")
	}
	if _, err := os.Stat(flags.DBPath); err != nil {
		return nil, fmt.Errorf("database %s: %w", flags.DBPath, err)
	}

	cfg := storage.DefaultKVConfig(flags.DBPath)
	cfg.ReadOnly = readOnly
	cfg.Badger.GCInterval = 0

	store, err := storage.Open(cfg, toolLogger(c))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store, nil
}

// render writes data to stdout in the selected --output format.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(writer(c), data)
}

func toolLogger(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata[loggerKey].(*slog.Logger); ok {
		return l
	}
	return logger.Discard()
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
