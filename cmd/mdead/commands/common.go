package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdead/internal/config"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (default: ${default_config} when present)"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text or json); overrides the configuration"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Convert ConvertCmd `cmd:"" help:"Convert Markdown files or directories to EAD"`
	Watch   WatchCmd   `cmd:"" help:"Convert directories and keep converting files as they change"`
	Dump    DumpCmd    `cmd:"" help:"Print the document tree parsed from a Markdown file"`
	Format  FormatCmd  `cmd:"" help:"Pretty-print an EAD/XML fragment"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`

	// Stdout receives command output. Nil means os.Stdout.
	Stdout io.Writer `kong:"-"`
	// Stdin is read when a command is given "-" as its input. Nil means os.Stdin.
	Stdin io.Reader `kong:"-"`
}

// DefaultConfigPath is loaded when --config is not given and the file exists.
const DefaultConfigPath = "mdead.yaml"

// Vars are the kong interpolation variables the CLI definition uses.
func Vars(version string) kong.Vars {
	return kong.Vars{"version": version, "default_config": DefaultConfigPath}
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(c.LogFormat, level, os.Stderr))
	return nil
}

func newLogger(format string, level slog.Level, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if config.NormalizeLogFormat(format) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LoadConfig loads the configuration file. A missing file at the default
// path selects the built-in defaults; a missing file named explicitly is an
// error. Logging is reconfigured from the loaded settings unless the
// command line overrides them.
func (c *CLI) LoadConfig() (*config.Config, error) {
	path := c.Config
	if path == "" {
		path = DefaultConfigPath
	}

	var cfg *config.Config
	if _, err := os.Stat(path); os.IsNotExist(err) && c.Config == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	format := string(cfg.Logging.Format)
	if c.LogFormat != "" {
		format = c.LogFormat
	}
	level := cfg.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(format, level, os.Stderr))
	return cfg, nil
}

func (c *CLI) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *CLI) stdin() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

// readInput reads path, or standard input for "-".
func (c *CLI) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(c.stdin())
	}
	return os.ReadFile(path)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
