package commands

import (
	"fmt"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdead/internal/config"
	"git.home.luguber.info/inful/mdead/internal/convert"
	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/logfields"
	"git.home.luguber.info/inful/mdead/internal/metrics"
)

// OutputFlags override the output section of the configuration.
type OutputFlags struct {
	Output    string `short:"o" help:"Output directory (default: next to each source)"`
	Extension string `help:"Output file extension"`
	Pretty    bool   `short:"p" help:"Pretty-print output"`
	Wrap      string `short:"w" help:"Wrap each document in this element"`
}

func (f OutputFlags) apply(cfg *config.Config) {
	if f.Output != "" {
		cfg.Output.Directory = f.Output
	}
	if f.Extension != "" {
		cfg.Output.Extension = f.Extension
	}
	if f.Pretty {
		cfg.Output.Pretty = true
	}
	if f.Wrap != "" {
		cfg.Output.Wrap = f.Wrap
	}
}

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	OutputFlags `embed:""`

	Paths       []string `arg:"" help:"Markdown files or directories; '-' converts standard input to standard output"`
	Incremental bool     `short:"i" help:"Skip files unchanged since the last run"`
	MetricsFile string   `name:"metrics-file" help:"Write Prometheus metrics to this textfile"`
	Workers     int      `help:"Number of concurrent conversions"`
}

func (c *ConvertCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	c.apply(cfg)
	if c.Incremental {
		cfg.Incremental.Enabled = true
	}
	if c.MetricsFile != "" {
		cfg.Metrics.Textfile = c.MetricsFile
	}
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if len(c.Paths) == 1 && c.Paths[0] == "-" {
		return convertStream(root, cfg)
	}

	reg := prom.NewRegistry()
	conv := convert.New(cfg,
		convert.WithLogger(slog.Default()),
		convert.WithRecorder(metrics.NewPrometheusRecorder(reg)))

	ctx, cancel := signalContext()
	defer cancel()

	summary, err := conv.ConvertPaths(ctx, c.Paths)
	if summary != nil {
		_, _ = fmt.Fprintln(root.stdout(), summary.String())
	}
	if cfg.Metrics.Textfile != "" {
		if werr := metrics.WriteTextfile(reg, cfg.Metrics.Textfile); werr != nil {
			slog.Warn("Failed to write metrics", logfields.Path(cfg.Metrics.Textfile), logfields.Error(werr))
		}
	}
	return err
}

func convertStream(root *CLI, cfg *config.Config) error {
	content, err := root.readInput("-")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read standard input").Build()
	}
	doc, err := convert.New(cfg, convert.WithLogger(slog.Default())).ConvertBytes(content)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(root.stdout(), doc.Markup)
	return err
}
