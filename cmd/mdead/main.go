package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdead/cmd/mdead/commands"
	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("mdead"),
		kong.Description("Convert Markdown documents to EAD markup."),
		kong.UsageOnError(),
		commands.Vars(version.String()),
	)

	if err := parser.Run(&commands.Global{Logger: slog.Default()}, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
