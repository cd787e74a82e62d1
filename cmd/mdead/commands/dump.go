package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/markdown"
	"git.home.luguber.info/inful/mdead/internal/mdast"
)

// DumpCmd implements the 'dump' command.
type DumpCmd struct {
	File string `arg:"" help:"Markdown file, or '-' for standard input"`
}

func (d *DumpCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	content, err := root.readInput(d.File)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read input").
			WithContext("path", d.File).Build()
	}
	doc, err := markdown.Parse(content, cfg.MarkdownOptions())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(root.stdout(), mdast.Dump(doc.Root))
	return err
}
