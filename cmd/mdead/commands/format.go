package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/xmlfmt"
)

// FormatCmd implements the 'format' command.
type FormatCmd struct {
	File   string `arg:"" help:"XML file, or '-' for standard input"`
	Indent string `help:"Indentation unit" default:"  "`
}

func (f *FormatCmd) Run(_ *Global, root *CLI) error {
	content, err := root.readInput(f.File)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read input").
			WithContext("path", f.File).Build()
	}
	pretty, err := xmlfmt.Formatter{Indent: f.Indent}.Format(string(content))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(root.stdout(), pretty)
	return err
}
