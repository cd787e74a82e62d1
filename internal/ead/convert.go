package ead

import (
	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/mdast"
	"git.home.luguber.info/inful/mdead/internal/xmlfmt"
)

// Formatter reformats finished markup. Implementations must be idempotent.
type Formatter interface {
	Format(raw string) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(raw string) (string, error)

func (f FormatterFunc) Format(raw string) (string, error) { return f(raw) }

// ConvertOptions controls the post-processing done by Convert.
type ConvertOptions struct {
	// Wrap names an element placed around the whole fragment, e.g. "odd".
	Wrap string
	// Pretty runs the output through Formatter.
	Pretty bool
	// Formatter defaults to xmlfmt.Format.
	Formatter Formatter
}

// Convert renders root with s and applies opts.
func (s *Serializer) Convert(root *mdast.Root, opts ConvertOptions) (*Result, error) {
	res, err := s.Render(root)
	if err != nil {
		return nil, err
	}

	if opts.Wrap != "" {
		p := NewPrinter()
		p.PrintByte('<').Print(opts.Wrap).PrintByte('>')
		p.Indent(+2)
		if res.Markup != "" {
			p.Println().Print(res.Markup)
		}
		p.Indent(-2)
		p.Println().Print("</").Print(opts.Wrap).PrintByte('>')
		res.Markup = p.String()
	}

	if !opts.Pretty {
		return res, nil
	}
	f := opts.Formatter
	if f == nil {
		f = FormatterFunc(xmlfmt.Format)
	}
	pretty, err := f.Format(res.Markup)
	if err != nil {
		if errors.IsFormat(err) {
			return nil, err
		}
		return nil, errors.FormatError("pretty-printer rejected generated markup").
			WithCause(err).
			Build()
	}
	res.Markup = pretty
	return res, nil
}

// Convert renders root with a default Serializer.
func Convert(root *mdast.Root, opts ConvertOptions) (*Result, error) {
	return NewSerializer().Convert(root, opts)
}
