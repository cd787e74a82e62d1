package ead

import "strings"

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape replaces the markup-significant characters of s with entities.
func Escape(s string) string {
	return markupEscaper.Replace(s)
}

// Printer is an append-only markup buffer with scoped indentation.
//
// Indentation only affects line starts produced by Println; the printer never
// reflows text. Every Indent(+n) must be paired with Indent(-n).
type Printer struct {
	sb     strings.Builder
	indent int
}

// NewPrinter returns an empty printer at depth zero.
func NewPrinter() *Printer {
	return &Printer{}
}

// Print appends s verbatim.
func (p *Printer) Print(s string) *Printer {
	p.sb.WriteString(s)
	return p
}

// PrintByte appends a single byte verbatim.
func (p *Printer) PrintByte(c byte) *Printer {
	p.sb.WriteByte(c)
	return p
}

// PrintEncoded appends s with markup-significant characters escaped.
func (p *Printer) PrintEncoded(s string) *Printer {
	_, _ = markupEscaper.WriteString(&p.sb, s)
	return p
}

// Println starts a new line at the current depth. Nothing but indentation is
// written while the buffer is still empty, so output never starts with a
// blank line.
func (p *Printer) Println() *Printer {
	if p.sb.Len() > 0 {
		p.sb.WriteByte('\n')
	}
	for i := 0; i < p.indent; i++ {
		p.sb.WriteByte(' ')
	}
	return p
}

// Indent adjusts the depth by delta.
func (p *Printer) Indent(delta int) *Printer {
	p.indent += delta
	return p
}

// Depth returns the current indentation depth.
func (p *Printer) Depth() int { return p.indent }

// Len returns the number of bytes written.
func (p *Printer) Len() int { return p.sb.Len() }

// String returns the accumulated markup.
func (p *Printer) String() string { return p.sb.String() }
