// Package xmlfmt re-indents XML fragments.
//
// Elements whose children are only elements, comments and whitespace are
// laid out one child per line. Elements that carry text are written inline,
// exactly as parsed, so mixed content is never altered. Formatting a
// formatted document returns it unchanged.
package xmlfmt

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
)

// DefaultIndent is the indentation unit used by Format.
const DefaultIndent = "  "

// Formatter re-indents XML using Indent per nesting level.
type Formatter struct {
	Indent string
}

// Format re-indents raw using DefaultIndent.
func Format(raw string) (string, error) {
	return Formatter{Indent: DefaultIndent}.Format(raw)
}

// Format parses raw, which may hold several top-level nodes, and re-emits it.
// HTML named entities are accepted and written back as characters.
func (f Formatter) Format(raw string) (string, error) {
	nodes, err := parse(raw)
	if err != nil {
		return "", err
	}

	w := &writer{indent: f.Indent}
	for _, n := range nodes {
		if n.kind == textNode {
			text := trimXMLSpace(n.text)
			if text == "" {
				continue
			}
			w.line(0)
			w.text(text)
			continue
		}
		w.line(0)
		w.block(n, 0)
	}
	return w.buf.String(), nil
}

type nodeKind int

const (
	elementNode nodeKind = iota
	textNode
	commentNode
	procInstNode
	directiveNode
)

type node struct {
	kind     nodeKind
	name     string
	attrs    []xml.Attr
	text     string
	children []*node
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func parse(raw string) ([]*node, error) {
	d := xml.NewDecoder(strings.NewReader(raw))
	d.Strict = true
	d.Entity = xml.HTMLEntity

	root := &node{kind: elementNode}
	stack := []*node{root}
	appendChild := func(n *node) {
		top := stack[len(stack)-1]
		// Adjacent character data is merged so the tree does not depend on
		// how the decoder splits text.
		if n.kind == textNode && len(top.children) > 0 {
			if last := top.children[len(top.children)-1]; last.kind == textNode {
				last.text += n.text
				return
			}
		}
		top.children = append(top.children, n)
	}

	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFormat, "malformed markup").
				Fatal().
				WithContext("line", lineOf(d, raw)).
				Build()
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &node{kind: elementNode, name: qualified(t.Name), attrs: append([]xml.Attr(nil), t.Attr...)}
			appendChild(el)
			stack = append(stack, el)
		case xml.EndElement:
			name := qualified(t.Name)
			if len(stack) == 1 {
				return nil, errors.FormatError("unexpected closing tag").
					WithContext("tag", name).
					Build()
			}
			if open := stack[len(stack)-1]; open.name != name {
				return nil, errors.FormatError("mismatched closing tag").
					WithContext("expected", open.name).
					WithContext("tag", name).
					Build()
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			appendChild(&node{kind: textNode, text: string(t)})
		case xml.Comment:
			appendChild(&node{kind: commentNode, text: string(t)})
		case xml.ProcInst:
			appendChild(&node{kind: procInstNode, name: t.Target, text: string(t.Inst)})
		case xml.Directive:
			appendChild(&node{kind: directiveNode, text: string(t)})
		}
	}

	if len(stack) != 1 {
		return nil, errors.FormatError("unclosed element").
			WithContext("tag", stack[len(stack)-1].name).
			Build()
	}
	return root.children, nil
}

func lineOf(d *xml.Decoder, raw string) int {
	off := d.InputOffset()
	if off > int64(len(raw)) {
		off = int64(len(raw))
	}
	return strings.Count(raw[:off], "\n") + 1
}

// mixed reports whether n holds non-whitespace text directly.
func (n *node) mixed() bool {
	for _, c := range n.children {
		if c.kind == textNode && trimXMLSpace(c.text) != "" {
			return true
		}
	}
	return false
}

// trimXMLSpace trims the XML whitespace characters only; U+00A0 is content.
func trimXMLSpace(s string) string {
	return strings.Trim(s, " \t\r\n")
}

type writer struct {
	buf    bytes.Buffer
	indent string
}

// line starts a new line at depth. Nothing precedes the first line.
func (w *writer) line(depth int) {
	if w.buf.Len() > 0 {
		w.buf.WriteByte('\n')
	}
	for i := 0; i < depth; i++ {
		w.buf.WriteString(w.indent)
	}
}

// block writes n at depth, putting element-only children on their own lines.
func (w *writer) block(n *node, depth int) {
	if n.kind != elementNode || n.mixed() {
		w.inline(n)
		return
	}

	var kids []*node
	for _, c := range n.children {
		if c.kind != textNode {
			kids = append(kids, c)
		}
	}
	if len(kids) == 0 {
		w.startTag(n, true)
		return
	}

	w.startTag(n, false)
	for _, c := range kids {
		w.line(depth + 1)
		w.block(c, depth+1)
	}
	w.line(depth)
	w.endTag(n)
}

// inline writes n and its subtree exactly as parsed.
func (w *writer) inline(n *node) {
	switch n.kind {
	case textNode:
		w.text(n.text)
	case commentNode:
		w.buf.WriteString("<!--")
		w.buf.WriteString(n.text)
		w.buf.WriteString("-->")
	case procInstNode:
		w.buf.WriteString("<?")
		w.buf.WriteString(n.name)
		if n.text != "" {
			w.buf.WriteByte(' ')
			w.buf.WriteString(n.text)
		}
		w.buf.WriteString("?>")
	case directiveNode:
		w.buf.WriteString("<!")
		w.buf.WriteString(n.text)
		w.buf.WriteByte('>')
	case elementNode:
		if len(n.children) == 0 {
			w.startTag(n, true)
			return
		}
		w.startTag(n, false)
		for _, c := range n.children {
			w.inline(c)
		}
		w.endTag(n)
	}
}

func (w *writer) startTag(n *node, selfClosing bool) {
	w.buf.WriteByte('<')
	w.buf.WriteString(n.name)
	for _, a := range n.attrs {
		w.buf.WriteByte(' ')
		w.buf.WriteString(qualified(a.Name))
		w.buf.WriteString(`="`)
		_, _ = attrEscaper.WriteString(&w.buf, a.Value)
		w.buf.WriteByte('"')
	}
	if selfClosing {
		w.buf.WriteString("/>")
		return
	}
	w.buf.WriteByte('>')
}

func (w *writer) endTag(n *node) {
	w.buf.WriteString("</")
	w.buf.WriteString(n.name)
	w.buf.WriteByte('>')
}

func (w *writer) text(s string) {
	_, _ = textEscaper.WriteString(&w.buf, s)
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#xA;",
		"\r", "&#xD;",
		"\t", "&#x9;",
	)
)
