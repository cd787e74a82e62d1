package ead

import (
	"reflect"
	"strconv"

	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/mdast"
)

// DefaultMaxDepth bounds the nesting depth accepted by a Serializer.
const DefaultMaxDepth = 512

// Option configures a Serializer.
type Option func(*Serializer)

// WithLinkRenderer replaces the DefaultLinkRenderer.
func WithLinkRenderer(r LinkRenderer) Option {
	return func(s *Serializer) {
		if r != nil {
			s.links = r
		}
	}
}

// WithMaxDepth sets the maximum tree depth. Values below 1 select the default.
func WithMaxDepth(n int) Option {
	return func(s *Serializer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// Serializer converts document trees into EAD markup. It holds configuration
// only and may be shared between goroutines.
type Serializer struct {
	links    LinkRenderer
	maxDepth int
}

// NewSerializer returns a Serializer with the given options applied.
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{links: DefaultLinkRenderer{}, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats summarizes a single conversion.
type Stats struct {
	References           int
	DuplicateReferences  []string
	Abbreviations        int
	Annotations          int
	UnresolvedReferences int
}

// Result is the outcome of Render.
type Result struct {
	Markup string
	Stats  Stats
}

// ToEAD converts root using a default Serializer.
func ToEAD(root *mdast.Root) (string, error) {
	return NewSerializer().ToEAD(root)
}

// ToEAD converts root to EAD markup.
func (s *Serializer) ToEAD(root *mdast.Root) (string, error) {
	res, err := s.Render(root)
	if err != nil {
		return "", err
	}
	return res.Markup, nil
}

// Render converts root and reports conversion statistics. On error no
// markup is returned.
func (s *Serializer) Render(root *mdast.Root) (*Result, error) {
	if root == nil {
		return nil, errors.MalformedTreeError("nil document root").Build()
	}

	ctx := &renderContext{
		links:    s.links,
		maxDepth: s.maxDepth,
		out:      NewPrinter(),
		refs:     newReferences(),
		abbrs:    newAbbreviations(),
	}
	ctx.collect(root)

	for _, child := range root.Children {
		if err := ctx.visit(child); err != nil {
			return nil, err
		}
	}

	ctx.stats.References = ctx.refs.Len()
	ctx.stats.DuplicateReferences = ctx.refs.Duplicates()
	ctx.stats.Abbreviations = ctx.abbrs.Len()
	return &Result{Markup: ctx.out.String(), Stats: ctx.stats}, nil
}

// renderContext carries all mutable state of one conversion.
type renderContext struct {
	links    LinkRenderer
	maxDepth int

	out        *Printer
	refs       *References
	abbrs      *Abbreviations
	table      tableState
	inListItem bool
	depth      int
	stats      Stats
}

// collect registers the reference and abbreviation definitions found among
// the immediate children of root. Labels are compared as plain text: markup
// inside a label is ignored for key matching, so [*Docs*] and [Docs] share a
// key. Lookups use the same flattening.
func (c *renderContext) collect(root *mdast.Root) {
	for _, child := range root.Children {
		if ref, ok := child.(*mdast.Reference); ok && ref != nil {
			c.refs.Add(mdast.TextContent(ref.Children), ref.URL, ref.Title)
		}
	}
	for _, child := range root.Children {
		if abbr, ok := child.(*mdast.Abbreviation); ok && abbr != nil {
			c.abbrs.Add(mdast.TextContent(abbr.Children), mdast.TextContent(abbr.Expansion))
		}
	}
}

func (c *renderContext) visitChildren(nodes []mdast.Node) error {
	for _, child := range nodes {
		if err := c.visit(child); err != nil {
			return err
		}
	}
	return nil
}

// renderToString renders nodes into a scratch printer and returns the markup.
func (c *renderContext) renderToString(nodes []mdast.Node) (string, error) {
	outer := c.out
	c.out = NewPrinter()
	defer func() { c.out = outer }()

	if err := c.visitChildren(nodes); err != nil {
		return "", err
	}
	return c.out.String(), nil
}

func (c *renderContext) visit(node mdast.Node) error {
	if isNilNode(node) {
		return errors.MalformedTreeError("nil node in document tree").Build()
	}

	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.maxDepth {
		return errors.MalformedTreeError("document tree exceeds maximum depth").
			WithContext("max_depth", c.maxDepth).
			Build()
	}

	switch n := node.(type) {
	case *mdast.Root:
		return errors.MalformedTreeError("nested document root").Build()
	case *mdast.Reference, *mdast.Abbreviation, *mdast.TableColumn:
		return nil
	case *mdast.Heading:
		tag := "head"
		if n.Level > 1 {
			tag = "head0" + strconv.Itoa(n.Level)
		}
		return c.printTag(tag, n.Children)
	case *mdast.Paragraph:
		if c.inListItem {
			return c.visitChildren(n.Children)
		}
		return c.printTag("p", n.Children)
	case *mdast.BlockQuote:
		return c.printIndentedTag("blockquote", n.Children)
	case *mdast.BulletList:
		return c.printIndentedTag("list", n.Children)
	case *mdast.OrderedList:
		return c.printIndentedTag("list", n.Children)
	case *mdast.ListItem:
		c.out.Println()
		prev := c.inListItem
		c.inListItem = true
		err := c.printTag("item", n.Children)
		c.inListItem = prev
		return err
	case *mdast.DefinitionList:
		c.out.Print(`<list type="deflist">`)
		if err := c.visitChildren(n.Children); err != nil {
			return err
		}
		c.out.Print("</list>")
		return nil
	case *mdast.DefinitionTerm:
		return c.printTag("entry", n.Children)
	case *mdast.Definition:
		return c.printTag("entry", n.Children)
	case *mdast.Emphasis:
		return c.printTag("em", n.Children)
	case *mdast.Strong:
		return c.printTag("strong", n.Children)
	case *mdast.Code:
		c.out.Print("<code>").PrintEncoded(n.Text).Print("</code>")
		return nil
	case *mdast.Quoted:
		return c.printQuoted(n)
	case *mdast.SpecialChar:
		return c.printSpecial(n)
	case *mdast.AutoLink:
		c.printLink(c.links.RenderAutoLink(n))
		return nil
	case *mdast.MailLink:
		c.printLink(c.links.RenderMailLink(n))
		return nil
	case *mdast.WikiLink:
		c.printLink(c.links.RenderWikiLink(n))
		return nil
	case *mdast.ExplicitLink:
		text, err := c.renderToString(n.Children)
		if err != nil {
			return err
		}
		c.printLink(c.links.RenderExplicitLink(n, text))
		return nil
	case *mdast.ExplicitImage:
		c.printImage(c.links.RenderImage(n.URL, n.Title, mdast.TextContent(n.Children)))
		return nil
	case *mdast.ReferenceLink:
		return c.printReferenceLink(n)
	case *mdast.ReferenceImage:
		return c.printReferenceImage(n)
	case *mdast.HTMLBlock:
		if n.Text != "" {
			c.out.Println()
		}
		c.out.Print(n.Text)
		return nil
	case *mdast.InlineHTML:
		c.out.Print(n.Text)
		return nil
	case *mdast.Verbatim:
		c.printVerbatim(n.Text)
		return nil
	case *mdast.Text:
		c.stats.Annotations += c.abbrs.Annotate(c.out, n.Text)
		return nil
	case *mdast.EncodedText:
		c.out.PrintEncoded(n.Text)
		return nil
	case *mdast.Table:
		restore := c.table.enter(n)
		defer restore()
		return c.printIndentedTag("table", n.Children)
	case *mdast.TableHeader:
		return c.printIndentedTag("thead", n.Children)
	case *mdast.TableBody:
		return c.printIndentedTag("tbody", n.Children)
	case *mdast.TableRow:
		c.table.startRow()
		return c.printIndentedTag("row", n.Children)
	case *mdast.TableCell:
		return c.printCell(n)
	default:
		return errors.MalformedTreeError("unsupported node kind").
			WithContext("kind", node.Kind().String()).
			Build()
	}
}

func (c *renderContext) printTag(tag string, children []mdast.Node) error {
	c.out.PrintByte('<').Print(tag).PrintByte('>')
	if err := c.visitChildren(children); err != nil {
		return err
	}
	c.out.Print("</").Print(tag).PrintByte('>')
	return nil
}

func (c *renderContext) printIndentedTag(tag string, children []mdast.Node) error {
	c.out.Println().PrintByte('<').Print(tag).PrintByte('>').Indent(+2)
	err := c.visitChildren(children)
	c.out.Indent(-2)
	if err != nil {
		return err
	}
	c.out.Println().Print("</").Print(tag).PrintByte('>')
	return nil
}

func (c *renderContext) printQuoted(n *mdast.Quoted) error {
	var open, closing string
	switch n.Type {
	case mdast.QuoteDoubleAngle:
		open, closing = "&laquo;", "&raquo;"
	case mdast.QuoteDouble:
		open, closing = "&ldquo;", "&rdquo;"
	case mdast.QuoteSingle:
		open, closing = "&lsquo;", "&rsquo;"
	default:
		return errors.MalformedTreeError("unknown quote type").
			WithContext("type", int(n.Type)).
			Build()
	}
	c.out.Print(open)
	if err := c.visitChildren(n.Children); err != nil {
		return err
	}
	c.out.Print(closing)
	return nil
}

func (c *renderContext) printSpecial(n *mdast.SpecialChar) error {
	switch n.Type {
	case mdast.SpecialApostrophe:
		c.out.Print("&rsquo;")
	case mdast.SpecialEllipsis:
		c.out.Print("&hellip;")
	case mdast.SpecialEmdash:
		c.out.Print("&mdash;")
	case mdast.SpecialEndash:
		c.out.Print("&ndash;")
	case mdast.SpecialHRule:
		c.out.Println().Print("<lb/>")
	case mdast.SpecialLinebreak:
		c.out.Print("<lb/>")
	case mdast.SpecialNbsp:
		c.out.Print("&#160;")
	default:
		return errors.MalformedTreeError("unknown special character").
			WithContext("type", int(n.Type)).
			Build()
	}
	return nil
}

// printVerbatim turns leading newlines into line breaks and escapes the rest.
func (c *renderContext) printVerbatim(text string) {
	c.out.Println().Print("<pre><code>")
	for len(text) > 0 && text[0] == '\n' {
		c.out.Print("<lb/>")
		text = text[1:]
	}
	c.out.PrintEncoded(text).Print("</code></pre>")
}

func (c *renderContext) printCell(n *mdast.TableCell) error {
	col, err := c.table.currentColumn()
	if err != nil {
		return err
	}
	align, err := alignAttribute(col)
	if err != nil {
		return err
	}

	c.out.Println().Print("<entry")
	if align != "" {
		c.printAttribute("align", align)
	}
	c.out.PrintByte('>')
	if err := c.visitChildren(n.Children); err != nil {
		return err
	}
	c.out.Print("</entry>")

	c.table.advance(n.ColSpan)
	return nil
}

// referenceKey returns the lookup label and the fallback markup of the
// explicit key, if any.
func (c *renderContext) referenceKey(children, key []mdast.Node) (label, keyMarkup string, err error) {
	if key == nil {
		return mdast.TextContent(children), "", nil
	}
	keyMarkup, err = c.renderToString(key)
	if err != nil {
		return "", "", err
	}
	return mdast.TextContent(key), keyMarkup, nil
}

func (c *renderContext) printReferenceLink(n *mdast.ReferenceLink) error {
	text, err := c.renderToString(n.Children)
	if err != nil {
		return err
	}
	label, keyMarkup, err := c.referenceKey(n.Children, n.Key)
	if err != nil {
		return err
	}

	ref, ok := c.refs.Resolve(label)
	if !ok {
		c.stats.UnresolvedReferences++
		c.out.PrintByte('[').Print(text).PrintByte(']')
		c.printKeyLiteral(n.KeyBrackets, n.Separator, keyMarkup)
		return nil
	}
	c.printLink(c.links.RenderReferenceLink(n, ref.URL, ref.Title, text))
	return nil
}

func (c *renderContext) printReferenceImage(n *mdast.ReferenceImage) error {
	label, keyMarkup, err := c.referenceKey(n.Children, n.Key)
	if err != nil {
		return err
	}

	ref, ok := c.refs.Resolve(label)
	if !ok {
		text, err := c.renderToString(n.Children)
		if err != nil {
			return err
		}
		c.stats.UnresolvedReferences++
		c.out.Print("![").Print(text).PrintByte(']')
		c.printKeyLiteral(n.KeyBrackets, n.Separator, keyMarkup)
		return nil
	}
	c.printImage(c.links.RenderImage(ref.URL, ref.Title, mdast.TextContent(n.Children)))
	return nil
}

func (c *renderContext) printKeyLiteral(brackets bool, separator, keyMarkup string) {
	if !brackets && keyMarkup == "" {
		return
	}
	c.out.Print(separator).PrintByte('[').Print(keyMarkup).PrintByte(']')
}

func (c *renderContext) printLink(r Rendering) {
	c.out.Print("<extptr")
	c.printAttribute("href", r.Href)
	for _, attr := range r.Attributes {
		c.printAttribute(attr.Name, attr.Value)
	}
	c.out.PrintByte('>').Print(r.Text).Print("</extptr>")
}

func (c *renderContext) printImage(r Rendering) {
	c.out.Print("<extref")
	c.printAttribute("href", r.Href)
	for _, attr := range r.Attributes {
		c.printAttribute(attr.Name, attr.Value)
	}
	c.out.Print("/>")
}

func (c *renderContext) printAttribute(name, value string) {
	c.out.PrintByte(' ').Print(name).Print(`="`).PrintEncoded(value).PrintByte('"')
}

// isNilNode reports whether node is nil or a typed nil pointer.
func isNilNode(node mdast.Node) bool {
	if node == nil {
		return true
	}
	v := reflect.ValueOf(node)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
