// Package markdown turns Markdown sources into mdast document trees using
// goldmark.
package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/frontmatter"
	"git.home.luguber.info/inful/mdead/internal/mdast"
)

// Document is a parsed Markdown file.
type Document struct {
	Root *mdast.Root
	Meta frontmatter.Meta
	// HadFrontmatter reports whether the source started with a YAML block.
	HadFrontmatter bool
}

// Parse parses a complete Markdown file, frontmatter included.
func Parse(content []byte, opts Options) (*Document, error) {
	fm, body, had, err := frontmatter.Split(content)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "failed to split frontmatter").Build()
	}
	meta, err := frontmatter.Decode(fm)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "invalid frontmatter").Build()
	}

	abbrs, refs := definitionsFrom(opts)
	abbrs = append(abbrs, sortedAbbreviations(meta.Abbreviations)...)
	for _, label := range sortedKeys(meta.References) {
		ref := meta.References[label]
		refs = append(refs, ReferenceDef{Label: label, URL: ref.URL, Title: ref.Title})
	}

	root, err := parseBody(body, opts, abbrs, refs)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root, Meta: meta, HadFrontmatter: had}, nil
}

// ParseBody parses a Markdown body (frontmatter already removed).
func ParseBody(body []byte, opts Options) (*mdast.Root, error) {
	abbrs, refs := definitionsFrom(opts)
	return parseBody(body, opts, abbrs, refs)
}

func definitionsFrom(opts Options) ([]AbbreviationDef, []ReferenceDef) {
	abbrs := sortedAbbreviations(opts.Abbreviations)
	var refs []ReferenceDef
	for _, label := range sortedKeys(opts.References) {
		ref := opts.References[label]
		refs = append(refs, ReferenceDef{Label: label, URL: ref.URL, Title: ref.Title})
	}
	return abbrs, refs
}

// parseBody converts body into a Root. extAbbrs and extRefs are definitions
// from outside the body, lowest precedence first.
//
// The Root starts with every definition in ascending precedence so that a
// later entry for the same key wins, followed by the content blocks.
func parseBody(body []byte, opts Options, extAbbrs []AbbreviationDef, extRefs []ReferenceDef) (*mdast.Root, error) {
	source, docAbbrs := extractAbbreviations(body)
	md := newEngine(opts)

	ctx := parser.NewContext()
	injected := injectReferences(md, source, ctx, extRefs)
	doc := md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	c := &converter{source: source}
	content, err := c.children(doc)
	if err != nil {
		return nil, err
	}

	root := &mdast.Root{}
	for _, def := range append(extAbbrs, docAbbrs...) {
		root.Children = append(root.Children, &mdast.Abbreviation{
			Container: mdast.Children(&mdast.Text{Text: def.Abbr}),
			Expansion: []mdast.Node{&mdast.Text{Text: def.Expansion}},
		})
	}
	for _, def := range extRefs {
		root.Children = append(root.Children, referenceNode(def))
	}

	docRefs := ctx.References()
	sort.SliceStable(docRefs, func(i, j int) bool {
		return string(docRefs[i].Label()) < string(docRefs[j].Label())
	})
	for _, ref := range docRefs {
		if _, ok := injected[util.ToLinkReference(ref.Label())]; ok {
			continue
		}
		root.Children = append(root.Children, referenceNode(ReferenceDef{
			Label: string(ref.Label()),
			URL:   string(ref.Destination()),
			Title: string(ref.Title()),
		}))
	}
	root.Children = append(root.Children, content...)
	return root, nil
}

func referenceNode(def ReferenceDef) *mdast.Reference {
	return &mdast.Reference{
		Container: mdast.Children(&mdast.Text{Text: def.Label}),
		URL:       def.URL,
		Title:     def.Title,
	}
}

// injectReferences adds external reference definitions to ctx and returns
// the normalized labels it added. goldmark keeps the first definition of a
// label, so labels the document defines itself are skipped and
// higher-precedence external entries are added first.
func injectReferences(md goldmark.Markdown, source []byte, ctx parser.Context, refs []ReferenceDef) map[string]struct{} {
	injected := make(map[string]struct{})
	if len(refs) == 0 {
		return injected
	}

	probe := parser.NewContext()
	md.Parser().Parse(text.NewReader(source), parser.WithContext(probe))
	defined := make(map[string]struct{})
	for _, ref := range probe.References() {
		defined[util.ToLinkReference(ref.Label())] = struct{}{}
	}

	for i := len(refs) - 1; i >= 0; i-- {
		def := refs[i]
		key := util.ToLinkReference([]byte(def.Label))
		if _, ok := defined[key]; ok {
			continue
		}
		if _, ok := injected[key]; ok {
			continue
		}
		ctx.AddReference(parser.NewReference([]byte(def.Label), []byte(def.URL), []byte(def.Title)))
		injected[key] = struct{}{}
	}
	return injected
}

func sortedAbbreviations(m map[string]string) []AbbreviationDef {
	defs := make([]AbbreviationDef, 0, len(m))
	for _, abbr := range sortedKeys(m) {
		defs = append(defs, AbbreviationDef{Abbr: abbr, Expansion: m[abbr]})
	}
	return defs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type converter struct {
	source []byte
}

func (c *converter) unsupported(n gmast.Node) error {
	return errors.ParseError("unsupported markdown construct").
		WithContext("kind", n.Kind().String()).
		Build()
}

// children converts the children of parent, pairing typographic quotes among
// inline siblings.
func (c *converter) children(parent gmast.Node) ([]mdast.Node, error) {
	var items []inlineItem
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		var err error
		if items, err = c.appendNode(items, n); err != nil {
			return nil, err
		}
	}
	return pairQuotes(items), nil
}

func (c *converter) container(parent gmast.Node) (mdast.Container, error) {
	kids, err := c.children(parent)
	if err != nil {
		return mdast.Container{}, err
	}
	return mdast.Children(kids...), nil
}

func (c *converter) appendNode(items []inlineItem, n gmast.Node) ([]inlineItem, error) {
	switch n := n.(type) {
	case *gmast.Text:
		value := n.Segment.Value(c.source)
		if !n.IsRaw() {
			value = decodeText(value)
		}
		items = appendText(items, string(value))
		if n.HardLineBreak() {
			items = append(items, inlineItem{node: &mdast.SpecialChar{Type: mdast.SpecialLinebreak}})
		} else if n.SoftLineBreak() {
			items = appendText(items, "\n")
		}
		return items, nil
	case *gmast.String:
		if n.IsCode() {
			return append(items, inlineItem{mark: string(n.Value)}), nil
		}
		return appendText(items, string(n.Value)), nil
	case *gmast.Paragraph:
		// goldmark leaves an empty paragraph behind a block of reference
		// definitions.
		if n.ChildCount() == 0 && n.Lines().Len() == 0 {
			return items, nil
		}
	}

	node, err := c.convert(n)
	if err != nil {
		return nil, err
	}
	return append(items, inlineItem{node: node}), nil
}

func (c *converter) convert(n gmast.Node) (mdast.Node, error) {
	switch n := n.(type) {
	case *gmast.Heading:
		kids, err := c.container(n)
		return &mdast.Heading{Level: n.Level, Container: kids}, err
	case *gmast.Paragraph, *gmast.TextBlock:
		kids, err := c.container(n)
		return &mdast.Paragraph{Container: kids}, err
	case *gmast.ThematicBreak:
		return &mdast.SpecialChar{Type: mdast.SpecialHRule}, nil
	case *gmast.CodeBlock, *gmast.FencedCodeBlock:
		return &mdast.Verbatim{Text: strings.TrimSuffix(c.lines(n), "\n")}, nil
	case *gmast.HTMLBlock:
		raw := c.lines(n)
		if n.HasClosure() {
			raw += string(n.ClosureLine.Value(c.source))
		}
		return &mdast.HTMLBlock{Text: strings.TrimRight(raw, "\r\n")}, nil
	case *gmast.Blockquote:
		kids, err := c.container(n)
		return &mdast.BlockQuote{Container: kids}, err
	case *gmast.List:
		kids, err := c.container(n)
		if n.IsOrdered() {
			return &mdast.OrderedList{Container: kids}, err
		}
		return &mdast.BulletList{Container: kids}, err
	case *gmast.ListItem:
		kids, err := c.container(n)
		return &mdast.ListItem{Container: kids}, err
	case *gmast.CodeSpan:
		return &mdast.Code{Text: c.codeSpan(n)}, nil
	case *gmast.Emphasis:
		kids, err := c.container(n)
		if n.Level == 1 {
			return &mdast.Emphasis{Container: kids}, err
		}
		return &mdast.Strong{Container: kids}, err
	case *gmast.Link:
		kids, err := c.container(n)
		return &mdast.ExplicitLink{URL: string(n.Destination), Title: string(n.Title), Container: kids}, err
	case *gmast.Image:
		kids, err := c.container(n)
		return &mdast.ExplicitImage{URL: string(n.Destination), Title: string(n.Title), Container: kids}, err
	case *gmast.AutoLink:
		if n.AutoLinkType == gmast.AutoLinkEmail {
			return &mdast.MailLink{Address: string(n.Label(c.source))}, nil
		}
		return &mdast.AutoLink{URL: string(n.URL(c.source))}, nil
	case *gmast.RawHTML:
		var sb strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(c.source))
		}
		return &mdast.InlineHTML{Text: sb.String()}, nil
	case *extast.Table:
		return c.table(n)
	case *extast.DefinitionList:
		kids, err := c.container(n)
		return &mdast.DefinitionList{Container: kids}, err
	case *extast.DefinitionTerm:
		kids, err := c.container(n)
		return &mdast.DefinitionTerm{Container: kids}, err
	case *extast.DefinitionDescription:
		kids, err := c.container(n)
		return &mdast.Definition{Container: kids}, err
	default:
		return nil, c.unsupported(n)
	}
}

func (c *converter) lines(n gmast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(c.source))
	}
	return sb.String()
}

func (c *converter) codeSpan(n *gmast.CodeSpan) string {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *gmast.Text:
			value := t.Segment.Value(c.source)
			if bytes.HasSuffix(value, []byte("\n")) {
				sb.Write(value[:len(value)-1])
				sb.WriteByte(' ')
				continue
			}
			sb.Write(value)
		case *gmast.String:
			sb.Write(t.Value)
		}
	}
	return sb.String()
}

func (c *converter) table(n *extast.Table) (mdast.Node, error) {
	t := &mdast.Table{}
	for _, align := range n.Alignments {
		t.Columns = append(t.Columns, &mdast.TableColumn{Alignment: alignment(align)})
	}

	body := &mdast.TableBody{}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *extast.TableHeader:
			cells, err := c.cells(child)
			if err != nil {
				return nil, err
			}
			t.Children = append(t.Children, &mdast.TableHeader{
				Container: mdast.Children(&mdast.TableRow{Container: mdast.Children(cells...)}),
			})
		case *extast.TableRow:
			cells, err := c.cells(child)
			if err != nil {
				return nil, err
			}
			body.Children = append(body.Children, &mdast.TableRow{Container: mdast.Children(cells...)})
		default:
			return nil, c.unsupported(child)
		}
	}
	if len(body.Children) > 0 {
		t.Children = append(t.Children, body)
	}
	return t, nil
}

func (c *converter) cells(row gmast.Node) ([]mdast.Node, error) {
	var cells []mdast.Node
	for child := row.FirstChild(); child != nil; child = child.NextSibling() {
		if _, ok := child.(*extast.TableCell); !ok {
			return nil, c.unsupported(child)
		}
		kids, err := c.container(child)
		if err != nil {
			return nil, err
		}
		cells = append(cells, &mdast.TableCell{Container: kids, ColSpan: 1})
	}
	return cells, nil
}

func alignment(a extast.Alignment) mdast.Alignment {
	switch a {
	case extast.AlignLeft:
		return mdast.AlignLeft
	case extast.AlignRight:
		return mdast.AlignRight
	case extast.AlignCenter:
		return mdast.AlignCenter
	default:
		return mdast.AlignNone
	}
}

// decodeText resolves backslash escapes and character references.
func decodeText(value []byte) []byte {
	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	return util.ResolveEntityNames(value)
}
