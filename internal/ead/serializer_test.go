package ead

import (
	"strings"
	"sync"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/mdast"
	"git.home.luguber.info/inful/mdead/internal/xmlfmt"
)

func text(s string) *mdast.Text { return &mdast.Text{Text: s} }

func doc(children ...mdast.Node) *mdast.Root {
	return &mdast.Root{Container: mdast.Children(children...)}
}

func para(children ...mdast.Node) *mdast.Paragraph {
	return &mdast.Paragraph{Container: mdast.Children(children...)}
}

func item(children ...mdast.Node) *mdast.ListItem {
	return &mdast.ListItem{Container: mdast.Children(children...)}
}

func cell(span int, children ...mdast.Node) *mdast.TableCell {
	return &mdast.TableCell{Container: mdast.Children(children...), ColSpan: span}
}

func row(cells ...mdast.Node) *mdast.TableRow {
	return &mdast.TableRow{Container: mdast.Children(cells...)}
}

func render(t *testing.T, root *mdast.Root) string {
	t.Helper()
	out, err := ToEAD(root)
	require.NoError(t, err)
	return out
}

// query parses markup as a single document for XPath assertions.
func query(t *testing.T, markup string) *xmlquery.Node {
	t.Helper()
	pretty, err := xmlfmt.Format("<doc>" + markup + "</doc>")
	require.NoError(t, err)
	top, err := xmlquery.Parse(strings.NewReader(pretty))
	require.NoError(t, err)
	return top
}

func TestToEAD_Headings(t *testing.T) {
	out := render(t, doc(
		&mdast.Heading{Level: 1, Container: mdast.Children(text("Title"))},
		&mdast.Heading{Level: 3, Container: mdast.Children(text("Sub"))},
		&mdast.Heading{Level: 0, Container: mdast.Children(text("Zero"))},
	))
	assert.Equal(t, "<head>Title</head><head03>Sub</head03><head>Zero</head>", out)
}

func TestToEAD_ParagraphSuppressedInListItem(t *testing.T) {
	out := render(t, doc(
		&mdast.BulletList{Container: mdast.Children(item(para(text("a"))), item(para(text("b"))))},
		para(text("c")),
	))
	assert.Equal(t, "<list>\n  <item>a</item>\n  <item>b</item>\n</list><p>c</p>", out)
}

func TestToEAD_NestedListItems(t *testing.T) {
	out := render(t, doc(
		&mdast.OrderedList{Container: mdast.Children(
			item(
				para(text("outer")),
				&mdast.BulletList{Container: mdast.Children(item(para(text("inner"))))},
			),
		)},
		&mdast.BlockQuote{Container: mdast.Children(para(text("quoted")))},
	))

	top := query(t, out)
	assert.Empty(t, xmlquery.Find(top, "//item//p"))
	inner := xmlquery.FindOne(top, "/doc/list/item/list/item")
	require.NotNil(t, inner)
	assert.Equal(t, "inner", inner.InnerText())
	assert.NotNil(t, xmlquery.FindOne(top, "/doc/blockquote/p"))
}

func TestToEAD_VerbatimLeadingNewlines(t *testing.T) {
	out := render(t, doc(&mdast.Verbatim{Text: "\n\nfoo"}))
	assert.Equal(t, "<pre><code><lb/><lb/>foo</code></pre>", out)

	out = render(t, doc(&mdast.Verbatim{Text: "a\n\n<b>"}))
	assert.Equal(t, "<pre><code>a\n\n&lt;b&gt;</code></pre>", out)

	out = render(t, doc(&mdast.Verbatim{}))
	assert.Equal(t, "<pre><code></code></pre>", out)
}

func TestToEAD_TableAlignmentAndColSpan(t *testing.T) {
	table := &mdast.Table{
		Columns: []*mdast.TableColumn{
			{Alignment: mdast.AlignRight},
			{Alignment: mdast.AlignNone},
			{Alignment: mdast.AlignCenter},
		},
		Container: mdast.Children(
			&mdast.TableHeader{Container: mdast.Children(row(cell(1, text("A")), cell(1, text("B")), cell(1, text("C"))))},
			&mdast.TableBody{Container: mdast.Children(
				row(cell(2, text("wide")), cell(1, text("c"))),
				row(cell(1, text("1")), cell(1, text("2")), cell(0, text("3"))),
			)},
		),
	}
	out := render(t, doc(table))

	top := query(t, out)
	for _, e := range xmlquery.Find(top, "//row/entry[1]") {
		assert.Equal(t, "right", e.SelectAttr("align"))
	}

	wide := xmlquery.Find(top, "/doc/table/tbody/row[1]/entry")
	require.Len(t, wide, 2)
	assert.Equal(t, "right", wide[0].SelectAttr("align"))
	assert.Equal(t, "center", wide[1].SelectAttr("align"), "colspan 2 must advance the cursor to the third column")

	plain := xmlquery.Find(top, "/doc/table/tbody/row[2]/entry")
	require.Len(t, plain, 3)
	assert.Equal(t, "", plain[1].SelectAttr("align"))
	assert.Equal(t, "center", plain[2].SelectAttr("align"))

	assert.Contains(t, out, "<table>\n  <thead>\n    <row>\n      <entry align=\"right\">A</entry>")
}

func TestToEAD_NestedTableRestoresOuterColumns(t *testing.T) {
	inner := &mdast.Table{
		Columns:   []*mdast.TableColumn{{Alignment: mdast.AlignLeft}},
		Container: mdast.Children(&mdast.TableBody{Container: mdast.Children(row(cell(1, text("in"))))}),
	}
	outer := &mdast.Table{
		Columns: []*mdast.TableColumn{{Alignment: mdast.AlignRight}, {Alignment: mdast.AlignCenter}},
		Container: mdast.Children(&mdast.TableBody{Container: mdast.Children(
			row(cell(1, inner), cell(1, text("after"))),
		)}),
	}

	top := query(t, render(t, doc(outer)))
	after := xmlquery.FindOne(top, "/doc/table/tbody/row/entry[2]")
	require.NotNil(t, after)
	assert.Equal(t, "center", after.SelectAttr("align"))
	nested := xmlquery.FindOne(top, "/doc/table/tbody/row/entry[1]/table/tbody/row/entry")
	require.NotNil(t, nested)
	assert.Equal(t, "left", nested.SelectAttr("align"))
	assert.Equal(t, "in", nested.InnerText())
	assert.Equal(t, "right", xmlquery.FindOne(top, "/doc/table/tbody/row/entry[1]").SelectAttr("align"))
}

func TestToEAD_Abbreviations(t *testing.T) {
	out := render(t, doc(
		&mdast.Abbreviation{Container: mdast.Children(text("ACME")), Expansion: []mdast.Node{text("A Company")}},
		para(text("ACME is great, not ACMEs")),
	))
	assert.Equal(t, `<p><abbr title="A Company">ACME</abbr> is great, not ACMEs</p>`, out)
}

func TestToEAD_NoDefinitionsMeansNoAnnotations(t *testing.T) {
	out := render(t, doc(
		&mdast.Heading{Level: 2, Container: mdast.Children(text("ACME report"))},
		para(
			text("ACME & co "),
			&mdast.ReferenceLink{Container: mdast.Children(text("ref"))},
			text(" "),
			&mdast.ExplicitLink{URL: "https://acme.example", Container: mdast.Children(text("site"))},
		),
	))

	top := query(t, out)
	assert.Empty(t, xmlquery.Find(top, "//abbr"))
	assert.Empty(t, xmlquery.Find(top, "//extref"))
	links := xmlquery.Find(top, "//extptr")
	require.Len(t, links, 1)
	assert.Equal(t, "https://acme.example", links[0].SelectAttr("href"))
}

func TestToEAD_ReferenceFallbacks(t *testing.T) {
	tests := []struct {
		name string
		node mdast.Node
		want string
	}{
		{
			name: "explicit missing key",
			node: &mdast.ReferenceLink{Container: mdast.Children(text("text")), Key: []mdast.Node{text("missing")}, KeyBrackets: true},
			want: "<p>[text][missing]</p>",
		},
		{
			name: "key without brackets flag",
			node: &mdast.ReferenceLink{Container: mdast.Children(text("text")), Key: []mdast.Node{text("missing")}},
			want: "<p>[text][missing]</p>",
		},
		{
			name: "shortcut",
			node: &mdast.ReferenceLink{Container: mdast.Children(text("text"))},
			want: "<p>[text]</p>",
		},
		{
			name: "collapsed with separator",
			node: &mdast.ReferenceLink{Container: mdast.Children(text("text")), KeyBrackets: true, Separator: " "},
			want: "<p>[text] []</p>",
		},
		{
			name: "image",
			node: &mdast.ReferenceImage{Container: mdast.Children(text("alt")), KeyBrackets: true},
			want: "<p>![alt][]</p>",
		},
		{
			name: "image with key",
			node: &mdast.ReferenceImage{Container: mdast.Children(text("a<b")), Key: []mdast.Node{text("k")}, KeyBrackets: true},
			want: "<p>![a&lt;b][k]</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewSerializer().Render(doc(para(tt.node)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Markup)
			assert.Equal(t, 1, res.Stats.UnresolvedReferences)
		})
	}
}

func TestToEAD_ResolvedReferences(t *testing.T) {
	res, err := NewSerializer().Render(doc(
		&mdast.Reference{Container: mdast.Children(text("The Docs")), URL: "https://docs.example/?a=1&b=2", Title: "Manual"},
		&mdast.Reference{Container: mdast.Children(text("logo")), URL: "logo.png"},
		para(
			&mdast.ReferenceLink{Container: mdast.Children(&mdast.Emphasis{Container: mdast.Children(text("read"))}), Key: []mdast.Node{text("the  docs")}, KeyBrackets: true},
			text(" "),
			&mdast.ReferenceLink{Container: mdast.Children(text("THE DOCS"))},
			&mdast.ReferenceImage{Container: mdast.Children(text("Logo"))},
		),
	))
	require.NoError(t, err)

	want := `<p><extptr href="https://docs.example/?a=1&amp;b=2" title="Manual"><em>read</em></extptr> ` +
		`<extptr href="https://docs.example/?a=1&amp;b=2" title="Manual">THE DOCS</extptr>` +
		`<extref href="logo.png" title="Logo"/></p>`
	assert.Equal(t, want, res.Markup)
	assert.Zero(t, res.Stats.UnresolvedReferences)
	assert.Equal(t, 2, res.Stats.References)
}

func TestToEAD_DuplicateReferencesLastWins(t *testing.T) {
	res, err := NewSerializer().Render(doc(
		&mdast.Reference{Container: mdast.Children(text("x")), URL: "first"},
		&mdast.Reference{Container: mdast.Children(text("X")), URL: "second"},
		para(&mdast.ReferenceLink{Container: mdast.Children(text("x"))}),
	))
	require.NoError(t, err)
	assert.Equal(t, `<p><extptr href="second">x</extptr></p>`, res.Markup)
	assert.Equal(t, []string{"x"}, res.Stats.DuplicateReferences)
}

func TestToEAD_Links(t *testing.T) {
	out := render(t, doc(para(
		&mdast.ExplicitLink{URL: "https://x.example", Title: `say "hi"`, Container: mdast.Children(text("site"))},
		&mdast.AutoLink{URL: "https://a.example/?b&c"},
		&mdast.MailLink{Address: "me@x.org"},
		&mdast.WikiLink{Text: "Page Name"},
		&mdast.ExplicitImage{URL: "img.png", Title: "ignored", Container: mdast.Children(text("Alt <b>"))},
	)))

	want := `<p><extptr href="https://x.example" title="say &quot;hi&quot;">site</extptr>` +
		`<extptr href="https://a.example/?b&amp;c">https://a.example/?b&amp;c</extptr>` +
		`<extptr href="mailto:me@x.org">me@x.org</extptr>` +
		`<extptr href="./Page-Name.html">Page Name</extptr>` +
		`<extref href="img.png" title="Alt &lt;b&gt;"/></p>`
	assert.Equal(t, want, out)
}

type typedLinks struct{ DefaultLinkRenderer }

func (r typedLinks) RenderExplicitLink(n *mdast.ExplicitLink, text string) Rendering {
	return r.DefaultLinkRenderer.RenderExplicitLink(n, text).
		WithAttribute("linktype", "simple").
		WithAttribute("show", "new")
}

func TestToEAD_LabelMarkupIgnoredForKeys(t *testing.T) {
	out := render(t, doc(
		&mdast.Reference{Container: mdast.Children(&mdast.Emphasis{Container: mdast.Children(text("Docs"))}), URL: "https://d.example"},
		para(&mdast.ReferenceLink{Container: mdast.Children(text("docs"))}),
	))
	assert.Equal(t, `<p><extptr href="https://d.example">docs</extptr></p>`, out)
}

func TestDefaultLinkRenderer_WikiLinkEscapesPathSegment(t *testing.T) {
	r := DefaultLinkRenderer{}.RenderWikiLink(&mdast.WikiLink{Text: "C++ Notes?"})
	assert.Equal(t, "./C++-Notes%3F.html", r.Href)
	assert.Equal(t, "C++ Notes?", r.Text)
}

func TestToEAD_CustomLinkRenderer(t *testing.T) {
	s := NewSerializer(WithLinkRenderer(typedLinks{}))
	out, err := s.ToEAD(doc(para(&mdast.ExplicitLink{URL: "u", Container: mdast.Children(text("t"))})))
	require.NoError(t, err)
	assert.Equal(t, `<p><extptr href="u" linktype="simple" show="new">t</extptr></p>`, out)
}

func TestToEAD_InlineMarkup(t *testing.T) {
	out := render(t, doc(
		para(
			&mdast.Emphasis{Container: mdast.Children(text("e"))},
			&mdast.Strong{Container: mdast.Children(text("s"))},
			&mdast.Code{Text: "a<b"},
			&mdast.EncodedText{Text: "&"},
		),
		para(
			&mdast.Quoted{Type: mdast.QuoteDouble, Container: mdast.Children(text("d"))},
			&mdast.Quoted{Type: mdast.QuoteSingle, Container: mdast.Children(text("s"))},
			&mdast.Quoted{Type: mdast.QuoteDoubleAngle, Container: mdast.Children(text("a"))},
		),
		para(
			text("x"),
			&mdast.SpecialChar{Type: mdast.SpecialApostrophe},
			&mdast.SpecialChar{Type: mdast.SpecialEllipsis},
			&mdast.SpecialChar{Type: mdast.SpecialEmdash},
			&mdast.SpecialChar{Type: mdast.SpecialEndash},
			&mdast.SpecialChar{Type: mdast.SpecialNbsp},
			&mdast.SpecialChar{Type: mdast.SpecialLinebreak},
		),
		&mdast.SpecialChar{Type: mdast.SpecialHRule},
	))

	want := "<p><em>e</em><strong>s</strong><code>a&lt;b</code>&amp;</p>" +
		"<p>&ldquo;d&rdquo;&lsquo;s&rsquo;&laquo;a&raquo;</p>" +
		"<p>x&rsquo;&hellip;&mdash;&ndash;&#160;<lb/></p>" +
		"\n<lb/>"
	assert.Equal(t, want, out)
}

func TestToEAD_DefinitionList(t *testing.T) {
	out := render(t, doc(&mdast.DefinitionList{Container: mdast.Children(
		&mdast.DefinitionTerm{Container: mdast.Children(text("Term"))},
		&mdast.Definition{Container: mdast.Children(text("Meaning"))},
	)}))
	assert.Equal(t, `<list type="deflist"><entry>Term</entry><entry>Meaning</entry></list>`, out)
}

func TestToEAD_HTMLPassthrough(t *testing.T) {
	out := render(t, doc(
		para(text("x")),
		&mdast.HTMLBlock{Text: "<div>raw & ready</div>"},
		&mdast.HTMLBlock{},
		para(&mdast.InlineHTML{Text: "<span>"}, text("y"), &mdast.InlineHTML{Text: "</span>"}),
	))
	assert.Equal(t, "<p>x</p>\n<div>raw & ready</div><p><span>y</span></p>", out)
}

func TestToEAD_DefinitionsNotRenderedOutsideRoot(t *testing.T) {
	out := render(t, doc(para(
		text("a"),
		&mdast.Reference{Container: mdast.Children(text("k")), URL: "u"},
		&mdast.Abbreviation{Container: mdast.Children(text("a"))},
	)))
	assert.Equal(t, "<p>a</p>", out)
}

func TestToEAD_MalformedTrees(t *testing.T) {
	tests := []struct {
		name string
		root *mdast.Root
		opts []Option
	}{
		{name: "nil root"},
		{name: "nil child", root: doc(para(nil))},
		{name: "typed nil child", root: doc(para((*mdast.Text)(nil)))},
		{name: "nested root", root: doc(doc(para(text("x"))))},
		{name: "cell outside table", root: doc(row(cell(1, text("x"))))},
		{
			name: "cell beyond columns",
			root: doc(&mdast.Table{
				Columns:   []*mdast.TableColumn{{}},
				Container: mdast.Children(row(cell(1, text("a")), cell(1, text("b")))),
			}),
		},
		{name: "unknown special", root: doc(para(&mdast.SpecialChar{Type: mdast.SpecialType(99)}))},
		{name: "unknown quote", root: doc(para(&mdast.Quoted{Type: mdast.QuoteType(7)}))},
		{
			name: "too deep",
			root: doc(&mdast.BlockQuote{Container: mdast.Children(
				&mdast.BlockQuote{Container: mdast.Children(
					&mdast.BlockQuote{Container: mdast.Children(para(text("deep")))},
				)},
			)}),
			opts: []Option{WithMaxDepth(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewSerializer(tt.opts...).Render(tt.root)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.IsMalformedTree(err), "got %v", err)
		})
	}
}

func TestToEAD_MaxDepthAllowsBoundary(t *testing.T) {
	s := NewSerializer(WithMaxDepth(2))
	out, err := s.ToEAD(doc(para(text("ok"))))
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", out)
}

func TestSerializer_SharedAcrossGoroutines(t *testing.T) {
	root := doc(
		&mdast.Abbreviation{Container: mdast.Children(text("EAD")), Expansion: []mdast.Node{text("Encoded Archival Description")}},
		&mdast.Reference{Container: mdast.Children(text("loc")), URL: "https://loc.gov/ead"},
		&mdast.Table{
			Columns:   []*mdast.TableColumn{{Alignment: mdast.AlignLeft}},
			Container: mdast.Children(&mdast.TableBody{Container: mdast.Children(row(cell(1, text("EAD"))))}),
		},
		para(text("EAD "), &mdast.ReferenceLink{Container: mdast.Children(text("loc"))}),
	)
	s := NewSerializer()
	want, err := s.ToEAD(root)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := s.ToEAD(root)
			if err == nil {
				results[i] = out
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
