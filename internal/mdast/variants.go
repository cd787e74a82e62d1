package mdast

// Root is the document node. Reference and Abbreviation definitions are
// expected as its immediate children.
type Root struct{ Container }

// Reference is a link reference definition. Its children form the label.
type Reference struct {
	Container
	URL   string
	Title string
}

// Abbreviation defines an abbreviation. Its children form the literal label.
type Abbreviation struct {
	Container
	Expansion []Node
}

type AutoLink struct{ URL string }

type MailLink struct{ Address string }

type BlockQuote struct{ Container }

type BulletList struct{ Container }

type OrderedList struct{ Container }

// Code is an inline code span.
type Code struct{ Text string }

type DefinitionList struct{ Container }

type DefinitionTerm struct{ Container }

type Definition struct{ Container }

type Emphasis struct{ Container }

type Strong struct{ Container }

type Heading struct {
	Container
	Level int
}

// ExplicitImage is an inline image; its children form the alt text.
type ExplicitImage struct {
	Container
	URL   string
	Title string
}

type ExplicitLink struct {
	Container
	URL   string
	Title string
}

type HTMLBlock struct{ Text string }

type InlineHTML struct{ Text string }

type ListItem struct{ Container }

type Paragraph struct{ Container }

type Quoted struct {
	Container
	Type QuoteType
}

// ReferenceImage is an image whose target is looked up by label.
//
// Key holds an explicit key label ("![alt][key]"); it is nil when the alt
// text doubles as the key. KeyBrackets records whether a second bracket pair
// was present in the source, and Separator the whitespace between the pairs,
// so unresolved references can be re-emitted as written.
type ReferenceImage struct {
	Container
	Key         []Node
	KeyBrackets bool
	Separator   string
}

// ReferenceLink is a link whose target is looked up by label. See
// ReferenceImage for the meaning of Key, KeyBrackets and Separator.
type ReferenceLink struct {
	Container
	Key         []Node
	KeyBrackets bool
	Separator   string
}

type SpecialChar struct{ Type SpecialType }

// Table owns its column definitions separately from its header/body children.
type Table struct {
	Container
	Columns []*TableColumn
}

type TableBody struct{ Container }

type TableHeader struct{ Container }

type TableRow struct{ Container }

type TableCell struct {
	Container
	ColSpan int
}

type TableColumn struct{ Alignment Alignment }

// Text is plain text; it is escaped on output and subject to abbreviation
// annotation.
type Text struct{ Text string }

// EncodedText is text that must be escaped but never annotated.
type EncodedText struct{ Text string }

type WikiLink struct{ Text string }

// Verbatim is a code block.
type Verbatim struct{ Text string }

func (*Root) Kind() Kind           { return KindRoot }
func (*Reference) Kind() Kind      { return KindReference }
func (*Abbreviation) Kind() Kind   { return KindAbbreviation }
func (*AutoLink) Kind() Kind       { return KindAutoLink }
func (*MailLink) Kind() Kind       { return KindMailLink }
func (*BlockQuote) Kind() Kind     { return KindBlockQuote }
func (*BulletList) Kind() Kind     { return KindBulletList }
func (*OrderedList) Kind() Kind    { return KindOrderedList }
func (*Code) Kind() Kind           { return KindCode }
func (*DefinitionList) Kind() Kind { return KindDefinitionList }
func (*DefinitionTerm) Kind() Kind { return KindDefinitionTerm }
func (*Definition) Kind() Kind     { return KindDefinition }
func (*Emphasis) Kind() Kind       { return KindEmphasis }
func (*Strong) Kind() Kind         { return KindStrong }
func (*Heading) Kind() Kind        { return KindHeading }
func (*ExplicitImage) Kind() Kind  { return KindExplicitImage }
func (*ExplicitLink) Kind() Kind   { return KindExplicitLink }
func (*HTMLBlock) Kind() Kind      { return KindHTMLBlock }
func (*InlineHTML) Kind() Kind     { return KindInlineHTML }
func (*ListItem) Kind() Kind       { return KindListItem }
func (*Paragraph) Kind() Kind      { return KindParagraph }
func (*Quoted) Kind() Kind         { return KindQuoted }
func (*ReferenceImage) Kind() Kind { return KindReferenceImage }
func (*ReferenceLink) Kind() Kind  { return KindReferenceLink }
func (*SpecialChar) Kind() Kind    { return KindSpecialChar }
func (*Table) Kind() Kind          { return KindTable }
func (*TableBody) Kind() Kind      { return KindTableBody }
func (*TableHeader) Kind() Kind    { return KindTableHeader }
func (*TableRow) Kind() Kind       { return KindTableRow }
func (*TableCell) Kind() Kind      { return KindTableCell }
func (*TableColumn) Kind() Kind    { return KindTableColumn }
func (*Text) Kind() Kind           { return KindText }
func (*EncodedText) Kind() Kind    { return KindEncodedText }
func (*WikiLink) Kind() Kind       { return KindWikiLink }
func (*Verbatim) Kind() Kind       { return KindVerbatim }

func (*Root) node()           {}
func (*Reference) node()      {}
func (*Abbreviation) node()   {}
func (*AutoLink) node()       {}
func (*MailLink) node()       {}
func (*BlockQuote) node()     {}
func (*BulletList) node()     {}
func (*OrderedList) node()    {}
func (*Code) node()           {}
func (*DefinitionList) node() {}
func (*DefinitionTerm) node() {}
func (*Definition) node()     {}
func (*Emphasis) node()       {}
func (*Strong) node()         {}
func (*Heading) node()        {}
func (*ExplicitImage) node()  {}
func (*ExplicitLink) node()   {}
func (*HTMLBlock) node()      {}
func (*InlineHTML) node()     {}
func (*ListItem) node()       {}
func (*Paragraph) node()      {}
func (*Quoted) node()         {}
func (*ReferenceImage) node() {}
func (*ReferenceLink) node()  {}
func (*SpecialChar) node()    {}
func (*Table) node()          {}
func (*TableBody) node()      {}
func (*TableHeader) node()    {}
func (*TableRow) node()       {}
func (*TableCell) node()      {}
func (*TableColumn) node()    {}
func (*Text) node()           {}
func (*EncodedText) node()    {}
func (*WikiLink) node()       {}
func (*Verbatim) node()       {}
