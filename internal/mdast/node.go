// Package mdast defines the document tree consumed by the EAD serializer.
//
// The node set is closed: every variant implements Node through an unexported
// marker method, so only this package can add kinds. Consumers dispatch with a
// type switch and must treat the default branch as a malformed tree.
package mdast

// Kind identifies a node variant.
type Kind int

const (
	KindRoot Kind = iota
	KindReference
	KindAbbreviation
	KindAutoLink
	KindMailLink
	KindBlockQuote
	KindBulletList
	KindOrderedList
	KindCode
	KindDefinitionList
	KindDefinitionTerm
	KindDefinition
	KindEmphasis
	KindStrong
	KindHeading
	KindExplicitImage
	KindExplicitLink
	KindHTMLBlock
	KindInlineHTML
	KindListItem
	KindParagraph
	KindQuoted
	KindReferenceImage
	KindReferenceLink
	KindSpecialChar
	KindTable
	KindTableBody
	KindTableHeader
	KindTableRow
	KindTableCell
	KindTableColumn
	KindText
	KindEncodedText
	KindWikiLink
	KindVerbatim
)

var kindNames = [...]string{
	KindRoot:           "Root",
	KindReference:      "Reference",
	KindAbbreviation:   "Abbreviation",
	KindAutoLink:       "AutoLink",
	KindMailLink:       "MailLink",
	KindBlockQuote:     "BlockQuote",
	KindBulletList:     "BulletList",
	KindOrderedList:    "OrderedList",
	KindCode:           "Code",
	KindDefinitionList: "DefinitionList",
	KindDefinitionTerm: "DefinitionTerm",
	KindDefinition:     "Definition",
	KindEmphasis:       "Emphasis",
	KindStrong:         "Strong",
	KindHeading:        "Heading",
	KindExplicitImage:  "ExplicitImage",
	KindExplicitLink:   "ExplicitLink",
	KindHTMLBlock:      "HTMLBlock",
	KindInlineHTML:     "InlineHTML",
	KindListItem:       "ListItem",
	KindParagraph:      "Paragraph",
	KindQuoted:         "Quoted",
	KindReferenceImage: "ReferenceImage",
	KindReferenceLink:  "ReferenceLink",
	KindSpecialChar:    "SpecialChar",
	KindTable:          "Table",
	KindTableBody:      "TableBody",
	KindTableHeader:    "TableHeader",
	KindTableRow:       "TableRow",
	KindTableCell:      "TableCell",
	KindTableColumn:    "TableColumn",
	KindText:           "Text",
	KindEncodedText:    "EncodedText",
	KindWikiLink:       "WikiLink",
	KindVerbatim:       "Verbatim",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Node is a document tree node.
type Node interface {
	Kind() Kind
	node()
}

// Parent is implemented by every variant that owns an ordered child sequence.
type Parent interface {
	Node
	ChildNodes() []Node
}

// Container holds the ordered children of a parent node.
type Container struct {
	Children []Node
}

// ChildNodes returns the node's children in document order.
func (c *Container) ChildNodes() []Node { return c.Children }

// QuoteType selects the quotation marks wrapped around a Quoted node.
type QuoteType int

const (
	QuoteDoubleAngle QuoteType = iota
	QuoteDouble
	QuoteSingle
)

func (q QuoteType) String() string {
	switch q {
	case QuoteDoubleAngle:
		return "DoubleAngle"
	case QuoteDouble:
		return "Double"
	case QuoteSingle:
		return "Single"
	default:
		return "Unknown"
	}
}

// SpecialType selects the typographic substitution of a SpecialChar node.
type SpecialType int

const (
	SpecialApostrophe SpecialType = iota
	SpecialEllipsis
	SpecialEmdash
	SpecialEndash
	SpecialHRule
	SpecialLinebreak
	SpecialNbsp
)

func (s SpecialType) String() string {
	switch s {
	case SpecialApostrophe:
		return "Apostrophe"
	case SpecialEllipsis:
		return "Ellipsis"
	case SpecialEmdash:
		return "Emdash"
	case SpecialEndash:
		return "Endash"
	case SpecialHRule:
		return "HRule"
	case SpecialLinebreak:
		return "Linebreak"
	case SpecialNbsp:
		return "Nbsp"
	default:
		return "Unknown"
	}
}

// Alignment is the declared alignment of a table column.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignRight
	AlignCenter
)

func (a Alignment) String() string {
	switch a {
	case AlignNone:
		return "none"
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	default:
		return "unknown"
	}
}
