package mdast

import (
	"strings"
	"sync"

	"github.com/k0kubun/pp"
)

// Children builds a Container from the given nodes.
func Children(nodes ...Node) Container {
	return Container{Children: nodes}
}

// WalkStatus controls a Walk traversal.
type WalkStatus int

const (
	WalkContinue WalkStatus = iota
	WalkSkipChildren
	WalkStop
)

// Walk visits n and its descendants in pre-order. Only ChildNodes are
// followed; table columns, reference keys and abbreviation expansions are
// attributes of their owner and are not visited. Walk reports whether the
// traversal ran to completion.
func Walk(n Node, fn func(Node) WalkStatus) bool {
	switch fn(n) {
	case WalkStop:
		return false
	case WalkSkipChildren:
		return true
	}
	p, ok := n.(Parent)
	if !ok {
		return true
	}
	for _, c := range p.ChildNodes() {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// TextContent concatenates the literal text below the given nodes, without
// markup. It is used where a plain string is required, such as image titles.
func TextContent(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		Walk(n, func(n Node) WalkStatus {
			switch n := n.(type) {
			case *Text:
				b.WriteString(n.Text)
			case *EncodedText:
				b.WriteString(n.Text)
			case *Code:
				b.WriteString(n.Text)
			case *Verbatim:
				b.WriteString(n.Text)
			case *AutoLink:
				b.WriteString(n.URL)
			case *MailLink:
				b.WriteString(n.Address)
			case *WikiLink:
				b.WriteString(n.Text)
			case *SpecialChar:
				b.WriteString(specialText[n.Type])
			}
			return WalkContinue
		})
	}
	return b.String()
}

var specialText = map[SpecialType]string{
	SpecialApostrophe: "’",
	SpecialEllipsis:   "…",
	SpecialEmdash:     "—",
	SpecialEndash:     "–",
	SpecialLinebreak:  "\n",
	SpecialHRule:      "\n",
	SpecialNbsp:       " ",
}

var disableColor sync.Once

// Dump renders a tree for debugging, without terminal colors.
func Dump(n Node) string {
	disableColor.Do(func() { pp.ColoringEnabled = false })
	return pp.Sprint(n)
}
