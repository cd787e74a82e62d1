package markdown

import (
	"unicode"
	"unicode/utf8"

	"git.home.luguber.info/inful/mdead/internal/mdast"
)

// inlineItem is either a converted node or a typographer substitution that
// has not been placed yet.
type inlineItem struct {
	node mdast.Node
	mark string
}

var quotePairs = map[string]struct {
	closing string
	typ     mdast.QuoteType
}{
	"&ldquo;": {closing: "&rdquo;", typ: mdast.QuoteDouble},
	"&lsquo;": {closing: "&rsquo;", typ: mdast.QuoteSingle},
	"&laquo;": {closing: "&raquo;", typ: mdast.QuoteDoubleAngle},
}

var specialMarks = map[string]mdast.SpecialType{
	"&rsquo;":  mdast.SpecialApostrophe,
	"&hellip;": mdast.SpecialEllipsis,
	"&mdash;":  mdast.SpecialEmdash,
	"&ndash;":  mdast.SpecialEndash,
}

func appendText(items []inlineItem, s string) []inlineItem {
	if s == "" {
		return items
	}
	if n := len(items); n > 0 {
		if prev, ok := items[n-1].node.(*mdast.Text); ok {
			prev.Text += s
			return items
		}
	}
	return append(items, inlineItem{node: &mdast.Text{Text: s}})
}

// pairQuotes wraps text between matching opening and closing quote marks in
// Quoted nodes. Unpaired marks become SpecialChar nodes where one exists and
// pass through as entities otherwise.
func pairQuotes(items []inlineItem) []mdast.Node {
	var out []mdast.Node
	for i := 0; i < len(items); i++ {
		it := items[i]
		if it.mark == "" {
			out = appendNodeMerged(out, it.node)
			continue
		}

		if pair, ok := quotePairs[it.mark]; ok {
			if j := findClosing(items, i+1, pair.closing); j >= 0 {
				out = append(out, &mdast.Quoted{
					Type:      pair.typ,
					Container: mdast.Children(pairQuotes(items[i+1:j])...),
				})
				i = j
				continue
			}
		}

		if typ, ok := specialMarks[it.mark]; ok {
			out = append(out, &mdast.SpecialChar{Type: typ})
			continue
		}
		out = append(out, &mdast.InlineHTML{Text: it.mark})
	}
	return out
}

// findClosing returns the index of the first closing mark after from, or -1.
// A right single quote directly followed by a letter is an apostrophe and
// never closes a quote.
func findClosing(items []inlineItem, from int, closing string) int {
	for j := from; j < len(items); j++ {
		if items[j].mark != closing {
			continue
		}
		if closing == "&rsquo;" && followedByLetter(items, j) {
			continue
		}
		return j
	}
	return -1
}

func followedByLetter(items []inlineItem, i int) bool {
	if i+1 >= len(items) {
		return false
	}
	t, ok := items[i+1].node.(*mdast.Text)
	if !ok || t.Text == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(t.Text)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func appendNodeMerged(out []mdast.Node, n mdast.Node) []mdast.Node {
	if t, ok := n.(*mdast.Text); ok && len(out) > 0 {
		if prev, ok := out[len(out)-1].(*mdast.Text); ok {
			return append(out[:len(out)-1], &mdast.Text{Text: prev.Text + t.Text})
		}
	}
	return append(out, n)
}
