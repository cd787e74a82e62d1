package ead

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Abbreviations is an insertion-ordered abbreviation dictionary. Redefining a
// literal replaces its expansion but keeps its original position.
type Abbreviations struct {
	order      []string
	expansions map[string]string
}

func newAbbreviations() *Abbreviations {
	return &Abbreviations{expansions: make(map[string]string)}
}

// Add registers expansion for the literal abbr. Empty literals are ignored.
func (a *Abbreviations) Add(abbr, expansion string) {
	if abbr == "" {
		return
	}
	if _, exists := a.expansions[abbr]; !exists {
		a.order = append(a.order, abbr)
	}
	a.expansions[abbr] = expansion
}

// Len returns the number of registered abbreviations.
func (a *Abbreviations) Len() int { return len(a.order) }

// Expansion returns the expansion registered for abbr.
func (a *Abbreviations) Expansion(abbr string) (string, bool) {
	exp, ok := a.expansions[abbr]
	return exp, ok
}

type abbrMatch struct {
	start int
	abbr  string
}

func (m abbrMatch) end() int { return m.start + len(m.abbr) }

// matches finds every whole-word occurrence of every abbreviation in text.
//
// Occurrences are keyed by start offset; when two abbreviations start at the
// same offset the later-registered one wins. Occurrences are returned in
// ascending offset order with spans overlapping an earlier accepted span
// removed.
func (a *Abbreviations) matches(text string) []abbrMatch {
	byStart := make(map[int]string)
	for _, abbr := range a.order {
		ix := 0
		for {
			rel := strings.Index(text[ix:], abbr)
			if rel < 0 {
				break
			}
			sx := ix + rel
			ix = sx + len(abbr)

			if sx > 0 {
				if r, _ := utf8.DecodeLastRuneInString(text[:sx]); isWordRune(r) {
					continue
				}
			}
			if ix < len(text) {
				if r, _ := utf8.DecodeRuneInString(text[ix:]); isWordRune(r) {
					continue
				}
			}
			byStart[sx] = abbr
		}
	}
	if len(byStart) == 0 {
		return nil
	}

	starts := make([]int, 0, len(byStart))
	for sx := range byStart {
		starts = append(starts, sx)
	}
	sort.Ints(starts)

	out := make([]abbrMatch, 0, len(starts))
	covered := 0
	for _, sx := range starts {
		if sx < covered {
			continue
		}
		m := abbrMatch{start: sx, abbr: byStart[sx]}
		out = append(out, m)
		covered = m.end()
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Annotate writes text to p, escaped, wrapping every whole-word abbreviation
// occurrence in an abbr element. It reports the number of annotations.
func (a *Abbreviations) Annotate(p *Printer, text string) int {
	if a.Len() == 0 {
		p.PrintEncoded(text)
		return 0
	}

	found := a.matches(text)
	ix := 0
	for _, m := range found {
		p.PrintEncoded(text[ix:m.start])
		p.Print("<abbr")
		if exp := a.expansions[m.abbr]; exp != "" {
			p.Print(` title="`).PrintEncoded(exp).PrintByte('"')
		}
		p.PrintByte('>').PrintEncoded(m.abbr).Print("</abbr>")
		ix = m.end()
	}
	p.PrintEncoded(text[ix:])
	return len(found)
}
