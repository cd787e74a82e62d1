package ead

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reference is a resolved link/image target.
type Reference struct {
	Key   string
	URL   string
	Title string
}

// References maps normalized labels to link/image targets. A later
// definition for an already-known key replaces the earlier one.
type References struct {
	entries    map[string]Reference
	duplicates []string
}

func newReferences() *References {
	return &References{entries: make(map[string]Reference)}
}

// NormalizeKey strips spaces, tabs and newlines from label and lower-cases
// the rest.
func NormalizeKey(label string) string {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n':
			return -1
		}
		return r
	}, label)
	// A Caser is stateful, so one is created per call.
	return cases.Lower(language.Und).String(stripped)
}

// Add registers a target under the normalized form of label.
func (r *References) Add(label, url, title string) {
	key := NormalizeKey(label)
	if _, exists := r.entries[key]; exists {
		r.duplicates = append(r.duplicates, key)
	}
	r.entries[key] = Reference{Key: key, URL: url, Title: title}
}

// Resolve looks up the target registered for label.
func (r *References) Resolve(label string) (Reference, bool) {
	ref, ok := r.entries[NormalizeKey(label)]
	return ref, ok
}

// Len returns the number of distinct keys.
func (r *References) Len() int { return len(r.entries) }

// Duplicates lists keys that were defined more than once, in definition order.
func (r *References) Duplicates() []string {
	return append([]string(nil), r.duplicates...)
}
