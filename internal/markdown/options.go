package markdown

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/mdead/internal/frontmatter"
)

// Options controls how Markdown is parsed.
//
// Abbreviations and References are defaults shared by every document; a
// document's frontmatter and body definitions take precedence over them.
type Options struct {
	// Extensions selects goldmark extensions by name. Empty selects
	// DefaultExtensions.
	Extensions    []string
	Abbreviations map[string]string
	References    map[string]ReferenceTarget
}

// ReferenceTarget is the destination of a configured reference label. It
// decodes from YAML the same way frontmatter references do.
type ReferenceTarget = frontmatter.Reference

// DefaultExtensions are enabled when Options.Extensions is empty.
var DefaultExtensions = []string{"table", "definition", "linkify", "typographer"}

var extensionRegistry = map[string]goldmark.Extender{
	"table":       extension.Table,
	"definition":  extension.DefinitionList,
	"linkify":     extension.Linkify,
	"typographer": extension.Typographer,
}

var extensionAliases = map[string]string{
	"tables":      "table",
	"deflist":     "definition",
	"autolink":    "linkify",
	"smartypants": "typographer",
}

func canonicalExtension(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := extensionAliases[key]; ok {
		return alias
	}
	return key
}

// KnownExtension reports whether name selects a supported extension.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[canonicalExtension(name)]
	return ok
}

// ExtensionNames lists the accepted extension names, aliases included.
func ExtensionNames() []string {
	names := make([]string, 0, len(extensionRegistry)+len(extensionAliases))
	for name := range extensionRegistry {
		names = append(names, name)
	}
	for alias := range extensionAliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		names = DefaultExtensions
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := canonicalExtension(name)
		if _, ok := seen[key]; ok {
			continue
		}

		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}

		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}

func newEngine(opts Options) goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(collectExtensions(opts.Extensions)...))
}
