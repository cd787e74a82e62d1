package ead

import (
	"net/url"
	"strings"

	"git.home.luguber.info/inful/mdead/internal/mdast"
)

// Attribute is a name/value pair copied onto an emitted element.
type Attribute struct {
	Name  string
	Value string
}

// Rendering describes how a link or image is emitted.
//
// Href and attribute values are plain strings and are escaped on output.
// Text is markup and is written as-is.
type Rendering struct {
	Href       string
	Text       string
	Attributes []Attribute
}

// WithAttribute returns a copy of r with an extra attribute appended.
func (r Rendering) WithAttribute(name, value string) Rendering {
	attrs := make([]Attribute, 0, len(r.Attributes)+1)
	attrs = append(attrs, r.Attributes...)
	r.Attributes = append(attrs, Attribute{Name: name, Value: value})
	return r
}

// LinkRenderer decides the target, text and attributes of links and images.
// text arguments are already-rendered markup.
type LinkRenderer interface {
	RenderAutoLink(n *mdast.AutoLink) Rendering
	RenderMailLink(n *mdast.MailLink) Rendering
	RenderExplicitLink(n *mdast.ExplicitLink, text string) Rendering
	RenderReferenceLink(n *mdast.ReferenceLink, url, title, text string) Rendering
	RenderWikiLink(n *mdast.WikiLink) Rendering
	RenderImage(url, title, alt string) Rendering
}

// DefaultLinkRenderer is the stock LinkRenderer.
type DefaultLinkRenderer struct{}

var _ LinkRenderer = DefaultLinkRenderer{}

func (DefaultLinkRenderer) RenderAutoLink(n *mdast.AutoLink) Rendering {
	return Rendering{Href: n.URL, Text: Escape(n.URL)}
}

func (DefaultLinkRenderer) RenderMailLink(n *mdast.MailLink) Rendering {
	href := n.Address
	if !strings.HasPrefix(strings.ToLower(href), "mailto:") {
		href = "mailto:" + href
	}
	return Rendering{Href: href, Text: Escape(strings.TrimPrefix(n.Address, "mailto:"))}
}

func (DefaultLinkRenderer) RenderExplicitLink(n *mdast.ExplicitLink, text string) Rendering {
	return withTitle(Rendering{Href: n.URL, Text: text}, n.Title)
}

func (DefaultLinkRenderer) RenderReferenceLink(_ *mdast.ReferenceLink, url, title, text string) Rendering {
	return withTitle(Rendering{Href: url, Text: text}, title)
}

// RenderWikiLink maps "Page Name" to "./Page-Name.html".
func (DefaultLinkRenderer) RenderWikiLink(n *mdast.WikiLink) Rendering {
	page := url.PathEscape(strings.ReplaceAll(n.Text, " ", "-"))
	return Rendering{Href: "./" + page + ".html", Text: Escape(n.Text)}
}

// RenderImage uses the alt text as the element title.
func (DefaultLinkRenderer) RenderImage(url, _ string, alt string) Rendering {
	return Rendering{Href: url, Text: Escape(alt)}.WithAttribute("title", alt)
}

func withTitle(r Rendering, title string) Rendering {
	if title == "" {
		return r
	}
	return r.WithAttribute("title", title)
}
