// Package convert turns Markdown files into EAD files.
package convert

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/mdead/internal/config"
	"git.home.luguber.info/inful/mdead/internal/ead"
	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/frontmatter"
	"git.home.luguber.info/inful/mdead/internal/logfields"
	"git.home.luguber.info/inful/mdead/internal/markdown"
	"git.home.luguber.info/inful/mdead/internal/metrics"
)

// Converter converts Markdown documents according to a Config. It is safe
// for concurrent use.
type Converter struct {
	cfg        *config.Config
	mdOpts     markdown.Options
	serializer *ead.Serializer
	recorder   metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes a Converter.
type Option func(*Converter)

// WithRecorder sets the metrics recorder. The default records nothing.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Converter) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLinkRenderer replaces the link rendering used by the serializer.
func WithLinkRenderer(r ead.LinkRenderer) Option {
	return func(c *Converter) {
		c.serializer = ead.NewSerializer(ead.WithMaxDepth(c.cfg.Render.MaxDepth), ead.WithLinkRenderer(r))
	}
}

// New returns a Converter for cfg. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...Option) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Converter{
		cfg:        cfg,
		mdOpts:     cfg.MarkdownOptions(),
		serializer: ead.NewSerializer(ead.WithMaxDepth(cfg.Render.MaxDepth)),
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the configuration the converter was built with.
func (c *Converter) Config() *config.Config { return c.cfg }

// Document is one converted Markdown document.
type Document struct {
	Markup string
	Stats  ead.Stats
	Meta   frontmatter.Meta
}

// ConvertBytes converts a complete Markdown file held in memory. A wrap
// element named in the document's frontmatter takes precedence over the
// configured one.
func (c *Converter) ConvertBytes(content []byte) (*Document, error) {
	doc, err := markdown.Parse(content, c.mdOpts)
	if err != nil {
		return nil, err
	}

	wrap := c.cfg.Output.Wrap
	if doc.Meta.Wrap != "" {
		if !config.ValidWrapElement(doc.Meta.Wrap) {
			return nil, errors.ValidationError("frontmatter wrap is not a valid element name").
				WithContext("wrap", doc.Meta.Wrap).Build()
		}
		wrap = doc.Meta.Wrap
	}

	res, err := c.serializer.Convert(doc.Root, ead.ConvertOptions{
		Wrap:   wrap,
		Pretty: c.cfg.Output.Pretty,
	})
	if err != nil {
		return nil, err
	}

	if len(res.Stats.DuplicateReferences) > 0 {
		// Configured and frontmatter definitions are routinely overridden by
		// the document, so this is not worth a warning.
		c.logger.Debug("Reference label defined more than once; last definition wins",
			slog.Any("labels", res.Stats.DuplicateReferences))
	}
	if res.Stats.UnresolvedReferences > 0 {
		c.logger.Debug("Unresolved references rendered as text",
			logfields.UnresolvedRefs(res.Stats.UnresolvedReferences))
	}

	return &Document{Markup: res.Markup, Stats: res.Stats, Meta: doc.Meta}, nil
}
