// Package convert ties the document model, renderer, walker and Markdown
// bridge into one conversion API with logging and metrics.
package convert

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/bridge"
	"github.com/athapong/adfconv/pkg/markup"
	"github.com/athapong/adfconv/pkg/metrics"
	"github.com/athapong/adfconv/pkg/render"
	"github.com/athapong/adfconv/pkg/sanitize"
	"github.com/athapong/adfconv/pkg/walker"
)

// Direction names a conversion.
type Direction string

const (
	ADFToHTML     Direction = "adf_to_html"
	HTMLToADF     Direction = "html_to_adf"
	ADFToMarkdown Direction = "adf_to_markdown"
	MarkdownToADF Direction = "markdown_to_adf"
)

// Directions lists every supported conversion.
var Directions = []Direction{ADFToHTML, HTMLToADF, ADFToMarkdown, MarkdownToADF}

// ParseDirection returns the direction named s.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if string(d) == strings.ToLower(strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", errors.Errorf("unknown direction %q", s)
}

// Converter converts documents between ADF, HTML and Markdown. It is safe
// for concurrent use.
type Converter struct {
	logger       logrus.FieldLogger
	metrics      *metrics.Metrics
	walkerOpts   []walker.Option
	sanitizeHTML bool
	bridge       *bridge.Bridge
}

// Option configures a Converter.
type Option func(*Converter)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records conversions in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Converter) {
		c.metrics = m
	}
}

// WithStrictMarkOrder rejects markup whose marks are not nested in
// canonical order.
func WithStrictMarkOrder() Option {
	return func(c *Converter) {
		c.walkerOpts = append(c.walkerOpts, walker.WithStrictMarkOrder())
	}
}

// WithGeneratedLocalIDs assigns stable local ids to task and decision
// nodes reconstructed without one.
func WithGeneratedLocalIDs() Option {
	return func(c *Converter) {
		c.walkerOpts = append(c.walkerOpts, walker.WithGeneratedLocalIDs())
	}
}

// WithSanitizedHTML runs the sanitizer on HTML input too. Use it for HTML
// that was not produced by this package.
func WithSanitizedHTML() Option {
	return func(c *Converter) {
		c.sanitizeHTML = true
	}
}

// New returns a Converter.
func New(opts ...Option) *Converter {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c := &Converter{logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	c.bridge = bridge.New(bridge.WithLogger(c.logger), bridge.WithWalkerOptions(c.walkerOpts...))
	c.walkerOpts = append([]walker.Option{walker.WithLogger(c.logger)}, c.walkerOpts...)
	return c
}

// ParseADF decodes and validates an ADF JSON document.
func (c *Converter) ParseADF(data []byte) (*adf.Node, error) {
	doc, err := adf.Parse(data)
	if err != nil {
		return nil, err
	}
	return c.validate(doc)
}

// Validate checks doc and returns its normalized form.
func (c *Converter) Validate(doc *adf.Node) (*adf.Node, error) {
	return c.validate(doc)
}

// ADFToHTML renders doc as HTML.
func (c *Converter) ADFToHTML(doc *adf.Node) (out string, err error) {
	done := c.metrics.Observe(string(ADFToHTML))
	defer func() { done(err) }()

	valid, err := c.validate(doc)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := markup.Render(&b, render.Render(valid)); err != nil {
		return "", err
	}
	c.metrics.RawNodes(string(ADFToHTML), adf.CountTypes(valid)[adf.TypeRaw])
	return b.String(), nil
}

// HTMLToADF reconstructs a document from HTML.
func (c *Converter) HTMLToADF(src string) (doc *adf.Node, err error) {
	done := c.metrics.Observe(string(HTMLToADF))
	defer func() { done(err) }()

	tree, err := markup.ParseString(src)
	if err != nil {
		return nil, err
	}
	if c.sanitizeHTML {
		tree = sanitize.Sanitize(tree)
	}
	doc, err = walker.Reconstruct(tree, c.walkerOpts...)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to reconstruct document from HTML")
		c.countValidation(err)
		return nil, err
	}
	c.metrics.RawNodes(string(HTMLToADF), adf.CountTypes(doc)[adf.TypeRaw])
	return doc, nil
}

// ADFToMarkdown writes doc as Markdown.
func (c *Converter) ADFToMarkdown(doc *adf.Node) (md string, err error) {
	done := c.metrics.Observe(string(ADFToMarkdown))
	defer func() { done(err) }()

	valid, err := c.validate(doc)
	if err != nil {
		return "", err
	}
	md, err = c.bridge.ToMarkdown(valid)
	if err != nil {
		return "", err
	}
	c.metrics.RawNodes(string(ADFToMarkdown), adf.CountTypes(valid)[adf.TypeRaw])
	return md, nil
}

// MarkdownToADF parses Markdown into a document.
func (c *Converter) MarkdownToADF(text string) (doc *adf.Node, err error) {
	done := c.metrics.Observe(string(MarkdownToADF))
	defer func() { done(err) }()

	doc, err = c.bridge.FromMarkdown(text)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to convert markdown")
		c.countValidation(err)
		return nil, err
	}
	c.metrics.RawNodes(string(MarkdownToADF), adf.CountTypes(doc)[adf.TypeRaw])
	return doc, nil
}

// Convert runs a conversion on serialized input. ADF is read and written as
// JSON; HTML and Markdown as text.
func (c *Converter) Convert(direction Direction, input []byte) ([]byte, error) {
	switch direction {
	case ADFToHTML, ADFToMarkdown:
		doc, err := c.ParseADF(input)
		if err != nil {
			return nil, err
		}
		var out string
		if direction == ADFToHTML {
			out, err = c.ADFToHTML(doc)
		} else {
			out, err = c.ADFToMarkdown(doc)
		}
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	case HTMLToADF, MarkdownToADF:
		var doc *adf.Node
		var err error
		if direction == HTMLToADF {
			doc, err = c.HTMLToADF(string(input))
		} else {
			doc, err = c.MarkdownToADF(string(input))
		}
		if err != nil {
			return nil, err
		}
		return adf.MarshalIndent(doc)
	}
	return nil, errors.Errorf("unknown direction %q", direction)
}

func (c *Converter) validate(doc *adf.Node) (*adf.Node, error) {
	valid, err := adf.Validate(doc)
	if err != nil {
		c.logger.WithError(err).Debug("Document failed validation")
		c.countValidation(err)
		return nil, err
	}
	return valid, nil
}

func (c *Converter) countValidation(err error) {
	var verr *adf.ValidationError
	if errors.As(err, &verr) {
		c.metrics.ValidationFailed(string(verr.Code))
	}
}
