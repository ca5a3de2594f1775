// Package bridge converts documents to and from Markdown.
//
// Outbound, a document is rendered to markup and written as CommonMark with
// GFM tables and task lists; constructs Markdown cannot express are embedded
// as raw HTML. Inbound, Markdown is rendered to HTML, sanitized and walked
// back into a document. Raw HTML written outbound is recognized inbound, so
// documents produced by this package survive the round trip.
package bridge

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/markup"
	"github.com/athapong/adfconv/pkg/render"
	"github.com/athapong/adfconv/pkg/sanitize"
	"github.com/athapong/adfconv/pkg/walker"
)

// Bridge converts between documents and Markdown. It is safe for concurrent
// use.
type Bridge struct {
	md         goldmark.Markdown
	walkerOpts []walker.Option
	logger     logrus.FieldLogger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithWalkerOptions passes options to the reconstruction walker.
func WithWalkerOptions(opts ...walker.Option) Option {
	return func(b *Bridge) {
		b.walkerOpts = append(b.walkerOpts, opts...)
	}
}

// WithLogger sets the logger. It is also handed to the walker.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns a Bridge.
func New(opts ...Option) *Bridge {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	b := &Bridge{md: newMarkdown(), logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var std = New()

// ToMarkdown converts doc with a default Bridge.
func ToMarkdown(doc *adf.Node) (string, error) {
	return std.ToMarkdown(doc)
}

// FromMarkdown converts text with a default Bridge.
func FromMarkdown(text string) (*adf.Node, error) {
	return std.FromMarkdown(text)
}

// ToMarkdown validates doc and writes it as Markdown. Validation failures
// are returned as *adf.ValidationError.
func (b *Bridge) ToMarkdown(doc *adf.Node) (string, error) {
	valid, err := adf.Validate(doc)
	if err != nil {
		return "", err
	}
	return b.ToMarkdownTree(render.Render(valid))
}

// ToMarkdownTree writes a rendered markup tree as Markdown.
func (b *Bridge) ToMarkdownTree(tree *markup.Node) (string, error) {
	o := &outbound{}
	prepared := markup.Fragment(o.blocks(tree.Children)...)

	out, err := o.newConverter().ConvertNode(markup.Body(prepared))
	if err != nil {
		return "", &BridgeError{Code: CodeTransformFailed, Detail: "html to markdown", Err: err}
	}
	b.logger.WithField("chunks", len(o.chunks)).Debug("Converted document to markdown")

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", nil
	}
	return text + "\n", nil
}

// FromMarkdown parses Markdown into a validated document.
func (b *Bridge) FromMarkdown(text string) (*adf.Node, error) {
	tree, err := b.ParseMarkdown(text)
	if err != nil {
		return nil, err
	}

	opts := append([]walker.Option{walker.WithLogger(b.logger)}, b.walkerOpts...)
	doc, err := walker.Reconstruct(tree, opts...)
	if err != nil {
		return nil, &BridgeError{Code: CodeReconstructionFailed, Err: err}
	}
	return doc, nil
}

// ParseMarkdown converts Markdown into a sanitized markup tree.
func (b *Bridge) ParseMarkdown(text string) (*markup.Node, error) {
	doc, err := toHTML(b.md, text)
	if err != nil {
		return nil, err
	}
	if err := checkRawBlocks(doc); err != nil {
		return nil, err
	}
	tree := markup.FromDocument(doc)
	trimBreakNewlines(tree)
	return sanitize.Sanitize(tree), nil
}

// trimBreakNewlines drops the line break the markdown renderer writes after
// each <br>. It is not part of the following text.
func trimBreakNewlines(n *markup.Node) {
	kept := n.Children[:0]
	afterBreak := false
	for _, c := range n.Children {
		if afterBreak && c.IsText() {
			c.Text = strings.TrimPrefix(c.Text, "\n")
			if c.Text == "" {
				afterBreak = false
				continue
			}
		}
		afterBreak = c.IsElement("br")
		trimBreakNewlines(c)
		kept = append(kept, c)
	}
	n.Children = kept
}
