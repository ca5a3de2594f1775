// Package markup holds the generic element/text tree exchanged between the
// renderer, the sanitizer, the walker and the HTML tokenizer.
package markup

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Kind tells element and text nodes apart.
type Kind int

const (
	KindElement Kind = iota
	KindText
)

// Attr is one attribute. Attribute order is preserved.
type Attr struct {
	Key string
	Val string
}

// Node is an element or a text node. The root of a tree is a fragment: an
// element with an empty tag whose children are the top level nodes.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// Elem returns an element node.
func Elem(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs, Children: children}
}

// Fragment returns a root holding children.
func Fragment(children ...*Node) *Node {
	return &Node{Kind: KindElement, Children: children}
}

// Text returns a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Attrs builds an attribute list from key, value pairs.
func Attrs(kv ...string) []Attr {
	if len(kv) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Attr{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

// IsElement reports whether n is an element, optionally one of tags.
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Kind != KindElement {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Tag == t {
			return true
		}
	}
	return false
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Kind == KindText
}

// IsFragment reports whether n is a tree root.
func (n *Node) IsFragment() bool {
	return n != nil && n.Kind == KindElement && n.Tag == ""
}

// IsWhitespace reports whether n is a text node holding only whitespace.
func (n *Node) IsWhitespace() bool {
	return n.IsText() && strings.TrimSpace(n.Text) == ""
}

// Get returns the value of attribute key.
func (n *Node) Get(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attr returns the value of attribute key or "".
func (n *Node) Attr(key string) string {
	v, _ := n.Get(key)
	return v
}

// Has reports whether attribute key is present.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// ElementChildren returns the element children of n.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsElement() {
			out = append(out, c)
		}
	}
	return out
}

// TextContent concatenates all descendant text.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var b strings.Builder
	var collect func(*Node)
	collect = func(x *Node) {
		if x.IsText() {
			b.WriteString(x.Text)
			return
		}
		for _, c := range x.Children {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Tag: n.Tag, Text: n.Text}
	if n.Attrs != nil {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

var blockTags = mapset.NewSet[string](
	"address", "article", "aside", "blockquote", "caption", "dd", "details", "div", "dl",
	"dt", "fieldset", "figcaption", "figure", "footer", "form", "h1", "h2", "h3", "h4",
	"h5", "h6", "header", "hr", "li", "main", "nav", "ol", "p", "pre", "section",
	"summary", "table", "tbody", "td", "tfoot", "th", "thead", "tr", "ul",
	"adf-panel", "adf-media-single", "adf-media-group", "adf-block-card",
)

// IsBlockTag reports whether tag is laid out as a block.
func IsBlockTag(tag string) bool {
	return blockTags.Contains(tag)
}

// IsBlock reports whether n is a block-level element.
func (n *Node) IsBlock() bool {
	return n.IsElement() && blockTags.Contains(n.Tag)
}
