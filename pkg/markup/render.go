package markup

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToHTML converts n into tokenizer nodes. A fragment yields its children.
func ToHTML(n *Node) []*html.Node {
	if n.IsFragment() {
		out := make([]*html.Node, 0, len(n.Children))
		for _, c := range n.Children {
			out = append(out, ToHTML(c)...)
		}
		return out
	}
	return []*html.Node{toHTML(n)}
}

func toHTML(n *Node) *html.Node {
	if n.IsText() {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}
	h := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	for _, a := range n.Attrs {
		h.Attr = append(h.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range n.Children {
		if c.IsFragment() {
			for _, cc := range c.Children {
				h.AppendChild(toHTML(cc))
			}
			continue
		}
		h.AppendChild(toHTML(c))
	}
	return h
}

// Render serializes n as HTML.
func Render(w io.Writer, n *Node) error {
	for _, h := range ToHTML(n) {
		if err := html.Render(w, h); err != nil {
			return errors.Wrapf(err, "failed to render <%s>", h.Data)
		}
	}
	return nil
}

// RenderString serializes n as HTML. Trees that cannot be serialized, such
// as a void element with children, yield the partial output.
func RenderString(n *Node) string {
	var buf bytes.Buffer
	_ = Render(&buf, n)
	return buf.String()
}

// Body wraps the serialized tree in a minimal document for consumers that
// expect one.
func Body(n *Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	htmlEl := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	doc.AppendChild(htmlEl)
	htmlEl.AppendChild(body)
	for _, h := range ToHTML(n) {
		body.AppendChild(h)
	}
	return doc
}
