package markup

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// Parse tokenizes HTML and returns the body content as a fragment.
func Parse(r io.Reader) (*Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}
	return FromDocument(doc), nil
}

// ParseString is Parse for a string.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// ParseBytes is Parse for a byte slice.
func ParseBytes(b []byte) (*Node, error) {
	return Parse(bytes.NewReader(b))
}

// FromDocument converts the body of a loaded document into a fragment.
func FromDocument(doc *goquery.Document) *Node {
	root := Fragment()
	for _, body := range doc.Find("body").Nodes {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			if n := FromHTML(c); n != nil {
				root.Children = append(root.Children, n)
			}
		}
	}
	return root
}

// FromHTML converts a tokenizer node. Comments and doctypes have no
// counterpart and yield nil; document nodes yield their body as a fragment.
func FromHTML(h *html.Node) *Node {
	switch h.Type {
	case html.TextNode:
		return Text(h.Data)
	case html.DocumentNode:
		return FromDocument(goquery.NewDocumentFromNode(h))
	case html.ElementNode:
		n := Elem(h.Data, nil)
		for _, a := range h.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			n.Attrs = append(n.Attrs, Attr{Key: key, Val: a.Val})
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if child := FromHTML(c); child != nil {
				n.Children = append(n.Children, child)
			}
		}
		return n
	}
	return nil
}
