package sanitize

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/athapong/adfconv/pkg/markup"
)

var preformatted = mapset.NewSet[string]("pre", "code", "textarea")

// NormalizeWhitespace drops whitespace-only text nodes that sit between block
// boundaries: each neighbour is a block element or the edge of a block
// container. Text inside preformatted elements is left alone.
func NormalizeWhitespace(root *markup.Node) *markup.Node {
	return normalizeWhitespace(root)
}

func normalizeWhitespace(n *markup.Node) *markup.Node {
	if !n.IsElement() || preformatted.Contains(n.Tag) {
		return n.Clone()
	}
	blockParent := n.IsFragment() || n.IsBlock()

	c := rewriteChildren(n, func(child *markup.Node) []*markup.Node {
		return []*markup.Node{normalizeWhitespace(child)}
	})
	if !blockParent {
		return c
	}
	kept := c.Children[:0:0]
	for i, child := range c.Children {
		if child.IsWhitespace() && atBlockEdge(c.Children, i) {
			continue
		}
		kept = append(kept, child)
	}
	c.Children = kept
	if len(c.Children) == 0 {
		c.Children = nil
	}
	return c
}

func atBlockEdge(siblings []*markup.Node, i int) bool {
	prevOK := i == 0 || siblings[i-1].IsBlock()
	nextOK := i == len(siblings)-1 || siblings[i+1].IsBlock()
	return prevOK && nextOK
}
