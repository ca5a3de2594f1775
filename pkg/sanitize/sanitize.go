// Package sanitize repairs structural quirks of markup produced by
// third-party markdown renderers before it is walked into a document tree.
//
// Every pass is pure, total and idempotent. Passes restructure markup only:
// they never invent content and never drop text other than whitespace.
package sanitize

import (
	"github.com/athapong/adfconv/pkg/markup"
)

// Pass rewrites a tree and returns the result. The input is not modified.
type Pass func(*markup.Node) *markup.Node

// Passes is the fixed order Sanitize applies.
var Passes = []Pass{
	FlattenAnchors,
	UnwrapBlockParagraphs,
	NormalizeWhitespace,
	RepairTables,
}

// Sanitize applies every pass in order.
func Sanitize(root *markup.Node) *markup.Node {
	return Apply(root, Passes...)
}

// Apply runs passes over root in the given order.
func Apply(root *markup.Node, passes ...Pass) *markup.Node {
	if root == nil {
		return nil
	}
	out := root
	for _, p := range passes {
		out = p(out)
	}
	return out
}

// rewriteChildren clones n and replaces its children with fn's result for
// each original child.
func rewriteChildren(n *markup.Node, fn func(*markup.Node) []*markup.Node) *markup.Node {
	c := &markup.Node{Kind: n.Kind, Tag: n.Tag, Text: n.Text}
	if n.Attrs != nil {
		c.Attrs = append([]markup.Attr(nil), n.Attrs...)
	}
	for _, child := range n.Children {
		c.Children = append(c.Children, fn(child)...)
	}
	return c
}
