package sanitize

import "github.com/athapong/adfconv/pkg/markup"

// FlattenAnchors removes anchor nesting. An anchor that contains another
// anchor loses its own tag and its children take its place, so only the
// innermost anchors survive with their attributes.
func FlattenAnchors(root *markup.Node) *markup.Node {
	out := flattenAnchors(root)
	if len(out) == 1 {
		return out[0]
	}
	return markup.Fragment(out...)
}

func flattenAnchors(n *markup.Node) []*markup.Node {
	if !n.IsElement() {
		return []*markup.Node{n.Clone()}
	}
	rewritten := rewriteChildren(n, flattenAnchors)
	if n.Tag == "a" && !n.IsFragment() && containsAnchor(rewritten) {
		return rewritten.Children
	}
	return []*markup.Node{rewritten}
}

func containsAnchor(n *markup.Node) bool {
	for _, c := range n.Children {
		if c.IsElement("a") || (c.IsElement() && containsAnchor(c)) {
			return true
		}
	}
	return false
}
