package sanitize

import "github.com/athapong/adfconv/pkg/markup"

// UnwrapBlockParagraphs removes paragraphs that only wrap a block element and
// splits paragraphs that mix inline runs with block elements into
// paragraph, block, paragraph segments. Markdown renderers emit such
// paragraphs around raw block markup.
func UnwrapBlockParagraphs(root *markup.Node) *markup.Node {
	out := unwrapParagraphs(root)
	if len(out) == 1 {
		return out[0]
	}
	return markup.Fragment(out...)
}

func unwrapParagraphs(n *markup.Node) []*markup.Node {
	if !n.IsElement() {
		return []*markup.Node{n.Clone()}
	}
	rewritten := rewriteChildren(n, unwrapParagraphs)
	if !n.IsElement("p") || !hasBlockChild(rewritten) {
		return []*markup.Node{rewritten}
	}

	var out, run []*markup.Node
	flush := func() {
		if onlyWhitespace(run) {
			run = nil
			return
		}
		out = append(out, markup.Elem("p", append([]markup.Attr(nil), rewritten.Attrs...), run...))
		run = nil
	}
	for _, c := range rewritten.Children {
		if c.IsBlock() {
			flush()
			out = append(out, c)
			continue
		}
		run = append(run, c)
	}
	flush()
	return out
}

func hasBlockChild(n *markup.Node) bool {
	for _, c := range n.Children {
		if c.IsBlock() {
			return true
		}
	}
	return false
}

func onlyWhitespace(nodes []*markup.Node) bool {
	for _, n := range nodes {
		if !n.IsWhitespace() {
			return false
		}
	}
	return true
}
