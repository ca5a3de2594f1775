package walker

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/markup"
	"github.com/athapong/adfconv/pkg/render"
)

// inlines walks inline content carrying the marks of enclosing elements,
// outermost first.
func (w *walker) inlines(nodes []*markup.Node, marks []*adf.Mark) ([]*adf.Node, error) {
	var out []*adf.Node
	for _, n := range nodes {
		if n.IsText() {
			if n.Text != "" {
				out = append(out, adf.Text(n.Text, cloneMarks(marks)...))
			}
			continue
		}
		got, err := w.inline(n, marks)
		if err != nil {
			return nil, err
		}
		out = append(out, got...)
	}
	return out, nil
}

func (w *walker) inline(n *markup.Node, marks []*adf.Mark) ([]*adf.Node, error) {
	if m := markFor(n); m != nil {
		chain, err := w.pushMark(marks, m, n.Tag)
		if err != nil {
			return nil, err
		}
		return w.inlines(n.Children, chain)
	}

	leaf := func(t adf.NodeType, required string, triples ...string) ([]*adf.Node, error) {
		if !n.Has(required) {
			return nil, missingAttr(n.Tag, required)
		}
		return []*adf.Node{{Type: t, Attrs: collectAttrs(n, triples...), Marks: cloneMarks(marks)}}, nil
	}

	switch n.Tag {
	case "br":
		return []*adf.Node{adf.HardBreak()}, nil
	case render.TagMention:
		return leaf(adf.TypeMention, "data-id",
			"data-id", "id", "",
			"data-text", "text", "",
			"data-access-level", "accessLevel", "",
			"data-user-type", "userType", "")
	case render.TagEmoji:
		return leaf(adf.TypeEmoji, "data-short-name",
			"data-short-name", "shortName", "",
			"data-id", "id", "",
			"data-text", "text", "")
	case render.TagStatus:
		return leaf(adf.TypeStatus, "data-text",
			"data-text", "text", "",
			"data-color", "color", "",
			render.AttrLocalID, "localId", "",
			"data-style", "style", "")
	case render.TagInlineCard:
		return leaf(adf.TypeInlineCard, "data-url", "data-url", "url", "")
	case render.TagDate:
		return leaf(adf.TypeDate, "data-timestamp", "data-timestamp", "timestamp", "")
	case "span", "font":
		return w.inlines(n.Children, marks)
	}
	return []*adf.Node{w.raw(n, marks)}, nil
}

var inlineTags = mapset.NewSet[string]("br", "span", "font", render.TagMention,
	render.TagEmoji, render.TagStatus, render.TagInlineCard, render.TagDate)

// recognizedInline reports whether n maps to a mark or an inline node.
func recognizedInline(n *markup.Node) bool {
	return markFor(n) != nil || inlineTags.Contains(n.Tag)
}

// markFor maps a mark element to its mark, or returns nil.
func markFor(n *markup.Node) *adf.Mark {
	switch n.Tag {
	case "strong", "b":
		return adf.Strong()
	case "em", "i":
		return adf.Em()
	case "del", "s", "strike":
		return adf.Strike()
	case "u":
		return adf.Underline()
	case "code":
		return adf.Code()
	case "sub":
		return adf.Sub()
	case "sup":
		return adf.Sup()
	case "a":
		if n.Has("href") {
			return linkMark(n)
		}
	case "span":
		switch adf.MarkType(n.Attr(render.AttrADFMark)) {
		case adf.MarkTextColor:
			return adf.TextColor(n.Attr("data-color"))
		case adf.MarkBackgroundColor:
			return adf.BackgroundColor(n.Attr("data-color"))
		}
	}
	return nil
}

func linkMark(n *markup.Node) *adf.Mark {
	return &adf.Mark{Type: adf.MarkLink, Attrs: collectAttrs(n,
		"href", "href", "",
		"title", "title", "",
		"data-id", "id", "",
		"data-collection", "collection", "",
		"data-occurrence-key", "occurrenceKey", "",
	)}
}

// pushMark appends m to the chain. A repeated mark replaces the outer one,
// so the innermost wins. In strict mode any step that does not descend the
// canonical order fails.
func (w *walker) pushMark(chain []*adf.Mark, m *adf.Mark, tag string) ([]*adf.Mark, error) {
	if w.strict && len(chain) > 0 {
		last := chain[len(chain)-1]
		if last.Type.Priority() >= m.Type.Priority() {
			return nil, &ReconstructionError{
				Code:   CodeMarkOrderMismatch,
				Tag:    tag,
				Detail: string(m.Type) + " nested inside " + string(last.Type),
			}
		}
	}
	out := make([]*adf.Mark, 0, len(chain)+1)
	for _, c := range chain {
		if c.Type != m.Type {
			out = append(out, c)
		}
	}
	return append(out, m), nil
}

func cloneMarks(marks []*adf.Mark) []*adf.Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]*adf.Mark, len(marks))
	for i, m := range marks {
		out[i] = m.Clone()
	}
	return out
}

// trimRun strips leading whitespace from the first text run and trailing
// whitespace from the last, dropping runs left empty.
func trimRun(nodes []*adf.Node) []*adf.Node {
	for len(nodes) > 0 && nodes[0].Type == adf.TypeText {
		nodes[0].Text = strings.TrimLeft(nodes[0].Text, " \t\r\n")
		if nodes[0].Text != "" {
			break
		}
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].Type == adf.TypeText {
		last := nodes[len(nodes)-1]
		last.Text = strings.TrimRight(last.Text, " \t\r\n")
		if last.Text != "" {
			break
		}
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}
