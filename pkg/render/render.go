// Package render turns validated document trees into markup trees.
//
// Rendering is total and deterministic: every node kind has exactly one
// markup shape and attributes are emitted in a fixed order, so the walker can
// invert the mapping exactly.
package render

import (
	"strconv"
	"strings"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/markup"
)

// Attribute and tag names shared with the walker and the markdown bridge.
const (
	AttrADFType   = "data-adf-type"
	AttrADFMark   = "data-adf-mark"
	AttrLocalID   = "data-local-id"
	AttrState     = "data-state"
	TagPanel      = "adf-panel"
	TagMediaSgl   = "adf-media-single"
	TagMediaGroup = "adf-media-group"
	TagMedia      = "adf-media"
	TagBlockCard  = "adf-block-card"
	TagMention    = "adf-mention"
	TagEmoji      = "adf-emoji"
	TagStatus     = "adf-status"
	TagInlineCard = "adf-inline-card"
	TagDate       = "adf-date"
	TagUnknown    = "adf-unknown"
	CodeLangClass = "language-"
)

// Render converts a validated document into a markup fragment. Trees that
// were not validated still render; unknown kinds become adf-unknown elements.
func Render(doc *adf.Node) *markup.Node {
	root := markup.Fragment()
	if doc == nil {
		return root
	}
	root.Children = renderAll(doc.Content)
	return root
}

// Node renders a single node and its subtree.
func Node(n *adf.Node) *markup.Node {
	return render(n)
}

func renderAll(nodes []*adf.Node) []*markup.Node {
	var out []*markup.Node
	for _, n := range nodes {
		if n != nil {
			out = append(out, render(n))
		}
	}
	return out
}

func render(n *adf.Node) *markup.Node {
	switch n.Type {
	case adf.TypeDoc:
		return markup.Fragment(renderAll(n.Content)...)
	case adf.TypeParagraph:
		return markup.Elem("p", attrs(n, "localId", AttrLocalID), renderAll(n.Content)...)
	case adf.TypeHeading:
		level, _ := n.IntAttr("level")
		if level < 1 || level > 6 {
			level = 1
		}
		return markup.Elem("h"+strconv.Itoa(level), attrs(n, "localId", AttrLocalID), renderAll(n.Content)...)
	case adf.TypeBlockquote:
		return markup.Elem("blockquote", nil, renderAll(n.Content)...)
	case adf.TypeRule:
		return markup.Elem("hr", nil)
	case adf.TypeCodeBlock:
		return renderCodeBlock(n)
	case adf.TypePanel:
		return markup.Elem(TagPanel, attrs(n, "panelType", "data-panel-type"), renderAll(n.Content)...)
	case adf.TypeBulletList, adf.TypeListItem:
		tag := "ul"
		if n.Type == adf.TypeListItem {
			tag = "li"
		}
		return markup.Elem(tag, nil, renderAll(n.Content)...)
	case adf.TypeOrderedList:
		return markup.Elem("ol", attrs(n, "order", "start"), renderAll(n.Content)...)
	case adf.TypeTaskList:
		return renderTaskList(n)
	case adf.TypeDecisionList:
		a := append(markup.Attrs(AttrADFType, string(n.Type)), attrs(n, "localId", AttrLocalID)...)
		return markup.Elem("ul", a, renderAll(n.Content)...)
	case adf.TypeTaskItem:
		return renderTaskItem(n)
	case adf.TypeDecisionItem:
		a := append(markup.Attrs(AttrADFType, string(n.Type)), attrs(n, "localId", AttrLocalID, "state", AttrState)...)
		return markup.Elem("li", a, renderAll(n.Content)...)
	case adf.TypeTable:
		return renderTable(n)
	case adf.TypeTableRow:
		return markup.Elem("tr", nil, renderAll(n.Content)...)
	case adf.TypeTableHeader, adf.TypeTableCell:
		tag := "td"
		if n.Type == adf.TypeTableHeader {
			tag = "th"
		}
		return markup.Elem(tag, attrs(n, "colspan", "colspan", "rowspan", "rowspan",
			"background", "data-background", "colwidth", "data-colwidth"), renderAll(n.Content)...)
	case adf.TypeExpand, adf.TypeNestedExpand:
		summary := markup.Elem("summary", nil)
		if title := n.StringAttr("title"); title != "" {
			summary.Children = []*markup.Node{markup.Text(title)}
		}
		children := append([]*markup.Node{summary}, renderAll(n.Content)...)
		return markup.Elem("details", markup.Attrs(AttrADFType, string(n.Type)), children...)
	case adf.TypeMediaSingle:
		return markup.Elem(TagMediaSgl, attrs(n, "layout", "data-layout", "width", "data-width"), renderAll(n.Content)...)
	case adf.TypeMediaGroup:
		return markup.Elem(TagMediaGroup, nil, renderAll(n.Content)...)
	case adf.TypeMedia:
		return renderMedia(n)
	case adf.TypeBlockCard:
		return markup.Elem(TagBlockCard, attrs(n, "url", "data-url"))
	case adf.TypeText:
		return wrapMarks(markup.Text(n.Text), n.Marks)
	case adf.TypeHardBreak:
		return markup.Elem("br", nil)
	case adf.TypeMention:
		return wrapMarks(markup.Elem(TagMention, attrs(n, "id", "data-id", "text", "data-text",
			"accessLevel", "data-access-level", "userType", "data-user-type")), n.Marks)
	case adf.TypeEmoji:
		return wrapMarks(markup.Elem(TagEmoji, attrs(n, "shortName", "data-short-name",
			"id", "data-id", "text", "data-text")), n.Marks)
	case adf.TypeStatus:
		return wrapMarks(markup.Elem(TagStatus, attrs(n, "text", "data-text", "color", "data-color",
			"localId", AttrLocalID, "style", "data-style")), n.Marks)
	case adf.TypeInlineCard:
		return wrapMarks(markup.Elem(TagInlineCard, attrs(n, "url", "data-url")), n.Marks)
	case adf.TypeDate:
		return wrapMarks(markup.Elem(TagDate, attrs(n, "timestamp", "data-timestamp")), n.Marks)
	case adf.TypeRaw:
		return wrapMarks(renderRaw(n), n.Marks)
	}
	return markup.Elem(TagUnknown, markup.Attrs("data-type", string(n.Type)), renderAll(n.Content)...)
}

func renderCodeBlock(n *adf.Node) *markup.Node {
	var a []markup.Attr
	if lang := n.StringAttr("language"); lang != "" {
		a = markup.Attrs("class", CodeLangClass+lang)
	}
	code := markup.Elem("code", a)
	var text strings.Builder
	for _, c := range n.Content {
		text.WriteString(c.Text)
	}
	// Code text always ends in a newline in markup, matching what markdown
	// renderers emit for fenced blocks. The walker strips it again.
	if text.Len() > 0 {
		code.Children = []*markup.Node{markup.Text(text.String() + "\n")}
	}
	return markup.Elem("pre", nil, code)
}

// renderTaskList places a nested task list inside the preceding item, the
// way markdown nests lists.
func renderTaskList(n *adf.Node) *markup.Node {
	a := append(markup.Attrs(AttrADFType, string(n.Type)), attrs(n, "localId", AttrLocalID)...)
	ul := markup.Elem("ul", a)
	var prev *markup.Node
	for _, c := range n.Content {
		el := render(c)
		if c.Type == adf.TypeTaskList && prev != nil {
			prev.Children = append(prev.Children, el)
			continue
		}
		ul.Children = append(ul.Children, el)
		if c.Type == adf.TypeTaskItem {
			prev = el
		}
	}
	return ul
}

func renderTaskItem(n *adf.Node) *markup.Node {
	a := append(markup.Attrs(AttrADFType, string(n.Type)), attrs(n, "localId", AttrLocalID, "state", AttrState)...)
	box := markup.Attrs("type", "checkbox")
	if n.StringAttr("state") == adf.StateDone {
		box = append(box, markup.Attr{Key: "checked", Val: ""})
	}
	box = append(box, markup.Attr{Key: "disabled", Val: ""})
	children := append([]*markup.Node{markup.Elem("input", box)}, renderAll(n.Content)...)
	return markup.Elem("li", a, children...)
}

// renderTable puts a leading all-header row in thead and the rest in tbody.
func renderTable(n *adf.Node) *markup.Node {
	table := markup.Elem("table", attrs(n, "layout", "data-layout", "isNumberColumnEnabled", "data-number-column",
		"width", "data-width", "displayMode", "data-display-mode", "localId", AttrLocalID))
	rows := n.Content
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		table.Children = append(table.Children, markup.Elem("thead", nil, render(rows[0])))
		rows = rows[1:]
	}
	if len(rows) > 0 {
		table.Children = append(table.Children, markup.Elem("tbody", nil, renderAll(rows)...))
	}
	return table
}

func isHeaderRow(row *adf.Node) bool {
	if len(row.Content) == 0 {
		return false
	}
	for _, c := range row.Content {
		if c.Type != adf.TypeTableHeader {
			return false
		}
	}
	return true
}

func renderMedia(n *adf.Node) *markup.Node {
	a := attrs(n, "id", "data-id", "type", "data-type", "collection", "data-collection",
		"alt", "data-alt", "width", "data-width", "height", "data-height")
	var marks []*adf.Mark
	for _, m := range n.Marks {
		if m.Type == adf.MarkBorder {
			a = append(a, markAttrs(m, "color", "data-border-color", "size", "data-border-size")...)
			continue
		}
		marks = append(marks, m)
	}
	return wrapMarks(markup.Elem(TagMedia, a), marks)
}

func renderRaw(n *adf.Node) *markup.Node {
	tag := n.StringAttr("tag")
	if el := ParseRaw(tag, n.StringAttr("html")); el != nil {
		return el
	}
	return markup.Elem(TagUnknown, markup.Attrs("data-type", string(adf.TypeRaw), "data-tag", tag))
}

// wrapMarks nests inner in one element per mark; the first mark, the
// highest priority, ends up outermost.
func wrapMarks(inner *markup.Node, marks []*adf.Mark) *markup.Node {
	out := inner
	for i := len(marks) - 1; i >= 0; i-- {
		out = markElement(marks[i], out)
	}
	return out
}

func markElement(m *adf.Mark, child *markup.Node) *markup.Node {
	switch m.Type {
	case adf.MarkLink:
		return markup.Elem("a", markAttrs(m, "href", "href", "title", "title", "id", "data-id",
			"collection", "data-collection", "occurrenceKey", "data-occurrence-key"), child)
	case adf.MarkStrong:
		return markup.Elem("strong", nil, child)
	case adf.MarkEm:
		return markup.Elem("em", nil, child)
	case adf.MarkStrike:
		return markup.Elem("del", nil, child)
	case adf.MarkUnderline:
		return markup.Elem("u", nil, child)
	case adf.MarkCode:
		return markup.Elem("code", nil, child)
	case adf.MarkSubSup:
		tag := "sub"
		if m.StringAttr("type") == "sup" {
			tag = "sup"
		}
		return markup.Elem(tag, nil, child)
	case adf.MarkTextColor, adf.MarkBackgroundColor:
		a := append(markup.Attrs(AttrADFMark, string(m.Type)), markAttrs(m, "color", "data-color")...)
		return markup.Elem("span", a, child)
	}
	return markup.Elem("span", markup.Attrs(AttrADFMark, string(m.Type)), child)
}

// attrs maps node attributes to markup attributes given as pairs of ADF
// name, markup name. Absent attributes are skipped.
func attrs(n *adf.Node, pairs ...string) []markup.Attr {
	return mapAttrs(n.Attrs, pairs)
}

func markAttrs(m *adf.Mark, pairs ...string) []markup.Attr {
	return mapAttrs(m.Attrs, pairs)
}

func mapAttrs(values map[string]any, pairs []string) []markup.Attr {
	var out []markup.Attr
	for i := 0; i+1 < len(pairs); i += 2 {
		v, ok := values[pairs[i]]
		if !ok {
			continue
		}
		out = append(out, markup.Attr{Key: pairs[i+1], Val: FormatValue(v)})
	}
	return out
}

// FormatValue renders an attribute value as markup text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case []int:
		parts := make([]string, len(val))
		for i, x := range val {
			parts[i] = strconv.Itoa(x)
		}
		return strings.Join(parts, ",")
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return ""
}
