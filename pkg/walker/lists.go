package walker

import (
	"strconv"
	"strings"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/markup"
	"github.com/athapong/adfconv/pkg/render"
)

func (w *walker) list(n *markup.Node) ([]*adf.Node, error) {
	switch {
	case n.Attr(render.AttrADFType) == string(adf.TypeTaskList):
		return w.taskList(n, true)
	case n.Attr(render.AttrADFType) == string(adf.TypeDecisionList):
		return w.decisionList(n)
	case n.Tag == "ul" && isCheckboxList(n):
		return w.taskList(n, false)
	}

	list := adf.BulletList()
	if n.Tag == "ol" {
		list = adf.OrderedList()
		if start, ok := n.Get("start"); ok {
			if order, err := strconv.Atoi(strings.TrimSpace(start)); err == nil {
				list.Attrs = map[string]any{"order": order}
			}
		}
	}
	for _, c := range n.Children {
		if c.IsWhitespace() {
			continue
		}
		// content outside li gets an item of its own
		children := []*markup.Node{c}
		if c.IsElement("li") {
			children = c.Children
		}
		content, err := w.blocks(children)
		if err != nil {
			return nil, err
		}
		list.Content = append(list.Content, adf.ListItem(content...))
	}
	return []*adf.Node{list}, nil
}

// taskList builds a task list. Items either carry their state in attributes
// (rendered markup) or lead with a checkbox (GFM task lists); nested lists
// inside an item become sibling task lists.
func (w *walker) taskList(n *markup.Node, rendered bool) ([]*adf.Node, error) {
	list := withAttrs(adf.TaskList(), n, render.AttrLocalID, "localId")
	for _, c := range n.Children {
		switch {
		case c.IsWhitespace():
			continue
		case c.IsElement("ul", "ol"):
			nested, err := w.list(c)
			if err != nil {
				return nil, err
			}
			list.Content = append(list.Content, nested...)
			continue
		case !c.IsElement("li"):
			inline, err := w.inlines([]*markup.Node{c}, nil)
			if err != nil {
				return nil, err
			}
			list.Content = append(list.Content, adf.TaskItem(adf.StateTodo, trimRun(inline)...))
			continue
		}

		item, nested, err := w.taskItem(c, rendered)
		if err != nil {
			return nil, err
		}
		list.Content = append(list.Content, item)
		list.Content = append(list.Content, nested...)
	}
	return []*adf.Node{list}, nil
}

func (w *walker) taskItem(li *markup.Node, rendered bool) (*adf.Node, []*adf.Node, error) {
	children := li.Children
	if ps := li.ElementChildren(); len(ps) == 1 && ps[0].IsElement("p") && onlyElement(li) {
		// loose GFM items wrap the checkbox in a paragraph
		children = ps[0].Children
	}

	state := adf.StateTodo
	var inline, lists []*markup.Node
	for _, c := range children {
		switch {
		case isCheckbox(c) && len(inline) == 0 && len(lists) == 0:
			if c.Has("checked") {
				state = adf.StateDone
			}
		case c.IsElement("ul", "ol"):
			lists = append(lists, c)
		default:
			inline = append(inline, c)
		}
	}
	if s, ok := li.Get(render.AttrState); ok {
		state = s
	} else if rendered && li.Attr(render.AttrADFType) == string(adf.TypeTaskItem) {
		return nil, nil, missingAttr(li.Tag, render.AttrState)
	}

	content, err := w.inlines(inline, nil)
	if err != nil {
		return nil, nil, err
	}
	if !li.Has(render.AttrADFType) {
		content = trimRun(content)
	}
	item := withAttrs(adf.TaskItem(state, content...), li, render.AttrLocalID, "localId")

	var nested []*adf.Node
	for _, l := range lists {
		got, err := w.list(l)
		if err != nil {
			return nil, nil, err
		}
		nested = append(nested, got...)
	}
	return item, nested, nil
}

func (w *walker) decisionList(n *markup.Node) ([]*adf.Node, error) {
	list := withAttrs(adf.DecisionList(), n, render.AttrLocalID, "localId")
	for _, c := range n.Children {
		if c.IsWhitespace() {
			continue
		}
		if !c.IsElement("li") {
			list.Content = append(list.Content, w.raw(c, nil))
			continue
		}
		state, ok := c.Get(render.AttrState)
		if !ok {
			return nil, missingAttr(c.Tag, render.AttrState)
		}
		content, err := w.inlines(c.Children, nil)
		if err != nil {
			return nil, err
		}
		item := withAttrs(adf.DecisionItem(state, content...), c, render.AttrLocalID, "localId")
		list.Content = append(list.Content, item)
	}
	return []*adf.Node{list}, nil
}

// isCheckboxList reports whether every item of a list leads with a checkbox.
func isCheckboxList(n *markup.Node) bool {
	items := 0
	for _, c := range n.Children {
		if c.IsWhitespace() {
			continue
		}
		if !c.IsElement("li") {
			return false
		}
		first := firstContent(c)
		if first != nil && first.IsElement("p") {
			first = firstContent(first)
		}
		if !isCheckbox(first) {
			return false
		}
		items++
	}
	return items > 0
}

func isCheckbox(n *markup.Node) bool {
	return n.IsElement("input") && strings.EqualFold(n.Attr("type"), "checkbox")
}

func firstContent(n *markup.Node) *markup.Node {
	for _, c := range n.Children {
		if !c.IsWhitespace() {
			return c
		}
	}
	return nil
}

// onlyElement reports whether n's children besides whitespace are elements.
func onlyElement(n *markup.Node) bool {
	for _, c := range n.Children {
		if c.IsText() && !c.IsWhitespace() {
			return false
		}
	}
	return true
}
