package adf

// NodeType names an ADF node kind
type NodeType string

const (
	TypeDoc          NodeType = "doc"
	TypeParagraph    NodeType = "paragraph"
	TypeHeading      NodeType = "heading"
	TypeBlockquote   NodeType = "blockquote"
	TypeRule         NodeType = "rule"
	TypeCodeBlock    NodeType = "codeBlock"
	TypePanel        NodeType = "panel"
	TypeBulletList   NodeType = "bulletList"
	TypeOrderedList  NodeType = "orderedList"
	TypeTaskList     NodeType = "taskList"
	TypeDecisionList NodeType = "decisionList"
	TypeListItem     NodeType = "listItem"
	TypeTaskItem     NodeType = "taskItem"
	TypeDecisionItem NodeType = "decisionItem"
	TypeTable        NodeType = "table"
	TypeTableRow     NodeType = "tableRow"
	TypeTableHeader  NodeType = "tableHeader"
	TypeTableCell    NodeType = "tableCell"
	TypeExpand       NodeType = "expand"
	TypeNestedExpand NodeType = "nestedExpand"
	TypeMediaSingle  NodeType = "mediaSingle"
	TypeMediaGroup   NodeType = "mediaGroup"
	TypeMedia        NodeType = "media"
	TypeBlockCard    NodeType = "blockCard"
	TypeText         NodeType = "text"
	TypeHardBreak    NodeType = "hardBreak"
	TypeMention      NodeType = "mention"
	TypeEmoji        NodeType = "emoji"
	TypeStatus       NodeType = "status"
	TypeInlineCard   NodeType = "inlineCard"
	TypeDate         NodeType = "date"
	// TypeRaw preserves markup that has no ADF equivalent.
	TypeRaw NodeType = "raw"
)

// CurrentVersion is the only ADF document version defined.
const CurrentVersion = 1

// Task and decision states.
const (
	StateTodo      = "TODO"
	StateDone      = "DONE"
	StateDecided   = "DECIDED"
	StateUndecided = "UNDECIDED"
)

// Node represents an ADF node
type Node struct {
	Type    NodeType       `json:"type"`
	Version int            `json:"version,omitempty"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Marks   []*Mark        `json:"marks,omitempty"`
	Content []*Node        `json:"content,omitempty"`
}

// Attr returns the attribute value stored under key.
func (n *Node) Attr(key string) (any, bool) {
	if n == nil || n.Attrs == nil {
		return nil, false
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// StringAttr returns a string attribute or "" when absent.
func (n *Node) StringAttr(key string) string {
	v, _ := n.Attr(key)
	s, _ := v.(string)
	return s
}

// IntAttr returns an integer attribute.
func (n *Node) IntAttr(key string) (int, bool) {
	v, ok := n.Attr(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

// BoolAttr returns a boolean attribute.
func (n *Node) BoolAttr(key string) (bool, bool) {
	v, ok := n.Attr(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Mark returns the first mark of type t carried by the node.
func (n *Node) Mark(t MarkType) *Mark {
	for _, m := range n.Marks {
		if m.Type == t {
			return m
		}
	}
	return nil
}

// IsBlock reports whether the kind occupies block context.
func (t NodeType) IsBlock() bool {
	return blockTypes.Contains(t)
}

// IsInline reports whether the kind occupies inline context.
func (t NodeType) IsInline() bool {
	return inlineTypes.Contains(t)
}

// Known reports whether the kind is part of the closed node set.
func (t NodeType) Known() bool {
	_, ok := schemas[t]
	return ok
}

// Clone returns a deep copy of the subtree rooted at n.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := &Node{Type: n.Type, Version: n.Version, Text: n.Text}
	if n.Attrs != nil {
		c.Attrs = cloneAttrs(n.Attrs)
	}
	if n.Marks != nil {
		c.Marks = make([]*Mark, len(n.Marks))
		for i, m := range n.Marks {
			c.Marks[i] = m.Clone()
		}
	}
	if n.Content != nil {
		c.Content = make([]*Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = Clone(child)
		}
	}
	return c
}

func cloneAttrs(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if list, ok := v.([]int); ok {
			v = append([]int(nil), list...)
		}
		out[k] = v
	}
	return out
}
