package adf

import (
	"strings"
)

// PlainText flattens a tree into readable text: one line per block, list
// items prefixed, table cells separated by " | ". Marks are dropped.
func PlainText(node *Node) string {
	if node == nil {
		return ""
	}

	var result strings.Builder
	plainNode(node, &result, 0)
	return strings.TrimRight(result.String(), "\n") + "\n"
}

func plainNode(node *Node, result *strings.Builder, depth int) {
	switch node.Type {
	case TypeText:
		result.WriteString(node.Text)
	case TypeHardBreak:
		result.WriteString("\n")
	case TypeMention:
		if text := node.StringAttr("text"); text != "" {
			result.WriteString(text)
		} else {
			result.WriteString("@" + node.StringAttr("id"))
		}
	case TypeEmoji:
		if text := node.StringAttr("text"); text != "" {
			result.WriteString(text)
		} else {
			result.WriteString(node.StringAttr("shortName"))
		}
	case TypeStatus:
		result.WriteString("[" + node.StringAttr("text") + "]")
	case TypeInlineCard, TypeBlockCard:
		result.WriteString(node.StringAttr("url"))
	case TypeDate:
		result.WriteString(node.StringAttr("timestamp"))
	case TypeMedia:
		result.WriteString("[media " + node.StringAttr("id") + "]")
	case TypeRule:
		result.WriteString("---\n")
	case TypeParagraph, TypeHeading, TypeCodeBlock:
		plainChildren(node, result, depth)
		result.WriteString("\n")
	case TypeBulletList, TypeOrderedList, TypeTaskList, TypeDecisionList:
		plainList(node, result, depth)
	case TypeExpand, TypeNestedExpand:
		result.WriteString(node.StringAttr("title") + "\n")
		plainChildren(node, result, depth)
	case TypeTableRow:
		for i, cell := range node.Content {
			if i > 0 {
				result.WriteString(" | ")
			}
			var cellText strings.Builder
			plainChildren(cell, &cellText, 0)
			result.WriteString(strings.ReplaceAll(strings.TrimSpace(cellText.String()), "\n", " "))
		}
		result.WriteString("\n")
	case TypeRaw:
		// raw markup has no text of its own
	default:
		plainChildren(node, result, depth)
	}
}

func plainList(node *Node, result *strings.Builder, depth int) {
	for _, item := range node.Content {
		if item.Type == TypeTaskList {
			plainList(item, result, depth+1)
			continue
		}
		prefix := "- "
		switch item.StringAttr("state") {
		case StateDone:
			prefix = "- [x] "
		case StateTodo:
			prefix = "- [ ] "
		case StateDecided:
			prefix = "- <> "
		}
		var body strings.Builder
		if item.Type == TypeTaskItem || item.Type == TypeDecisionItem {
			plainChildren(item, &body, depth+1)
			body.WriteString("\n")
		} else {
			plainChildren(item, &body, depth+1)
		}
		result.WriteString(strings.Repeat("  ", depth) + prefix + strings.TrimLeft(body.String(), " "))
	}
}

func plainChildren(node *Node, result *strings.Builder, depth int) {
	for _, child := range node.Content {
		if child != nil {
			plainNode(child, result, depth)
		}
	}
}
