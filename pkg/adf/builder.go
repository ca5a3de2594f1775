package adf

// Helpers for building trees in code. They do not validate.

// Doc returns a version 1 document holding content.
func Doc(content ...*Node) *Node {
	return &Node{Type: TypeDoc, Version: CurrentVersion, Content: content}
}

// Block returns a node of kind t with attrs and content.
func Block(t NodeType, attrs map[string]any, content ...*Node) *Node {
	return &Node{Type: t, Attrs: attrs, Content: content}
}

func Paragraph(content ...*Node) *Node {
	return &Node{Type: TypeParagraph, Content: content}
}

func Heading(level int, content ...*Node) *Node {
	return &Node{Type: TypeHeading, Attrs: map[string]any{"level": level}, Content: content}
}

func Blockquote(content ...*Node) *Node {
	return &Node{Type: TypeBlockquote, Content: content}
}

func Rule() *Node {
	return &Node{Type: TypeRule}
}

// CodeBlock returns a code block; language may be empty.
func CodeBlock(language, code string) *Node {
	n := &Node{Type: TypeCodeBlock}
	if language != "" {
		n.Attrs = map[string]any{"language": language}
	}
	if code != "" {
		n.Content = []*Node{{Type: TypeText, Text: code}}
	}
	return n
}

func Panel(panelType string, content ...*Node) *Node {
	return &Node{Type: TypePanel, Attrs: map[string]any{"panelType": panelType}, Content: content}
}

func BulletList(items ...*Node) *Node {
	return &Node{Type: TypeBulletList, Content: items}
}

func OrderedList(items ...*Node) *Node {
	return &Node{Type: TypeOrderedList, Content: items}
}

func ListItem(content ...*Node) *Node {
	return &Node{Type: TypeListItem, Content: content}
}

func TaskList(items ...*Node) *Node {
	return &Node{Type: TypeTaskList, Content: items}
}

func TaskItem(state string, content ...*Node) *Node {
	return &Node{Type: TypeTaskItem, Attrs: map[string]any{"state": state}, Content: content}
}

func DecisionList(items ...*Node) *Node {
	return &Node{Type: TypeDecisionList, Content: items}
}

func DecisionItem(state string, content ...*Node) *Node {
	return &Node{Type: TypeDecisionItem, Attrs: map[string]any{"state": state}, Content: content}
}

func Table(rows ...*Node) *Node {
	return &Node{Type: TypeTable, Content: rows}
}

func TableRow(cells ...*Node) *Node {
	return &Node{Type: TypeTableRow, Content: cells}
}

func TableHeader(content ...*Node) *Node {
	return &Node{Type: TypeTableHeader, Content: content}
}

func TableCell(content ...*Node) *Node {
	return &Node{Type: TypeTableCell, Content: content}
}

func Expand(title string, content ...*Node) *Node {
	return &Node{Type: TypeExpand, Attrs: map[string]any{"title": title}, Content: content}
}

func NestedExpand(title string, content ...*Node) *Node {
	return &Node{Type: TypeNestedExpand, Attrs: map[string]any{"title": title}, Content: content}
}

func MediaSingle(media ...*Node) *Node {
	return &Node{Type: TypeMediaSingle, Content: media}
}

func MediaGroup(media ...*Node) *Node {
	return &Node{Type: TypeMediaGroup, Content: media}
}

// Media returns a file media node.
func Media(id, collection string, marks ...*Mark) *Node {
	return &Node{
		Type:  TypeMedia,
		Attrs: map[string]any{"id": id, "type": "file", "collection": collection},
		Marks: marks,
	}
}

// Text returns a text run with marks.
func Text(s string, marks ...*Mark) *Node {
	return &Node{Type: TypeText, Text: s, Marks: marks}
}

func HardBreak() *Node {
	return &Node{Type: TypeHardBreak}
}

func Mention(id, text string) *Node {
	return &Node{Type: TypeMention, Attrs: map[string]any{"id": id, "text": text}}
}

func Emoji(shortName, text string) *Node {
	attrs := map[string]any{"shortName": shortName}
	if text != "" {
		attrs["text"] = text
	}
	return &Node{Type: TypeEmoji, Attrs: attrs}
}

func Status(text, color string) *Node {
	return &Node{Type: TypeStatus, Attrs: map[string]any{"text": text, "color": color}}
}

func InlineCard(url string) *Node {
	return &Node{Type: TypeInlineCard, Attrs: map[string]any{"url": url}}
}

func Date(timestamp string) *Node {
	return &Node{Type: TypeDate, Attrs: map[string]any{"timestamp": timestamp}}
}

// Raw returns a passthrough node for markup with no ADF equivalent.
func Raw(tag, html string) *Node {
	return &Node{Type: TypeRaw, Attrs: map[string]any{"tag": tag, "html": html}}
}

func Strong() *Mark    { return &Mark{Type: MarkStrong} }
func Em() *Mark        { return &Mark{Type: MarkEm} }
func Strike() *Mark    { return &Mark{Type: MarkStrike} }
func Code() *Mark      { return &Mark{Type: MarkCode} }
func Underline() *Mark { return &Mark{Type: MarkUnderline} }

func Link(href string) *Mark {
	return &Mark{Type: MarkLink, Attrs: map[string]any{"href": href}}
}

func Sub() *Mark { return &Mark{Type: MarkSubSup, Attrs: map[string]any{"type": "sub"}} }
func Sup() *Mark { return &Mark{Type: MarkSubSup, Attrs: map[string]any{"type": "sup"}} }

func TextColor(color string) *Mark {
	return &Mark{Type: MarkTextColor, Attrs: map[string]any{"color": color}}
}

func BackgroundColor(color string) *Mark {
	return &Mark{Type: MarkBackgroundColor, Attrs: map[string]any{"color": color}}
}

func Border(color string, size int) *Mark {
	return &Mark{Type: MarkBorder, Attrs: map[string]any{"color": color, "size": size}}
}
