package bridge

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/net/html"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/markup"
	"github.com/athapong/adfconv/pkg/render"
)

// Placeholder elements standing in for markdown that is written verbatim.
// A chunk element is replaced by its text; a wrap element writes its opening
// text, its rendered children, then its closing text.
const (
	tagChunkBlock  = "adf-md-block"
	tagChunkInline = "adf-md-inline"
	tagWrapBlock   = "adf-md-wrap-block"
	tagWrapInline  = "adf-md-wrap-inline"
	attrChunk      = "data-chunk"

	// chunkFiller is the text of an inline chunk element. The converter
	// never writes it, but its presence keeps whitespace next to the chunk
	// from being collapsed away.
	chunkFiller = "chunk"
)

// inlineKeep are rendered inline tags markdown expresses natively.
var inlineKeep = mapset.NewSet[string]("a", "strong", "em", "del", "code", "br")

// inlineWrap are mark tags markdown has no syntax for; they are written as
// inline HTML around their markdown content.
var inlineWrap = mapset.NewSet[string]("u", "sub", "sup", "span")

type chunk struct {
	open, close string
}

// outbound rewrites a rendered markup tree into one the markdown converter
// can handle with stock renderers plus the placeholder renderers, collecting
// the verbatim text each placeholder stands for.
type outbound struct {
	chunks []chunk
	// inCell is set while preparing pipe table cells.
	inCell bool
}

func (o *outbound) add(open, close string) []markup.Attr {
	o.chunks = append(o.chunks, chunk{open: open, close: close})
	return markup.Attrs(attrChunk, strconv.Itoa(len(o.chunks)-1))
}

// inlineChunk returns an inline placeholder written as text.
func (o *outbound) inlineChunk(text string) *markup.Node {
	return markup.Elem(tagChunkInline, o.add(text, ""), markup.Text(chunkFiller))
}

func (o *outbound) blocks(nodes []*markup.Node) []*markup.Node {
	out := make([]*markup.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, o.block(n))
	}
	return out
}

func (o *outbound) block(n *markup.Node) *markup.Node {
	if n.IsText() {
		return n
	}
	switch n.Tag {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6":
		return markup.Elem(n.Tag, nil, o.inlines(n.Children)...)
	case "blockquote":
		return markup.Elem(n.Tag, nil, o.blocks(n.Children)...)
	case "hr":
		return markup.Elem(n.Tag, nil)
	case "pre":
		return markup.Elem(tagChunkBlock, o.add(fencedCode(n), ""))
	case "ul", "ol":
		return o.list(n)
	case "table":
		if gfmTable(n) {
			return o.table(n)
		}
	case "details":
		return o.details(n)
	case render.TagPanel:
		return markup.Elem(tagWrapBlock, o.add(openTag(n), closeTag(n)), o.blocks(n.Children)...)
	}
	return o.rawBlock(n)
}

func (o *outbound) list(n *markup.Node) *markup.Node {
	switch n.Attr(render.AttrADFType) {
	case string(adf.TypeDecisionList):
		return o.rawBlock(n)
	case string(adf.TypeTaskList):
		ul := markup.Elem("ul", nil)
		for _, li := range n.Children {
			ul.Children = append(ul.Children, o.taskItem(li))
		}
		return ul
	}

	var attrs []markup.Attr
	if start, ok := n.Get("start"); ok {
		attrs = markup.Attrs("start", start)
	}
	list := markup.Elem(n.Tag, attrs)
	for _, li := range n.Children {
		list.Children = append(list.Children, markup.Elem("li", nil, o.blocks(li.Children)...))
	}
	return list
}

// taskItem writes the GFM checkbox in front of the item content.
func (o *outbound) taskItem(li *markup.Node) *markup.Node {
	item := markup.Elem("li", nil)
	for _, c := range li.Children {
		switch {
		case c.IsElement("input"):
			box := "[ ] "
			if c.Has("checked") {
				box = "[x] "
			}
			item.Children = append(item.Children, o.inlineChunk(box))
		case c.IsElement("ul"):
			item.Children = append(item.Children, o.list(c))
		default:
			item.Children = append(item.Children, o.inline(c))
		}
	}
	return item
}

// table keeps a GFM-expressible table; only cell paragraphs are rewritten.
func (o *outbound) table(n *markup.Node) *markup.Node {
	o.inCell = true
	defer func() { o.inCell = false }()

	table := markup.Elem("table", nil)
	for _, row := range tableRows(n) {
		tr := markup.Elem("tr", nil)
		for _, cell := range row.Children {
			p := cell.Children[0]
			tr.Children = append(tr.Children, markup.Elem(cell.Tag, nil, markup.Elem("p", nil, o.inlines(p.Children)...)))
		}
		table.Children = append(table.Children, tr)
	}
	return table
}

func (o *outbound) details(n *markup.Node) *markup.Node {
	var body []*markup.Node
	var summary *markup.Node
	for _, c := range n.Children {
		if summary == nil && c.IsElement("summary") {
			summary = c
			continue
		}
		body = append(body, c)
	}
	head := markup.Elem(n.Tag, n.Attrs)
	if summary != nil {
		head.Children = []*markup.Node{summary}
	}
	open := strings.TrimSuffix(rawHTML(head), closeTag(n))
	return markup.Elem(tagWrapBlock, o.add(open, closeTag(n)), o.blocks(body)...)
}

// rawBlock embeds n as an HTML block. The div wrapper makes any element,
// including custom ones, start a block in CommonMark.
func (o *outbound) rawBlock(n *markup.Node) *markup.Node {
	return markup.Elem(tagChunkBlock, o.add("<div>"+rawHTML(n)+"</div>", ""))
}

func (o *outbound) inlines(nodes []*markup.Node) []*markup.Node {
	out := make([]*markup.Node, 0, len(nodes))
	for _, n := range nodes {
		if o.inCell && n.IsText() && strings.Contains(n.Text, "|") {
			out = append(out, o.escapePipes(n.Text)...)
			continue
		}
		out = append(out, o.inline(n))
	}
	return out
}

// escapePipes splits text around pipes, which would otherwise end a table
// cell, and writes each as an escaped pipe.
func (o *outbound) escapePipes(s string) []*markup.Node {
	var out []*markup.Node
	for i, part := range strings.Split(s, "|") {
		if i > 0 {
			out = append(out, o.inlineChunk(`\|`))
		}
		if part != "" {
			out = append(out, markup.Text(part))
		}
	}
	return out
}

func (o *outbound) inline(n *markup.Node) *markup.Node {
	switch {
	case n.IsText():
		return n
	case o.inCell && n.IsElement("code") && strings.Contains(n.TextContent(), "|"):
		// The code renderer only writes text, so escaped pipes are written
		// with the whole span.
		return o.inlineChunk(codeSpan(strings.ReplaceAll(n.TextContent(), "|", `\|`)))
	case inlineKeep.Contains(n.Tag):
		return markup.Elem(n.Tag, n.Attrs, o.inlines(n.Children)...)
	case inlineWrap.Contains(n.Tag):
		return markup.Elem(tagWrapInline, o.add(openTag(n), closeTag(n)), o.inlines(n.Children)...)
	}
	return o.inlineChunk(rawHTML(n))
}

// codeSpan writes s as a code span delimited by a backtick run longer than
// any run in s.
func codeSpan(s string) string {
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") ||
		(strings.HasPrefix(s, " ") && strings.HasSuffix(s, " ") && strings.Trim(s, " ") != "") {
		s = " " + s + " "
	}
	return fence + s + fence
}

// gfmTable reports whether a rendered table survives GFM pipe syntax: no
// table or cell attributes, a header row followed by data rows of the same
// width, and exactly one non-empty single-line paragraph per cell.
func gfmTable(n *markup.Node) bool {
	if len(n.Attrs) > 0 {
		return false
	}
	rows := tableRows(n)
	if len(rows) == 0 {
		return false
	}
	width := len(rows[0].Children)
	for i, row := range rows {
		if len(row.Children) != width || width == 0 {
			return false
		}
		want := "td"
		if i == 0 {
			want = "th"
		}
		for _, cell := range row.Children {
			if !cell.IsElement(want) || len(cell.Attrs) > 0 || len(cell.Children) != 1 {
				return false
			}
			p := cell.Children[0]
			if !p.IsElement("p") || len(p.Attrs) > 0 || len(p.Children) == 0 || hasBreak(p) {
				return false
			}
		}
	}
	return true
}

func tableRows(n *markup.Node) []*markup.Node {
	var rows []*markup.Node
	for _, c := range n.Children {
		if c.IsElement("thead", "tbody", "tfoot") {
			rows = append(rows, c.ElementChildren()...)
			continue
		}
		if c.IsElement("tr") {
			rows = append(rows, c)
		}
	}
	return rows
}

func hasBreak(n *markup.Node) bool {
	if n.IsElement("br") || (n.IsText() && strings.Contains(n.Text, "\n")) {
		return true
	}
	for _, c := range n.Children {
		if hasBreak(c) {
			return true
		}
	}
	return false
}

// fencedCode writes a code block with a fence longer than any backtick run
// in the code.
func fencedCode(pre *markup.Node) string {
	lang := ""
	for _, c := range pre.ElementChildren() {
		if c.IsElement("code") {
			for _, class := range strings.Fields(c.Attr("class")) {
				if strings.HasPrefix(class, render.CodeLangClass) {
					lang = strings.TrimPrefix(class, render.CodeLangClass)
				}
			}
		}
	}
	code := strings.TrimSuffix(pre.TextContent(), "\n")
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	if code == "" {
		return fence + lang + "\n" + fence
	}
	return fence + lang + "\n" + code + "\n" + fence
}

func openTag(n *markup.Node) string {
	return strings.TrimSuffix(rawHTML(markup.Elem(n.Tag, n.Attrs)), closeTag(n))
}

func closeTag(n *markup.Node) string {
	return "</" + n.Tag + ">"
}

// markdownSpecial are replaced by character references in text between
// tags so that markdown reads embedded HTML text literally.
var markdownSpecial = map[rune]string{
	'\\': "&#92;",
	'`':  "&#96;",
	'*':  "&#42;",
	'_':  "&#95;",
	'[':  "&#91;",
	']':  "&#93;",
	'~':  "&#126;",
	'|':  "&#124;",
	'!':  "&#33;",
}

// rawHTML serializes n on a single line with markdown-significant text
// escaped as character references. Pipes are escaped inside tags as well,
// since a table row is split into cells before any HTML is recognized.
func rawHTML(n *markup.Node) string {
	src := markup.RenderString(n)
	var b strings.Builder
	inTag := false
	for _, r := range src {
		switch {
		case r == '\n':
			b.WriteString("&#10;")
		case r == '|':
			b.WriteString(markdownSpecial[r])
		case r == '<':
			inTag = true
			b.WriteRune(r)
		case r == '>':
			inTag = false
			b.WriteRune(r)
		case !inTag && markdownSpecial[r] != "":
			b.WriteString(markdownSpecial[r])
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// newConverter builds an html-to-markdown converter whose placeholder
// renderers write o's chunks.
func (o *outbound) newConverter() *converter.Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			strikethrough.NewStrikethroughPlugin(),
		),
	)

	conv.Register.RendererFor(tagChunkBlock, converter.TagTypeBlock, func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
		c, ok := o.chunkFor(n)
		if !ok {
			return converter.RenderTryNext
		}
		w.WriteString("\n\n" + c.open + "\n\n")
		return converter.RenderSuccess
	}, converter.PriorityEarly)

	conv.Register.RendererFor(tagChunkInline, converter.TagTypeInline, func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
		c, ok := o.chunkFor(n)
		if !ok {
			return converter.RenderTryNext
		}
		w.WriteString(c.open)
		return converter.RenderSuccess
	}, converter.PriorityEarly)

	conv.Register.RendererFor(tagWrapBlock, converter.TagTypeBlock, func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
		c, ok := o.chunkFor(n)
		if !ok {
			return converter.RenderTryNext
		}
		w.WriteString("\n\n" + c.open + "\n\n")
		ctx.RenderChildNodes(ctx, w, n)
		w.WriteString("\n\n" + c.close + "\n\n")
		return converter.RenderSuccess
	}, converter.PriorityEarly)

	conv.Register.RendererFor(tagWrapInline, converter.TagTypeInline, func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
		c, ok := o.chunkFor(n)
		if !ok {
			return converter.RenderTryNext
		}
		w.WriteString(c.open)
		ctx.RenderChildNodes(ctx, w, n)
		w.WriteString(c.close)
		return converter.RenderSuccess
	}, converter.PriorityEarly)

	conv.Register.RendererFor("table", converter.TagTypeBlock, renderPipeTable, converter.PriorityEarly)
	conv.Register.RendererFor("a", converter.TagTypeInline, renderLink, converter.PriorityEarly)

	return conv
}

func (o *outbound) chunkFor(n *html.Node) (chunk, bool) {
	for _, a := range n.Attr {
		if a.Key != attrChunk {
			continue
		}
		i, err := strconv.Atoi(a.Val)
		if err != nil || i < 0 || i >= len(o.chunks) {
			return chunk{}, false
		}
		return o.chunks[i], true
	}
	return chunk{}, false
}

// renderPipeTable writes a table prepared by outbound.table as a GFM pipe
// table. The first row is the header.
func renderPipeTable(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	var rows [][]string
	for tr := n.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type != html.ElementNode || tr.Data != "tr" {
			continue
		}
		var cells []string
		for cell := tr.FirstChild; cell != nil; cell = cell.NextSibling {
			if cell.Type != html.ElementNode {
				continue
			}
			var buf bytes.Buffer
			for p := cell.FirstChild; p != nil; p = p.NextSibling {
				ctx.RenderChildNodes(ctx, &buf, p)
			}
			cells = append(cells, pipeCell(buf.String()))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return converter.RenderTryNext
	}

	w.WriteString("\n\n")
	writeRow(w, rows[0])
	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(w, sep)
	for _, row := range rows[1:] {
		writeRow(w, row)
	}
	w.WriteString("\n")
	return converter.RenderSuccess
}

func pipeCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func writeRow(w converter.Writer, cells []string) {
	w.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

// renderLink writes an inline link whose destination and title read back
// unchanged.
func renderLink(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	href, ok := attrValue(n, "href")
	if !ok {
		return converter.RenderTryNext
	}
	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)

	w.WriteString("[" + buf.String() + "](" + linkDestination(href))
	if title, ok := attrValue(n, "title"); ok && title != "" {
		w.WriteString(` "` + escapeLinkText(title, `"`) + `"`)
	}
	w.WriteString(")")
	return converter.RenderSuccess
}

// linkDestination backslash-escapes the characters markdown would otherwise
// read as syntax or decode, and brackets destinations holding spaces.
func linkDestination(href string) string {
	dest := escapeLinkText(href, "()<>")
	if href == "" || strings.ContainsAny(href, " \t") {
		return "<" + dest + ">"
	}
	return dest
}

func escapeLinkText(s, special string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\\' || r == '&' || r == '|' || strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
