// Package walker reconstructs document trees from markup trees, inverting
// the mapping of package render.
//
// Mark elements nested out of canonical order are normalized by default, so
// hand-written HTML such as <em><strong>x</strong></em> is accepted. The
// MarkOrderMismatch error is only raised under WithStrictMarkOrder.
package walker

import (
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/markup"
	"github.com/athapong/adfconv/pkg/render"
)

// transparent tags carry no document meaning; their children are walked in
// the surrounding context.
var transparent = mapset.NewSet[string]("html", "body", "div", "section", "article",
	"main", "header", "footer", "span", "font")

type walker struct {
	strict      bool
	generateIDs bool
	logger      logrus.FieldLogger
	// nested counts enclosing table cells and expands; a plain details
	// element inside one becomes a nested expand.
	nested int
}

// Reconstruct converts a markup tree into a validated document. Loose inline
// content under block parents is wrapped in paragraphs and unrecognized
// elements become raw nodes. The input is not modified.
func Reconstruct(root *markup.Node, opts ...Option) (*adf.Node, error) {
	w := &walker{logger: discardLogger()}
	for _, opt := range opts {
		opt(w)
	}

	var top []*markup.Node
	switch {
	case root == nil:
	case root.IsFragment():
		top = root.Children
	default:
		top = []*markup.Node{root}
	}
	content, err := w.blocks(top)
	if err != nil {
		return nil, err
	}
	doc := adf.Doc(content...)
	if w.generateIDs {
		assignLocalIDs(doc)
	}
	valid, err := adf.Validate(doc)
	if err != nil {
		return nil, &ReconstructionError{Code: CodeInvalid, Err: err}
	}
	return valid, nil
}

// blocks walks children of a block container. Runs of inline content between
// block elements become paragraphs, except runs made only of unrecognized
// elements, which are kept as raw blocks.
func (w *walker) blocks(nodes []*markup.Node) ([]*adf.Node, error) {
	var out []*adf.Node
	var run []*markup.Node
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		defer func() { run = nil }()
		if w.onlyUnknown(run) {
			for _, n := range run {
				if n.IsElement() {
					out = append(out, w.raw(n, nil))
				}
			}
			return nil
		}
		inline, err := w.inlines(run, nil)
		if err != nil {
			return err
		}
		if inline = trimRun(inline); len(inline) > 0 {
			out = append(out, adf.Paragraph(inline...))
		}
		return nil
	}

	for _, n := range nodes {
		if !w.isBlock(n) {
			run = append(run, n)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		b, err := w.block(n)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// onlyUnknown reports whether run holds at least one element and nothing but
// whitespace and elements the walker does not recognize.
func (w *walker) onlyUnknown(run []*markup.Node) bool {
	elements := 0
	for _, n := range run {
		switch {
		case n.IsWhitespace():
		case n.IsElement() && !recognizedInline(n):
			elements++
		default:
			return false
		}
	}
	return elements > 0
}

func (w *walker) isBlock(n *markup.Node) bool {
	if !n.IsElement() {
		return false
	}
	if n.Tag == "span" || n.Tag == "font" {
		return false
	}
	return n.IsBlock() || transparent.Contains(n.Tag)
}

func (w *walker) block(n *markup.Node) ([]*adf.Node, error) {
	one := func(b *adf.Node, err error) ([]*adf.Node, error) {
		if err != nil {
			return nil, err
		}
		return []*adf.Node{b}, nil
	}

	switch n.Tag {
	case "p":
		inline, err := w.inlines(n.Children, nil)
		if err != nil {
			return nil, err
		}
		return []*adf.Node{withAttrs(adf.Paragraph(inline...), n, render.AttrLocalID, "localId")}, nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		inline, err := w.inlines(n.Children, nil)
		if err != nil {
			return nil, err
		}
		level := int(n.Tag[1] - '0')
		return []*adf.Node{withAttrs(adf.Heading(level, inline...), n, render.AttrLocalID, "localId")}, nil
	case "blockquote":
		content, err := w.blocks(n.Children)
		if err != nil {
			return nil, err
		}
		return []*adf.Node{adf.Blockquote(content...)}, nil
	case "hr":
		return []*adf.Node{adf.Rule()}, nil
	case "pre":
		return []*adf.Node{codeBlock(n)}, nil
	case "ul", "ol":
		return w.list(n)
	case "table":
		return one(w.table(n))
	case "details":
		return one(w.expand(n))
	case render.TagPanel:
		panelType, ok := n.Get("data-panel-type")
		if !ok {
			return nil, missingAttr(n.Tag, "data-panel-type")
		}
		content, err := w.blocks(n.Children)
		if err != nil {
			return nil, err
		}
		return []*adf.Node{adf.Panel(panelType, content...)}, nil
	case render.TagMediaSgl, render.TagMediaGroup:
		return one(w.mediaContainer(n))
	case render.TagBlockCard:
		url, ok := n.Get("data-url")
		if !ok {
			return nil, missingAttr(n.Tag, "data-url")
		}
		return []*adf.Node{adf.Block(adf.TypeBlockCard, map[string]any{"url": url})}, nil
	}
	if transparent.Contains(n.Tag) {
		return w.blocks(n.Children)
	}
	return []*adf.Node{w.raw(n, nil)}, nil
}

func codeBlock(n *markup.Node) *adf.Node {
	language := ""
	for _, c := range n.Children {
		if !c.IsElement("code") {
			continue
		}
		for _, class := range strings.Fields(c.Attr("class")) {
			if strings.HasPrefix(class, render.CodeLangClass) {
				language = strings.TrimPrefix(class, render.CodeLangClass)
				break
			}
		}
		break
	}
	text := strings.TrimSuffix(n.TextContent(), "\n")
	return adf.CodeBlock(language, text)
}

func (w *walker) expand(n *markup.Node) (*adf.Node, error) {
	kind := adf.TypeExpand
	switch {
	case n.Attr(render.AttrADFType) == string(adf.TypeNestedExpand):
		kind = adf.TypeNestedExpand
	case !n.Has(render.AttrADFType) && w.nested > 0:
		kind = adf.TypeNestedExpand
	}

	title := ""
	var body []*markup.Node
	seenSummary := false
	for _, c := range n.Children {
		if c.IsElement("summary") && !seenSummary {
			title = c.TextContent()
			seenSummary = true
			continue
		}
		body = append(body, c)
	}

	w.nested++
	content, err := w.blocks(body)
	w.nested--
	if err != nil {
		return nil, err
	}
	return adf.Block(kind, map[string]any{"title": title}, content...), nil
}

func (w *walker) mediaContainer(n *markup.Node) (*adf.Node, error) {
	var items []*adf.Node
	for _, c := range n.Children {
		switch {
		case c.IsWhitespace():
			continue
		case c.IsElement(render.TagMedia):
			m, err := media(c, nil)
			if err != nil {
				return nil, err
			}
			items = append(items, m)
		case c.IsElement("a") && c.Has("href") && len(c.ElementChildren()) == 1 && c.ElementChildren()[0].IsElement(render.TagMedia):
			m, err := media(c.ElementChildren()[0], linkMark(c))
			if err != nil {
				return nil, err
			}
			items = append(items, m)
		default:
			items = append(items, w.raw(c, nil))
		}
	}

	if n.Tag == render.TagMediaGroup {
		return adf.MediaGroup(items...), nil
	}
	single := adf.MediaSingle(items...)
	single.Attrs = collectAttrs(n, "data-layout", "layout", "", "data-width", "width", "int")
	return single, nil
}

func media(n *markup.Node, link *adf.Mark) (*adf.Node, error) {
	for _, required := range []string{"data-id", "data-type", "data-collection"} {
		if !n.Has(required) {
			return nil, missingAttr(n.Tag, required)
		}
	}
	m := &adf.Node{Type: adf.TypeMedia}
	m.Attrs = collectAttrs(n,
		"data-id", "id", "",
		"data-type", "type", "",
		"data-collection", "collection", "",
		"data-alt", "alt", "",
		"data-width", "width", "int",
		"data-height", "height", "int",
	)
	if link != nil {
		m.Marks = append(m.Marks, link)
	}
	if n.Has("data-border-color") || n.Has("data-border-size") {
		m.Marks = append(m.Marks, &adf.Mark{Type: adf.MarkBorder, Attrs: collectAttrs(n,
			"data-border-color", "color", "",
			"data-border-size", "size", "int",
		)})
	}
	return m, nil
}

// raw preserves an element verbatim.
func (w *walker) raw(n *markup.Node, marks []*adf.Mark) *adf.Node {
	tag := n.Tag
	if n.IsText() {
		tag = "#text"
	}
	w.logger.WithField("tag", tag).Debug("Preserving unrecognized markup as raw node")
	if n.IsText() {
		return adf.Text(n.Text, cloneMarks(marks)...)
	}
	r := adf.Raw(tag, markup.RenderString(n))
	r.Marks = cloneMarks(marks)
	return r
}

// withAttrs copies markup attributes onto a node as string attributes, given
// as pairs of markup name, ADF name.
func withAttrs(node *adf.Node, n *markup.Node, pairs ...string) *adf.Node {
	for i := 0; i+1 < len(pairs); i += 2 {
		if v, ok := n.Get(pairs[i]); ok {
			if node.Attrs == nil {
				node.Attrs = map[string]any{}
			}
			node.Attrs[pairs[i+1]] = v
		}
	}
	return node
}

// collectAttrs reads markup attributes given as triples of markup name, ADF
// name and value type ("", "int", "bool" or "ints"). Values that do not parse
// as their type are kept as strings so that validation reports them.
func collectAttrs(n *markup.Node, triples ...string) map[string]any {
	var out map[string]any
	for i := 0; i+2 < len(triples); i += 3 {
		v, ok := n.Get(triples[i])
		if !ok {
			continue
		}
		if out == nil {
			out = map[string]any{}
		}
		out[triples[i+1]] = parseValue(v, triples[i+2])
	}
	return out
}

func parseValue(v, kind string) any {
	switch kind {
	case "int":
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	case "bool":
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	case "ints":
		var out []int
		for _, part := range strings.Split(v, ",") {
			i, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return v
			}
			out = append(out, i)
		}
		return out
	}
	return v
}

var localIDSpace = uuid.NameSpaceURL

func assignLocalIDs(doc *adf.Node) {
	_ = adf.Walk(doc, func(path adf.Path, n *adf.Node) error {
		switch n.Type {
		case adf.TypeTaskList, adf.TypeTaskItem, adf.TypeDecisionList, adf.TypeDecisionItem:
		default:
			return nil
		}
		if n.StringAttr("localId") != "" {
			return nil
		}
		if n.Attrs == nil {
			n.Attrs = map[string]any{}
		}
		seed := path.String() + "|" + string(n.Type) + "|" + adf.PlainText(n)
		n.Attrs["localId"] = uuid.NewSHA1(localIDSpace, []byte(seed)).String()
		return nil
	})
}
