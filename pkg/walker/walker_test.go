package walker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/markup"
	"github.com/athapong/adfconv/pkg/render"
)

func mustValidate(t *testing.T, doc *adf.Node) *adf.Node {
	t.Helper()
	valid, err := adf.Validate(doc)
	require.NoError(t, err)
	return valid
}

func roundTrip(t *testing.T, doc *adf.Node) *adf.Node {
	t.Helper()
	got, err := Reconstruct(render.Render(doc))
	require.NoError(t, err)
	return got
}

func TestStrongEmphasisRoundTrip(t *testing.T) {
	doc := mustValidate(t, adf.Doc(adf.Paragraph(adf.Text("hi", adf.Em(), adf.Strong()))))

	tree := render.Render(doc)
	assert.Equal(t, "<p><strong><em>hi</em></strong></p>", markup.RenderString(tree))

	got, err := Reconstruct(tree)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
	marks := got.Content[0].Content[0].Marks
	assert.Equal(t, []adf.MarkType{adf.MarkStrong, adf.MarkEm}, []adf.MarkType{marks[0].Type, marks[1].Type})
}

func TestNonCanonicalNestingIsNormalized(t *testing.T) {
	tree := markup.Fragment(markup.Elem("p", nil,
		markup.Elem("em", nil, markup.Elem("strong", nil, markup.Text("hi")))))

	got, err := Reconstruct(tree)
	require.NoError(t, err)
	want := mustValidate(t, adf.Doc(adf.Paragraph(adf.Text("hi", adf.Strong(), adf.Em()))))
	assert.Equal(t, want, got)
}

func TestStrictMarkOrder(t *testing.T) {
	tree := markup.Fragment(markup.Elem("p", nil,
		markup.Elem("em", nil, markup.Elem("strong", nil, markup.Text("hi")))))

	_, err := Reconstruct(tree, WithStrictMarkOrder())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMarkOrderMismatch))

	var rerr *ReconstructionError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, CodeMarkOrderMismatch, rerr.Code)
	assert.Equal(t, "strong", rerr.Tag)

	canonical := markup.Fragment(markup.Elem("p", nil,
		markup.Elem("strong", nil, markup.Elem("em", nil, markup.Text("hi")))))
	_, err = Reconstruct(canonical, WithStrictMarkOrder())
	require.NoError(t, err)
}

func TestTaskItemStateRoundTrip(t *testing.T) {
	doc := mustValidate(t, adf.Doc(adf.TaskList(
		adf.Block(adf.TypeTaskItem, map[string]any{"state": "DONE", "localId": "t1"}, adf.Text("ship")),
		adf.TaskList(adf.TaskItem(adf.StateTodo, adf.Text("nested"))),
		adf.TaskItem(adf.StateTodo),
	)))

	assert.Equal(t, doc, roundTrip(t, doc))
}

func TestGFMTaskList(t *testing.T) {
	root, err := markup.ParseString("<ul>\n<li><input checked=\"\" disabled=\"\" type=\"checkbox\"> Task item</li>\n" +
		"<li><input disabled=\"\" type=\"checkbox\"> Open\n<ul>\n<li><input disabled=\"\" type=\"checkbox\"> Sub</li>\n</ul>\n</li>\n</ul>\n")
	require.NoError(t, err)

	got, err := Reconstruct(root)
	require.NoError(t, err)
	want := mustValidate(t, adf.Doc(adf.TaskList(
		adf.TaskItem(adf.StateDone, adf.Text("Task item")),
		adf.TaskItem(adf.StateTodo, adf.Text("Open")),
		adf.TaskList(adf.TaskItem(adf.StateTodo, adf.Text("Sub"))),
	)))
	assert.Equal(t, want, got)
}

func TestLinkWrappedMediaRoundTrip(t *testing.T) {
	doc := mustValidate(t, adf.Doc(adf.MediaSingle(adf.Media("42", "files", adf.Link("http://x")))))

	got := roundTrip(t, doc)
	assert.Equal(t, doc, got)
	media := got.Content[0].Content[0]
	require.NotNil(t, media.Mark(adf.MarkLink))
	assert.Equal(t, "http://x", media.Mark(adf.MarkLink).StringAttr("href"))
}

func TestUnknownTagPassthrough(t *testing.T) {
	root, err := markup.ParseString(`<custom-widget data-x="1">content</custom-widget>`)
	require.NoError(t, err)

	doc, err := Reconstruct(root)
	require.NoError(t, err)
	require.Len(t, doc.Content, 1)
	assert.Equal(t, adf.TypeRaw, doc.Content[0].Type)

	assert.Equal(t, `<custom-widget data-x="1">content</custom-widget>`, markup.RenderString(render.Render(doc)))
}

func TestInlineUnknownTagStaysInParagraph(t *testing.T) {
	root, err := markup.ParseString(`<p>a <kbd>Ctrl</kbd> b</p>`)
	require.NoError(t, err)

	doc, err := Reconstruct(root)
	require.NoError(t, err)
	want := mustValidate(t, adf.Doc(adf.Paragraph(adf.Text("a "), adf.Raw("kbd", "<kbd>Ctrl</kbd>"), adf.Text(" b"))))
	assert.Equal(t, want, doc)
	assert.Equal(t, `<p>a <kbd>Ctrl</kbd> b</p>`, markup.RenderString(render.Render(doc)))
}

func TestLooseInlineContentGetsParagraph(t *testing.T) {
	tree := markup.Fragment(
		markup.Text("loose "),
		markup.Elem("strong", nil, markup.Text("text")),
		markup.Elem("hr", nil),
		markup.Elem("ul", nil, markup.Elem("li", nil, markup.Text("item"))),
	)

	got, err := Reconstruct(tree)
	require.NoError(t, err)
	want := mustValidate(t, adf.Doc(
		adf.Paragraph(adf.Text("loose "), adf.Text("text", adf.Strong())),
		adf.Rule(),
		adf.BulletList(adf.ListItem(adf.Paragraph(adf.Text("item")))),
	))
	assert.Equal(t, want, got)
}

func TestMissingAttributeOnOwnVocabulary(t *testing.T) {
	tree := markup.Fragment(markup.Elem(render.TagMediaSgl, nil,
		markup.Elem(render.TagMedia, markup.Attrs("data-type", "file", "data-collection", "c"))))

	_, err := Reconstruct(tree)
	require.ErrorIs(t, err, ErrMissingAttribute)

	var rerr *ReconstructionError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "data-id", rerr.Detail)
}

func TestInvalidTreeWrapsValidationError(t *testing.T) {
	tree := markup.Fragment(markup.Elem("table", nil,
		markup.Elem("tr", nil, markup.Elem("td", nil, markup.Elem("table", nil,
			markup.Elem("tr", nil, markup.Elem("td", nil, markup.Text("x")))))),
	))

	_, err := Reconstruct(tree)
	require.ErrorIs(t, err, ErrInvalid)
	require.ErrorIs(t, err, adf.ErrInvalidChildKind)

	var verr *adf.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, adf.Path{0, 0, 0, 0}, verr.Path)
}

func TestGeneratedLocalIDsAreStable(t *testing.T) {
	tree := markup.Fragment(markup.Elem("ul", nil,
		markup.Elem("li", nil, markup.Elem("input", markup.Attrs("type", "checkbox")), markup.Text("a"))))

	first, err := Reconstruct(tree, WithGeneratedLocalIDs())
	require.NoError(t, err)
	second, err := Reconstruct(tree, WithGeneratedLocalIDs())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Content[0].StringAttr("localId"))
	assert.NotEqual(t, first.Content[0].StringAttr("localId"), first.Content[0].Content[0].StringAttr("localId"))
}

func TestRoundTripRichDocument(t *testing.T) {
	doc := mustValidate(t, adf.Doc(
		adf.Heading(1, adf.Text("Release "), adf.Text("notes", adf.Em())),
		adf.Block(adf.TypeParagraph, map[string]any{"localId": "p1"},
			adf.Text("See "), adf.Text("docs", adf.Link("https://example.com/a?b=1&c=2")),
			adf.HardBreak(), adf.Text("x", adf.Sup()), adf.Text("y", adf.Sub()),
			adf.Text("bg", adf.BackgroundColor("#fff0b3")), adf.Text(" code", adf.Code(), adf.Strike()),
		),
		adf.Paragraph(
			adf.Mention("u1", "@ann"), adf.Text(" "), adf.Emoji(":smile:", "😄"),
			adf.Block(adf.TypeStatus, map[string]any{"text": "In progress", "color": "blue", "localId": "s1"}),
			adf.InlineCard("https://example.com/card"), adf.Date("1700000000000"),
		),
		adf.Blockquote(adf.Paragraph(adf.Text("quoted"))),
		adf.Rule(),
		adf.CodeBlock("go", "fmt.Println(\"hi\")\n"),
		adf.CodeBlock("", ""),
		adf.Panel("warning", adf.Paragraph(adf.Text("careful"))),
		adf.Block(adf.TypeOrderedList, map[string]any{"order": 4},
			adf.ListItem(adf.Paragraph(adf.Text("four")), adf.BulletList(adf.ListItem(adf.Paragraph(adf.Text("nested"))))),
			adf.ListItem(),
		),
		adf.DecisionList(adf.DecisionItem(adf.StateDecided, adf.Text("go"))),
		adf.Block(adf.TypeTable, map[string]any{"layout": "wide", "isNumberColumnEnabled": false, "width": 760},
			adf.TableRow(adf.TableHeader(adf.Paragraph(adf.Text("a"))), adf.TableHeader(adf.Paragraph(adf.Text("b")))),
			adf.TableRow(
				adf.Block(adf.TypeTableCell, map[string]any{"colspan": 2, "background": "#deebff", "colwidth": []int{100, 200}},
					adf.Paragraph(adf.Text("wide")), adf.NestedExpand("inner", adf.Paragraph(adf.Text("deep")))),
			),
		),
		adf.Expand("", adf.Paragraph(adf.Text("hidden"))),
		adf.Block(adf.TypeMediaSingle, map[string]any{"layout": "center", "width": 50},
			&adf.Node{Type: adf.TypeMedia, Attrs: map[string]any{"id": "m1", "type": "file", "collection": "c",
				"alt": "diagram", "width": 640, "height": 480}, Marks: []*adf.Mark{adf.Border("#091e4224", 2)}}),
		adf.MediaGroup(adf.Media("m2", "c"), adf.Media("m3", "c")),
		adf.Block(adf.TypeBlockCard, map[string]any{"url": "https://example.com/block"}),
		adf.Raw("x-widget", `<x-widget a="1">hi</x-widget>`),
	))

	assert.Equal(t, doc, roundTrip(t, doc))

	// and through serialized HTML text
	parsed, err := markup.ParseString(markup.RenderString(render.Render(doc)))
	require.NoError(t, err)
	got, err := Reconstruct(parsed)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestEmptyColumnWidthsRoundTrip(t *testing.T) {
	cell := adf.TableCell(adf.Paragraph(adf.Text("x")))
	cell.Attrs = map[string]any{"colwidth": []int{}}
	doc := mustValidate(t, adf.Doc(adf.Table(adf.TableRow(cell))))

	assert.Equal(t, doc, roundTrip(t, doc))
}
