package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/walker"
)

func validated(t *testing.T, doc *adf.Node) *adf.Node {
	t.Helper()
	v, err := adf.Validate(doc)
	require.NoError(t, err)
	return v
}

func TestToMarkdownStrong(t *testing.T) {
	md, err := ToMarkdown(adf.Doc(adf.Paragraph(adf.Text("hi", adf.Strong()))))
	require.NoError(t, err)
	assert.Equal(t, "**hi**\n", md)
}

func TestTaskListThroughMarkdown(t *testing.T) {
	doc := validated(t, adf.Doc(adf.TaskList(
		adf.TaskItem(adf.StateDone, adf.Text("ship")),
		adf.TaskItem(adf.StateTodo, adf.Text("test")),
	)))

	md, err := ToMarkdown(doc)
	require.NoError(t, err)
	assert.Contains(t, md, "- [x] ship")
	assert.Contains(t, md, "- [ ] test")

	got, err := FromMarkdown(md)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
	assert.Equal(t, adf.StateDone, got.Content[0].Content[0].StringAttr("state"))
}

func TestPipeTableEscapesPipes(t *testing.T) {
	doc := validated(t, adf.Doc(adf.Table(
		adf.TableRow(adf.TableHeader(adf.Paragraph(adf.Text("a"))), adf.TableHeader(adf.Paragraph(adf.Text("b")))),
		adf.TableRow(adf.TableCell(adf.Paragraph(adf.Text("c|d"))), adf.TableCell(adf.Paragraph(adf.Text("e")))),
	)))

	md, err := ToMarkdown(doc)
	require.NoError(t, err)
	assert.Contains(t, md, "| a | b |\n| --- | --- |\n| c\\|d | e |\n")

	got, err := FromMarkdown(md)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestTableWithAttributesFallsBackToHTML(t *testing.T) {
	doc := validated(t, adf.Doc(adf.Block(adf.TypeTable, map[string]any{"layout": "wide"},
		adf.TableRow(adf.TableCell(adf.Paragraph(adf.Text("x")), adf.Rule())),
	)))

	md, err := ToMarkdown(doc)
	require.NoError(t, err)
	assert.Contains(t, md, `<table data-layout="wide">`)
	assert.NotContains(t, md, "| --- |")

	got, err := FromMarkdown(md)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestMarkdownRoundTrip(t *testing.T) {
	doc := validated(t, adf.Doc(
		adf.Heading(2, adf.Text("Title")),
		adf.Paragraph(
			adf.Text("plain "), adf.Text("bold", adf.Strong()), adf.Text(" "),
			adf.Text("link", adf.Link("https://example.com")), adf.Text(" "),
			adf.Text("gone", adf.Strike()), adf.Text(" "), adf.Text("x", adf.Code()),
		),
		adf.Paragraph(
			adf.Text("under", adf.Underline()), adf.Text(" "), adf.Text("red", adf.TextColor("#ff5630")),
			adf.Text(" "), adf.Text("2", adf.Sup()),
		),
		adf.Paragraph(
			adf.Text("hello "), adf.Mention("u1", "@ann"), adf.Text(" "),
			adf.Status("Done", "green"), adf.Text(" "), adf.Emoji(":smile:", ""),
		),
		adf.Blockquote(adf.Paragraph(adf.Text("quoted"))),
		adf.Rule(),
		adf.CodeBlock("go", "fmt.Println(1)"),
		adf.BulletList(
			adf.ListItem(adf.Paragraph(adf.Text("one"))),
			adf.ListItem(adf.Paragraph(adf.Text("two")), adf.BulletList(adf.ListItem(adf.Paragraph(adf.Text("nested"))))),
		),
		adf.Expand("More", adf.Paragraph(adf.Text("hidden"))),
		adf.Panel("info", adf.Paragraph(adf.Text("note"))),
		adf.MediaSingle(adf.Media("42", "files", adf.Link("http://x"))),
		adf.DecisionList(adf.DecisionItem(adf.StateDecided, adf.Text("go"))),
		adf.Raw("x-widget", `<x-widget a="1">hi</x-widget>`),
	))

	md, err := ToMarkdown(doc)
	require.NoError(t, err)
	assert.Contains(t, md, "## Title")
	assert.Contains(t, md, "**bold**")
	assert.Contains(t, md, "[link](https://example.com)")
	assert.Contains(t, md, "```go\nfmt.Println(1)\n```")
	assert.Contains(t, md, `<adf-status data-text="Done" data-color="green"></adf-status>`)
	assert.Contains(t, md, `<details data-adf-type="expand"><summary>More</summary>`)

	got, err := FromMarkdown(md)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestRawTextIsReadLiterally(t *testing.T) {
	doc := validated(t, adf.Doc(adf.Paragraph(adf.Raw("kbd", "<kbd>*not* [em]</kbd>"))))

	md, err := ToMarkdown(doc)
	require.NoError(t, err)
	assert.NotContains(t, md, "*not*")

	got, err := FromMarkdown(md)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestFromMarkdownPlainText(t *testing.T) {
	got, err := FromMarkdown("# Title\n\nSome *em* text.\n\n- a\n- b\n\n1. x\n2. y\n")
	require.NoError(t, err)

	want := validated(t, adf.Doc(
		adf.Heading(1, adf.Text("Title")),
		adf.Paragraph(adf.Text("Some "), adf.Text("em", adf.Em()), adf.Text(" text.")),
		adf.BulletList(adf.ListItem(adf.Paragraph(adf.Text("a"))), adf.ListItem(adf.Paragraph(adf.Text("b")))),
		adf.OrderedList(adf.ListItem(adf.Paragraph(adf.Text("x"))), adf.ListItem(adf.Paragraph(adf.Text("y")))),
	))
	assert.Equal(t, want, got)
}

func TestFromMarkdownPadsShortRows(t *testing.T) {
	got, err := FromMarkdown("| a | b |\n| --- | --- |\n| c |\n")
	require.NoError(t, err)

	want := validated(t, adf.Doc(adf.Table(
		adf.TableRow(adf.TableHeader(adf.Paragraph(adf.Text("a"))), adf.TableHeader(adf.Paragraph(adf.Text("b")))),
		adf.TableRow(adf.TableCell(adf.Paragraph(adf.Text("c"))), adf.TableCell()),
	)))
	assert.Equal(t, want, got)
}

func TestMalformedRawBlocks(t *testing.T) {
	tests := []struct {
		name string
		md   string
		tag  string
	}{
		{name: "status without color", md: `Hi <adf-status data-text="x"></adf-status>`, tag: "adf-status"},
		{name: "media single without media", md: "<div><adf-media-single></adf-media-single></div>\n", tag: "adf-media-single"},
		{name: "task item without state", md: `<ul data-adf-type="taskList"><li data-adf-type="taskItem">x</li></ul>` + "\n", tag: "li"},
		{name: "unknown vocabulary", md: "<div><adf-gadget></adf-gadget></div>\n", tag: "adf-gadget"},
		{name: "unknown mark", md: `<span data-adf-mark="glow" data-color="red">x</span>`, tag: "span"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMarkdown(tt.md)
			require.ErrorIs(t, err, ErrMalformedRawBlock)

			var berr *BridgeError
			require.True(t, errors.As(err, &berr))
			assert.Equal(t, CodeMalformedRawBlock, berr.Code)
			assert.Equal(t, tt.tag, berr.Tag)
		})
	}
}

func TestReconstructionFailureIsWrapped(t *testing.T) {
	md := "<div><table><tr><td><table><tr><td>x</td></tr></table></td></tr></table></div>\n"

	_, err := FromMarkdown(md)
	require.ErrorIs(t, err, ErrReconstructionFailed)
	require.ErrorIs(t, err, walker.ErrInvalid)
	require.ErrorIs(t, err, adf.ErrInvalidChildKind)

	var rerr *walker.ReconstructionError
	require.True(t, errors.As(err, &rerr))
}

func TestStrictMarkOrderOption(t *testing.T) {
	b := New(WithWalkerOptions(walker.WithStrictMarkOrder()))

	_, err := b.FromMarkdown("<em><strong>x</strong></em>\n")
	require.ErrorIs(t, err, walker.ErrMarkOrderMismatch)

	got, err := b.FromMarkdown("**bold**\n")
	require.NoError(t, err)
	assert.Equal(t, validated(t, adf.Doc(adf.Paragraph(adf.Text("bold", adf.Strong())))), got)
}

func TestToMarkdownRejectsInvalidDocument(t *testing.T) {
	_, err := ToMarkdown(adf.Doc(adf.Heading(9, adf.Text("x"))))
	require.ErrorIs(t, err, adf.ErrInvalidAttribute)

	md, err := ToMarkdown(adf.Doc())
	require.NoError(t, err)
	assert.Empty(t, md)
}

func markdownRoundTrip(t *testing.T, doc *adf.Node) (string, *adf.Node) {
	t.Helper()
	md, err := ToMarkdown(doc)
	require.NoError(t, err)
	got, err := FromMarkdown(md)
	require.NoError(t, err, md)
	return md, got
}

func TestSpaceAfterInlineNodeSurvivesMarkdown(t *testing.T) {
	tests := []struct {
		name string
		node func() *adf.Node
	}{
		{"mention", func() *adf.Node { return adf.Mention("u1", "@ann") }},
		{"emoji", func() *adf.Node { return adf.Emoji(":x:", "") }},
		{"status", func() *adf.Node { return adf.Status("Done", "green") }},
		{"inline card", func() *adf.Node { return adf.InlineCard("https://example.com/card") }},
		{"date", func() *adf.Node { return adf.Date("1700000000000") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validated(t, adf.Doc(
				adf.Paragraph(adf.Text("Hi "), tt.node(), adf.Text(" please")),
				adf.Paragraph(tt.node(), adf.Text(" tail")),
				adf.Paragraph(adf.Text("a"), tt.node(), adf.Text(" "), tt.node()),
			))

			md, got := markdownRoundTrip(t, doc)
			assert.Equal(t, doc, got, md)
		})
	}
}

func TestHardBreakSurvivesMarkdown(t *testing.T) {
	doc := validated(t, adf.Doc(
		adf.Paragraph(adf.Text("a"), adf.HardBreak(), adf.Text("b")),
		adf.Paragraph(adf.Text("c"), adf.HardBreak(), adf.Text("d", adf.Strong())),
		adf.TaskList(adf.TaskItem(adf.StateTodo, adf.Text("e"), adf.HardBreak(), adf.Text("f"))),
	))

	md, got := markdownRoundTrip(t, doc)
	assert.Equal(t, doc, got, md)
}

func TestPipesInsideTableCellsSurviveMarkdown(t *testing.T) {
	doc := validated(t, adf.Doc(adf.Table(
		adf.TableRow(adf.TableHeader(adf.Paragraph(adf.Text("code"))), adf.TableHeader(adf.Paragraph(adf.Text("other")))),
		adf.TableRow(
			adf.TableCell(adf.Paragraph(adf.Text("x|y", adf.Code()))),
			adf.TableCell(adf.Paragraph(adf.Mention("u|1", "@a|b"))),
		),
		adf.TableRow(
			adf.TableCell(adf.Paragraph(adf.Text("a | b"))),
			adf.TableCell(adf.Paragraph(adf.Text("see "), adf.Status("x|y", "blue"), adf.Text(" now"))),
		),
	)))

	md, got := markdownRoundTrip(t, doc)
	assert.Contains(t, md, "`x\\|y`")
	assert.Equal(t, doc, got, md)
}

func TestLinkAttributesSurviveMarkdown(t *testing.T) {
	titled := adf.Link("https://example.com/?a=1&b=2")
	titled.Attrs["title"] = `say "hi"`
	doc := validated(t, adf.Doc(adf.Paragraph(
		adf.Text("wiki", adf.Link("http://x/a_(b)")),
		adf.Text(" and "),
		adf.Text("quoted", titled),
	)))

	md, got := markdownRoundTrip(t, doc)
	assert.Contains(t, md, `[wiki](http://x/a_\(b\))`)
	assert.Equal(t, doc, got, md)
}
