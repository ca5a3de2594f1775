package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/markup"
)

func mustValidate(t *testing.T, doc *adf.Node) *adf.Node {
	t.Helper()
	valid, err := adf.Validate(doc)
	require.NoError(t, err)
	return valid
}

func TestRenderNestsMarksByPriority(t *testing.T) {
	doc := mustValidate(t, adf.Doc(adf.Paragraph(adf.Text("hi", adf.Em(), adf.Strong(), adf.Link("http://x")))))

	assert.Equal(t, `<p><a href="http://x"><strong><em>hi</em></strong></a></p>`, markup.RenderString(Render(doc)))
}

func TestRenderShapes(t *testing.T) {
	tests := []struct {
		name string
		node *adf.Node
		want string
	}{
		{
			name: "code block",
			node: adf.CodeBlock("go", "x := 1"),
			want: "<pre><code class=\"language-go\">x := 1\n</code></pre>",
		},
		{
			name: "ordered list with start",
			node: adf.Block(adf.TypeOrderedList, map[string]any{"order": 3}, adf.ListItem(adf.Paragraph(adf.Text("a")))),
			want: `<ol start="3"><li><p>a</p></li></ol>`,
		},
		{
			name: "task list",
			node: adf.TaskList(adf.TaskItem(adf.StateDone, adf.Text("ship"))),
			want: `<ul data-adf-type="taskList"><li data-adf-type="taskItem" data-state="DONE"><input type="checkbox" checked="" disabled=""/>ship</li></ul>`,
		},
		{
			name: "expand",
			node: adf.Expand("More", adf.Paragraph(adf.Text("body"))),
			want: `<details data-adf-type="expand"><summary>More</summary><p>body</p></details>`,
		},
		{
			name: "panel",
			node: adf.Panel("info", adf.Paragraph(adf.Text("note"))),
			want: `<adf-panel data-panel-type="info"><p>note</p></adf-panel>`,
		},
		{
			name: "link wrapped media",
			node: adf.MediaSingle(adf.Media("42", "c", adf.Link("http://x"))),
			want: `<adf-media-single><a href="http://x"><adf-media data-id="42" data-type="file" data-collection="c"></adf-media></a></adf-media-single>`,
		},
		{
			name: "status",
			node: adf.Paragraph(adf.Status("Done", "green")),
			want: `<p><adf-status data-text="Done" data-color="green"></adf-status></p>`,
		},
		{
			name: "table with header row",
			node: adf.Table(
				adf.TableRow(adf.TableHeader(adf.Paragraph(adf.Text("h")))),
				adf.TableRow(adf.Block(adf.TypeTableCell, map[string]any{"colwidth": []int{100, 50}}, adf.Paragraph(adf.Text("c")))),
			),
			want: `<table><thead><tr><th><p>h</p></th></tr></thead><tbody><tr><td data-colwidth="100,50"><p>c</p></td></tr></tbody></table>`,
		},
		{
			name: "text colour",
			node: adf.Paragraph(adf.Text("red", adf.TextColor("#ff5630"), adf.Underline())),
			want: `<p><u><span data-adf-mark="textColor" data-color="#ff5630">red</span></u></p>`,
		},
		{
			name: "raw",
			node: adf.Raw("x-widget", `<x-widget a="1">hi</x-widget>`),
			want: `<x-widget a="1">hi</x-widget>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustValidate(t, adf.Doc(tt.node))
			assert.Equal(t, tt.want, markup.RenderString(Render(doc)))
		})
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	doc := mustValidate(t, adf.Doc(
		adf.Block(adf.TypeTable, map[string]any{"layout": "wide", "isNumberColumnEnabled": true, "width": 760},
			adf.TableRow(adf.TableCell(adf.Paragraph(adf.Mention("u1", "@ann"), adf.Emoji(":smile:", "😄"))))),
	))

	first := markup.RenderString(Render(doc))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, markup.RenderString(Render(doc)))
	}
}

func TestParseRawRejectsMismatchedTag(t *testing.T) {
	assert.Nil(t, ParseRaw("x-a", `<x-b></x-b>`))
	assert.Nil(t, ParseRaw("x-a", `<x-a></x-a><x-a></x-a>`))
	assert.NotNil(t, ParseRaw("caption", `<caption>c</caption>`))
}
