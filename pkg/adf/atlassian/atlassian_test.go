package atlassian

import (
	"testing"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalConfluenceBody(t *testing.T) {
	body := `{"version":1,"type":"doc","content":[
		{"type":"heading","attrs":{"level":1,"localId":"abc"},"content":[{"type":"text","text":"Hi"}]},
		{"type":"paragraph","attrs":{"localId":"p1","unknownEditorAttr":true},"content":[
			{"type":"text","text":"bold","marks":[{"type":"strong"}]}
		]}
	]}`

	doc, err := Unmarshal([]byte(body))
	require.NoError(t, err)

	want, err := adf.Validate(adf.Doc(
		adf.Block(adf.TypeHeading, map[string]any{"level": 1, "localId": "abc"}, adf.Text("Hi")),
		adf.Block(adf.TypeParagraph, map[string]any{"localId": "p1"}, adf.Text("bold", adf.Strong())),
	))
	require.NoError(t, err)
	assert.Equal(t, want, doc)
}

func TestCommentNodeRoundTrip(t *testing.T) {
	doc, err := adf.Validate(adf.Doc(
		adf.Paragraph(adf.Text("x", adf.Link("https://a.example")), adf.Emoji(":smile:", "😄")),
		adf.BulletList(adf.ListItem(adf.Paragraph(adf.Text("item")))),
	))
	require.NoError(t, err)

	back, err := FromCommentNode(ToCommentNode(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}
