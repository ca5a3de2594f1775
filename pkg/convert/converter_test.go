package convert

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/metrics"
	"github.com/athapong/adfconv/pkg/walker"
)

const sampleADF = `{
  "type": "doc",
  "version": 1,
  "content": [
    {"type": "heading", "attrs": {"level": 1}, "content": [{"type": "text", "text": "Release"}]},
    {"type": "paragraph", "content": [
      {"type": "text", "text": "Ship "},
      {"type": "text", "text": "today", "marks": [{"type": "strong"}]}
    ]}
  ]
}`

func TestConvertDirections(t *testing.T) {
	c := New()

	html, err := c.Convert(ADFToHTML, []byte(sampleADF))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Release</h1><p>Ship <strong>today</strong></p>", string(html))

	md, err := c.Convert(ADFToMarkdown, []byte(sampleADF))
	require.NoError(t, err)
	assert.Equal(t, "# Release\n\nShip **today**\n", string(md))

	want, err := c.ParseADF([]byte(sampleADF))
	require.NoError(t, err)

	for _, tt := range []struct {
		direction Direction
		input     []byte
	}{
		{HTMLToADF, html},
		{MarkdownToADF, md},
	} {
		t.Run(string(tt.direction), func(t *testing.T) {
			out, err := c.Convert(tt.direction, tt.input)
			require.NoError(t, err)
			got, err := adf.Parse(out)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestConvertUnknownDirection(t *testing.T) {
	_, err := New().Convert(Direction("pdf_to_adf"), nil)
	require.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" ADF_TO_MARKDOWN ")
	require.NoError(t, err)
	assert.Equal(t, ADFToMarkdown, d)

	_, err = ParseDirection("adf_to_pdf")
	require.Error(t, err)
}

func TestParseADFRejectsInvalid(t *testing.T) {
	c := New()

	_, err := c.ParseADF([]byte(`not json`))
	require.ErrorIs(t, err, adf.ErrInvalidJSON)

	_, err = c.ParseADF([]byte(`{"type":"doc","version":1,"content":[{"type":"heading","attrs":{"level":7}}]}`))
	require.ErrorIs(t, err, adf.ErrInvalidAttribute)
}

func TestSanitizedHTMLOption(t *testing.T) {
	src := "<table><tr><th>a</th><th>b</th></tr><tr><td>c</td></tr></table>"

	raw, err := New().HTMLToADF(src)
	require.NoError(t, err)
	assert.Len(t, raw.Content[0].Content[1].Content, 1)

	padded, err := New(WithSanitizedHTML()).HTMLToADF(src)
	require.NoError(t, err)
	assert.Len(t, padded.Content[0].Content[1].Content, 2)
}

func TestStrictMarkOrderAppliesToBothInputs(t *testing.T) {
	c := New(WithStrictMarkOrder())

	_, err := c.HTMLToADF("<p><em><strong>x</strong></em></p>")
	require.ErrorIs(t, err, walker.ErrMarkOrderMismatch)

	_, err = c.MarkdownToADF("<em><strong>x</strong></em>\n")
	require.ErrorIs(t, err, walker.ErrMarkOrderMismatch)
}

func TestGeneratedLocalIDs(t *testing.T) {
	c := New(WithGeneratedLocalIDs())

	doc, err := c.MarkdownToADF("- [ ] write docs\n")
	require.NoError(t, err)
	id := doc.Content[0].Content[0].StringAttr("localId")
	assert.NotEmpty(t, id)

	again, err := c.MarkdownToADF("- [ ] write docs\n")
	require.NoError(t, err)
	assert.Equal(t, id, again.Content[0].Content[0].StringAttr("localId"))
}

func TestConverterRecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := New(WithMetrics(m))

	_, err := c.Convert(ADFToHTML, []byte(sampleADF))
	require.NoError(t, err)
	_, err = c.ADFToHTML(adf.Doc(adf.Heading(0, adf.Text("x"))))
	require.Error(t, err)
	_, err = c.HTMLToADF("<p><x-widget>hi</x-widget></p>")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(string(ADFToHTML), "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(string(ADFToHTML), "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationErrors.WithLabelValues(string(adf.CodeInvalidAttribute))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RawFallbacks.WithLabelValues(string(HTMLToADF))))
}

func TestVerify(t *testing.T) {
	c := New()
	doc := adf.Doc(
		adf.Heading(2, adf.Text("Plan")),
		adf.TaskList(adf.TaskItem(adf.StateTodo, adf.Text("review"))),
		adf.Panel("note", adf.Paragraph(adf.Text("careful"))),
	)

	for _, via := range []Format{FormatHTML, FormatMarkdown} {
		t.Run(string(via), func(t *testing.T) {
			report, err := c.Verify(doc, via)
			require.NoError(t, err)
			assert.True(t, report.Equal)
			assert.Empty(t, report.Diff)
			assert.NotEmpty(t, report.Intermediate)
		})
	}

	_, err := c.Verify(doc, Format("rtf"))
	require.Error(t, err)
}

func TestVerifyReportsMarkdownLosses(t *testing.T) {
	c := New()
	doc := adf.Doc(adf.TaskList(adf.Block(adf.TypeTaskItem, map[string]any{"localId": "t1", "state": adf.StateTodo}, adf.Text("x"))))

	report, err := c.Verify(doc, FormatMarkdown)
	require.NoError(t, err)
	assert.False(t, report.Equal)
	assert.Contains(t, report.Diff, `- `)
	assert.Contains(t, report.Diff, `"localId": "t1"`)
	assert.Positive(t, report.Changes)

	report, err = c.Verify(doc, FormatHTML)
	require.NoError(t, err)
	assert.True(t, report.Equal)
}

func TestCompare(t *testing.T) {
	c := New()
	left := adf.Doc(adf.Paragraph(adf.Text("hello world")))
	right := adf.Doc(adf.Paragraph(adf.Text("hello there")))

	cmp, err := c.Compare(left, right)
	require.NoError(t, err)
	assert.False(t, cmp.Equal)
	assert.Contains(t, cmp.TextDiff, "- hello world")
	assert.Contains(t, cmp.TextDiff, "+ hello there")
	assert.Equal(t, 2, cmp.Changes)

	same, err := c.Compare(left, adf.Clone(left))
	require.NoError(t, err)
	assert.True(t, same.Equal)
	assert.Empty(t, same.TreeDiff)
}

func TestSemanticDiff(t *testing.T) {
	diff, changes := SemanticDiff("a\nb\nc\n", "a\nx\nc\n")
	assert.Equal(t, "  a\n- b\n+ x\n  c\n", diff)
	assert.Equal(t, 2, changes)
}

func TestBatchProcess(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	p := NewPipeline(New(), WithBatchSize(3), WithPipelineMetrics(m))

	var jobs []*Job
	for i := range 7 {
		jobs = append(jobs, NewJob(MarkdownToADF, []byte(fmt.Sprintf("item %d\n", i))))
	}
	require.NoError(t, p.BatchProcess(context.Background(), jobs))

	for i, job := range jobs {
		require.NoError(t, job.Err)
		doc, err := adf.Parse(job.Output)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("item %d\n", i), adf.PlainText(doc))
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PipelineQueueLength))
}

func TestBatchProcessReportsFailures(t *testing.T) {
	p := NewPipeline(New())
	good := NewJob(ADFToMarkdown, []byte(sampleADF))
	bad := NewJob(ADFToMarkdown, []byte(`{"type":"paragraph"}`))

	err := p.BatchProcess(context.Background(), []*Job{good, bad})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), bad.ID.String()))
	assert.NoError(t, good.Err)
	assert.Error(t, bad.Err)
	assert.NotEmpty(t, good.Output)
}

func TestBatchProcessReturnsFirstFailureByIndex(t *testing.T) {
	p := NewPipeline(New(), WithBatchSize(8))

	var jobs []*Job
	for range 6 {
		jobs = append(jobs, NewJob(ADFToMarkdown, []byte(`{"type":"paragraph"}`)))
	}
	for range 10 {
		err := p.BatchProcess(context.Background(), jobs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), jobs[0].ID.String())
	}
}

func TestBatchProcessHonoursCancellation(t *testing.T) {
	p := NewPipeline(New(), WithBatchSize(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []*Job{NewJob(MarkdownToADF, []byte("a\n")), NewJob(MarkdownToADF, []byte("b\n"))}
	err := p.BatchProcess(ctx, jobs)
	require.ErrorIs(t, err, context.Canceled)
	for _, job := range jobs {
		assert.ErrorIs(t, job.Err, context.Canceled)
		assert.Nil(t, job.Output)
	}
}
