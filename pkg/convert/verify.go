package convert

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/athapong/adfconv/pkg/adf"
)

// Format is an intermediate representation for a round trip.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Report describes a round trip of a document through an intermediate
// format.
type Report struct {
	Via          Format `json:"via"`
	Equal        bool   `json:"equal"`
	Intermediate string `json:"intermediate"`
	// Diff is a line diff of the indented JSON of the input and the
	// reconstructed document. Empty when Equal.
	Diff    string `json:"diff,omitempty"`
	Changes int    `json:"changes"`
}

// Verify converts doc to the given format and back and reports whether the
// reconstructed document equals the validated input.
func (c *Converter) Verify(doc *adf.Node, via Format) (*Report, error) {
	valid, err := c.validate(doc)
	if err != nil {
		return nil, err
	}

	var (
		intermediate string
		back         *adf.Node
	)
	switch via {
	case FormatHTML:
		if intermediate, err = c.ADFToHTML(valid); err == nil {
			back, err = c.HTMLToADF(intermediate)
		}
	case FormatMarkdown:
		if intermediate, err = c.ADFToMarkdown(valid); err == nil {
			back, err = c.MarkdownToADF(intermediate)
		}
	default:
		return nil, errors.Errorf("unknown format %q", via)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "round trip via %s", via)
	}

	want, err := adf.MarshalIndent(valid)
	if err != nil {
		return nil, err
	}
	got, err := adf.MarshalIndent(back)
	if err != nil {
		return nil, err
	}

	report := &Report{Via: via, Intermediate: intermediate, Equal: bytes.Equal(want, got)}
	if !report.Equal {
		report.Diff, report.Changes = SemanticDiff(string(want), string(got))
		c.logger.WithField("via", via).WithField("changes", report.Changes).Info("Round trip changed the document")
	}
	return report, nil
}

// SemanticDiff diffs two texts, cleaned up for readability. Removed runs
// are prefixed "- ", added runs "+ " and unchanged runs "  ". It also
// returns the number of changed runs.
func SemanticDiff(source, target string) (string, int) {
	lines := lineCoder{index: map[string]rune{}}
	a, b := lines.encode(source), lines.encode(target)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var (
		result  strings.Builder
		changes int
	)
	for _, diff := range diffs {
		text := strings.TrimSuffix(lines.decode(diff.Text), "\n")
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			changes++
			result.WriteString("- " + strings.ReplaceAll(text, "\n", "\n- ") + "\n")
		case diffmatchpatch.DiffInsert:
			changes++
			result.WriteString("+ " + strings.ReplaceAll(text, "\n", "\n+ ") + "\n")
		case diffmatchpatch.DiffEqual:
			result.WriteString("  " + strings.ReplaceAll(text, "\n", "\n  ") + "\n")
		}
	}
	return result.String(), changes
}

// Comparison is the result of comparing two documents.
type Comparison struct {
	Equal     bool   `json:"equal"`
	TextDiff  string `json:"textDiff"`
	TreeDiff  string `json:"treeDiff"`
	Changes   int    `json:"changes"`
	LeftText  string `json:"-"`
	RightText string `json:"-"`
}

// Compare validates both documents and diffs their text and their trees.
func (c *Converter) Compare(left, right *adf.Node) (*Comparison, error) {
	l, err := c.validate(left)
	if err != nil {
		return nil, errors.Wrap(err, "left document")
	}
	r, err := c.validate(right)
	if err != nil {
		return nil, errors.Wrap(err, "right document")
	}

	lj, err := adf.MarshalIndent(l)
	if err != nil {
		return nil, err
	}
	rj, err := adf.MarshalIndent(r)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{
		Equal:     bytes.Equal(lj, rj),
		LeftText:  adf.PlainText(l),
		RightText: adf.PlainText(r),
	}
	if !cmp.Equal {
		cmp.TextDiff, _ = SemanticDiff(cmp.LeftText, cmp.RightText)
		cmp.TreeDiff, cmp.Changes = SemanticDiff(string(lj), string(rj))
	}
	return cmp, nil
}

// lineCoder maps each distinct line to one rune so the diff works on whole
// lines.
type lineCoder struct {
	lines []string
	index map[string]rune
}

func (c *lineCoder) encode(text string) []rune {
	var out []rune
	for len(text) > 0 {
		end := strings.IndexByte(text, '\n') + 1
		if end == 0 {
			end = len(text)
		}
		line := text[:end]
		text = text[end:]

		r, ok := c.index[line]
		if !ok {
			// Private use area, well clear of surrogates.
			r = rune(0xF0000 + len(c.lines))
			c.index[line] = r
			c.lines = append(c.lines, line)
		}
		out = append(out, r)
	}
	return out
}

func (c *lineCoder) decode(encoded string) string {
	var b strings.Builder
	for _, r := range encoded {
		b.WriteString(c.lines[r-0xF0000])
	}
	return b.String()
}
