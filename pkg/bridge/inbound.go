package bridge

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/render"
)

// newMarkdown returns the markdown engine for inbound text. Raw HTML must
// pass through untouched, and no extension may invent links or rewrite
// punctuation.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// toHTML converts markdown to an HTML document.
func toHTML(md goldmark.Markdown, text string) (*goquery.Document, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return nil, &BridgeError{Code: CodeTransformFailed, Detail: "markdown", Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return nil, &BridgeError{Code: CodeTransformFailed, Detail: "html", Err: err}
	}
	return doc, nil
}

// requiredAttrs lists, per element of the adf-* vocabulary, the attributes a
// raw block must carry for its feature.
var requiredAttrs = map[string][]string{
	render.TagPanel:      {"data-panel-type"},
	render.TagMediaSgl:   nil,
	render.TagMediaGroup: nil,
	render.TagMedia:      {"data-id", "data-type", "data-collection"},
	render.TagBlockCard:  {"data-url"},
	render.TagMention:    {"data-id"},
	render.TagEmoji:      {"data-short-name"},
	render.TagStatus:     {"data-text", "data-color"},
	render.TagInlineCard: {"data-url"},
	render.TagDate:       {"data-timestamp"},
}

var (
	adfTypes = mapset.NewSet[string](
		string(adf.TypeTaskList), string(adf.TypeTaskItem),
		string(adf.TypeDecisionList), string(adf.TypeDecisionItem),
		string(adf.TypeExpand), string(adf.TypeNestedExpand),
	)
	adfMarks = mapset.NewSet[string](string(adf.MarkTextColor), string(adf.MarkBackgroundColor))
)

// checkRawBlocks verifies the raw markup conventions used for features
// markdown cannot express. A marker that is present but incomplete is an
// error rather than being dropped or passed through.
func checkRawBlocks(doc *goquery.Document) error {
	var err error
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		err = checkElement(s)
		return err == nil
	})
	return err
}

func checkElement(s *goquery.Selection) error {
	name := goquery.NodeName(s)
	if strings.HasPrefix(name, "adf-") {
		required, known := requiredAttrs[name]
		if !known {
			return malformed(name, "unknown element")
		}
		for _, attr := range required {
			if _, ok := s.Attr(attr); !ok {
				return malformed(name, "missing "+attr)
			}
		}
		if (name == render.TagMediaSgl || name == render.TagMediaGroup) && s.Find(render.TagMedia).Length() == 0 {
			return malformed(name, "holds no media")
		}
	}

	if t, ok := s.Attr(render.AttrADFType); ok {
		if !adfTypes.Contains(t) {
			return malformed(name, "unknown "+render.AttrADFType+" "+t)
		}
		if t == string(adf.TypeTaskItem) || t == string(adf.TypeDecisionItem) {
			if _, ok := s.Attr(render.AttrState); !ok {
				return malformed(name, "missing "+render.AttrState)
			}
		}
	}
	if m, ok := s.Attr(render.AttrADFMark); ok {
		if !adfMarks.Contains(m) {
			return malformed(name, "unknown "+render.AttrADFMark+" "+m)
		}
		if _, ok := s.Attr("data-color"); !ok {
			return malformed(name, "missing data-color")
		}
	}
	return nil
}
