package render

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/athapong/adfconv/pkg/markup"
)

// tableContext lists tags the tokenizer only accepts inside a table.
var tableContext = mapset.NewSet[string]("caption", "colgroup", "col")

// ParseRaw re-parses the serialized element stored in a raw node. It returns
// nil when html does not hold exactly one element named tag.
func ParseRaw(tag, src string) *markup.Node {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if tableContext.Contains(tag) {
		ctx = &html.Node{Type: html.ElementNode, Data: "table", DataAtom: atom.Table}
	}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil || len(nodes) != 1 || nodes[0].Type != html.ElementNode || nodes[0].Data != tag {
		return nil
	}
	return markup.FromHTML(nodes[0])
}
