package sanitize

import (
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/athapong/adfconv/pkg/markup"
)

var (
	rowGroups = mapset.NewSet[string]("thead", "tbody", "tfoot")
	cellTags  = mapset.NewSet[string]("th", "td")
)

// RepairTables wraps cells that sit directly in a table or row group into a
// synthesized row and pads every row shorter than the header row with
// trailing empty data cells. The header row is the first row of the table.
// Rows are never truncated.
func RepairTables(root *markup.Node) *markup.Node {
	return repairTables(root)
}

func repairTables(n *markup.Node) *markup.Node {
	if !n.IsElement() {
		return n.Clone()
	}
	c := rewriteChildren(n, func(child *markup.Node) []*markup.Node {
		return []*markup.Node{repairTables(child)}
	})
	if n.Tag != "table" {
		return c
	}

	c.Children = wrapLooseCells(c.Children)
	for _, child := range c.Children {
		if child.IsElement() && rowGroups.Contains(child.Tag) {
			child.Children = wrapLooseCells(child.Children)
		}
	}

	rows := tableRows(c)
	if len(rows) == 0 {
		return c
	}
	// spans tracks cells from earlier rows that still cover columns through
	// rowspan, so rows under them are not padded.
	type span struct{ rows, cols int }
	var spans []span
	width := 0
	for i, row := range rows {
		covered := 0
		for _, s := range spans {
			covered += s.cols
		}
		w := rowWidth(row) + covered
		if i == 0 {
			width = w
		}
		for ; w < width; w++ {
			row.Children = append(row.Children, markup.Elem("td", nil))
		}

		next := spans[:0:0]
		for _, s := range spans {
			if s.rows > 1 {
				next = append(next, span{s.rows - 1, s.cols})
			}
		}
		for _, cell := range row.Children {
			if r := intAttr(cell, "rowspan"); r > 1 {
				next = append(next, span{r - 1, max(intAttr(cell, "colspan"), 1)})
			}
		}
		spans = next
	}
	return c
}

func intAttr(n *markup.Node, key string) int {
	v, ok := n.Get(key)
	if !ok {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return i
}

// wrapLooseCells groups consecutive cells into synthesized rows. Whitespace
// between loose cells joins the row.
func wrapLooseCells(children []*markup.Node) []*markup.Node {
	var out []*markup.Node
	var row *markup.Node
	for _, child := range children {
		if child.IsElement() && cellTags.Contains(child.Tag) {
			if row == nil {
				row = markup.Elem("tr", nil)
				out = append(out, row)
			}
			row.Children = append(row.Children, child)
			continue
		}
		if row != nil && child.IsWhitespace() {
			continue
		}
		row = nil
		out = append(out, child)
	}
	return out
}

// tableRows lists the rows of a table in document order, looking through
// row groups but not into nested tables.
func tableRows(table *markup.Node) []*markup.Node {
	var rows []*markup.Node
	for _, child := range table.Children {
		switch {
		case child.IsElement("tr"):
			rows = append(rows, child)
		case child.IsElement() && rowGroups.Contains(child.Tag):
			for _, gc := range child.Children {
				if gc.IsElement("tr") {
					rows = append(rows, gc)
				}
			}
		}
	}
	return rows
}

func rowWidth(row *markup.Node) int {
	width := 0
	for _, cell := range row.Children {
		if !cell.IsElement() || !cellTags.Contains(cell.Tag) {
			continue
		}
		width += max(intAttr(cell, "colspan"), 1)
	}
	return width
}
