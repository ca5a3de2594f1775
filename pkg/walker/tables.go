package walker

import (
	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/markup"
	"github.com/athapong/adfconv/pkg/render"
)

func (w *walker) table(n *markup.Node) (*adf.Node, error) {
	table := adf.Table()
	table.Attrs = collectAttrs(n,
		"data-layout", "layout", "",
		"data-number-column", "isNumberColumnEnabled", "bool",
		"data-width", "width", "int",
		"data-display-mode", "displayMode", "",
		render.AttrLocalID, "localId", "",
	)

	var rows []*markup.Node
	for _, c := range n.Children {
		switch {
		case c.IsWhitespace():
		case c.IsElement("thead", "tbody", "tfoot"):
			for _, r := range c.Children {
				if !r.IsWhitespace() {
					rows = append(rows, r)
				}
			}
		default:
			rows = append(rows, c)
		}
	}

	for _, r := range rows {
		if !r.IsElement("tr") {
			table.Content = append(table.Content, w.raw(r, nil))
			continue
		}
		row, err := w.row(r)
		if err != nil {
			return nil, err
		}
		table.Content = append(table.Content, row)
	}
	return table, nil
}

func (w *walker) row(tr *markup.Node) (*adf.Node, error) {
	row := adf.TableRow()
	for _, c := range tr.Children {
		if c.IsWhitespace() {
			continue
		}
		if !c.IsElement("th", "td") {
			row.Content = append(row.Content, w.raw(c, nil))
			continue
		}
		w.nested++
		content, err := w.blocks(c.Children)
		w.nested--
		if err != nil {
			return nil, err
		}
		cell := adf.TableCell(content...)
		if c.Tag == "th" {
			cell = adf.TableHeader(content...)
		}
		cell.Attrs = collectAttrs(c,
			"colspan", "colspan", "int",
			"rowspan", "rowspan", "int",
			"data-background", "background", "",
			"data-colwidth", "colwidth", "ints",
		)
		row.Content = append(row.Content, cell)
	}
	return row, nil
}
