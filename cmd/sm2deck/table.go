package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column is a table column: its header and how its cells are aligned.
type column struct {
	title string
	align text.Align
}

func left(title string) column  { return column{title: title, align: text.AlignLeft} }
func right(title string) column { return column{title: title, align: text.AlignRight} }

// renderTable lays rows out under columns. Short rows are padded with empty
// cells and extra cells are dropped.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: c.align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, cells := range rows {
		row := make(table.Row, len(columns))
		for i := range row {
			row[i] = ""
			if i < len(cells) {
				row[i] = cells[i]
			}
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}
