package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type columnAlignment struct {
	column int
	align  text.Align
}

var alignRight = text.AlignRight

// renderTable renders headers and rows with rounded borders on a terminal
// and plain light borders when output is piped.
func renderTable(headers []string, rows [][]string, alignments ...columnAlignment) string {
	writer := table.NewWriter()

	headerRow := make(table.Row, len(headers))
	for i, header := range headers {
		headerRow[i] = header
	}
	writer.AppendHeader(headerRow)

	for _, row := range rows {
		tableRow := make(table.Row, len(row))
		for i, cell := range row {
			tableRow[i] = cell
		}
		writer.AppendRow(tableRow)
	}

	if len(alignments) > 0 {
		configs := make([]table.ColumnConfig, 0, len(alignments))
		for _, alignment := range alignments {
			configs = append(configs, table.ColumnConfig{
				Number: alignment.column,
				Align:  alignment.align,
			})
		}
		writer.SetColumnConfigs(configs)
	}

	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		writer.SetStyle(table.StyleRounded)
	} else {
		writer.SetStyle(table.StyleLight)
	}
	return writer.Render()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
