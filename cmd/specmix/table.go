package main

import (
	"math"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws rows under headers in the rounded style. Columns whose
// zero-based index appears in rightAligned are right-aligned; short rows are
// padded with empty cells.
func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if slices.Contains(rightAligned, i) {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// abundanceTable lays out one row per end-member. normalized may be nil;
// nil entries inside it render as "n/a".
func abundanceTable(names []string, abundances, errs []float64, normalized []*float64) string {
	headers := []string{"End-member", "Abundance", "Error"}
	if normalized != nil {
		headers = append(headers, "Normalized")
	}
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, formatFloat(abundances[i], 4), formatFloat(errs[i], 4)}
		if normalized != nil {
			cell := "n/a"
			if normalized[i] != nil {
				cell = formatFloat(*normalized[i], 4)
			}
			rows[i] = append(rows[i], cell)
		}
	}
	return renderTable(headers, rows, 1, 2, 3)
}

// formatFloat renders v with the given number of decimals; non-finite values
// render as "n/a".
func formatFloat(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// formatCompact renders v in its shortest round-trip form.
func formatCompact(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
