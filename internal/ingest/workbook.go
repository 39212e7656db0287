package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"specmix/internal/faults"
)

// ReadWorkbook reads the first sheet of an .xlsx or .xls file. The first row
// is the header; rows without any non-blank cell are skipped. Raw cell values
// are used so numbers are not rounded by display formats.
func ReadWorkbook(path string) (*Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSXRows(path)
	case ".xls":
		rows, err = readXLSRows(path)
	default:
		return nil, unsupportedFormat(path)
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrFormat, "read", "read workbook", filepath.Base(path), err)
	}
	return tableFromRows(rows)
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readXLSRows(path string) ([][]string, error) {
	wb, err := xls.Open(path, legacyWorkbookCharset)
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func tableFromRows(rows [][]string) (*Table, error) {
	start := 0
	for start < len(rows) && blankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("%w: workbook is empty", faults.ErrSchema)
	}
	header := rows[start]
	width := len(header)
	for _, row := range rows[start+1:] {
		width = max(width, len(row))
	}
	padded := make([]string, width)
	copy(padded, header)

	table := &Table{Columns: uniqueColumns(padded)}
	for _, row := range rows[start+1:] {
		if blankRow(row) {
			continue
		}
		cells := make([]string, width)
		copy(cells, row)
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
