package ingest

import (
	"strconv"
	"strings"
)

// Table is a parsed raw file: ordered column names and rows of raw cells.
// Every row has exactly len(Columns) cells; short source rows are padded
// with empty (missing) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the raw cells of column idx.
func (t *Table) Column(idx int) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// Head returns a table holding at most n rows of t.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// missingTokens are cell values read as missing data rather than text.
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether cell denotes missing data.
func IsMissing(cell string) bool {
	_, ok := missingTokens[strings.TrimSpace(cell)]
	return ok
}

// Coerce converts a raw cell to a number. ok is false when the cell is
// missing or not numeric; callers treat both as missing values.
func Coerce(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// numericCoercible reports whether every cell is either missing or numeric.
func numericCoercible(cells []string) bool {
	for _, cell := range cells {
		if IsMissing(cell) {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			return false
		}
	}
	return true
}

// uniqueColumns disambiguates repeated header names by appending ".1", ".2"
// and so on, and names blank headers "Unnamed: <index>".
func uniqueColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for {
			count, dup := seen[name]
			if !dup {
				break
			}
			seen[base] = count + 1
			name = base + "." + strconv.Itoa(count+1)
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}
