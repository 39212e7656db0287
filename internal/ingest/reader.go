package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"specmix/internal/faults"
)

const (
	scoreColumns     = 3
	scoreSampleCells = 10
)

var (
	// ErrNoViableParse reports that no delimiter/encoding combination produced
	// a usable table.
	ErrNoViableParse = fmt.Errorf("%w: could not read file with any common delimiter/encoding combination", faults.ErrParse)

	errTooFewColumns = errors.New("fewer than 2 columns")
	errInvalidUTF8   = errors.New("invalid utf-8 byte sequence")
	utf8BOM          = []byte{0xEF, 0xBB, 0xBF}
)

// Delimiter is a candidate field separator.
type Delimiter struct {
	Name  string
	Comma rune
}

// Encoding is a candidate text encoding. A nil decoder means strict UTF-8.
type Encoding struct {
	Name    string
	decoder encoding.Encoding
}

// Candidate delimiters and encodings in trial order. The delimiter loop is
// the outer loop.
var (
	Delimiters = []Delimiter{
		{Name: "comma", Comma: ','},
		{Name: "tab", Comma: '\t'},
		{Name: "semicolon", Comma: ';'},
		{Name: "pipe", Comma: '|'},
	}
	Encodings = []Encoding{
		{Name: "utf-8"},
		{Name: "latin-1", decoder: charmap.ISO8859_1},
		{Name: "cp1252", decoder: charmap.Windows1252},
		{Name: "iso-8859-1", decoder: charmap.ISO8859_1},
	}
)

// Dialect records which delimiter and encoding produced a table.
type Dialect struct {
	Delimiter string
	Encoding  string
	Score     int
}

// ReadDelimited parses path with every delimiter and encoding combination and
// returns the table with the greatest score. Score is column count times the
// number of leading columns (at most three) whose first ten cells are all
// numeric or missing, times row count. Ties keep the first candidate tried.
func ReadDelimited(path string) (*Table, Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return readDelimitedBytes(data)
}

func readDelimitedBytes(data []byte) (*Table, Dialect, error) {
	var (
		best      *Table
		bestScore int
		dialect   Dialect
	)
	for _, delim := range Delimiters {
		for _, enc := range Encodings {
			table, err := parseDelimited(data, delim.Comma, enc)
			if err != nil {
				continue
			}
			score := scoreTable(table)
			if score > bestScore {
				best = table
				bestScore = score
				dialect = Dialect{Delimiter: delim.Name, Encoding: enc.Name, Score: score}
			}
		}
	}
	if best == nil {
		return nil, Dialect{}, ErrNoViableParse
	}
	return best, dialect, nil
}

// ReadText parses a .txt file as tab-delimited UTF-8, falling back to
// comma-delimited when the tab parse fails or yields a single column.
func ReadText(path string) (*Table, Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	table, err := parseDelimited(data, '\t', Encodings[0])
	if err == nil {
		return table, Dialect{Delimiter: "tab", Encoding: Encodings[0].Name}, nil
	}
	table, commaErr := parseDelimited(data, ',', Encodings[0])
	if commaErr == nil {
		return table, Dialect{Delimiter: "comma", Encoding: Encodings[0].Name}, nil
	}
	return nil, Dialect{}, faults.Wrap(faults.ErrParse, "read", "parse text",
		fmt.Sprintf("tab: %v", err), commaErr)
}

func decode(data []byte, enc Encoding) ([]byte, error) {
	if enc.decoder == nil {
		if !utf8.Valid(data) {
			return nil, errInvalidUTF8
		}
		return data, nil
	}
	return enc.decoder.NewDecoder().Bytes(data)
}

// parseDelimited reads data as a header row followed by data rows. Blank
// lines are skipped. A row longer than the header is an error; shorter rows
// are padded with missing cells. Tables with fewer than two columns are
// rejected.
func parseDelimited(data []byte, comma rune, enc Encoding) (*Table, error) {
	text, err := decode(data, enc)
	if err != nil {
		return nil, err
	}
	text = bytes.TrimPrefix(text, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no columns to parse from file")
		}
		return nil, err
	}
	if len(header) < 2 {
		return nil, errTooFewColumns
	}

	table := &Table{Columns: uniqueColumns(header)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", len(header), line, len(record))
		}
		if len(record) < len(header) {
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

func scoreTable(t *Table) int {
	limit := min(scoreColumns, len(t.Columns))
	numeric := 0
	for c := 0; c < limit; c++ {
		sample := t.Column(c)
		if len(sample) > scoreSampleCells {
			sample = sample[:scoreSampleCells]
		}
		if numericCoercible(sample) {
			numeric++
		}
	}
	return len(t.Columns) * numeric * len(t.Rows)
}
