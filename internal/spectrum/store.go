package spectrum

import (
	"bufio"
	"bytes"
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"specmix/internal/faults"
	"specmix/internal/fileutil"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads and re-validates the canonical spectrum file at path.
func Load(path string) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spectrum: %w", err)
	}
	defer f.Close()

	s, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Decode parses canonical spectrum text from r. Rows holding a non-numeric or
// non-finite value in any required column, a wavenumber <= 0 or a negative
// uncertainty are dropped. The rest are stably sorted by wavenumber and
// repeated wavenumbers keep their first row. The count of dropped rows is
// returned alongside the spectrum.
func Decode(r io.Reader) (*Spectrum, int, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("%w: file has no header", ErrMissingColumns)
	}
	if err != nil {
		return nil, 0, faults.Wrap(faults.ErrParse, "load", "read header", "", err)
	}

	index := map[string]int{}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	var missing []string
	cols := make([]int, 3)
	for i, name := range []string{ColumnWavenumber, ColumnEmissivity, ColumnUncertainty} {
		idx, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[i] = idx
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var (
		rows    []row
		dropped int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, faults.Wrap(faults.ErrParse, "load", "read row", "", err)
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, 0, faults.Wrap(faults.ErrParse, "load", "read row",
				fmt.Sprintf("line %d has %d fields, header has %d", line, len(record), len(header)), nil)
		}
		values, ok := parseRow(record, cols)
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, values)
	}

	if len(rows) == 0 {
		return nil, dropped, ErrEmptySpectrum
	}

	slices.SortStableFunc(rows, func(a, b row) int { return cmp.Compare(a[0], b[0]) })
	unique := slices.CompactFunc(rows, func(a, b row) bool { return a[0] == b[0] })
	dropped += len(rows) - len(unique)
	rows = unique

	s := &Spectrum{
		Wavenumber:  make([]float64, len(rows)),
		Emissivity:  make([]float64, len(rows)),
		Uncertainty: make([]float64, len(rows)),
	}
	for i, values := range rows {
		s.Wavenumber[i] = values[0]
		s.Emissivity[i] = values[1]
		s.Uncertainty[i] = values[2]
	}
	return s, dropped, nil
}

type row [3]float64

func parseRow(record []string, cols []int) (row, bool) {
	var out row
	for i, col := range cols {
		if col >= len(record) {
			return out, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
		if err != nil || !finite(v) {
			return out, false
		}
		out[i] = v
	}
	if out[0] <= 0 || out[2] < 0 {
		return out, false
	}
	return out, true
}

// Write validates s and atomically replaces path with its canonical encoding.
// Nothing is written when validation fails.
func Write(path string, s *Spectrum) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return Encode(w, s)
	})
}

// Encode writes the canonical text form of s to w. Values use the shortest
// decimal representation that round-trips to the same float64.
func Encode(w io.Writer, s *Spectrum) error {
	var b strings.Builder
	b.WriteString(ColumnWavenumber)
	b.WriteByte('\t')
	b.WriteString(ColumnEmissivity)
	b.WriteByte('\t')
	b.WriteString(ColumnUncertainty)
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	buf := make([]byte, 0, 96)
	for i := range s.Wavenumber {
		buf = buf[:0]
		buf = strconv.AppendFloat(buf, s.Wavenumber[i], 'g', -1, 64)
		buf = append(buf, '\t')
		buf = strconv.AppendFloat(buf, s.Emissivity[i], 'g', -1, 64)
		buf = append(buf, '\t')
		buf = strconv.AppendFloat(buf, s.Uncertainty[i], 'g', -1, 64)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
