package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"specmix/internal/faults"
)

func TestReadDelimitedPicksBestDelimiter(t *testing.T) {
	content := "Wavenumber;Emissivity;Uncertainty\n1000;0,95;0.01\n1001;0,96;0.01\n"
	table, dialect, err := ReadDelimited(writeFile(t, "semi.csv", []byte(content)))
	require.NoError(t, err)
	require.Equal(t, "semicolon", dialect.Delimiter)
	require.Equal(t, "utf-8", dialect.Encoding)
	require.Equal(t, []string{"Wavenumber", "Emissivity", "Uncertainty"}, table.Columns)
	require.Len(t, table.Rows, 2)
}

func TestReadDelimitedTieKeepsFirstCandidate(t *testing.T) {
	content := "a,b\n1,2\n3,4\n"
	_, dialect, err := ReadDelimited(writeFile(t, "tie.csv", []byte(content)))
	require.NoError(t, err)
	require.Equal(t, "comma", dialect.Delimiter)
	require.Equal(t, "utf-8", dialect.Encoding)
	require.Equal(t, 2*2*2, dialect.Score)
}

func TestReadDelimitedFallsBackToSingleByteEncoding(t *testing.T) {
	// 0xB5 is the micro sign in latin-1 and invalid on its own in UTF-8.
	content := []byte("Wavelength \xb5m\tEmissivity\n10\t0.9\n11\t0.8\n")
	table, dialect, err := ReadDelimited(writeFile(t, "latin.csv", content))
	require.NoError(t, err)
	require.Equal(t, "tab", dialect.Delimiter)
	require.Equal(t, "latin-1", dialect.Encoding)
	require.Equal(t, "Wavelength µm", table.Columns[0])
}

func TestReadDelimitedStripsBOMAndPadsShortRows(t *testing.T) {
	content := "\xEF\xBB\xBFWavenumber,Emissivity,Uncertainty\n1000,0.9\n\n1001,0.8,0.01\n"
	table, _, err := ReadDelimited(writeFile(t, "bom.csv", []byte(content)))
	require.NoError(t, err)
	require.Equal(t, "Wavenumber", table.Columns[0])
	require.Equal(t, [][]string{{"1000", "0.9", ""}, {"1001", "0.8", "0.01"}}, table.Rows)
}

func TestReadDelimitedNoViableParse(t *testing.T) {
	_, _, err := ReadDelimited(writeFile(t, "single.csv", []byte("justonecolumn\n1\n2\n")))
	require.ErrorIs(t, err, ErrNoViableParse)
	require.ErrorIs(t, err, faults.ErrParse)
}

func TestReadDelimitedRejectsOverlongRows(t *testing.T) {
	_, err := parseDelimited([]byte("a,b\n1,2,3\n"), ',', Encodings[0])
	require.Error(t, err)
}

func TestReadDelimitedScoresNumericColumns(t *testing.T) {
	// Comma parse: 3 columns, all numeric. Semicolon parse would be 1 column.
	content := "x,y,z\n1,2,3\n4,5,6\n7,8,9\n"
	table, dialect, err := readDelimitedBytes([]byte(content))
	require.NoError(t, err)
	require.Equal(t, 3*3*3, dialect.Score)
	require.Len(t, table.Columns, 3)

	// Non-numeric cells in the first ten rows exclude a column from the score.
	text := "x,label\n1,a\n2,b\n"
	_, dialect, err = readDelimitedBytes([]byte(text))
	require.NoError(t, err)
	require.Equal(t, 2*1*2, dialect.Score)
}

func TestReadTextFallsBackToComma(t *testing.T) {
	table, dialect, err := ReadText(writeFile(t, "tab.txt", []byte("a\tb\n1\t2\n")))
	require.NoError(t, err)
	require.Equal(t, "tab", dialect.Delimiter)
	require.Len(t, table.Columns, 2)

	table, dialect, err = ReadText(writeFile(t, "comma.txt", []byte("a,b\n1,2\n")))
	require.NoError(t, err)
	require.Equal(t, "comma", dialect.Delimiter)
	require.Len(t, table.Columns, 2)

	_, _, err = ReadText(writeFile(t, "bad.txt", []byte("only\n1\n")))
	require.ErrorIs(t, err, faults.ErrParse)
}

func TestUniqueColumns(t *testing.T) {
	got := uniqueColumns([]string{"x", "x", "", "x"})
	require.Equal(t, []string{"x", "x.1", "Unnamed: 2", "x.2"}, got)
}

func TestCoerce(t *testing.T) {
	v, ok := Coerce(" 1.5e3 ")
	require.True(t, ok)
	require.Equal(t, 1500.0, v)
	for _, cell := range []string{"", "NaN", "n/a", "abc"} {
		_, ok := Coerce(cell)
		require.False(t, ok, cell)
	}
	require.True(t, numericCoercible(strings.Fields("1 2 NA 3")))
	require.False(t, numericCoercible([]string{"1", "x"}))
}

func TestReadWorkbookXLSX(t *testing.T) {
	path := writeWorkbook(t, "book.xlsx", [][]any{
		{"Wavenumber", "Emissivity", "Error"},
		{1000, 0.95, 0.01},
		{},
		{1001, 0.96, 0.02},
	})
	table, err := ReadWorkbook(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Wavenumber", "Emissivity", "Error"}, table.Columns)
	require.Equal(t, [][]string{{"1000", "0.95", "0.01"}, {"1001", "0.96", "0.02"}}, table.Rows)
}
