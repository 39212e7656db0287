package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"specmix/internal/faults"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func writeWorkbook(t *testing.T, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDetectByExtension(t *testing.T) {
	cases := map[string]Format{
		"a.csv":  FormatCSV,
		"a.CSV":  FormatCSV,
		"a.txt":  FormatText,
		"a.Txt":  FormatText,
		"a.json": FormatUnknown,
		"a":      FormatUnknown,
	}
	for name, want := range cases {
		got, err := Detect(writeFile(t, name, []byte("x")))
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
}

func TestDetectGenuineWorkbook(t *testing.T) {
	path := writeWorkbook(t, "real.xlsx", [][]any{
		{"Wavenumber", "Emissivity"},
		{1000, 0.9},
	})
	got, err := Detect(path)
	require.NoError(t, err)
	require.Equal(t, FormatExcel, got)
}

func TestDetectDisguisedCSV(t *testing.T) {
	content := []byte("Wavenumber,Emissivity\n1000,0.9\n1001,0.91\n")

	got, err := Detect(writeFile(t, "fake.xlsx", content))
	require.NoError(t, err)
	require.Equal(t, FormatCSVDisguisedAsExcel, got)

	got, err = Detect(writeFile(t, "fake.XLS", content))
	require.NoError(t, err)
	require.Equal(t, FormatCSVDisguisedAsExcel, got)
}

func TestDetectCorruptWorkbookIsFormatError(t *testing.T) {
	_, err := Detect(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.ErrorIs(t, err, faults.ErrFormat)
}
