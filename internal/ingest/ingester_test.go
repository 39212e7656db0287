package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"specmix/internal/config"
	"specmix/internal/faults"
	"specmix/internal/spectrum"
)

const sampleCSV = "Wavenumber (cm-1),Emissivity,Std\n" +
	"1003,0.93,0.01\n1001,0.91,0.01\n1002,0.92,0.01\n1001,0.5,0.01\n1000,0.90,0.01\n"

func TestProcessWritesCanonicalFile(t *testing.T) {
	raw := writeFile(t, "sample.csv", []byte(sampleCSV))
	out := filepath.Join(t.TempDir(), "sample.txt")

	s, report, err := New(DefaultNormalizeOptions(), nil).Process(raw, out)
	require.NoError(t, err)
	require.Equal(t, FormatCSV, report.Format)
	require.Equal(t, []float64{1000, 1001, 1002, 1003}, s.Wavenumber)
	require.Equal(t, 0.91, s.Emissivity[1])

	loaded, err := spectrum.Load(out)
	require.NoError(t, err)
	require.Equal(t, s, loaded)
}

func TestProcessIsIdempotent(t *testing.T) {
	raw := writeFile(t, "sample.csv", []byte(sampleCSV))
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	in := New(DefaultNormalizeOptions(), nil)

	_, _, err := in.Process(raw, first)
	require.NoError(t, err)
	_, report, err := in.Process(first, second)
	require.NoError(t, err)
	require.Equal(t, FormatText, report.Format)
	require.Zero(t, report.DroppedRows)
	require.Zero(t, report.Duplicates)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestProcessDisguisedWorkbook(t *testing.T) {
	raw := writeFile(t, "disguised.xlsx", []byte(sampleCSV))
	out := filepath.Join(t.TempDir(), "out.txt")

	_, report, err := New(DefaultNormalizeOptions(), nil).Process(raw, out)
	require.NoError(t, err)
	require.Equal(t, FormatCSVDisguisedAsExcel, report.Format)
	require.True(t, report.HasAdvisory(AdvisoryDisguisedCSV))
	require.FileExists(t, out)
}

func TestProcessGenuineWorkbook(t *testing.T) {
	raw := writeWorkbook(t, "real.xlsx", [][]any{
		{"Wavenumber", "Emissivity"},
		{1001, 0.5},
		{1000, 0.6},
	})
	out := filepath.Join(t.TempDir(), "out.txt")

	s, report, err := New(DefaultNormalizeOptions(), nil).Process(raw, out)
	require.NoError(t, err)
	require.Equal(t, FormatExcel, report.Format)
	require.Equal(t, []float64{1000, 1001}, s.Wavenumber)
	require.InDeltaSlice(t, []float64{0.012, 0.01}, s.Uncertainty, 1e-15)
}

func TestProcessFailureLeavesNoFile(t *testing.T) {
	raw := writeFile(t, "bad.csv", []byte("Wavenumber,Emissivity\n-1,0.5\n"))
	out := filepath.Join(t.TempDir(), "out.txt")

	_, _, err := New(DefaultNormalizeOptions(), nil).Process(raw, out)
	require.ErrorIs(t, err, faults.ErrCleaningExhausted)
	require.NoFileExists(t, out)
}

func TestProcessUnknownFormat(t *testing.T) {
	raw := writeFile(t, "data.dat", []byte("1 2\n"))
	_, report, err := New(DefaultNormalizeOptions(), nil).Process(raw, filepath.Join(t.TempDir(), "x.txt"))
	require.ErrorIs(t, err, faults.ErrFormat)
	require.Equal(t, FormatUnknown, report.Format)
}

func TestNewFromConfigUsesIngestSection(t *testing.T) {
	cfg := config.Default()
	cfg.Ingest.RelativeUncertainty = 0.5
	cfg.Ingest.MinPointsWarning = 1
	in := NewFromConfig(&cfg, nil)
	require.Equal(t, 0.5, in.opts.RelativeUncertainty)
	require.Equal(t, 1, in.opts.MinPoints)
}

func TestInspect(t *testing.T) {
	raw := writeFile(t, "sample.csv", []byte(sampleCSV))

	info, err := New(DefaultNormalizeOptions(), nil).Inspect(raw)
	require.NoError(t, err)
	require.Equal(t, FormatCSV, info.Format)
	require.Equal(t, "comma", info.Dialect.Delimiter)
	require.Equal(t, []string{"Wavenumber (cm-1)", "Emissivity", "Std"}, info.Columns)
	require.Equal(t, 5, info.Rows)
	require.Len(t, info.FirstRows, 3)
	require.Equal(t, "1003", info.FirstRows[0]["Wavenumber (cm-1)"])
}
