package spectrum_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"specmix/internal/faults"
	"specmix/internal/spectrum"
)

func writeText(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spectrum.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCanonical(t *testing.T) {
	path := writeText(t, "Wavenumber\tEmissivity\tUncertainty\n1000\t0.95\t0.01\n1001\t0.96\t0.02\n")

	s, err := spectrum.Load(path)
	require.NoError(t, err)
	require.Equal(t, []float64{1000, 1001}, s.Wavenumber)
	require.Equal(t, []float64{0.95, 0.96}, s.Emissivity)
	require.Equal(t, []float64{0.01, 0.02}, s.Uncertainty)
	require.NoError(t, s.Validate())
}

func TestLoadDropsInvalidRowsAndResorts(t *testing.T) {
	content := strings.Join([]string{
		"Wavenumber\tEmissivity\tUncertainty",
		"1002\t0.90\t0.01",
		"1000\tn/a\t0.01",
		"1001\t0.91\tinf",
		"999\t0.92",
		"998\t0.93\t0.02",
		"",
	}, "\n")
	s, dropped, err := spectrum.Decode(strings.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, 3, dropped)
	if diff := cmp.Diff([]float64{998, 1002}, s.Wavenumber); diff != "" {
		t.Fatalf("wavenumber mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingColumns(t *testing.T) {
	path := writeText(t, "Wavenumber\tEmissivity\n1000\t0.95\n")

	_, err := spectrum.Load(path)
	require.ErrorIs(t, err, spectrum.ErrMissingColumns)
	require.ErrorIs(t, err, faults.ErrSchema)
	require.Contains(t, err.Error(), "Uncertainty")
}

func TestLoadEmptySpectrum(t *testing.T) {
	path := writeText(t, "Wavenumber\tEmissivity\tUncertainty\nx\ty\tz\n")

	_, err := spectrum.Load(path)
	require.ErrorIs(t, err, spectrum.ErrEmptySpectrum)
	require.ErrorIs(t, err, faults.ErrCleaningExhausted)
}

func TestLoadRejectsOverlongRow(t *testing.T) {
	_, _, err := spectrum.Decode(strings.NewReader("Wavenumber\tEmissivity\tUncertainty\n1\t2\t3\t4\n"))
	require.ErrorIs(t, err, faults.ErrParse)
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := spectrum.Load(writeText(t, ""))
	require.ErrorIs(t, err, spectrum.ErrMissingColumns)
}

func TestWriteThenLoadIsIdempotent(t *testing.T) {
	s := &spectrum.Spectrum{
		Wavenumber:  []float64{400.5, 1000, 1234.5678901234},
		Emissivity:  []float64{0.1, 0.95, 1.0 / 3.0},
		Uncertainty: []float64{0.002, 1e-5, 0},
	}
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")

	require.NoError(t, spectrum.Write(first, s))
	loaded, err := spectrum.Load(first)
	require.NoError(t, err)
	if diff := cmp.Diff(s, loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, spectrum.Write(second, loaded))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
	require.True(t, strings.HasPrefix(string(a), "Wavenumber\tEmissivity\tUncertainty\n"))
}

func TestWriteRejectsInvalidSpectrumWithoutTouchingFile(t *testing.T) {
	path := writeText(t, "original")
	bad := &spectrum.Spectrum{
		Wavenumber:  []float64{1001, 1000},
		Emissivity:  []float64{0.9, 0.9},
		Uncertainty: []float64{0.01, 0.01},
	}

	err := spectrum.Write(path, bad)
	require.Error(t, err)
	require.True(t, errors.Is(err, spectrum.ErrInvalidSpectrum))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "original", string(got))
}

func TestDecodeEnforcesSpectrumInvariants(t *testing.T) {
	content := strings.Join([]string{
		"Wavenumber\tEmissivity\tUncertainty",
		"1000\t0.5\t0.01",
		"1000\t0.6\t0.01",
		"-5\t0.7\t-1",
		"0\t0.7\t0.01",
		"1005\t0.75\t-0.5",
		"1010\t0.8\t0.01",
		"",
	}, "\n")
	s, dropped, err := spectrum.Decode(strings.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, 4, dropped)
	require.Equal(t, []float64{1000, 1010}, s.Wavenumber)
	require.Equal(t, []float64{0.5, 0.8}, s.Emissivity)
	require.Equal(t, []float64{0.01, 0.01}, s.Uncertainty)
	require.NoError(t, s.Validate())
}
