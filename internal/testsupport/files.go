package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"specmix/internal/spectrum"
)

// Synthetic builds a spectrum on the grid start, start+step, ... <= stop with
// emissivity f(wavenumber) and a constant uncertainty.
func Synthetic(start, stop, step float64, uncertainty float64, f func(wn float64) float64) *spectrum.Spectrum {
	s := &spectrum.Spectrum{}
	for i := 0; ; i++ {
		wn := start + float64(i)*step
		if wn > stop {
			break
		}
		s.Wavenumber = append(s.Wavenumber, wn)
		s.Emissivity = append(s.Emissivity, f(wn))
		s.Uncertainty = append(s.Uncertainty, uncertainty)
	}
	return s
}

// WriteSpectrum writes s as a canonical spectrum file at path.
func WriteSpectrum(t testing.TB, path string, s *spectrum.Spectrum) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := spectrum.Write(path, s); err != nil {
		t.Fatalf("write spectrum %s: %v", path, err)
	}
}

// WriteRawCSV writes s as a comma-separated raw measurement file with the
// given header names and returns its path.
func WriteRawCSV(t testing.TB, dir, name string, header []string, s *spectrum.Spectrum) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	for i := range s.Wavenumber {
		b.WriteString(strconv.FormatFloat(s.Wavenumber[i], 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(s.Emissivity[i], 'g', -1, 64))
		if len(header) > 2 {
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(s.Uncertainty[i], 'g', -1, 64))
		}
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
