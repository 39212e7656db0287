package spectrum

import (
	"fmt"
	"math"
)

// Column headers of the canonical file, in order.
const (
	ColumnWavenumber  = "Wavenumber"
	ColumnEmissivity  = "Emissivity"
	ColumnUncertainty = "Uncertainty"
)

// Spectrum is a single emissivity measurement indexed by wavenumber (cm⁻¹).
// The three slices have equal length. Wavenumber is strictly increasing and
// positive; Uncertainty is non-negative; every value is finite.
type Spectrum struct {
	Wavenumber  []float64
	Emissivity  []float64
	Uncertainty []float64
}

// Len returns the number of channels.
func (s *Spectrum) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Wavenumber)
}

// Validate checks the structural invariants of s.
func (s *Spectrum) Validate() error {
	if s == nil || len(s.Wavenumber) == 0 {
		return ErrEmptySpectrum
	}
	n := len(s.Wavenumber)
	if len(s.Emissivity) != n || len(s.Uncertainty) != n {
		return fmt.Errorf("%w: column lengths differ (%d/%d/%d)", ErrInvalidSpectrum,
			n, len(s.Emissivity), len(s.Uncertainty))
	}
	for i := 0; i < n; i++ {
		wn, em, u := s.Wavenumber[i], s.Emissivity[i], s.Uncertainty[i]
		if !finite(wn) || !finite(em) || !finite(u) {
			return fmt.Errorf("%w: non-finite value at row %d", ErrInvalidSpectrum, i)
		}
		if wn <= 0 {
			return fmt.Errorf("%w: non-positive wavenumber %g at row %d", ErrInvalidSpectrum, wn, i)
		}
		if u < 0 {
			return fmt.Errorf("%w: negative uncertainty %g at row %d", ErrInvalidSpectrum, u, i)
		}
		if i > 0 && wn <= s.Wavenumber[i-1] {
			return fmt.Errorf("%w: wavenumber not strictly increasing at row %d", ErrInvalidSpectrum, i)
		}
	}
	return nil
}

// Wavelengths returns the channel wavelengths in micrometres (10000 / wavenumber).
func (s *Spectrum) Wavelengths() []float64 {
	out := make([]float64, s.Len())
	for i, wn := range s.Wavenumber {
		out[i] = 10000 / wn
	}
	return out
}

// Range returns the smallest and largest wavenumber. Both are NaN for an empty
// spectrum.
func (s *Spectrum) Range() (float64, float64) {
	if s.Len() == 0 {
		return math.NaN(), math.NaN()
	}
	return s.Wavenumber[0], s.Wavenumber[len(s.Wavenumber)-1]
}

// Clone returns a deep copy of s.
func (s *Spectrum) Clone() *Spectrum {
	if s == nil {
		return nil
	}
	return &Spectrum{
		Wavenumber:  append([]float64(nil), s.Wavenumber...),
		Emissivity:  append([]float64(nil), s.Emissivity...),
		Uncertainty: append([]float64(nil), s.Uncertainty...),
	}
}

// Subset returns the channels at the given indices, in index order.
func (s *Spectrum) Subset(indices []int) *Spectrum {
	out := &Spectrum{
		Wavenumber:  make([]float64, len(indices)),
		Emissivity:  make([]float64, len(indices)),
		Uncertainty: make([]float64, len(indices)),
	}
	for j, i := range indices {
		out.Wavenumber[j] = s.Wavenumber[i]
		out.Emissivity[j] = s.Emissivity[i]
		out.Uncertainty[j] = s.Uncertainty[i]
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
