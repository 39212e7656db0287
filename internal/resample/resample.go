package resample

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"specmix/internal/faults"
	"specmix/internal/spectrum"
)

// ErrInsufficientPoints reports a source spectrum with fewer than two points.
var ErrInsufficientPoints = fmt.Errorf("%w: need at least 2 data points for interpolation", faults.ErrInterpolation)

// ErrUnsortedSource reports a source grid that is not strictly increasing.
var ErrUnsortedSource = fmt.Errorf("%w: source grid must be strictly increasing", faults.ErrInterpolation)

// RangeAdvisory notes that the target grid extends past the source grid.
// Targets outside the source range evaluate to NaN.
type RangeAdvisory struct {
	SourceMin, SourceMax float64
	TargetMin, TargetMax float64
}

func (a *RangeAdvisory) String() string {
	return fmt.Sprintf("target range (%.1f-%.1f) extends beyond source range (%.1f-%.1f), points outside range will be NaN",
		a.TargetMin, a.TargetMax, a.SourceMin, a.SourceMax)
}

// Interpolate returns the emissivity of src evaluated at targets. When
// targets equal the source grid element-wise the source emissivity is
// returned as is (copied). The advisory is nil unless some target lies
// outside the source range.
func Interpolate(src *spectrum.Spectrum, targets []float64) ([]float64, *RangeAdvisory, error) {
	if src == nil {
		return nil, nil, ErrInsufficientPoints
	}
	if len(src.Wavenumber) != len(src.Emissivity) {
		return nil, nil, fmt.Errorf("%w: wavenumber and emissivity lengths differ", faults.ErrInterpolation)
	}
	if floats.Equal(src.Wavenumber, targets) {
		return slices.Clone(src.Emissivity), nil, nil
	}
	if len(src.Wavenumber) < 2 {
		return nil, nil, ErrInsufficientPoints
	}

	for i := 1; i < len(src.Wavenumber); i++ {
		if !(src.Wavenumber[i] > src.Wavenumber[i-1]) {
			return nil, nil, fmt.Errorf("%w: source wavenumbers not strictly increasing at index %d (%g after %g)",
				ErrUnsortedSource, i, src.Wavenumber[i], src.Wavenumber[i-1])
		}
	}

	lo, hi := floats.Min(src.Wavenumber), floats.Max(src.Wavenumber)

	var advisory *RangeAdvisory
	if len(targets) > 0 {
		tlo, thi := floats.Min(targets), floats.Max(targets)
		if tlo < lo || thi > hi {
			advisory = &RangeAdvisory{SourceMin: lo, SourceMax: hi, TargetMin: tlo, TargetMax: thi}
		}
	}

	var spline interp.NaturalCubic
	if err := spline.Fit(src.Wavenumber, src.Emissivity); err != nil {
		return nil, nil, faults.Wrap(faults.ErrInterpolation, "resample", "fit spline", "", err)
	}

	out := make([]float64, len(targets))
	for i, x := range targets {
		if math.IsNaN(x) || x < lo || x > hi {
			out[i] = math.NaN()
			continue
		}
		out[i] = spline.Predict(x)
	}
	return out, advisory, nil
}
