package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"specmix/internal/faults"
	"specmix/internal/spectrum"
)

func linearSpectrum(start, step float64, n int) *spectrum.Spectrum {
	s := &spectrum.Spectrum{}
	for i := 0; i < n; i++ {
		wn := start + float64(i)*step
		s.Wavenumber = append(s.Wavenumber, wn)
		s.Emissivity = append(s.Emissivity, 0.5+0.001*wn)
		s.Uncertainty = append(s.Uncertainty, 0.01)
	}
	return s
}

func TestInterpolateExactGridFastPath(t *testing.T) {
	src := &spectrum.Spectrum{
		Wavenumber:  []float64{1000, 1001, 1002},
		Emissivity:  []float64{0.9, 0.1, 0.7},
		Uncertainty: []float64{0, 0, 0},
	}
	got, advisory, err := Interpolate(src, []float64{1000, 1001, 1002})
	require.NoError(t, err)
	require.Nil(t, advisory)
	require.Equal(t, src.Emissivity, got)

	got[0] = 42
	require.Equal(t, 0.9, src.Emissivity[0])
}

func TestInterpolateSinglePointExactGrid(t *testing.T) {
	src := &spectrum.Spectrum{Wavenumber: []float64{1000}, Emissivity: []float64{0.9}, Uncertainty: []float64{0}}
	got, _, err := Interpolate(src, []float64{1000})
	require.NoError(t, err)
	require.Equal(t, []float64{0.9}, got)
}

func TestInterpolateReproducesLinearData(t *testing.T) {
	src := linearSpectrum(1000, 2, 50)
	targets := []float64{1001, 1010.5, 1050, 1097.9}

	got, advisory, err := Interpolate(src, targets)
	require.NoError(t, err)
	require.Nil(t, advisory)
	for i, x := range targets {
		require.InDelta(t, 0.5+0.001*x, got[i], 1e-9)
	}
}

func TestInterpolateNeverExtrapolates(t *testing.T) {
	src := linearSpectrum(1000, 1, 401)
	targets := []float64{999.5, 1000, 1200, 1400, 1400.01, 1500}

	got, advisory, err := Interpolate(src, targets)
	require.NoError(t, err)
	require.NotNil(t, advisory)
	require.Equal(t, 1000.0, advisory.SourceMin)
	require.Equal(t, 1400.0, advisory.SourceMax)
	require.Equal(t, 1500.0, advisory.TargetMax)
	require.Contains(t, advisory.String(), "extends beyond")

	require.True(t, math.IsNaN(got[0]))
	require.False(t, math.IsNaN(got[1]))
	require.False(t, math.IsNaN(got[2]))
	require.False(t, math.IsNaN(got[3]))
	require.True(t, math.IsNaN(got[4]))
	require.True(t, math.IsNaN(got[5]))
}

func TestInterpolateInsufficientPoints(t *testing.T) {
	src := &spectrum.Spectrum{Wavenumber: []float64{1000}, Emissivity: []float64{0.9}, Uncertainty: []float64{0}}
	_, _, err := Interpolate(src, []float64{1000, 1001})
	require.ErrorIs(t, err, ErrInsufficientPoints)
	require.ErrorIs(t, err, faults.ErrInterpolation)
}

func TestInterpolateIsPure(t *testing.T) {
	src := linearSpectrum(1000, 5, 10)
	before := src.Clone()
	_, _, err := Interpolate(src, []float64{1002.5, 1007.5})
	require.NoError(t, err)
	require.Equal(t, before, src)
}

func TestInterpolateRejectsUnsortedSource(t *testing.T) {
	for name, grid := range map[string][]float64{
		"duplicate":  {1000, 1000, 1010},
		"descending": {1010, 1005, 1000},
	} {
		t.Run(name, func(t *testing.T) {
			src := &spectrum.Spectrum{
				Wavenumber:  grid,
				Emissivity:  []float64{0.5, 0.6, 0.8},
				Uncertainty: []float64{0.01, 0.01, 0.01},
			}
			require.NotPanics(t, func() {
				_, _, err := Interpolate(src, []float64{1002, 1004})
				require.ErrorIs(t, err, ErrUnsortedSource)
				require.ErrorIs(t, err, faults.ErrInterpolation)
			})
		})
	}
}
