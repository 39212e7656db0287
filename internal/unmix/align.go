package unmix

import (
	"fmt"
	"math"

	"specmix/internal/resample"
	"specmix/internal/spectrum"
)

const maxCutoffMicrons = 100

// EndMember is a named library spectrum selected for unmixing.
type EndMember struct {
	Name     string
	Spectrum *spectrum.Spectrum
}

// Dataset is the solver input: every series shares the same channels and
// holds no NaN.
type Dataset struct {
	Wavenumber  []float64
	Mixed       []float64
	Uncertainty []float64
	Weights     []float64
	// EndMembers has one row per name, each aligned to Wavenumber.
	EndMembers [][]float64
	Names      []string
	// MaxWavelength is the applied cutoff in µm, 0 when none.
	MaxWavelength float64
	// DroppedChannels counts channels removed because some series was NaN.
	DroppedChannels int
	// Advisories holds non-fatal resampling notes, one per affected end-member.
	Advisories []string
}

// Channels returns the number of aligned channels.
func (d *Dataset) Channels() int { return len(d.Wavenumber) }

// Weights returns 1/(u²+eps) for every uncertainty.
func Weights(uncertainty []float64, eps float64) []float64 {
	w := make([]float64, len(uncertainty))
	for i, u := range uncertainty {
		w[i] = 1 / (u*u + eps)
	}
	return w
}

// Align builds a Dataset from the mixed spectrum and the selected
// end-members. When maxWavelength is positive only channels whose wavelength
// (10000/wavenumber) is at most maxWavelength µm are kept.
func Align(mixed *spectrum.Spectrum, members []EndMember, maxWavelength float64, opts Options) (*Dataset, error) {
	if len(members) == 0 {
		return nil, ErrNoSelection
	}
	if mixed.Len() == 0 {
		return nil, spectrum.ErrEmptySpectrum
	}
	if maxWavelength < 0 || maxWavelength > maxCutoffMicrons || math.IsNaN(maxWavelength) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidCutoff, maxWavelength)
	}

	base := mixed
	if maxWavelength > 0 {
		keep := make([]int, 0, mixed.Len())
		for i, wl := range mixed.Wavelengths() {
			if wl <= maxWavelength {
				keep = append(keep, i)
			}
		}
		base = mixed.Subset(keep)
	}

	ds := &Dataset{MaxWavelength: maxWavelength}
	rows := make([][]float64, len(members))
	for k, m := range members {
		values, advisory, err := resample.Interpolate(m.Spectrum, base.Wavenumber)
		if err != nil {
			return nil, fmt.Errorf("resample end-member %q: %w", m.Name, err)
		}
		if advisory != nil {
			ds.Advisories = append(ds.Advisories, m.Name+": "+advisory.String())
		}
		rows[k] = values
	}

	valid := make([]int, 0, base.Len())
	for i := range base.Wavenumber {
		if !usable(base.Emissivity[i]) || !usable(base.Uncertainty[i]) {
			continue
		}
		ok := true
		for _, row := range rows {
			if !usable(row[i]) {
				ok = false
				break
			}
		}
		if ok {
			valid = append(valid, i)
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoOverlap
	}

	cut := base.Subset(valid)
	ds.Wavenumber = cut.Wavenumber
	ds.Mixed = cut.Emissivity
	ds.Uncertainty = cut.Uncertainty
	ds.Weights = Weights(cut.Uncertainty, opts.Epsilon)
	ds.DroppedChannels = base.Len() - len(valid)
	ds.EndMembers = make([][]float64, len(rows))
	ds.Names = make([]string, len(members))
	for k, row := range rows {
		aligned := make([]float64, len(valid))
		for j, i := range valid {
			aligned[j] = row[i]
		}
		ds.EndMembers[k] = aligned
		ds.Names[k] = members[k].Name
	}
	return ds, nil
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
