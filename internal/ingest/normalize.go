package ingest

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"specmix/internal/faults"
	"specmix/internal/spectrum"
	"specmix/internal/textutil"
)

// ErrEmptyAfterCleaning reports that no row survived cleaning.
var ErrEmptyAfterCleaning = fmt.Errorf("%w: no valid data rows remaining after cleaning", faults.ErrCleaningExhausted)

type role int

const (
	roleWavenumber role = iota
	roleEmissivity
	roleUncertainty
	roleCount
)

func (r role) String() string {
	switch r {
	case roleWavenumber:
		return "wavenumber"
	case roleEmissivity:
		return "emissivity"
	default:
		return "uncertainty"
	}
}

type columnRule struct {
	role     role
	keywords []string
}

// columnRules are tried in order for every column; a column takes the first
// unassigned role with a keyword contained in its folded name.
var columnRules = []columnRule{
	{roleWavenumber, []string{"wavenumber", "wave number", "wavenum", "frequency", "freq", "cm-1", "cm^-1"}},
	{roleEmissivity, []string{"emissivity", "emiss", "emit", "reflectance", "refl", "intensity", "signal"}},
	{roleUncertainty, []string{"uncertainty", "error", "uncert", "std", "sigma", "deviation"}},
}

// NormalizeOptions tunes cleaning.
type NormalizeOptions struct {
	// RelativeUncertainty is the fraction of |emissivity| used when no usable
	// uncertainty column exists.
	RelativeUncertainty float64
	// MinPoints is the point count below which an advisory is raised.
	MinPoints int
}

// DefaultNormalizeOptions returns the stock 2% relative uncertainty and ten
// point advisory threshold.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{RelativeUncertainty: 0.02, MinPoints: 10}
}

// Normalize maps table columns to spectrum roles and cleans the rows. The
// returned spectrum satisfies spectrum.Spectrum.Validate. Column choices,
// counts and advisories are recorded on report.
func Normalize(table *Table, opts NormalizeOptions, report *Report) (*spectrum.Spectrum, error) {
	if report == nil {
		report = &Report{}
	}
	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: file is empty", faults.ErrSchema)
	}
	if len(table.Columns) < 2 {
		return nil, fmt.Errorf("%w: file must have at least 2 columns (wavenumber and emissivity)", faults.ErrSchema)
	}

	cols := identifyColumns(table.Columns, report)

	wn := coerceColumn(table.Column(cols[roleWavenumber]))
	em := coerceColumn(table.Column(cols[roleEmissivity]))

	var unc []float64
	if idx := cols[roleUncertainty]; idx >= 0 {
		candidate := coerceColumn(table.Column(idx))
		if anyNumeric(candidate) {
			unc = candidate
			report.Columns.Uncertainty = table.Columns[idx]
		} else {
			report.advise(AdvisorySynthesizedUncertainty,
				"uncertainty column %q has no numeric values, using %g relative uncertainty",
				table.Columns[idx], opts.RelativeUncertainty)
		}
	} else {
		report.advise(AdvisorySynthesizedUncertainty,
			"no uncertainty column found, using %g relative uncertainty", opts.RelativeUncertainty)
	}
	if unc == nil {
		report.Columns.Synthesized = true
		unc = make([]float64, len(em))
		for i, v := range em {
			unc[i] = opts.RelativeUncertainty * math.Abs(v)
		}
	}

	report.InputRows = len(table.Rows)
	rows := make([][3]float64, 0, len(table.Rows))
	for i := range table.Rows {
		w, e, u := wn[i], em[i], unc[i]
		if math.IsNaN(w) || math.IsNaN(e) {
			continue
		}
		if !(w > 0) || !(u >= 0) {
			continue
		}
		if math.IsInf(w, 0) || math.IsInf(e, 0) || math.IsInf(u, 0) {
			continue
		}
		rows = append(rows, [3]float64{w, e, u})
	}
	report.DroppedRows = report.InputRows - len(rows)
	if report.DroppedRows > 0 {
		report.advise(AdvisoryRowsDropped, "removed %d invalid rows during cleaning", report.DroppedRows)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyAfterCleaning
	}

	slices.SortStableFunc(rows, func(a, b [3]float64) int { return cmp.Compare(a[0], b[0]) })
	deduped := rows[:1]
	for _, r := range rows[1:] {
		if r[0] == deduped[len(deduped)-1][0] {
			continue
		}
		deduped = append(deduped, r)
	}
	report.Duplicates = len(rows) - len(deduped)
	if report.Duplicates > 0 {
		report.advise(AdvisoryDuplicateWavenumbers,
			"found %d duplicate wavenumber values, keeping first occurrence", report.Duplicates)
	}

	report.Points = len(deduped)
	if opts.MinPoints > 0 && report.Points < opts.MinPoints {
		report.advise(AdvisoryFewPoints,
			"only %d data points after processing, this may be insufficient for analysis", report.Points)
	}

	out := &spectrum.Spectrum{
		Wavenumber:  make([]float64, len(deduped)),
		Emissivity:  make([]float64, len(deduped)),
		Uncertainty: make([]float64, len(deduped)),
	}
	for i, r := range deduped {
		out.Wavenumber[i], out.Emissivity[i], out.Uncertainty[i] = r[0], r[1], r[2]
	}
	return out, nil
}

// identifyColumns returns the column index for each role, -1 when a role has
// no column. Unmatched wavenumber and emissivity roles fall back to columns 0
// and 1, uncertainty to column 2 when the table has one.
func identifyColumns(columns []string, report *Report) [roleCount]int {
	cols := [roleCount]int{-1, -1, -1}
	for i, name := range columns {
		folded := textutil.FoldHeader(name)
		for _, rule := range columnRules {
			if cols[rule.role] >= 0 || !containsAny(folded, rule.keywords) {
				continue
			}
			cols[rule.role] = i
			break
		}
	}

	fallback := [roleCount]int{0, 1, 2}
	for r := roleWavenumber; r < roleCount; r++ {
		if cols[r] >= 0 {
			continue
		}
		if fallback[r] >= len(columns) {
			continue
		}
		cols[r] = fallback[r]
		report.advise(AdvisoryPositionalColumn, "no %s column detected by name, using column %d %q",
			r, fallback[r]+1, columns[fallback[r]])
	}

	report.Columns.Wavenumber = columns[cols[roleWavenumber]]
	report.Columns.Emissivity = columns[cols[roleEmissivity]]
	return cols
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func coerceColumn(cells []string) []float64 {
	out := make([]float64, len(cells))
	for i, cell := range cells {
		v, ok := Coerce(cell)
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

func anyNumeric(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}
