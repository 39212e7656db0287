package unmix

import (
	"strings"

	"specmix/internal/config"
)

// Algorithm selects the unmixing variant.
type Algorithm string

const (
	// WLS is weighted least squares with non-negativity pruning.
	WLS Algorithm = "wls"
	// STO is WLS constrained so abundances sum to one.
	STO Algorithm = "sto"
)

// ParseAlgorithm maps a case-insensitive name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, bool) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case WLS:
		return WLS, true
	case STO:
		return STO, true
	default:
		return "", false
	}
}

// Label returns the display name of a.
func (a Algorithm) Label() string {
	return strings.ToUpper(string(a))
}

// Options tunes alignment and solving.
type Options struct {
	// RoundDecimals is the precision abundances are rounded to before the
	// non-positive test.
	RoundDecimals int
	// Epsilon is added to u² when building weights.
	Epsilon float64
	// MinRCond is the smallest acceptable reciprocal condition number of
	// E W Eᵀ.
	MinRCond float64
	// BlackbodyName is the end-member excluded from STO normalized
	// abundances.
	BlackbodyName string
}

// DefaultOptions returns the stock solver settings.
func DefaultOptions() Options {
	return Options{
		RoundDecimals: 2,
		Epsilon:       1e-12,
		MinRCond:      1e-12,
		BlackbodyName: "BB",
	}
}

// OptionsFromConfig reads the [unmix] configuration section.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	opts.RoundDecimals = cfg.Unmix.RoundDecimals
	opts.Epsilon = cfg.Unmix.UncertaintyEpsilon
	opts.MinRCond = cfg.Unmix.MinRCond
	opts.BlackbodyName = cfg.Unmix.BlackbodyName
	return opts
}
