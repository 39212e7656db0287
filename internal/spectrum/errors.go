package spectrum

import (
	"fmt"

	"specmix/internal/faults"
)

var (
	// ErrMissingColumns reports a canonical file without all three required headers.
	ErrMissingColumns = fmt.Errorf("%w: missing required columns", faults.ErrSchema)
	// ErrEmptySpectrum reports a canonical file with no valid rows.
	ErrEmptySpectrum = fmt.Errorf("%w: spectrum is empty", faults.ErrCleaningExhausted)
	// ErrInvalidSpectrum reports an in-memory spectrum that breaks an invariant.
	ErrInvalidSpectrum = fmt.Errorf("%w: invalid spectrum", faults.ErrSchema)
)
