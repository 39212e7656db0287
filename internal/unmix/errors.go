package unmix

import (
	"fmt"

	"specmix/internal/faults"
)

var (
	// ErrNoOverlap reports that alignment left no shared valid channel.
	ErrNoOverlap = fmt.Errorf("%w: no overlapping spectral range found between the mixed spectrum and all selected end-members", faults.ErrDatasetAlignment)
	// ErrInvalidCutoff reports a maximum wavelength outside (0, 100] µm.
	ErrInvalidCutoff = fmt.Errorf("%w: maximum wavelength must be in (0, 100] µm", faults.ErrDatasetAlignment)
	// ErrNoSelection reports an alignment or solve request without end-members.
	ErrNoSelection = fmt.Errorf("%w: select at least one end-member spectrum", faults.ErrDatasetAlignment)
)
