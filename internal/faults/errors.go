package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat marks an unrecognized extension or a workbook that fails to
	// parse for reasons other than disguised CSV content.
	ErrFormat = errors.New("format error")
	// ErrParse marks delimited text that no delimiter/encoding combination
	// could turn into a usable table.
	ErrParse = errors.New("parse error")
	// ErrSchema marks tables with fewer than two usable columns or canonical
	// files missing required columns.
	ErrSchema = errors.New("schema error")
	// ErrCleaningExhausted marks inputs where no row survives validation.
	ErrCleaningExhausted = errors.New("no valid rows")
	// ErrInterpolation marks spectra that cannot be resampled.
	ErrInterpolation = errors.New("interpolation error")
	// ErrDatasetAlignment marks a mixed spectrum and end-member set without a
	// single shared valid channel.
	ErrDatasetAlignment = errors.New("dataset alignment error")
	// ErrSingularMatrix marks a non-invertible or ill-conditioned weighted
	// Gram matrix.
	ErrSingularMatrix = errors.New("singular matrix")
	// ErrNoEndMembersRemaining marks a pruning loop that removed every
	// end-member.
	ErrNoEndMembersRemaining = errors.New("no end-members remaining")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker. The marker should be one of the exported sentinels
// above, or an error that wraps one of them.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrFormat
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a stable label for the failure class of err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrCleaningExhausted):
		return "cleaning_exhausted"
	case errors.Is(err, ErrInterpolation):
		return "interpolation"
	case errors.Is(err, ErrDatasetAlignment):
		return "dataset_alignment"
	case errors.Is(err, ErrSingularMatrix):
		return "singular_matrix"
	case errors.Is(err, ErrNoEndMembersRemaining):
		return "no_endmembers_remaining"
	default:
		return "internal"
	}
}

// Hint returns a short remediation for the failure class of err, or an empty
// string when there is nothing specific to suggest.
func Hint(err error) string {
	switch Kind(err) {
	case "format":
		return "use a .csv, .txt, .xlsx or .xls file"
	case "parse":
		return "check the delimiter and encoding of the file"
	case "schema":
		return "the file needs at least wavenumber and emissivity columns"
	case "cleaning_exhausted":
		return "no row has a positive wavenumber and a numeric emissivity"
	case "interpolation":
		return "end-member spectra need at least two points"
	case "dataset_alignment":
		return "the mixed spectrum and end-members do not overlap; adjust the selection or wavelength cutoff"
	case "singular_matrix":
		return "remove duplicate or collinear end-members and retry"
	case "no_endmembers_remaining":
		return "every end-member was pruned; review the selection"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "spectral processing failure"
	}
	return strings.Join(parts, ": ")
}
