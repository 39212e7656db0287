// Package unmix estimates end-member abundances in a mixed emissivity
// spectrum.
//
// Align resamples every selected end-member onto the mixed spectrum's
// wavenumber grid (optionally cut at a maximum wavelength) and drops any
// channel that is not finite in every series, producing a Dataset whose
// weights are 1/(u²+ε).
//
// RunWLS solves the weighted least squares problem A = (E W Eᵀ)⁻¹ E W M and
// RunSTO its sum-to-one constrained variant. Both prune end-members whose
// abundance rounds to zero or below and re-solve until every remaining
// abundance is positive:
//
//	Solve -> Prune? -> Solve ... -> Finalize
//
// A singular or ill-conditioned E W Eᵀ (duplicate or collinear end-members)
// fails with faults.ErrSingularMatrix instead of returning meaningless
// numbers.
package unmix
