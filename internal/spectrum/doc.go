// Package spectrum defines the canonical Spectrum type and its on-disk
// representation.
//
// A canonical spectrum file is tab-separated text with the header
// "Wavenumber\tEmissivity\tUncertainty" followed by one row per channel,
// wavenumber strictly ascending, no blank lines and no quoting. Write is the
// only producer of that format and always replaces files atomically; Load
// re-validates what it reads so hand-edited files cannot smuggle non-finite
// values or unsorted rows into the solver.
package spectrum
