// Package resample evaluates spectra on foreign wavenumber grids.
//
// Interpolate fits a natural cubic spline (second derivative zero at both
// ends) through a spectrum's emissivity and evaluates it at target
// wavenumbers. Targets outside the source range are never extrapolated; they
// evaluate to NaN so downstream alignment can drop the channel.
package resample
