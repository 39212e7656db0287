// Package faults defines the error taxonomy shared by the ingestion pipeline,
// the spectrum store, the resampler and the unmixing solver.
//
// Each failure class is a sentinel marker. Components build concrete errors
// with Wrap, which keeps the marker and any underlying cause reachable through
// errors.Is, and prefixes the message with the stage and operation that
// failed. Kind maps an error back to a stable label for CLI output and the
// run journal.
//
// Advisories (duplicate wavenumbers, range mismatches, few data points) are
// not errors and never flow through this package.
package faults
