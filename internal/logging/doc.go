// Package logging assembles structured slog loggers and formatting helpers used
// across specmix.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes helpers so ingestion and solver code can tag log lines
// with the component, spectrum name and run identifier. Advisories (duplicate
// wavenumbers, range mismatches, few data points) are emitted through
// WarnWithContext so every warning carries its cause and impact. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
