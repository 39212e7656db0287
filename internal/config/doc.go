// Package config loads, normalizes, and validates specmix configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SPECMIX_DATA_DIR environment
// fallback. The Config type centralizes the library directories, ingest
// defaults and solver tunables so the CLI can discover them in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
