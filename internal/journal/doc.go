// Package journal records completed unmixing runs in SQLite.
//
// Each run keeps its identifier, timestamp, algorithm, the mixed spectrum and
// end-member selection, and one row per surviving end-member with abundance,
// 1-σ error and (STO) normalized abundance. The schema version lives in
// PRAGMA user_version; a database from an incompatible build fails to open
// with ErrSchemaMismatch. Writes retry on SQLITE_BUSY with exponential
// backoff.
package journal
