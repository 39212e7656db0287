// Package ingest turns raw spectral measurement files into canonical spectra.
//
// The pipeline has three stages:
//
//   - Detect classifies a file as excel, csv, txt, csv_disguised_as_excel or
//     unknown from its extension and, for workbooks, a probe parse.
//   - ReadDelimited and ReadText parse delimited text into a Table. The
//     delimited reader tries every delimiter and encoding pair and keeps the
//     highest scoring parse; workbooks are read with excelize (.xlsx) or
//     extrame/xls (.xls).
//   - Normalizer maps the Table's columns onto wavenumber, emissivity and
//     uncertainty, cleans the rows and produces a spectrum.Spectrum.
//
// Ingester wires the stages together, writes the canonical file atomically
// and reports every non-fatal advisory both in the returned Report and through
// the structured logger.
package ingest
