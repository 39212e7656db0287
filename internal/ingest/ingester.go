package ingest

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"specmix/internal/config"
	"specmix/internal/faults"
	"specmix/internal/logging"
	"specmix/internal/spectrum"
)

const inspectPreviewRows = 10

// Ingester runs detection, reading, normalization and the canonical write for
// raw spectrum files.
type Ingester struct {
	opts   NormalizeOptions
	logger *slog.Logger
}

// New constructs an Ingester. A nil logger discards output.
func New(opts NormalizeOptions, logger *slog.Logger) *Ingester {
	return &Ingester{opts: opts, logger: logging.NewComponentLogger(logger, "ingest")}
}

// NewFromConfig constructs an Ingester using the [ingest] configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Ingester {
	opts := DefaultNormalizeOptions()
	if cfg != nil {
		opts.RelativeUncertainty = cfg.Ingest.RelativeUncertainty
		opts.MinPoints = cfg.Ingest.MinPointsWarning
	}
	return New(opts, logger)
}

// Read detects the format of path and parses it into a Table.
func (in *Ingester) Read(path string) (*Table, *Report, error) {
	report := &Report{Source: path}
	format, err := Detect(path)
	if err != nil {
		return nil, report, err
	}
	report.Format = format
	in.logger.Debug("detected file format",
		logging.Spectrum(filepath.Base(path)),
		logging.Stage("detect"),
		logging.String("format", string(format)),
	)

	var table *Table
	switch format {
	case FormatExcel:
		table, err = ReadWorkbook(path)
	case FormatCSVDisguisedAsExcel:
		report.advise(AdvisoryDisguisedCSV,
			"%s appears to be a CSV file with a spreadsheet extension, reading as CSV", filepath.Base(path))
		table, report.Dialect, err = ReadDelimited(path)
	case FormatCSV:
		table, report.Dialect, err = ReadDelimited(path)
	case FormatText:
		table, report.Dialect, err = ReadText(path)
	default:
		err = unsupportedFormat(path)
	}
	if err != nil {
		return nil, report, err
	}
	return table, report, nil
}

// Process ingests the raw file at rawPath and atomically writes the canonical
// spectrum to outPath. outPath is left untouched when any stage fails.
func (in *Ingester) Process(rawPath, outPath string) (*spectrum.Spectrum, *Report, error) {
	table, report, err := in.Read(rawPath)
	if err != nil {
		in.logFailure(rawPath, "read", err)
		return nil, report, err
	}

	s, err := Normalize(table, in.opts, report)
	in.logAdvisories(rawPath, report)
	if err != nil {
		in.logFailure(rawPath, "normalize", err)
		return nil, report, err
	}

	if err := spectrum.Write(outPath, s); err != nil {
		err = fmt.Errorf("write canonical spectrum: %w", err)
		in.logFailure(rawPath, "write", err)
		return nil, report, err
	}

	lo, hi := s.Range()
	in.logger.Info("spectrum ingested",
		logging.Spectrum(filepath.Base(rawPath)),
		logging.Stage("write"),
		logging.String("output", outPath),
		logging.String("format", string(report.Format)),
		logging.Int("points", report.Points),
		logging.Float64("wavenumber_min", lo),
		logging.Float64("wavenumber_max", hi),
	)
	return s, report, nil
}

func (in *Ingester) logAdvisories(path string, report *Report) {
	for _, a := range report.Advisories {
		logging.WarnWithContext(in.logger, a.Message, a.Code,
			logging.Spectrum(filepath.Base(path)),
			logging.Stage("normalize"),
			logging.String(logging.FieldImpact, "ingestion continued"),
		)
	}
}

func (in *Ingester) logFailure(path, stage string, err error) {
	logging.ErrorWithContext(in.logger, "ingestion failed", faults.Kind(err),
		logging.Spectrum(filepath.Base(path)),
		logging.Stage(stage),
		logging.String(logging.FieldErrorHint, faults.Hint(err)),
		logging.Error(err),
	)
}

// FileInfo is a preview of a raw file produced without writing anything.
type FileInfo struct {
	Format    Format              `json:"format"`
	Dialect   Dialect             `json:"dialect"`
	Columns   []string            `json:"columns"`
	Rows      int                 `json:"preview_rows"`
	FirstRows []map[string]string `json:"first_rows"`
}

// Inspect detects and parses path and returns its columns together with up to
// ten preview rows, the first three of which are returned by column name.
func (in *Ingester) Inspect(path string) (*FileInfo, error) {
	table, report, err := in.Read(path)
	if err != nil {
		return nil, err
	}
	preview := table.Head(inspectPreviewRows)
	info := &FileInfo{
		Format:  report.Format,
		Dialect: report.Dialect,
		Columns: append([]string(nil), table.Columns...),
		Rows:    preview.NumRows(),
	}
	for _, row := range preview.Head(3).Rows {
		record := make(map[string]string, len(table.Columns))
		for i, name := range table.Columns {
			record[name] = row[i]
		}
		info.FirstRows = append(info.FirstRows, record)
	}
	return info, nil
}
