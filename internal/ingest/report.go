package ingest

import "fmt"

// Advisory codes. Advisories never fail an ingestion.
const (
	AdvisoryDisguisedCSV           = "disguised_csv"
	AdvisoryPositionalColumn       = "positional_column"
	AdvisorySynthesizedUncertainty = "synthesized_uncertainty"
	AdvisoryRowsDropped            = "rows_dropped"
	AdvisoryDuplicateWavenumbers   = "duplicate_wavenumbers"
	AdvisoryFewPoints              = "few_points"
)

// Advisory is a non-fatal observation made while ingesting a file.
type Advisory struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ColumnMapping names the source columns chosen for each role.
type ColumnMapping struct {
	Wavenumber  string `json:"wavenumber"`
	Emissivity  string `json:"emissivity"`
	Uncertainty string `json:"uncertainty,omitempty"`
	// Synthesized is set when uncertainty was derived from emissivity.
	Synthesized bool `json:"synthesized"`
}

// Report summarizes one ingestion.
type Report struct {
	Source      string        `json:"source"`
	Format      Format        `json:"format"`
	Dialect     Dialect       `json:"dialect"`
	Columns     ColumnMapping `json:"columns"`
	InputRows   int           `json:"input_rows"`
	DroppedRows int           `json:"dropped_rows"`
	Duplicates  int           `json:"duplicates"`
	Points      int           `json:"points"`
	Advisories  []Advisory    `json:"advisories,omitempty"`
}

func (r *Report) advise(code, format string, args ...any) {
	r.Advisories = append(r.Advisories, Advisory{Code: code, Message: fmt.Sprintf(format, args...)})
}

// HasAdvisory reports whether an advisory with code was recorded.
func (r *Report) HasAdvisory(code string) bool {
	for _, a := range r.Advisories {
		if a.Code == code {
			return true
		}
	}
	return false
}
