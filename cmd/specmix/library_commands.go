package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"specmix/internal/config"
	"specmix/internal/ingest"
	"specmix/internal/library"
	"specmix/internal/spectrum"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var nameFlag string
	var force bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Normalize a raw measurement file into a spectral library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := library.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			rawPath, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			lib, err := ctx.openLibrary(kind)
			if err != nil {
				return err
			}
			name, report, err := lib.Import(cmd.Context(), rawPath, strings.TrimSpace(nameFlag), ctx.ingester(), force)
			if err != nil {
				if errors.Is(err, library.ErrExists) {
					return fmt.Errorf("%w (use --force to replace it)", err)
				}
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, struct {
					Name    string         `json:"name"`
					Library library.Kind   `json:"library"`
					Report  *ingest.Report `json:"report"`
				}{Name: name, Library: kind, Report: report})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Imported %s into the %s library\n", name, kind)
			for _, line := range ingestReportLines(report, colorize) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", string(library.KindEndMember), "Target library: endmember or mixed")
	cmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Name to store the spectrum under (defaults to the file name)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing spectrum with the same name")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Preview how a raw file would be parsed without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := ctx.ingester().Inspect(path)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, info)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader(filepath.Base(path), colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Format", statusInfo, string(info.Format), colorize))
			if info.Dialect.Delimiter != "" {
				fmt.Fprintln(out, renderStatusLine("Delimiter", statusInfo, delimiterLabel(info.Dialect.Delimiter), colorize))
				fmt.Fprintln(out, renderStatusLine("Encoding", statusInfo, info.Dialect.Encoding, colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Columns", statusInfo, fmt.Sprintf("%d", len(info.Columns)), colorize))
			if len(info.FirstRows) == 0 {
				fmt.Fprintln(out, "No data rows")
				return nil
			}
			rows := make([][]string, 0, len(info.FirstRows))
			for _, record := range info.FirstRows {
				row := make([]string, len(info.Columns))
				for i, name := range info.Columns {
					row[i] = record[name]
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(out, renderTable(info.Columns, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list [endmembers|mixed]",
		Short: "List stored spectra",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := []library.Kind{library.KindEndMember, library.KindMixed}
			if len(args) == 1 {
				kind, err := library.ParseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []library.Kind{kind}
			}

			listing := make(map[library.Kind][]string, len(kinds))
			for _, kind := range kinds {
				lib, err := ctx.openLibrary(kind)
				if err != nil {
					return err
				}
				names, err := lib.Names()
				if err != nil {
					return err
				}
				listing[kind] = names
			}

			if jsonOutput {
				return writeJSON(cmd, listing)
			}

			out := cmd.OutOrStdout()
			var rows [][]string
			for _, kind := range kinds {
				for _, name := range listing[kind] {
					rows = append(rows, []string{string(kind), name})
				}
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No spectra stored")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"Library", "Name"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// spectrumSummary is the rendered view of one stored spectrum.
type spectrumSummary struct {
	Name            string       `json:"name"`
	Library         library.Kind `json:"library"`
	Path            string       `json:"path"`
	Points          int          `json:"points"`
	MinWavenumber   float64      `json:"min_wavenumber"`
	MaxWavenumber   float64      `json:"max_wavenumber"`
	MinWavelength   float64      `json:"min_wavelength_um"`
	MaxWavelength   float64      `json:"max_wavelength_um"`
	MeanUncertainty float64      `json:"mean_uncertainty"`
}

func summarizeSpectrum(name string, kind library.Kind, path string, s *spectrum.Spectrum) spectrumSummary {
	lo, hi := s.Range()
	summary := spectrumSummary{
		Name:          name,
		Library:       kind,
		Path:          path,
		Points:        s.Len(),
		MinWavenumber: lo,
		MaxWavenumber: hi,
	}
	if hi > 0 {
		summary.MinWavelength = 10000 / hi
	}
	if lo > 0 {
		summary.MaxWavelength = 10000 / lo
	}
	if n := len(s.Uncertainty); n > 0 {
		var sum float64
		for _, u := range s.Uncertainty {
			sum += u
		}
		summary.MeanUncertainty = sum / float64(n)
	}
	return summary
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <endmember|mixed> <name>",
		Short: "Summarize a stored spectrum",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := library.ParseKind(args[0])
			if err != nil {
				return err
			}
			lib, err := ctx.openLibrary(kind)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[1])
			s, err := lib.Load(name)
			if err != nil {
				return err
			}
			path, _ := lib.Path(name)
			summary := summarizeSpectrum(name, kind, path, s)
			if jsonOutput {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader(fmt.Sprintf("%s (%s)", name, kind), colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "Path:        %s\n", summary.Path)
			fmt.Fprintf(out, "Points:      %d\n", summary.Points)
			fmt.Fprintf(out, "Wavenumber:  %s – %s cm⁻¹\n", formatFloat(summary.MinWavenumber, 2), formatFloat(summary.MaxWavenumber, 2))
			fmt.Fprintf(out, "Wavelength:  %s – %s µm\n", formatFloat(summary.MinWavelength, 3), formatFloat(summary.MaxWavelength, 3))
			fmt.Fprintf(out, "Uncertainty: %s (mean)\n", formatFloat(summary.MeanUncertainty, 5))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <endmember|mixed> <name>",
		Short: "Delete a stored spectrum",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := library.ParseKind(args[0])
			if err != nil {
				return err
			}
			lib, err := ctx.openLibrary(kind)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[1])
			if err := lib.Remove(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the %s library\n", name, kind)
			return nil
		},
	}
}

func newRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <endmember|mixed> <old> <new>",
		Short: "Rename a stored spectrum",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := library.ParseKind(args[0])
			if err != nil {
				return err
			}
			lib, err := ctx.openLibrary(kind)
			if err != nil {
				return err
			}
			oldName := strings.TrimSpace(args[1])
			newName := strings.TrimSpace(args[2])
			if err := lib.Rename(cmd.Context(), oldName, newName); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s in the %s library\n", oldName, newName, kind)
			return nil
		},
	}
}

func delimiterLabel(delimiter string) string {
	switch delimiter {
	case "\t":
		return "tab"
	case ",":
		return "comma"
	case ";":
		return "semicolon"
	case "|":
		return "pipe"
	default:
		return fmt.Sprintf("%q", delimiter)
	}
}
