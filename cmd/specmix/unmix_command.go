package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"specmix/internal/journal"
	"specmix/internal/library"
	"specmix/internal/logging"
	"specmix/internal/unmix"
)

type unmixOutput struct {
	RunID           string        `json:"run_id,omitempty"`
	Mixed           string        `json:"mixed"`
	Selected        []string      `json:"selected"`
	Channels        int           `json:"channels"`
	DroppedChannels int           `json:"dropped_channels"`
	MaxWavelength   float64       `json:"max_wavelength,omitempty"`
	Advisories      []string      `json:"advisories,omitempty"`
	Result          *unmix.Result `json:"result"`
}

func newUnmixCommand(ctx *commandContext) *cobra.Command {
	var mixedName string
	var endMembers []string
	var algorithmFlag string
	var maxWavelength float64
	var jsonOutput bool
	var noRecord bool

	cmd := &cobra.Command{
		Use:   "unmix",
		Short: "Unmix a stored mixed spectrum against selected end-members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mixedName = strings.TrimSpace(mixedName)
			if mixedName == "" {
				return fmt.Errorf("--mixed is required")
			}
			selected, err := normalizeSelection(endMembers)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				return unmix.ErrNoSelection
			}
			algName := strings.TrimSpace(algorithmFlag)
			if algName == "" {
				algName = cfg.Unmix.Algorithm
			}
			alg, ok := unmix.ParseAlgorithm(algName)
			if !ok {
				return fmt.Errorf("unknown algorithm %q (want wls or sto)", algName)
			}
			if cmd.Flags().Changed("max-wavelength") && !(maxWavelength > 0) {
				return fmt.Errorf("--max-wavelength must be greater than zero")
			}

			mixedLib, err := ctx.openLibrary(library.KindMixed)
			if err != nil {
				return err
			}
			mixed, err := mixedLib.Load(mixedName)
			if err != nil {
				return fmt.Errorf("load mixed spectrum: %w", err)
			}
			memberLib, err := ctx.openLibrary(library.KindEndMember)
			if err != nil {
				return err
			}
			members := make([]unmix.EndMember, 0, len(selected))
			for _, name := range selected {
				s, err := memberLib.Load(name)
				if err != nil {
					return fmt.Errorf("load end-member: %w", err)
				}
				members = append(members, unmix.EndMember{Name: name, Spectrum: s})
			}

			u := ctx.unmixer()
			ds, err := u.Align(mixedName, mixed, members, maxWavelength)
			if err != nil {
				return err
			}
			res, err := u.Solve(mixedName, ds, alg)
			if err != nil {
				return err
			}

			output := unmixOutput{
				Mixed:           mixedName,
				Selected:        selected,
				Channels:        ds.Channels(),
				DroppedChannels: ds.DroppedChannels,
				MaxWavelength:   ds.MaxWavelength,
				Advisories:      ds.Advisories,
				Result:          res,
			}

			if cfg.Unmix.RecordRuns && !noRecord {
				err := ctx.withJournal(func(store *journal.Store) error {
					run, err := store.Record(cmd.Context(), journal.NewRun(mixedName, selected, ds, res))
					if err != nil {
						return err
					}
					output.RunID = run.ID
					ctx.loggerFor("journal").Info("run recorded",
						logging.RunID(run.ID),
						logging.Spectrum(mixedName),
					)
					return nil
				})
				if err != nil {
					logging.WarnWithContext(ctx.loggerFor("journal"), "run not recorded", "journal_write",
						logging.Spectrum(mixedName),
						logging.String(logging.FieldImpact, "the result is shown but will not appear in `specmix runs`"),
						logging.Error(err),
					)
				}
			}

			if jsonOutput {
				return writeJSON(cmd, output)
			}
			renderUnmixResult(cmd.OutOrStdout(), output, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&mixedName, "mixed", "m", "", "Mixed spectrum to unmix")
	cmd.Flags().StringArrayVarP(&endMembers, "endmember", "e", nil, "End-member to include (repeatable, or comma-separated)")
	cmd.Flags().StringVarP(&algorithmFlag, "algorithm", "a", "", "Unmixing algorithm: wls or sto (defaults to the configured algorithm)")
	cmd.Flags().Float64Var(&maxWavelength, "max-wavelength", 0, "Discard channels beyond this wavelength in µm")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Do not record the run in the journal")
	return cmd
}

// normalizeSelection splits comma-separated values, trims names and rejects
// repeated end-members.
func normalizeSelection(values []string) ([]string, error) {
	var selected []string
	seen := make(map[string]struct{})
	for _, value := range values {
		for _, name := range strings.Split(value, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("end-member %q selected more than once", name)
			}
			seen[name] = struct{}{}
			selected = append(selected, name)
		}
	}
	return selected, nil
}

func renderUnmixResult(out io.Writer, output unmixOutput, colorize bool) {
	res := output.Result
	for _, line := range renderSectionHeader(fmt.Sprintf("%s unmixing of %s", res.Algorithm.Label(), output.Mixed), colorize) {
		fmt.Fprintln(out, line)
	}
	channels := fmt.Sprintf("%d", output.Channels)
	if output.DroppedChannels > 0 {
		channels = fmt.Sprintf("%d (%d dropped)", output.Channels, output.DroppedChannels)
	}
	fmt.Fprintln(out, renderStatusLine("Channels", statusInfo, channels, colorize))
	if output.MaxWavelength > 0 {
		fmt.Fprintln(out, renderStatusLine("Wavelength cutoff", statusInfo, formatCompact(output.MaxWavelength)+" µm", colorize))
	}
	for _, advisory := range output.Advisories {
		fmt.Fprintln(out, renderStatusLine("Range", statusWarn, advisory, colorize))
	}
	for i, round := range res.Pruned {
		fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("Pruned (round %d)", i+1), statusWarn, strings.Join(round, ", "), colorize))
	}

	var normalized []*float64
	if len(res.Normalized) == len(res.Names) && len(res.Normalized) > 0 {
		normalized = make([]*float64, len(res.Normalized))
		for i := range res.Normalized {
			normalized[i] = &res.Normalized[i]
		}
	}
	fmt.Fprintln(out, abundanceTable(res.Names, res.Abundances, res.Errors, normalized))
	fmt.Fprintf(out, "RMS: %s\n", formatFloat(res.RMS, 6))
	if output.RunID != "" {
		fmt.Fprintf(out, "Recorded run %s\n", shortID(output.RunID))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
