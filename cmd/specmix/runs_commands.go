package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"specmix/internal/journal"
	"specmix/internal/logging"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and manage recorded unmixing runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsDeleteCommand(ctx))
	runsCmd.AddCommand(newRunsClearCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var mixed string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				runs, err := store.List(cmd.Context(), strings.TrimSpace(mixed), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []*journal.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunsTable(runs))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&mixed, "mixed", "m", "", "Only list runs of this mixed spectrum")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderRunsTable(runs []*journal.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		names := make([]string, 0, len(run.Abundances))
		for _, a := range run.Abundances {
			names = append(names, a.EndMember)
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.CreatedAt.Local().Format(time.DateTime),
			strings.ToUpper(run.Algorithm),
			run.Mixed,
			strings.Join(names, ", "),
			formatFloat(run.RMS, 6),
		})
	}
	return renderTable(
		[]string{"ID", "Created", "Algorithm", "Mixed", "End-members", "RMS"},
		rows,
		5,
	)
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recorded run (a unique id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withJournal(func(store *journal.Store) error {
				run, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", id)
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}
				out := cmd.OutOrStdout()
				renderRun(out, run, shouldColorize(out))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderRun(out io.Writer, run *journal.Run, colorize bool) {
	for _, line := range renderSectionHeader(fmt.Sprintf("Run %s", run.ID), colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Created:    %s\n", run.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Algorithm:  %s\n", strings.ToUpper(run.Algorithm))
	fmt.Fprintf(out, "Mixed:      %s\n", run.Mixed)
	fmt.Fprintf(out, "Selected:   %s\n", strings.Join(run.Selected, ", "))
	fmt.Fprintf(out, "Channels:   %d\n", run.Channels)
	if run.MaxWavelength > 0 {
		fmt.Fprintf(out, "Cutoff:     %s µm\n", formatCompact(run.MaxWavelength))
	}
	for i, round := range run.Pruned {
		fmt.Fprintf(out, "Pruned %d:   %s\n", i+1, strings.Join(round, ", "))
	}

	names := make([]string, len(run.Abundances))
	abundances := make([]float64, len(run.Abundances))
	errs := make([]float64, len(run.Abundances))
	var normalized []*float64
	for i, a := range run.Abundances {
		names[i], abundances[i], errs[i] = a.EndMember, a.Abundance, a.Error
		if a.Normalized != nil && normalized == nil {
			normalized = make([]*float64, len(run.Abundances))
		}
	}
	if normalized != nil {
		for i := range run.Abundances {
			normalized[i] = run.Abundances[i].Normalized
		}
	}
	fmt.Fprintln(out, abundanceTable(names, abundances, errs, normalized))
	fmt.Fprintf(out, "RMS: %s\n", formatFloat(run.RMS, 6))
}

func newRunsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withJournal(func(store *journal.Store) error {
				removed, err := store.Delete(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("run %s not found", id)
				}
				ctx.loggerFor("journal").Info("run deleted", logging.RunID(id))
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
				return nil
			})
		},
	}
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear the run journal without --force")
			}
			return ctx.withJournal(func(store *journal.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d runs\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Confirm clearing the journal")
	return cmd
}
