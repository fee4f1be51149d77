package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fxlab/paramcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	RunID int64 // show one run's checks instead of the run list
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <runs.db>",
		Short: "Show recorded conformance runs",
		Long: `List the runs recorded by "check --record", newest first.
With --run, show the per-check rows of one run.

Examples:
  paramcheck history runs.db
  paramcheck history runs.db --run 3 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.RunID, "run", 0, "show the checks of one run")

	return cmd
}

func runHistory(opts *HistoryOptions, dbPath string, cmd *cobra.Command) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", dbPath))
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.RunID != 0 {
		return showRun(ctx, opts, st, cmd)
	}
	return showRuns(ctx, opts, st, cmd)
}

func showRuns(ctx context.Context, opts *HistoryOptions, st *store.Store, cmd *cobra.Command) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: runs})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		mark := "✓"
		if !r.Pass() {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s run %d: %s (%s) at %s: %d passed, %d failed\n",
			mark, r.ID, r.Instance, r.Implementor,
			r.StartedAt.Format(time.RFC3339), r.Passed, r.Failed)
		if r.Fatal != "" {
			fmt.Fprintf(w, "  aborted: %s\n", r.Fatal)
		}
	}
	return nil
}

func showRun(ctx context.Context, opts *HistoryOptions, st *store.Store, cmd *cobra.Command) error {
	run, checks, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read run %d", opts.RunID), err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: map[string]any{
			"run":    run,
			"checks": checks,
		}})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run %d: %s (%s), band [%d, %d] dB\n",
		run.ID, run.Instance, run.Implementor, run.BandMinDB, run.BandMaxDB)
	for _, c := range checks {
		mark := "✓"
		if !c.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s [%d] %s: expected %s, observed %s", mark, c.Ordinal, c.Value, c.Expected, c.Observed)
		if c.RoundTrip != "" {
			fmt.Fprintf(w, ", got %s", c.RoundTrip)
		}
		fmt.Fprintln(w)
		if c.Detail != "" {
			fmt.Fprintf(w, "      %s\n", c.Detail)
		}
	}
	if run.Fatal != "" {
		fmt.Fprintf(w, "  aborted: %s\n", run.Fatal)
	}
	return nil
}
