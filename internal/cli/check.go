package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fxlab/paramcheck/internal/catalog"
	"github.com/fxlab/paramcheck/internal/checker"
	"github.com/fxlab/paramcheck/internal/param"
	"github.com/fxlab/paramcheck/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Record string // path of the history database, empty to skip recording
	Levels []int  // extra level values beyond the boundary sweep
	Mutes  []bool // extra mute values beyond the default sweep
}

// InstanceResult holds the result of sweeping one instance.
type InstanceResult struct {
	Instance string   `json:"instance"`
	TestName string   `json:"test_name"`
	Pass     bool     `json:"pass"`
	Passed   int      `json:"passed"`
	Failed   int      `json:"failed"`
	Fatal    string   `json:"fatal,omitempty"`
	Failures []string `json:"failures,omitempty"`
	RunID    int64    `json:"run_id,omitempty"`
}

// CheckResult holds the overall check result.
type CheckResult struct {
	Instances []InstanceResult `json:"instances"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <catalog.cue>",
		Short: "Run the boundary sweep against every catalog instance",
		Long: `Run the parameter conformance sweep against every instance in a catalog.

For each instance the sweep exercises the level boundary values
(band min-1, band min, an interior value, band max, band max+1) and
both mute variants, verifying accept/reject decisions against the
instance's reported capability and round-trip equality on accepts.

Exit codes:
  0 - All instances conform
  1 - One or more checks failed or a run aborted
  2 - Command error (bad catalog, unreadable database, etc.)

Examples:
  paramcheck check ./catalog.cue
  paramcheck check ./catalog.cue --record runs.db
  paramcheck check ./catalog.cue --level -42 --mute true --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Record, "record", "", "record runs into a history database")
	cmd.Flags().IntSliceVar(&opts.Levels, "level", nil, "extra level values (dB) to queue")
	cmd.Flags().BoolSliceVar(&opts.Mutes, "mute", nil, "extra mute values to queue")

	return cmd
}

func runCheck(opts *CheckOptions, catalogPath string, cmd *cobra.Command) error {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	var st *store.Store
	if opts.Record != "" {
		st, err = store.Open(opts.Record)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open history database", err)
		}
		defer st.Close()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	values := checker.DefaultValues(cat.Band)
	for _, l := range opts.Levels {
		values = append(values, param.Level(l))
	}
	for _, m := range opts.Mutes {
		values = append(values, param.Mute(m))
	}

	chk := checker.New(checker.WithBand(cat.Band), checker.WithLogger(logger))
	factory := cat.Factory()

	result := CheckResult{Total: len(cat.Instances)}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, desc := range factory.Instances() {
		eff, closer, err := factory.Create(desc)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to create instance %s", desc.Name), err)
		}

		startedAt := time.Now()
		report, evalErr := chk.Evaluate(ctx, eff, values)
		if err := closer(); err != nil {
			logger.Warn("failed to close instance", "instance", desc.Name, "error", err)
		}

		inst := InstanceResult{
			Instance: desc.Name,
			TestName: desc.TestName(),
			Pass:     report.Pass(),
			Passed:   report.Passed,
			Failed:   report.Failed,
			Failures: report.FailureDetails(),
		}
		if evalErr != nil {
			inst.Fatal = evalErr.Error()
		}

		if st != nil {
			runID, err := st.WriteRun(ctx, desc, report, startedAt)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to record run", err)
			}
			inst.RunID = runID
		}

		result.Instances = append(result.Instances, inst)
		if inst.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputCheckJSON(cmd, result)
	}
	return outputCheckText(cmd, result)
}

func outputCheckJSON(cmd *cobra.Command, result CheckResult) error {
	status := "ok"
	response := CLIResponse{Status: status, Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_CHECK_FAILED",
			Message: fmt.Sprintf("%d instance(s) failed", result.Failed),
		}
	}

	if err := writeJSON(cmd.OutOrStdout(), response); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d instance(s) failed", result.Failed))
	}
	return nil
}

func outputCheckText(cmd *cobra.Command, result CheckResult) error {
	w := cmd.OutOrStdout()

	for _, inst := range result.Instances {
		if inst.Pass {
			fmt.Fprintf(w, "✓ %s (%d checks)\n", inst.Instance, inst.Passed)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%d passed, %d failed)\n", inst.Instance, inst.Passed, inst.Failed)
		for _, f := range inst.Failures {
			fmt.Fprintf(w, "  %s\n", f)
		}
		if inst.Fatal != "" {
			fmt.Fprintf(w, "  aborted: %s\n", inst.Fatal)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d instance(s) failed", result.Failed))
	}
	fmt.Fprintln(w, "✓ All instances conform")
	return nil
}
