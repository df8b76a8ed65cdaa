package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/pdbrecords/internal/harness"
	"github.com/roach88/pdbrecords/internal/store"
	"github.com/roach88/pdbrecords/internal/testutil"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// RunID pins the run ID. When empty, the scenario's run_id is used, and
	// when that is empty too a fresh UUIDv7 is generated.
	RunID string

	// Database is an optional SQLite trace log the run is appended to.
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario-file>",
		Short: "Run one scenario and print its trace",
		Long: `Run a scenario file against a fresh record store and print the trace.

Exit codes:
  0 - All expectations and assertions held
  1 - The scenario failed
  2 - The scenario could not be loaded

Examples:
  pdbrecords run ./scenarios/sample_pdb.yaml
  pdbrecords run ./scenarios/sample_pdb.yaml --run-id run-001 --format json
  pdbrecords run ./scenarios/sample_pdb.yaml --db ./traces.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "fixed run ID for the trace")
	cmd.Flags().StringVar(&opts.Database, "db", "", "append the trace to this SQLite database")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		if formatter.IsJSON() {
			_ = formatter.Error(ErrCodeScenarioLoad, err.Error(), map[string]string{"file": path})
		}
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	var gen harness.RunIDGenerator = harness.UUIDv7Generator{}
	switch {
	case opts.RunID != "":
		gen = testutil.NewFixedRunIDGenerator(opts.RunID)
	case scenario.RunID != "":
		gen = testutil.NewFixedRunIDGenerator(scenario.RunID)
	}

	result, err := harness.Run(scenario, harness.WithLogger(logger), harness.WithRunIDGenerator(gen))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to execute scenario", err)
	}
	formatter.VerboseLog("scenario %s finished with %d steps", scenario.Name, len(result.Trace))

	if opts.Database != "" {
		if err := appendRun(opts.Database, scenario.Name, result, logger); err != nil {
			return err
		}
		formatter.VerboseLog("trace %s written to %s", result.RunID, opts.Database)
	}

	if formatter.IsJSON() {
		if result.Pass {
			return formatter.Success(result)
		}
		if err := formatter.Error(ErrCodeScenarioFailed, fmt.Sprintf("scenario %s failed", scenario.Name), result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Scenario: %s (run %s)\n", scenario.Name, result.RunID)
	writeTrace(w, result.Trace)
	fmt.Fprintln(w)

	if !result.Pass {
		fmt.Fprintf(w, "✗ %s failed\n", scenario.Name)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}

	fmt.Fprintf(w, "✓ %s passed\n", scenario.Name)
	return nil
}

// appendRun writes a finished run to the trace log at path.
// A run ID that is already recorded keeps its first trace; a warning is
// logged.
func appendRun(path, scenarioName string, result *harness.Result, logger *slog.Logger) error {
	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	inserted, err := st.WriteRun(context.Background(), scenarioName, result)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record trace", err)
	}
	if !inserted {
		logger.Warn("run already recorded, trace not written", "run_id", result.RunID, "db", path)
	}
	return nil
}

// writeTrace prints one line per trace event.
func writeTrace(w io.Writer, trace []harness.TraceEvent) {
	for _, event := range trace {
		fmt.Fprintf(w, "  [%d] %s", event.Seq, event.Op)
		if rec, ok := event.Args["record"]; ok {
			fmt.Fprintf(w, " %q", rec)
		}
		if p, ok := event.Args["path"]; ok {
			fmt.Fprintf(w, " %q", p)
		}
		if event.Outcome == harness.OutcomeError {
			fmt.Fprintf(w, " -> %s", event.ErrorCode)
		} else if event.Result != nil {
			fmt.Fprintf(w, " => %q", fmt.Sprint(event.Result))
		}
		fmt.Fprintln(w)
	}
}
