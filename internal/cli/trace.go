package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pdbrecords/internal/harness"
	"github.com/roach88/pdbrecords/internal/records"
	"github.com/roach88/pdbrecords/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Op       string // optional - filter to specific op
}

// TraceResult holds the trace of one recorded run.
type TraceResult struct {
	RunID    string               `json:"run_id"`
	Scenario string               `json:"scenario"`
	Pass     bool                 `json:"pass"`
	Timeline []harness.TraceEvent `json:"timeline"`
	Errors   []string             `json:"errors"`
	Final    records.Snapshot     `json:"final"`
	Stats    TraceStats           `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int `json:"total_events"`
	ErrorEvents int `json:"error_events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Query recorded scenario runs",
		Long: `Query the trace log written by "run --db".

Without --run-id, lists every recorded run. With --run-id, shows the
run's timeline, its verdict and the final record store state.

Examples:
  pdbrecords trace --db ./traces.db
  pdbrecords trace --db ./traces.db --run-id run-001
  pdbrecords trace --db ./traces.db --run-id run-001 --op add
  pdbrecords trace --db ./traces.db --run-id run-001 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "run ID to trace")
	cmd.Flags().StringVar(&opts.Op, "op", "", "filter the timeline to one op")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		return listRuns(ctx, st, formatter)
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		if formatter.IsJSON() {
			return formatter.Success(TraceResult{
				RunID:    opts.RunID,
				Timeline: []harness.TraceEvent{},
				Errors:   []string{},
				Final:    records.Snapshot{Records: []string{}},
			})
		}
		fmt.Fprintf(formatter.Writer, "No trace found for run: %s\n", opts.RunID)
		return nil
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	result := TraceResult{
		RunID:    run.RunID,
		Scenario: run.Scenario,
		Pass:     run.Pass,
		Timeline: buildTimeline(run.Trace, opts.Op),
		Errors:   run.Errors,
		Final:    run.Final,
	}
	result.Stats.TotalEvents = len(result.Timeline)
	for _, event := range result.Timeline {
		if event.Outcome == harness.OutcomeError {
			result.Stats.ErrorEvents++
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	outputTraceText(formatter, result)
	return nil
}

// buildTimeline returns the events of trace, keeping only op when set.
func buildTimeline(trace []harness.TraceEvent, op string) []harness.TraceEvent {
	timeline := []harness.TraceEvent{}
	for _, event := range trace {
		if op != "" && event.Op != op {
			continue
		}
		timeline = append(timeline, event)
	}
	return timeline
}

// listRuns prints every recorded run.
func listRuns(ctx context.Context, st *store.Store, f *OutputFormatter) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if f.IsJSON() {
		return f.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	fmt.Fprintln(f.Writer, "Recorded runs:")
	for _, run := range runs {
		fmt.Fprintf(f.Writer, "  %s  %s  %s  %d events\n", run.RunID, run.Scenario, passStatus(run.Pass), run.Events)
	}
	return nil
}

// outputTraceText outputs the trace result as text.
func outputTraceText(f *OutputFormatter, result TraceResult) {
	w := f.Writer

	fmt.Fprintf(w, "Trace for Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Scenario: %s\n", result.Scenario)
	fmt.Fprintf(w, "Status: %s\n", passStatus(result.Pass))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	} else {
		writeTrace(w, result.Timeline)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Final State ===")
	path := result.Final.Path
	if path == "" {
		path = records.PathNotSpecified
	}
	fmt.Fprintf(w, "  Path: %s\n", path)
	fmt.Fprintf(w, "  Records: %d\n", result.Final.Count)
	fmt.Fprintln(w)

	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "=== Errors ===")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Error Events: %d\n", result.Stats.ErrorEvents)
}

// passStatus returns a human-readable verdict.
func passStatus(pass bool) string {
	if pass {
		return "passed"
	}
	return "failed"
}
