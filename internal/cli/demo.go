package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pdbrecords/internal/records"
)

// DefaultCustomRecord is the record the demo adds after initialization.
const DefaultCustomRecord = "REMARK    Custom record added from ConsoleApp"

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*RootOptions
	Path   string // store path label
	Record string // custom record to add
	Wait   bool   // wait for Enter before exiting
}

// DemoResult is the JSON payload of the demo command.
type DemoResult struct {
	Path            string   `json:"path"`
	Statistics      string   `json:"statistics"`
	CountAfterAdd   int      `json:"count_after_add"`
	Records         []string `json:"records"`
	CountAfterClear int      `json:"count_after_clear"`
	Notifications   []string `json:"notifications"`
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Exercise the record store and print a transcript",
		Long: `Exercise the record store the way the original console application did:
initialize the sample records, print statistics, add a custom record,
list all records, show the path label, then clear the store.

Examples:
  pdbrecords demo
  pdbrecords demo --path 1abc.pdb --record "REMARK    hello"
  pdbrecords demo --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "sample.pdb", "path label for the store")
	cmd.Flags().StringVar(&opts.Record, "record", DefaultCustomRecord, "custom record to add")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "wait for Enter before exiting")

	return cmd
}

func runDemo(opts *DemoOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Text output interleaves notifications with the transcript; JSON only
	// collects them.
	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		w = io.Discard
	}

	var notifications []string
	store := records.New(opts.Path,
		records.WithLogger(newLogger(cmd.ErrOrStderr(), opts.Verbose)),
		records.WithNotify(func(msg string) {
			notifications = append(notifications, msg)
			fmt.Fprintln(w, msg)
		}),
	)

	fmt.Fprintln(w, "PDB Formats Console Application")
	fmt.Fprintln(w, "================================")
	fmt.Fprintln(w)

	store.Initialize()
	fmt.Fprintln(w)

	result := DemoResult{Path: store.Path(), Statistics: store.Statistics()}
	fmt.Fprintln(w, "Statistics:")
	fmt.Fprintln(w, result.Statistics)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Adding a custom record...")
	if err := store.Add(opts.Record); err != nil {
		if formatter.IsJSON() {
			_ = formatter.Error(ErrCodeInvalidRecord, err.Error(), map[string]string{"record": opts.Record})
		}
		return WrapExitError(ExitCommandError, "failed to add record", err)
	}
	result.CountAfterAdd = store.Count()
	fmt.Fprintf(w, "New record count: %d\n", result.CountAfterAdd)
	fmt.Fprintln(w)

	result.Records = store.Records()
	fmt.Fprintln(w, "All Records:")
	fmt.Fprintln(w, "------------")
	fmt.Fprintln(w, store.FormatAll())
	fmt.Fprintln(w)

	fmt.Fprintf(w, "File Path Property: %s\n", store.Path())
	fmt.Fprintln(w)

	store.Clear()
	result.CountAfterClear = store.Count()
	fmt.Fprintf(w, "Record count after clear: %d\n", result.CountAfterClear)
	fmt.Fprintln(w)

	formatter.VerboseLog("demo finished: %d notifications", len(notifications))

	if formatter.IsJSON() {
		result.Notifications = notifications
		return formatter.Success(result)
	}

	if opts.Wait {
		fmt.Fprintln(w, "Press any key to exit...")
		if err := waitForEnter(cmd.InOrStdin()); err != nil {
			return WrapExitError(ExitCommandError, "failed to read input", err)
		}
	}
	return nil
}

// waitForEnter blocks until a line (or EOF) is read from r.
func waitForEnter(r io.Reader) error {
	_, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
