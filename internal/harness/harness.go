package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/roach88/pdbrecords/internal/canonical"
	"github.com/roach88/pdbrecords/internal/records"
	"github.com/roach88/pdbrecords/internal/testutil"
)

// Harness executes scenario steps against one record store.
type Harness struct {
	store  *records.Store
	clock  *testutil.SeqClock
	logger *slog.Logger
}

type runConfig struct {
	logger *slog.Logger
	runIDs RunIDGenerator
}

// Option configures Run.
type Option func(*runConfig)

// WithLogger sets the logger for the run. Logs are discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRunIDGenerator overrides the run ID source. By default the scenario's
// run_id, or testutil.DefaultRunID, is used.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(c *runConfig) {
		if gen != nil {
			c.runIDs = gen
		}
	}
}

// Run executes a scenario against a fresh store and returns the result.
//
// Expectation and assertion failures are reported in Result.Errors; the
// returned error is reserved for scenarios that cannot be executed at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is nil")
	}

	cfg := &runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runIDs: testutil.NewFixedRunIDGenerator(scenario.RunID),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	runID := cfg.runIDs.Generate()
	logger := cfg.logger.With("run_id", runID, "scenario", scenario.Name)

	h := &Harness{
		store:  records.New(scenario.Path, records.WithLogger(logger)),
		clock:  testutil.NewSeqClock(),
		logger: logger,
	}

	result := NewResult(runID)
	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	result.Final = h.store.Snapshot()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	logger.Info("scenario finished", "pass", result.Pass, "last_seq", h.clock.Current(), "errors", len(result.Errors))
	return result, nil
}

func (h *Harness) executeStep(index int, step Step, result *Result) error {
	event := TraceEvent{
		Seq:     h.clock.Next(),
		Op:      step.Op,
		Outcome: OutcomeOK,
	}

	switch step.Op {
	case OpInitialize:
		h.store.Initialize()
	case OpAdd:
		event.Args = map[string]any{"record": step.Record}
		if err := h.store.Add(step.Record); err != nil {
			var re *records.Error
			if !errors.As(err, &re) {
				return err
			}
			event.Outcome = OutcomeError
			event.ErrorCode = string(re.Code)
		}
	case OpCount:
		event.Result = h.store.Count()
	case OpFormat:
		event.Result = h.store.FormatAll()
	case OpClear:
		h.store.Clear()
	case OpStatistics:
		event.Result = h.store.Statistics()
	case OpPath:
		event.Result = h.store.Path()
	case OpSetPath:
		event.Args = map[string]any{"path": step.Path}
		h.store.SetPath(step.Path)
	case OpRecords:
		event.Result = h.store.Records()
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	h.logger.Debug("step executed", "seq", event.Seq, "op", event.Op, "outcome", event.Outcome)
	result.AddEvent(event)

	h.checkExpectations(index, step, event, result)
	return nil
}

// checkExpectations compares a step's outcome with its expect/expect_error.
func (h *Harness) checkExpectations(index int, step Step, event TraceEvent, result *Result) {
	label := fmt.Sprintf("steps[%d] (%s)", index, step.Op)

	switch {
	case step.ExpectError != "":
		if event.ErrorCode != step.ExpectError {
			got := event.ErrorCode
			if got == "" {
				got = "success"
			}
			result.AddError(fmt.Sprintf("%s: expected error %s, got %s", label, step.ExpectError, got))
		}
		return
	case event.Outcome == OutcomeError:
		result.AddError(fmt.Sprintf("%s: unexpected error %s", label, event.ErrorCode))
		return
	}

	if step.Expect == nil {
		return
	}

	want := expectedValue(step.Expect)
	if reflect.DeepEqual(want, event.Result) {
		return
	}

	wantStr, wantIsString := want.(string)
	gotStr, gotIsString := event.Result.(string)
	if step.Op == OpFormat && wantIsString && gotIsString {
		result.AddError(fmt.Sprintf("%s: output mismatch\n%s", label, unifiedDiff(wantStr, gotStr)))
		return
	}

	wantText, gotText := display(want), display(event.Result)
	if wantText == gotText {
		// Equal after NFC normalization; show the exact code points.
		wantText, gotText = fmt.Sprintf("%+q", want), fmt.Sprintf("%+q", event.Result)
	}
	result.AddError(fmt.Sprintf("%s: expected %s, got %s", label, wantText, gotText))
}

// expectedValue converts a decoded YAML list of strings to []string so it can
// be compared with the result of records. Other values are returned as is.
func expectedValue(expect any) any {
	items, ok := expect.([]any)
	if !ok {
		return expect
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return expect
		}
		out[i] = s
	}
	return out
}

// display renders a value for error messages.
func display(v any) string {
	data, err := canonical.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
