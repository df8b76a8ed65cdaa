package harness

import "github.com/roach88/pdbrecords/internal/records"

// Step outcomes recorded in the trace.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq       int64          `json:"seq"`
	Op        string         `json:"op"`
	Args      map[string]any `json:"args,omitempty"`
	Outcome   string         `json:"outcome"`
	Result    any            `json:"result,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// RunID correlates the trace with log lines.
	RunID string `json:"run_id"`

	// Trace holds one event per executed step, ordered by Seq.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Final is the store state after the last step.
	Final records.Snapshot `json:"final"`
}

// NewResult creates a passing result for runID.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends an event to the trace.
func (r *Result) AddEvent(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
