package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", event.Seq, event.Op)
		if rec, ok := event.Args["record"]; ok {
			fmt.Fprintf(&buf, " %q", rec)
		}
		if event.Outcome == OutcomeError {
			fmt.Fprintf(&buf, " -> %s", event.ErrorCode)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertFinalState:
		return assertFinalState(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertTraceContains checks that op was executed, optionally as an add of
// a specific record.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Op != a.Op {
			continue
		}
		if a.Record == "" || event.Args["record"] == a.Record {
			return nil
		}
	}

	expected := fmt.Sprintf("op %s", a.Op)
	if a.Record != "" {
		expected = fmt.Sprintf("op %s with record %q", a.Op, a.Record)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the ops occur in the given order. Other ops
// may appear in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Ops) && event.Op == a.Ops[next] {
			next++
		}
	}
	if next == len(a.Ops) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("ops in order: %v", a.Ops),
		Actual:   fmt.Sprintf("matched %v, then no %s", a.Ops[:next], a.Ops[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that op was executed exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == a.Op {
			count++
		}
	}
	if count == a.Count {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("op %s executed %d times", a.Op, a.Count),
		Actual:   fmt.Sprintf("executed %d times", count),
		Trace:    trace,
	}
}

// assertFinalState checks the store after the last step.
func assertFinalState(result *Result, a Assertion) error {
	if a.RecordCount != nil && result.Final.Count != *a.RecordCount {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("record count %d", *a.RecordCount),
			Actual:   fmt.Sprintf("record count %d", result.Final.Count),
			Trace:    result.Trace,
		}
	}
	if a.Records != nil && !slices.Equal(result.Final.Records, a.Records) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("records %q", a.Records),
			Actual:   fmt.Sprintf("records %q", result.Final.Records),
			Trace:    result.Trace,
		}
	}
	return nil
}
