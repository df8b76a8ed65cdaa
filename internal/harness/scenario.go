package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of record store operations with
// expectations and assertions.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Path is the store's path label. Empty means no label.
	Path string `yaml:"path,omitempty"`

	// RunID pins the run ID recorded in the trace.
	// If empty, testutil.DefaultRunID is used so golden files stay stable.
	RunID string `yaml:"run_id,omitempty"`

	// Steps are executed in order against a fresh store.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated against the trace and the final store state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is a single store operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Record is the argument to add. A missing record is the empty string,
	// which the store rejects. An explicit null is a schema error.
	Record string `yaml:"record,omitempty"`

	// Path is the argument to set_path.
	Path string `yaml:"path,omitempty"`

	// Expect is the expected result: an int for count, a list of strings for
	// records and a string for everything else that returns a value.
	Expect any `yaml:"expect,omitempty"`

	// ExpectError is the expected error code, e.g. "INVALID_ARGUMENT".
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Store operations a step can perform.
const (
	OpInitialize = "initialize"
	OpAdd        = "add"
	OpCount      = "count"
	OpFormat     = "format"
	OpClear      = "clear"
	OpStatistics = "statistics"
	OpPath       = "path"
	OpSetPath    = "set_path"
	OpRecords    = "records"
)

// returnsValue reports whether op yields a result that Expect can check.
func returnsValue(op string) bool {
	switch op {
	case OpCount, OpFormat, OpStatistics, OpPath, OpRecords:
		return true
	}
	return false
}

// Assertion validates the trace or the final store state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op is the operation (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Ops is the expected operation order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Record optionally narrows trace_contains to an add of this record.
	Record string `yaml:"record,omitempty"`

	// Count is the exact number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// RecordCount is the expected final record count (final_state).
	RecordCount *int `yaml:"record_count,omitempty"`

	// Records is the exact expected final record sequence (final_state).
	Records []string `yaml:"records,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads, schema-checks and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario parses scenario YAML. filename is used in error positions.
//
// The data is first validated against the embedded CUE schema, then decoded
// strictly (unknown fields rejected) and checked for cross-field rules the
// schema does not express.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	if err := validateSchema(filename, data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and per-op rules.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	switch step.Op {
	case OpInitialize, OpAdd, OpCount, OpFormat, OpClear, OpStatistics, OpPath, OpSetPath, OpRecords:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if step.Expect != nil && !returnsValue(step.Op) {
		return fmt.Errorf("steps[%d]: %s returns no value to expect", index, step.Op)
	}
	if step.ExpectError != "" && step.Op != OpAdd {
		return fmt.Errorf("steps[%d]: only add can fail, expect_error not allowed on %s", index, step.Op)
	}
	if step.ExpectError != "" && step.Expect != nil {
		return fmt.Errorf("steps[%d]: expect and expect_error are mutually exclusive", index)
	}
	if step.Record != "" && step.Op != OpAdd {
		return fmt.Errorf("steps[%d]: record is only valid for add", index)
	}
	if step.Path != "" && step.Op != OpSetPath {
		return fmt.Errorf("steps[%d]: path is only valid for set_path", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.RecordCount == nil && a.Records == nil {
			return fmt.Errorf("assertions[%d]: record_count or records is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
