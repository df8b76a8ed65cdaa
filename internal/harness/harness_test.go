package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pdbrecords/internal/records"
	"github.com/roach88/pdbrecords/internal/testutil"
)

func intPtr(n int) *int { return &n }

func TestRun_SamplePDB(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/sample_pdb.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, testutil.DefaultRunID, result.RunID)
	require.Len(t, result.Trace, 8)

	for i, event := range result.Trace {
		assert.Equal(t, int64(i+1), event.Seq)
	}

	rejected := result.Trace[3]
	assert.Equal(t, OpAdd, rejected.Op)
	assert.Equal(t, OutcomeError, rejected.Outcome)
	assert.Equal(t, string(records.ErrCodeInvalidArgument), rejected.ErrorCode)

	assert.Equal(t, "sample.pdb", result.Final.Path)
	assert.Equal(t, 0, result.Final.Count)
}

func TestRun_NilScenario(t *testing.T) {
	_, err := Run(nil)
	require.Error(t, err)
}

func TestRun_UnknownOpIsExecutionError(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Steps: []Step{{Op: "explode"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0]")
	assert.Contains(t, err.Error(), `unknown op "explode"`)
}

func TestRun_ExpectMismatch(t *testing.T) {
	result, err := Run(&Scenario{
		Name: "mismatch",
		Path: "sample.pdb",
		Steps: []Step{
			{Op: OpInitialize},
			{Op: OpCount, Expect: 4},
			{Op: OpStatistics, Expect: "File: other.pdb, Record Count: 3"},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "steps[1] (count): expected 4, got 3")
	assert.Contains(t, result.Errors[1], "steps[2] (statistics)")
}

func TestRun_ExpectComparesExactCodePoints(t *testing.T) {
	decomposed := "e\u0301"
	composed := "\u00e9"

	result, err := Run(&Scenario{
		Name: "code_points",
		Steps: []Step{
			{Op: OpAdd, Record: decomposed},
			{Op: OpRecords, Expect: []any{composed}},
			{Op: OpFormat, Expect: composed},
			{Op: OpRecords, Expect: []any{decomposed}},
			{Op: OpFormat, Expect: decomposed},
		},
		Assertions: []Assertion{
			{Type: AssertFinalState, Records: []string{decomposed}},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "steps[1] (records)")
	assert.Contains(t, result.Errors[0], `\u0301`)
	assert.Contains(t, result.Errors[1], "steps[2] (format): output mismatch")
}

func TestRun_EmptyRecordsExpect(t *testing.T) {
	result, err := Run(&Scenario{
		Name:  "empty",
		Steps: []Step{{Op: OpRecords, Expect: []any{}}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FormatMismatchShowsDiff(t *testing.T) {
	result, err := Run(&Scenario{
		Name: "format_diff",
		Steps: []Step{
			{Op: OpInitialize},
			{Op: OpFormat, Expect: "HEADER    Sample PDB Record\nTITLE     Wrong\nAUTHOR    PDBFormatsLib"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	msg := result.Errors[0]
	assert.Contains(t, msg, "output mismatch")
	assert.Contains(t, msg, "--- expected")
	assert.Contains(t, msg, "+++ actual")
	assert.Contains(t, msg, "-TITLE     Wrong")
	assert.Contains(t, msg, "+TITLE     PDB Format Library Demo")
}

func TestRun_ExpectErrorNotRaised(t *testing.T) {
	result, err := Run(&Scenario{
		Name:  "no_error",
		Steps: []Step{{Op: OpAdd, Record: "REMARK ok", ExpectError: "INVALID_ARGUMENT"}},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected error INVALID_ARGUMENT, got success")
}

func TestRun_UnexpectedError(t *testing.T) {
	result, err := Run(&Scenario{
		Name:  "unexpected",
		Steps: []Step{{Op: OpAdd}},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "unexpected error INVALID_ARGUMENT")
	assert.Equal(t, 0, result.Final.Count)
}

func TestRun_AllOps(t *testing.T) {
	result, err := Run(&Scenario{
		Name: "all_ops",
		Steps: []Step{
			{Op: OpPath, Expect: ""},
			{Op: OpSetPath, Path: "x.pdb"},
			{Op: OpPath, Expect: "x.pdb"},
			{Op: OpAdd, Record: "REMARK a"},
			{Op: OpAdd, Record: "REMARK a"},
			{Op: OpRecords, Expect: []any{"REMARK a", "REMARK a"}},
			{Op: OpFormat, Expect: "REMARK a\nREMARK a"},
			{Op: OpClear},
			{Op: OpClear},
			{Op: OpFormat, Expect: records.NoRecords},
			{Op: OpStatistics, Expect: "File: x.pdb, Record Count: 0"},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Op: OpClear, Count: 2},
			{Type: AssertFinalState, RecordCount: intPtr(0)},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_WithLoggerAndRunIDGenerator(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result, err := Run(&Scenario{
		Name:  "logged",
		Path:  "sample.pdb",
		Steps: []Step{{Op: OpInitialize}, {Op: OpClear}},
	}, WithLogger(logger), WithRunIDGenerator(UUIDv7Generator{}))
	require.NoError(t, err)

	parsed, err := uuid.Parse(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	logs := buf.String()
	assert.Contains(t, logs, "run_id="+result.RunID)
	assert.Contains(t, logs, "Initialized with 3 sample records")
	assert.Contains(t, logs, "All records cleared")
	assert.Contains(t, logs, "step executed")
	assert.Contains(t, logs, "scenario finished")
	assert.Contains(t, logs, "last_seq=2")
}

func TestRun_ScenarioRunID(t *testing.T) {
	result, err := Run(&Scenario{Name: "pinned", RunID: "run-42", Steps: []Step{{Op: OpCount}}})
	require.NoError(t, err)
	assert.Equal(t, "run-42", result.RunID)
}

func TestRun_FreshStorePerRun(t *testing.T) {
	scenario := &Scenario{
		Name:  "fresh",
		Steps: []Step{{Op: OpAdd, Record: "REMARK once"}, {Op: OpCount, Expect: 1}},
	}

	for i := 0; i < 3; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d: %v", i, result.Errors)
	}
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	gen := UUIDv7Generator{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		assert.Len(t, id, 36)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
