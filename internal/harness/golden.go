package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pdbrecords/internal/canonical"
)

// TraceSnapshot is the golden representation of a scenario run.
type TraceSnapshot struct {
	ScenarioName string
	RunID        string
	Trace        []TraceEvent
	FinalPath    string
	FinalRecords []string
}

// toCanonicalMap converts the snapshot to the map form canonical.Marshal
// accepts. Absent optional fields are omitted rather than encoded as null.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq":     event.Seq,
			"op":      event.Op,
			"outcome": event.Outcome,
		}
		if event.Args != nil {
			eventMap["args"] = event.Args
		}
		if event.Result != nil {
			eventMap["result"] = event.Result
		}
		if event.ErrorCode != "" {
			eventMap["error_code"] = event.ErrorCode
		}
		traceList[i] = eventMap
	}

	final := map[string]any{
		"count":   len(s.FinalRecords),
		"records": s.FinalRecords,
	}
	if s.FinalPath != "" {
		final["path"] = s.FinalPath
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"run_id":        s.RunID,
		"trace":         traceList,
		"final":         final,
	}
}

// GoldenBytes returns the canonical JSON golden content for a result.
func GoldenBytes(scenarioName string, result *Result) ([]byte, error) {
	records := result.Final.Records
	if records == nil {
		records = []string{}
	}
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		RunID:        result.RunID,
		Trace:        result.Trace,
		FinalPath:    result.Final.Path,
		FinalRecords: records,
	}
	return canonical.Marshal(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its trace with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := GoldenBytes(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
