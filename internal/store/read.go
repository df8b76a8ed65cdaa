package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pdbrecords/internal/harness"
	"github.com/roach88/pdbrecords/internal/records"
)

// ErrRunNotFound is returned when no run is recorded under a run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is a recorded scenario execution.
type Run struct {
	RunID    string               `json:"run_id"`
	Scenario string               `json:"scenario"`
	Pass     bool                 `json:"pass"`
	Errors   []string             `json:"errors"`
	Final    records.Snapshot     `json:"final"`
	Trace    []harness.TraceEvent `json:"trace"`
}

// RunSummary describes a recorded run without its trace.
type RunSummary struct {
	RunID    string `json:"run_id"`
	Scenario string `json:"scenario"`
	Pass     bool   `json:"pass"`
	Events   int    `json:"events"`
}

// ReadRun retrieves a run and its trace by run ID.
// Returns an error wrapping ErrRunNotFound if the run is not recorded.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, scenario, pass, errors, final_path, final_records
		FROM runs
		WHERE run_id = ?
	`, runID)

	var (
		run         Run
		errorsJSON  string
		finalPath   string
		recordsJSON string
	)
	err := row.Scan(&run.RunID, &run.Scenario, &run.Pass, &errorsJSON, &finalPath, &recordsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", runID, err)
	}

	if run.Errors, err = unmarshalStrings(errorsJSON); err != nil {
		return Run{}, fmt.Errorf("read run %s: errors: %w", runID, err)
	}
	finalRecords, err := unmarshalStrings(recordsJSON)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: final records: %w", runID, err)
	}
	run.Final = records.Snapshot{
		Path:    finalPath,
		Records: finalRecords,
		Count:   len(finalRecords),
	}

	if run.Trace, err = s.readTrace(ctx, runID); err != nil {
		return Run{}, err
	}
	return run, nil
}

// readTrace returns the trace events of a run ordered by seq.
// Returns an empty slice (not nil) if the run has no events.
func (s *Store) readTrace(ctx context.Context, runID string) ([]harness.TraceEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, op, args, outcome, result, error_code
		FROM trace_events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trace events: %w", err)
	}
	defer rows.Close()

	trace := []harness.TraceEvent{}
	for rows.Next() {
		var (
			event      harness.TraceEvent
			argsJSON   sql.NullString
			resultJSON sql.NullString
		)
		if err := rows.Scan(&event.Seq, &event.Op, &argsJSON, &event.Outcome, &resultJSON, &event.ErrorCode); err != nil {
			return nil, fmt.Errorf("scan trace event: %w", err)
		}
		if event.Args, err = unmarshalArgs(argsJSON); err != nil {
			return nil, fmt.Errorf("trace event seq %d: %w", event.Seq, err)
		}
		if event.Result, err = unmarshalResult(event.Op, resultJSON); err != nil {
			return nil, fmt.Errorf("trace event seq %d: %w", event.Seq, err)
		}
		trace = append(trace, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace events: %w", err)
	}
	return trace, nil
}

// ListRuns returns a summary of every recorded run in the order they were
// written. Returns an empty slice (not nil) for an empty log.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.scenario, r.pass, COUNT(e.seq)
		FROM runs r
		LEFT JOIN trace_events e ON e.run_id = r.run_id
		GROUP BY r.id
		ORDER BY r.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	summaries := []RunSummary{}
	for rows.Next() {
		var sum RunSummary
		if err := rows.Scan(&sum.RunID, &sum.Scenario, &sum.Pass, &sum.Events); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}
