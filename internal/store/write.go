package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/pdbrecords/internal/harness"
)

// WriteRun appends a scenario run and its trace in a single transaction.
// Returns whether a new run was inserted.
//
// Uses ON CONFLICT(run_id) DO NOTHING for idempotency: if the run ID is
// already recorded, nothing is written and inserted=false.
func (s *Store) WriteRun(ctx context.Context, scenario string, result *harness.Result) (inserted bool, err error) {
	if result == nil {
		return false, fmt.Errorf("write run: result is nil")
	}
	if result.RunID == "" {
		return false, fmt.Errorf("write run: run ID is empty")
	}

	errorsJSON, err := marshalStrings(result.Errors)
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}
	recordsJSON, err := marshalStrings(result.Final.Records)
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, scenario, pass, errors, final_path, final_records)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`,
		result.RunID,
		scenario,
		result.Pass,
		errorsJSON,
		result.Final.Path,
		recordsJSON,
	)
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write run: rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	for _, event := range result.Trace {
		if err := writeTraceEvent(ctx, tx, result.RunID, event); err != nil {
			return false, fmt.Errorf("write run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write run: commit: %w", err)
	}
	return true, nil
}

// writeTraceEvent inserts one trace event of runID within tx.
func writeTraceEvent(ctx context.Context, tx *sql.Tx, runID string, event harness.TraceEvent) error {
	argsJSON, err := marshalArgs(event.Args)
	if err != nil {
		return err
	}
	resultJSON, err := marshalResult(event.Result)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trace_events
		(run_id, seq, op, args, outcome, result, error_code)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		event.Seq,
		event.Op,
		argsJSON,
		event.Outcome,
		resultJSON,
		event.ErrorCode,
	)
	if err != nil {
		return fmt.Errorf("trace event seq %d: %w", event.Seq, err)
	}
	return nil
}
