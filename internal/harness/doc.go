// Package harness runs scripted scenarios against a record store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: sample_pdb
//	description: "Initialize, add a remark, clear"
//	path: sample.pdb
//	steps:
//	  - op: initialize
//	  - op: statistics
//	    expect: "File: sample.pdb, Record Count: 3"
//	  - op: add
//	    record: "REMARK custom"
//	  - op: add
//	    expect_error: INVALID_ARGUMENT
//	  - op: count
//	    expect: 4
//	  - op: clear
//	assertions:
//	  - type: trace_order
//	    ops: [initialize, add, clear]
//	  - type: final_state
//	    record_count: 0
//
// Files are validated against an embedded CUE schema (scenario.cue) before
// they are decoded, so typos and bad ops are reported with a file position.
//
// # Steps
//
// initialize, add, count, format, clear, statistics, path, set_path and
// records map one-to-one onto records.Store methods. expect compares the
// step's result through canonical JSON; a mismatched format result is shown
// as a unified diff.
//
// # Assertion Types
//
//   - trace_contains: op appears in the trace (optionally an add of record)
//   - trace_order: ops appear in the given order, gaps allowed
//   - trace_count: op appears exactly count times
//   - final_state: final record_count and/or exact records
//
// # Deterministic Testing
//
// Each run uses a fresh store, a logical clock for trace seq values and a
// fixed run ID (scenario run_id, or testutil.DefaultRunID), so golden files
// are byte-identical across runs. Live runs can pass UUIDv7Generator through
// WithRunIDGenerator.
package harness
