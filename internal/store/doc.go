// Package store provides SQLite-backed durable storage for scenario run
// traces.
//
// The store is an append-only log with:
//   - Runs: one row per scenario execution, keyed by run ID, with the
//     pass/fail verdict, expectation errors and the final record store state
//   - Trace events: the ordered steps of a run, keyed by (run_id, seq)
//
// The record store itself is never persisted. Only what the harness observed
// while driving it is written.
//
// # Ordering
//
// Runs are listed in the order they were written (autoincrement id). Trace
// events are read back ORDER BY seq ASC, the harness's logical clock, never by
// wall time.
//
// # Idempotency
//
// Run IDs are unique. Writing a run whose ID is already recorded is a no-op,
// so re-running a scenario with a pinned run_id keeps the first trace.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Trace events must belong to a recorded run
package store
