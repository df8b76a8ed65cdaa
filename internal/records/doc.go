// Package records provides an in-memory, ordered store of PDB-style text
// records.
//
// A record is a single line of free-form text such as
//
//	HEADER    Sample PDB Record
//	REMARK    Custom record added from ConsoleApp
//
// The store keeps records in insertion order, permits duplicates and never
// inspects record content beyond rejecting the empty string. It carries an
// optional path label naming the logical source of the records; the label is
// descriptive only and nothing is read from or written to disk.
//
// # Notifications
//
// Initialize and Clear announce themselves. Every notification is logged at
// Info level on the store's *slog.Logger and, when configured with WithNotify,
// passed to a callback. The demo command uses the callback to reproduce the
// console transcript.
//
// # Concurrency
//
// A Store is not safe for concurrent use. Callers that share one instance must
// serialize Add, Clear, Initialize and the setters themselves.
package records
