package records

import (
	"fmt"
	"log/slog"
	"strings"
)

// Default records installed by Initialize, in order.
const (
	DefaultHeader = "HEADER    Sample PDB Record"
	DefaultTitle  = "TITLE     PDB Format Library Demo"
	DefaultAuthor = "AUTHOR    PDBFormatsLib"
)

// NoRecords is returned by FormatAll when the store is empty.
const NoRecords = "No records available"

// PathNotSpecified replaces an empty path label in Statistics.
const PathNotSpecified = "Not specified"

// Separator joins records in FormatAll.
const Separator = "\n"

// Store holds an ordered sequence of text records and a path label.
type Store struct {
	path    string
	records []string

	logger *slog.Logger
	notify func(string)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for notifications.
// A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotify registers a callback that receives every notification message.
func WithNotify(fn func(msg string)) Option {
	return func(s *Store) {
		s.notify = fn
	}
}

// New creates an empty store labelled with path. An empty path means no
// label was supplied.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		records: []string{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the path label.
func (s *Store) Path() string {
	return s.path
}

// SetPath replaces the path label.
func (s *Store) SetPath(path string) {
	s.path = path
}

// Records returns a copy of the current records in order.
func (s *Store) Records() []string {
	out := make([]string, len(s.records))
	copy(out, s.records)
	return out
}

// SetRecords replaces all records with a copy of recs. A nil slice leaves the
// store empty.
func (s *Store) SetRecords(recs []string) {
	s.records = make([]string, len(recs))
	copy(s.records, recs)
}

// Initialize resets the store to the three default records.
// Calling it again yields the same three records.
func (s *Store) Initialize() {
	s.records = s.records[:0]
	s.records = append(s.records, DefaultHeader, DefaultTitle, DefaultAuthor)
	s.announce(fmt.Sprintf("Initialized with %d sample records", len(s.records)),
		"count", len(s.records))
}

// Add appends record after all existing records.
// An empty record is rejected with an invalid argument error and the store
// is left unchanged.
func (s *Store) Add(record string) error {
	if record == "" {
		return newInvalidArgument("record", "record cannot be empty")
	}
	s.records = append(s.records, record)
	s.logger.Debug("record added", "path", s.path, "name", RecordName(record), "count", len(s.records))
	return nil
}

// Count returns the number of records.
func (s *Store) Count() int {
	return len(s.records)
}

// FormatAll joins all records with Separator, or returns NoRecords when the
// store is empty.
func (s *Store) FormatAll() string {
	if len(s.records) == 0 {
		return NoRecords
	}
	return strings.Join(s.records, Separator)
}

// Clear removes all records.
func (s *Store) Clear() {
	s.records = s.records[:0]
	s.announce("All records cleared")
}

// Statistics describes the path label and the record count, e.g.
// "File: sample.pdb, Record Count: 3".
func (s *Store) Statistics() string {
	path := s.path
	if path == "" {
		path = PathNotSpecified
	}
	return fmt.Sprintf("File: %s, Record Count: %d", path, len(s.records))
}

// Snapshot is a point-in-time copy of a store.
type Snapshot struct {
	Path    string   `json:"path,omitempty"`
	Records []string `json:"records"`
	Count   int      `json:"count"`
}

// Snapshot returns a copy of the store's state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Path:    s.path,
		Records: s.Records(),
		Count:   len(s.records),
	}
}

func (s *Store) announce(msg string, args ...any) {
	s.logger.Info(msg, append([]any{"path", s.path}, args...)...)
	if s.notify != nil {
		s.notify(msg)
	}
}
