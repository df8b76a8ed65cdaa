package records

import (
	"strings"
	"unicode/utf8"
)

// recordNameWidth is the width of the record name field (columns 1-6).
const recordNameWidth = 6

// RecordName returns the PDB record name of record: its first six columns
// with surrounding spaces removed. Lines shorter than six columns are trimmed
// whole. No validation is done, so free-form text yields its first word-ish
// prefix.
//
// Columns are bytes, as in the fixed-width PDB format. A multibyte rune that
// straddles column 6 is dropped whole so the result stays valid UTF-8.
func RecordName(record string) string {
	if len(record) > recordNameWidth {
		end := recordNameWidth
		for end > 0 && !utf8.RuneStart(record[end]) {
			end--
		}
		record = record[:end]
	}
	return strings.TrimSpace(record)
}
