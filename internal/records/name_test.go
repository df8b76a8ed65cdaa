package records

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRecordName(t *testing.T) {
	tests := []struct {
		record string
		want   string
	}{
		{"HEADER    Sample PDB Record", "HEADER"},
		{"TITLE     PDB Format Library Demo", "TITLE"},
		{"AUTHOR    PDBFormatsLib", "AUTHOR"},
		{"REMARK custom", "REMARK"},
		{"END", "END"},
		{"  ATOM", "ATOM"},
		{"", ""},
		{"ABCD\u00e9FG", "ABCD\u00e9"},
		{"ABCDE\u00e9FG", "ABCDE"},
		{"AB\u20acXYZ", "AB\u20acX"},
		{"ABCD\u20acXYZ", "ABCD"},
	}

	for _, tt := range tests {
		t.Run(tt.record, func(t *testing.T) {
			got := RecordName(tt.record)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got), "invalid UTF-8 in %q", got)
		})
	}
}
