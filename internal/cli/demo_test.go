package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pdbrecords/internal/records"
)

func executeRoot(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestDemo_Transcript(t *testing.T) {
	out, errOut, err := executeRoot(t, "", "demo")
	require.NoError(t, err)
	assert.Empty(t, errOut, "notifications are not logged below warn level")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "demo_transcript", []byte(out))
}

func TestDemo_CustomFlags(t *testing.T) {
	out, _, err := executeRoot(t, "", "demo", "--path", "1abc.pdb", "--record", "REMARK    hello")
	require.NoError(t, err)

	assert.Contains(t, out, "File: 1abc.pdb, Record Count: 3\n")
	assert.Contains(t, out, "AUTHOR    PDBFormatsLib\nREMARK    hello\n")
	assert.Contains(t, out, "File Path Property: 1abc.pdb\n")
	assert.NotContains(t, out, "Press any key")
}

func TestDemo_EmptyPathLabel(t *testing.T) {
	out, _, err := executeRoot(t, "", "demo", "--path", "")
	require.NoError(t, err)
	assert.Contains(t, out, "File: Not specified, Record Count: 3\n")
}

func TestDemo_EmptyRecordRejected(t *testing.T) {
	out, _, err := executeRoot(t, "", "demo", "--record", "")
	require.Error(t, err)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, records.IsInvalidArgument(err))
	assert.Contains(t, out, "Adding a custom record...")
	assert.NotContains(t, out, "New record count")
}

func TestDemo_Wait(t *testing.T) {
	out, _, err := executeRoot(t, "\n", "demo", "--wait")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "Record count after clear: 0\n\nPress any key to exit...\n"), out)
}

func TestDemo_WaitEOF(t *testing.T) {
	_, _, err := executeRoot(t, "", "demo", "--wait")
	require.NoError(t, err)
}

func TestDemo_JSON(t *testing.T) {
	out, _, err := executeRoot(t, "", "--format", "json", "demo")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   DemoResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "sample.pdb", resp.Data.Path)
	assert.Equal(t, "File: sample.pdb, Record Count: 3", resp.Data.Statistics)
	assert.Equal(t, 4, resp.Data.CountAfterAdd)
	assert.Equal(t, 0, resp.Data.CountAfterClear)
	assert.Equal(t, []string{
		records.DefaultHeader,
		records.DefaultTitle,
		records.DefaultAuthor,
		DefaultCustomRecord,
	}, resp.Data.Records)
	assert.Equal(t, []string{"Initialized with 3 sample records", "All records cleared"}, resp.Data.Notifications)
}

func TestDemo_JSONEmptyRecord(t *testing.T) {
	out, _, err := executeRoot(t, "", "--format", "json", "demo", "--record", "")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidRecord, resp.Error.Code)
}

func TestDemo_VerboseLogsToStderr(t *testing.T) {
	out, errOut, err := executeRoot(t, "", "demo", "--verbose")
	require.NoError(t, err)

	assert.Contains(t, errOut, "Initialized with 3 sample records")
	assert.Contains(t, errOut, "record added")
	assert.Contains(t, errOut, "demo finished")
	assert.NotContains(t, out, "level=")
}
