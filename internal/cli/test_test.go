package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := executeRoot(t, "", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	_, _, err := executeRoot(t, "", "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, _, err := executeRoot(t, "", "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyDirJSON(t *testing.T) {
	out, _, err := executeRoot(t, "", "--format", "json", "test", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
}

func TestTestCommandPassAndFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.yaml", passingScenario)
	writeFile(t, dir, "broken.yml", failingScenario)
	writeFile(t, dir, "notes.txt", "ignored")

	out, _, err := executeRoot(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✓ sample")
	assert.Contains(t, out, "✗ broken")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.yaml", passingScenario)
	writeFile(t, dir, "broken.yaml", failingScenario)

	out, _, err := executeRoot(t, "", "test", dir, "--filter", "sam*")
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandInvalidFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.yaml", passingScenario)

	_, _, err := executeRoot(t, "", "test", dir, "--filter", "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "typo.yaml", "name: typo\ndescription: x\nstep:\n  - op: clear\n")

	out, _, err := executeRoot(t, "", "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ typo.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "sample.yaml", passingScenario)

	out, _, err := executeRoot(t, "", "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ sample (golden updated)")

	goldenPath := goldenFilePath(scenarioPath)
	assert.Equal(t, filepath.Join(dir, "golden", "sample.golden"), goldenPath)
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"sample"`)
	assert.Contains(t, string(golden), `"run_id":"run-default"`)

	// Unchanged scenario matches its golden file.
	out, _, err = executeRoot(t, "", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ sample\n")

	// A trailing newline added by an editor is tolerated.
	require.NoError(t, os.WriteFile(goldenPath, append(golden, '\n'), 0644))
	_, _, err = executeRoot(t, "", "test", dir)
	require.NoError(t, err)

	// A changed trace no longer matches.
	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"sample","trace":[]}`), 0644))
	out, _, err = executeRoot(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandJSONFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", failingScenario)

	out, _, err := executeRoot(t, "", "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string     `json:"code"`
			Details TestResult `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Error.Details.Failed)
	require.Len(t, resp.Error.Details.Scenarios, 1)
	assert.Equal(t, "broken", resp.Error.Details.Scenarios[0].Name)
}
