package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pdbrecords/internal/harness"
)

// createTestStore opens a fresh database under t.TempDir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "traces.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// runScenario executes steps through the harness under a fixed run ID.
func runScenario(t *testing.T, runID string, steps ...harness.Step) *harness.Result {
	t.Helper()
	result, err := harness.Run(&harness.Scenario{
		Name:  "stored",
		Path:  "sample.pdb",
		RunID: runID,
		Steps: steps,
	})
	require.NoError(t, err)
	return result
}
