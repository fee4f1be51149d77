package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab/paramcheck/internal/store"
)

const conformingCatalog = `
band: {minLevelDb: -100, maxLevelDb: 0}
instances: {
	volume: {
		implementor: "Acme"
		uuid:        "fa81dd00-588b-11ed-9b6a-0242ac120002"
		capability: maxLevelDb: 0
	}
}
`

const brokenCatalog = `
band: {minLevelDb: -100, maxLevelDb: 0}
instances: {
	volume: {
		implementor: "Acme"
		uuid:        "fa81dd00-588b-11ed-9b6a-0242ac120002"
		capability: maxLevelDb: 0
		faults: ["corrupt_get"]
	}
}
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckCommand_Conforming(t *testing.T) {
	out, err := executeCommand(t, "check", writeCatalog(t, conformingCatalog))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ volume (7 checks)")
	assert.Contains(t, out, "All instances conform")
}

func TestCheckCommand_Failure(t *testing.T) {
	out, err := executeCommand(t, "check", writeCatalog(t, brokenCatalog))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ volume")
	assert.Contains(t, out, "round-trip mismatch")
}

func TestCheckCommand_JSON(t *testing.T) {
	out, err := executeCommand(t, "--format", "json", "check", writeCatalog(t, brokenCatalog))
	require.Error(t, err)
	assert.Contains(t, out, `"status": "error"`)
	assert.Contains(t, out, `"E_CHECK_FAILED"`)
	assert.Contains(t, out, `"test_name"`)
}

func TestCheckCommand_BadCatalog(t *testing.T) {
	_, err := executeCommand(t, "check", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheckCommand_ExtraValues(t *testing.T) {
	// --level -42 adds one accepted check on top of the default seven.
	out, err := executeCommand(t, "check", writeCatalog(t, conformingCatalog),
		"--level", "-42", "--mute", "true")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ volume (9 checks)")
}

func TestCheckCommand_Record(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	_, err := executeCommand(t, "check", writeCatalog(t, conformingCatalog), "--record", dbPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "volume", runs[0].Instance)
	assert.Equal(t, 7, runs[0].Passed)
	assert.True(t, runs[0].Pass())
}
