package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommand(t *testing.T) {
	out, err := executeCommand(t, "list", writeCatalog(t, conformingCatalog))
	require.NoError(t, err)

	assert.Contains(t, out, "Band: [-100, 0] dB")
	assert.Contains(t, out, "volume")
	assert.Contains(t, out, "implementor: Acme")
	assert.Contains(t, out, "uuid:        fa81dd00-588b-11ed-9b6a-0242ac120002")
	assert.Contains(t, out, "capability:  max 0 dB")
}

func TestListCommand_JSON(t *testing.T) {
	out, err := executeCommand(t, "--format", "json", "list", writeCatalog(t, conformingCatalog))
	require.NoError(t, err)

	assert.Contains(t, out, `"status": "ok"`)
	assert.Contains(t, out, `"implementor": "Acme"`)
	assert.Contains(t, out, `"test_name": "Implementor_Acme_name_volume_UUID_fa81dd00_588b_11ed_9b6a_0242ac120002"`)
}

func TestListCommand_BadCatalog(t *testing.T) {
	_, err := executeCommand(t, "list", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
