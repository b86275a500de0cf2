package stake

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paladin-bladesmith/bifrost/internal/types"
)

func writeStakeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "validators.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource(t *testing.T) {
	idA := strings.Repeat("01", types.IDLen)
	idB := strings.Repeat("02", types.IDLen)
	path := writeStakeFile(t, `
validators:
  - id: "`+idA+`"
    stake: 1000
    endpoint: "10.0.0.1:8001"
  - id: "`+idB+`"
    stake: 500
`)

	src, err := NewFileSource(path)
	require.NoError(t, err)

	entries, err := src.StakesFor(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(1000), entries[0].Stake)
	assert.Equal(t, idA, entries[0].ID.String())
	assert.Equal(t, uint64(500), entries[1].Stake)

	endpoints := src.Endpoints()
	require.Len(t, endpoints, 1)
	a, err := types.ParseValidatorID(idA)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8001", endpoints[a])
}

func TestFileSourceErrors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("BadYAML", func(t *testing.T) {
		path := writeStakeFile(t, "validators: [\n")
		_, err := NewFileSource(path)
		require.Error(t, err)
	})

	t.Run("NoValidators", func(t *testing.T) {
		path := writeStakeFile(t, "validators: []\n")
		_, err := NewFileSource(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no validators")
	})

	t.Run("BadIdentity", func(t *testing.T) {
		path := writeStakeFile(t, `
validators:
  - id: "zz"
    stake: 10
`)
		_, err := NewFileSource(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entry 0")
	})
}
