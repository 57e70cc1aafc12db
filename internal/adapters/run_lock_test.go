package adapters

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bendis/internal/types"
)

func TestRunLockAdapter_RejectsSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bendis.lock")
	adapter := NewRunLockAdapter()

	first, err := adapter.Acquire(path)
	require.NoError(t, err)

	_, err = adapter.Acquire(path)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrWorkspaceBusy))

	first.Release()
	first.Release()

	again, err := adapter.Acquire(path)
	require.NoError(t, err)
	again.Release()
}

func TestRunLockAdapter_MissingDirectory(t *testing.T) {
	_, err := NewRunLockAdapter().Acquire(filepath.Join(t.TempDir(), "missing", ".bendis.lock"))
	require.Error(t, err)
}
