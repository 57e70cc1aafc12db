package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFileTransaction_CommitAndFinish(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Bender.yml")
	overrides := filepath.Join(dir, ".bender.yml")
	require.NoError(t, os.WriteFile(manifest, []byte("old\n"), 0o644))
	require.NoError(t, os.WriteFile(overrides, []byte("same\n"), 0o644))

	tx := NewFileTransactionAdapter().Begin()
	require.NoError(t, tx.Stage(manifest, []byte("new\n")))
	require.NoError(t, tx.Stage(overrides, []byte("same\n")))
	assert.Equal(t, "old\n", readString(t, manifest), "staging must not touch the target")

	require.NoError(t, tx.Commit())
	assert.Equal(t, "new\n", readString(t, manifest))
	assert.FileExists(t, manifest+backupSuffix)
	if diff := cmp.Diff([]string{manifest}, tx.Changed()); diff != "" {
		t.Fatalf("unexpected changed files (-want +got):\n%s", diff)
	}

	require.NoError(t, tx.Finish())
	assert.NoFileExists(t, manifest+backupSuffix)
	assert.NoFileExists(t, overrides+backupSuffix)
	assert.NoFileExists(t, manifest+tempSuffix)
}

func TestFileTransaction_RollbackRestoresEverything(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Bender.yml")
	lock := filepath.Join(dir, "Bender.lock")
	created := filepath.Join(dir, ".bender.yml")
	require.NoError(t, os.WriteFile(manifest, []byte("old manifest\n"), 0o644))
	require.NoError(t, os.WriteFile(lock, []byte("old lock\n"), 0o644))

	tx := NewFileTransactionAdapter().Begin()
	require.NoError(t, tx.Stage(manifest, []byte("new manifest\n")))
	require.NoError(t, tx.Stage(created, []byte("overrides\n")))
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Protect(lock))

	// A later step rewrites the lock outside the transaction.
	require.NoError(t, os.WriteFile(lock, []byte("broken lock\n"), 0o644))

	require.NoError(t, tx.Rollback())
	assert.Equal(t, "old manifest\n", readString(t, manifest))
	assert.Equal(t, "old lock\n", readString(t, lock))
	assert.NoFileExists(t, created)
	assert.NoFileExists(t, manifest+backupSuffix)
	assert.NoFileExists(t, lock+backupSuffix)
	assert.Empty(t, tx.Changed())
}

func TestFileTransaction_ProtectMissingFileRemovesItOnRollback(t *testing.T) {
	dir := t.TempDir()
	lock := filepath.Join(dir, "Bender.lock")

	tx := NewFileTransactionAdapter().Begin()
	require.NoError(t, tx.Protect(lock))
	require.NoError(t, os.WriteFile(lock, []byte("fresh\n"), 0o644))

	require.NoError(t, tx.Rollback())
	assert.NoFileExists(t, lock)
}

func TestFileTransaction_RollbackBeforeCommitDropsStagedFiles(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Bender.yml")

	tx := NewFileTransactionAdapter().Begin()
	require.NoError(t, tx.Stage(manifest, []byte("new\n")))
	require.NoError(t, tx.Rollback())

	assert.NoFileExists(t, manifest)
	assert.NoFileExists(t, manifest+tempSuffix)
}
