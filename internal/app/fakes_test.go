package app

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"bendis/internal/adapters"
	"bendis/internal/ports"
	"bendis/internal/types"
)

// fakeResolver stands in for bender: an update writes the lock configured
// for the directory and creates its dependency cache.
type fakeResolver struct {
	locks    map[string]string
	fail     map[string]bool
	calls    []string
	onUpdate func(dir string)
	exitCode int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{locks: map[string]string{}, fail: map[string]bool{}}
}

func (f *fakeResolver) Update(_ context.Context, dir string) error {
	f.calls = append(f.calls, dir)
	if f.onUpdate != nil {
		f.onUpdate(dir)
	}
	lockPath := filepath.Join(dir, types.LockFileName)
	if f.fail[dir] {
		_ = os.WriteFile(lockPath, []byte("half written"), 0o644)
		return types.NewError(types.ErrResolutionFailure, "resolver update failed in "+dir, nil)
	}
	if err := os.MkdirAll(filepath.Join(dir, types.CacheDirName, "git"), 0o755); err != nil {
		return err
	}
	return os.WriteFile(lockPath, []byte(f.locks[dir]), 0o644)
}

func (f *fakeResolver) Passthrough(_ context.Context, dir string, args []string, _ ports.Stdio) (int, error) {
	f.calls = append(f.calls, dir)
	return f.exitCode, nil
}

var _ ports.ResolverPort = (*fakeResolver)(nil)

type testWorkspace struct {
	Root    string
	Staging string
}

func newTestWorkspace(t *testing.T) testWorkspace {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	root := filepath.Join(base, "proj")
	require.NoError(t, os.MkdirAll(root, 0o755))
	return testWorkspace{Root: root, Staging: filepath.Join(root, types.DefaultStagingDir)}
}

func (w testWorkspace) write(t *testing.T, rel string, content string) {
	t.Helper()
	path := filepath.Join(w.Root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (w testWorkspace) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(w.Root, rel))
	require.NoError(t, err)
	return string(data)
}

// snapshot maps every file below the workspace root to its content.
func (w testWorkspace) snapshot(t *testing.T) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(w.Root, path)
		if d.IsDir() {
			files[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func testSettings() types.Settings {
	settings := types.DefaultSettings()
	settings.RewriteRules = []types.RewriteRule{
		{Pattern: "github.com/x/*", Target: "internal.example/x/*"},
	}
	return settings
}

func newTestService(resolver ports.ResolverPort) Service {
	return Service{
		Manifests:    adapters.NewManifestFileAdapter(),
		Resolver:     resolver,
		Workspace:    adapters.NewWorkspaceAdapter(),
		Transactions: adapters.NewFileTransactionAdapter(),
		RunLock:      adapters.NewRunLockAdapter(),
		Config:       adapters.NewConfigFileAdapter(),
		Settings:     testSettings(),
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(t.Context())
}
