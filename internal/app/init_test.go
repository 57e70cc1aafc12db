package app

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bendis/internal/types"
)

func TestInitCreatesBlankWorkspace(t *testing.T) {
	ws := newTestWorkspace(t)
	service := newTestService(newFakeResolver())

	result, err := service.Init(testContext(t), InitRequest{Root: ws.Root})
	require.NoError(t, err)
	assert.Equal(t, ws.Staging, result.StagingDir)
	assert.Equal(t, []string{
		filepath.Join(ws.Staging, types.ManifestFileName),
		filepath.Join(ws.Staging, types.OverridesFileName),
		filepath.Join(ws.Staging, types.GitignoreFileName),
	}, result.Created)

	assert.Empty(t, ws.read(t, "bendis_workspace/Bender.yml"))
	assert.Empty(t, ws.read(t, "bendis_workspace/.bender.yml"))
	want := types.GitignoreBeginMarker + "\n/.bender/\n/.bendis.lock\n" + types.GitignoreEndMarker + "\n"
	if diff := cmp.Diff(want, ws.read(t, "bendis_workspace/.gitignore")); diff != "" {
		t.Fatalf("unexpected staging .gitignore (-want +got):\n%s", diff)
	}
}

func TestInitTwiceIsHarmless(t *testing.T) {
	ws := newTestWorkspace(t)
	service := newTestService(newFakeResolver())

	_, err := service.Init(testContext(t), InitRequest{Root: ws.Root})
	require.NoError(t, err)
	before := ws.snapshot(t)

	result, err := service.Init(testContext(t), InitRequest{Root: ws.Root})
	require.NoError(t, err)
	assert.Len(t, result.Created, 2, "empty artifacts are rewritten, the ignore file is already current")
	if diff := cmp.Diff(before, ws.snapshot(t)); diff != "" {
		t.Fatalf("second init changed the workspace (-want +got):\n%s", diff)
	}
}

func TestInitRefusesNonBlankManifestWithoutWriting(t *testing.T) {
	ws := newTestWorkspace(t)
	ws.write(t, "bendis_workspace/Bender.yml", "dependencies:\n  axi: {git: \"https://github.com/x/axi.git\", version: 0.39.1}\n")
	before := ws.snapshot(t)

	_, err := newTestService(newFakeResolver()).Init(testContext(t), InitRequest{Root: ws.Root})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrInitConflict))
	if diff := cmp.Diff(before, ws.snapshot(t)); diff != "" {
		t.Fatalf("init wrote to the workspace (-want +got):\n%s", diff)
	}
}

func TestInitRefusesNonBlankOverrides(t *testing.T) {
	ws := newTestWorkspace(t)
	ws.write(t, "bendis_workspace/.bender.yml", "overrides:\n  axi: {path: \"../axi\"}\n")

	_, err := newTestService(newFakeResolver()).Init(testContext(t), InitRequest{Root: ws.Root})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrInitConflict))
}

func TestInitKeepsBlankManifestContent(t *testing.T) {
	ws := newTestWorkspace(t)
	ws.write(t, "bendis_workspace/Bender.yml", "package:\n  name: soc\n")

	result, err := newTestService(newFakeResolver()).Init(testContext(t), InitRequest{Root: ws.Root})
	require.NoError(t, err)
	assert.NotContains(t, result.Created, filepath.Join(ws.Staging, types.ManifestFileName))
	assert.Equal(t, "package:\n  name: soc\n", ws.read(t, "bendis_workspace/Bender.yml"))
}

func TestInitRequiresRoot(t *testing.T) {
	_, err := newTestService(newFakeResolver()).Init(testContext(t), InitRequest{})
	require.Error(t, err)
}
