package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bendis/internal/types"
)

func TestCheckInitPreconditions(t *testing.T) {
	tests := []struct {
		name      string
		artifacts []ArtifactState
		conflict  bool
	}{
		{name: "nothing exists", artifacts: []ArtifactState{{Path: "Bender.yml"}, {Path: ".bender.yml"}}},
		{name: "blank files", artifacts: []ArtifactState{{Path: "Bender.yml", Exists: true, Blank: true}}},
		{name: "non-blank manifest", artifacts: []ArtifactState{{Path: "Bender.yml", Exists: true}}, conflict: true},
		{
			name: "non-blank overrides only",
			artifacts: []ArtifactState{
				{Path: "Bender.yml", Exists: true, Blank: true},
				{Path: ".bender.yml", Exists: true},
			},
			conflict: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInitPreconditions(tt.artifacts...)
			if !tt.conflict {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, types.IsKind(err, types.ErrInitConflict))
		})
	}
}

func TestIsDerived(t *testing.T) {
	assert.True(t, IsDerived([]byte(DerivedHeader("bendis_workspace")+"\npackage:\n  name: x\n")))
	assert.True(t, IsDerived([]byte("\ufeff"+DerivedHeader("ws"))))
	assert.False(t, IsDerived([]byte("package:\n  name: x\n")))
}

func TestCheckRootManifestOwnership(t *testing.T) {
	handWritten := []byte("package:\n  name: x\n")

	require.NoError(t, CheckRootManifestOwnership("Bender.yml", nil, false, false))
	require.NoError(t, CheckRootManifestOwnership("Bender.yml", []byte("  \n"), true, false))
	require.NoError(t, CheckRootManifestOwnership("Bender.yml", handWritten, true, true))
	require.NoError(t, CheckRootManifestOwnership("Bender.yml", []byte(DerivedHeader("ws")+"\n"), true, false))

	err := CheckRootManifestOwnership("Bender.yml", handWritten, true, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
}
