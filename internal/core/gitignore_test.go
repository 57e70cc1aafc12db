package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bendis/internal/types"
)

func managedBlock(entries ...string) string {
	lines := append([]string{types.GitignoreBeginMarker}, entries...)
	lines = append(lines, types.GitignoreEndMarker)
	return strings.Join(lines, "\n") + "\n"
}

func TestUpdateGitignoreCreatesBlock(t *testing.T) {
	got, changed, err := UpdateGitignore(nil, []string{"/.bender/"})
	require.NoError(t, err)
	assert.True(t, changed)
	if diff := cmp.Diff(managedBlock("/.bender/"), string(got)); diff != "" {
		t.Fatalf("unexpected content (-want +got):\n%s", diff)
	}
}

func TestUpdateGitignoreKeepsUserLines(t *testing.T) {
	content := "# build outputs\nbuild/\n*.log\n"

	got, changed, err := UpdateGitignore([]byte(content), []string{"/.bender/", "/hw"})
	require.NoError(t, err)
	assert.True(t, changed)
	want := content + "\n" + managedBlock("/.bender/", "/hw")
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("unexpected content (-want +got):\n%s", diff)
	}
}

func TestUpdateGitignoreIsIdempotent(t *testing.T) {
	entries := []string{"/hw", "/.bender/", "!/hw/", "/.bendis.lock"}
	first, _, err := UpdateGitignore([]byte("node_modules/\n"), entries)
	require.NoError(t, err)

	second, changed, err := UpdateGitignore(first, entries)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 1, strings.Count(string(second), types.GitignoreBeginMarker))
}

func TestUpdateGitignoreOrdersNegationsLast(t *testing.T) {
	got, _, err := UpdateGitignore(nil, []string{"!/hw/", "/.bender/"})
	require.NoError(t, err)
	assert.Equal(t, managedBlock("/.bender/", "!/hw/"), string(got))
}

func TestUpdateGitignoreSkipsEntriesUserAlreadyHas(t *testing.T) {
	got, _, err := UpdateGitignore([]byte("/.bender/\n"), []string{"/.bender/", "/hw"})
	require.NoError(t, err)
	assert.Equal(t, "/.bender/\n\n"+managedBlock("/hw"), string(got))
}

func TestUpdateGitignoreReplacesStaleEntries(t *testing.T) {
	content := "a\n\n" + managedBlock("/old", "/.bender/")

	got, changed, err := UpdateGitignore([]byte(content), []string{"/.bender/"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "a\n\n"+managedBlock("/.bender/"), string(got))
}

func TestUpdateGitignoreMovesBlockToEnd(t *testing.T) {
	content := "a\n" + managedBlock("/.bender/") + "b\n"

	got, changed, err := UpdateGitignore([]byte(content), []string{"/.bender/"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "a\nb\n\n"+managedBlock("/.bender/"), string(got))
}

func TestUpdateGitignoreRemovesBlockWhenEmpty(t *testing.T) {
	content := "a\n\n" + managedBlock("/.bender/")

	got, changed, err := UpdateGitignore([]byte(content), nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "a\n", string(got))
}

func TestParseGitignoreConflicts(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unterminated", content: types.GitignoreBeginMarker + "\n/x\n"},
		{name: "stray end", content: "/x\n" + types.GitignoreEndMarker + "\n"},
		{name: "nested", content: types.GitignoreBeginMarker + "\n" + types.GitignoreBeginMarker + "\n"},
		{name: "two blocks", content: managedBlock("/a") + managedBlock("/b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGitignore([]byte(tt.content))
			require.Error(t, err)
			assert.True(t, types.IsKind(err, types.ErrGitignoreConflict))
		})
	}
}

func TestParseGitignoreSplitsLines(t *testing.T) {
	state, err := ParseGitignore([]byte("x\n" + managedBlock("/a")))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, state.UserLines())
	assert.Equal(t, []string{"/a"}, state.ManagedEntries())
	assert.Equal(t, 1, state.BlockIndex)
}
