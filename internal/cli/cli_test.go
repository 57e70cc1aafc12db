package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bendis/internal/types"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{"init", "update", "inspect", "config", "migrate", "bender"}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestRootCommandGlobalFlags(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"root", "staging-dir", "config", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
}

func TestCommandFlags(t *testing.T) {
	assert.NotNil(t, newUpdateCommand().Flags().Lookup("force"))
	assert.NotNil(t, newConfigCommand().Flags().Lookup("print"))
}

// ---------- Dispatch tests ----------

func TestDispatchArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "known command", args: []string{"update", "--force"}, want: []string{"update", "--force"}},
		{name: "global flags before command", args: []string{"--root", "/p", "inspect"}, want: []string{"--root", "/p", "inspect"}},
		{name: "unknown command", args: []string{"sources", "--flatten"}, want: []string{"bender", "--", "sources", "--flatten"}},
		{
			name: "unknown command after global flags",
			args: []string{"--root=/p", "--log-level", "debug", "checkout"},
			want: []string{"--root=/p", "--log-level", "debug", "bender", "--", "checkout"},
		},
		{name: "help flag", args: []string{"--help"}, want: []string{"--help"}},
		{name: "help command", args: []string{"help", "update"}, want: []string{"help", "update"}},
		{name: "explicit passthrough", args: []string{"bender", "--", "packages"}, want: []string{"bender", "--", "packages"}},
		{name: "empty", args: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dispatchArgs(newRootCommand(), tt.args))
		})
	}
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveBool(t *testing.T) {
	got := resolveBool(nil, true, "test_key", "test-flag")
	assert.True(t, got)

	got = resolveBool(nil, false, "test_key", "test-flag")
	assert.False(t, got)
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")
}

func TestFlagChangedAfterSet(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{name: "malformed manifest", err: types.NewError(types.ErrMalformedManifest, "bad yaml", nil), expected: 2},
		{name: "unknown override target", err: types.NewError(types.ErrUnknownOverrideTarget, "ghost", nil), expected: 2},
		{name: "init conflict", err: types.NewError(types.ErrInitConflict, "not blank", nil), expected: 2},
		{name: "gitignore conflict", err: types.NewError(types.ErrGitignoreConflict, "two blocks", nil), expected: 3},
		{
			name: "resolution failure inside a sync error",
			err: &types.SyncError{
				Step:  types.StepResolveRoot,
				Cause: types.NewError(types.ErrResolutionFailure, "bender update failed", nil),
			},
			expected: 4,
		},
		{name: "path outside root", err: types.NewError(types.ErrPathDependencyOutsideRoot, "gone", nil), expected: 5},
		{name: "not initialized", err: types.NewError(types.ErrNotInitialized, "no staging", nil), expected: 5},
		{name: "workspace busy", err: types.NewError(types.ErrWorkspaceBusy, "locked", nil), expected: 6},
		{
			name: "generic failed precondition",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("something else failed"),
			expected: 3,
		},
		{
			name: "not found generic",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("file missing"),
			expected: 5,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("boom"),
			expected: 1,
		},
		{name: "passthrough exit", err: &ExitError{Code: 7}, expected: 7},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "errbuilder with msg",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("something broke"),
			expected: "something broke",
		},
		{
			name:     "plain error",
			err:      assert.AnError,
			expected: assert.AnError.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRenderErrorNamesStep(t *testing.T) {
	err := &types.SyncError{
		Step:  types.StepPrepare,
		Cause: types.NewError(types.ErrNotInitialized, "staging directory not found", nil),
	}
	rendered := renderError(err)
	assert.Contains(t, rendered, "staging directory not found")
	assert.Contains(t, rendered, "step 0 (prepare)")
	assert.Contains(t, rendered, "bendis init")
}

// ---------- Command line runs ----------

func TestRunInitThenUpdateWithoutDependencies(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()

	assert.Equal(t, 0, run(t.Context(), []string{"--root", root, "init"}))
	assert.FileExists(t, filepath.Join(root, types.DefaultStagingDir, types.ManifestFileName))

	assert.Equal(t, 5, run(t.Context(), []string{"--root", filepath.Join(root, "missing"), "update"}))
}

func TestRunForwardsUnknownCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	script := filepath.Join(t.TempDir(), "bender")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$*\" > args.txt\nexit 3\n"), 0o755))
	t.Setenv("BENDIS_RESOLVER", script)

	code := run(t.Context(), []string{"--root", root, "sources", "--flatten"})
	assert.Equal(t, 3, code)
	data, err := os.ReadFile(filepath.Join(root, "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, "sources --flatten\n", string(data))
}
