package app

import (
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bendis/internal/types"
)

func TestEnsureConfigWritesDefaultsOnce(t *testing.T) {
	ws := newTestWorkspace(t)
	path := filepath.Join(ws.Root, ".bendis.toml")
	service := newTestService(newFakeResolver())

	result, err := service.EnsureConfig(testContext(t), ConfigRequest{Path: path})
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, types.DefaultSettings(), result.Settings)

	ws.write(t, ".bendis.toml", "staging_dir = \"hdl\"\n")
	again, err := service.EnsureConfig(testContext(t), ConfigRequest{Path: path})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, "staging_dir = \"hdl\"\n", ws.read(t, ".bendis.toml"))

	_, err = service.EnsureConfig(testContext(t), ConfigRequest{Path: " "})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "valid", content: "staging_dir = \"hdl\"\n[[rewrite_rules]]\npattern = \"github.com/x/*\"\ntarget = \"internal.example/x/*\"\n"},
		{name: "empty staging dir", content: "staging_dir = \"\"\n", wantErr: true},
		{name: "empty resolver", content: "resolver = \" \"\n", wantErr: true},
		{name: "unknown key", content: "stagingdir = \"hdl\"\n", wantErr: true},
		{name: "bad rule", content: "[[rewrite_rules]]\npattern = \"\"\ntarget = \"x\"\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newTestWorkspace(t)
			ws.write(t, "bendis.toml", tt.content)

			result, err := newTestService(newFakeResolver()).ValidateConfig(testContext(t), ConfigRequest{Path: filepath.Join(ws.Root, "bendis.toml")})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "hdl", result.Settings.StagingDir)
			assert.Equal(t, "bender", result.Settings.Resolver)
			assert.Len(t, result.Settings.RewriteRules, 1)
		})
	}
}

func TestPassthroughReturnsResolverExitCode(t *testing.T) {
	ws := newTestWorkspace(t)
	resolver := newFakeResolver()
	resolver.exitCode = 3

	code, err := newTestService(resolver).Passthrough(testContext(t), PassthroughRequest{Root: ws.Root, Args: []string{"sources", "--flatten"}})
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, []string{ws.Root}, resolver.calls)

	code, err = newTestService(resolver).Passthrough(testContext(t), PassthroughRequest{Args: []string{"sources"}})
	require.Error(t, err)
	assert.Equal(t, 1, code)
}
