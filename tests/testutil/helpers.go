// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// FakeBender writes a shell script standing in for the bender binary.
// Every invocation appends its working directory to the file returned by
// CallsLog. body runs after that with "set -e".
func FakeBender(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "bender")
	content := "#!/bin/sh\nset -e\npwd >> \"$(dirname \"$0\")/calls.log\"\n" + body + "\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))
	return script
}

// CallsLog returns the working directories a FakeBender script ran in,
// in order.
func CallsLog(t *testing.T, script string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.Dir(script), "calls.log"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Fields(string(data))
}

// WriteFile creates parent directories and writes content below root.
func WriteFile(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// ReadFile returns the content of a file below root.
func ReadFile(t *testing.T, root string, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	return string(data)
}

// TempRoot returns a project root whose path has no symlinks, so paths
// reported by subprocesses compare equal.
func TempRoot(t *testing.T) string {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	root := filepath.Join(base, "proj")
	require.NoError(t, os.MkdirAll(root, 0o755))
	return root
}
