package adapters

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bendis/internal/ports"
)

const (
	tempSuffix   = ".bendis-tmp"
	backupSuffix = ".bendis-bak"
)

type WorkspaceAdapter struct{}

func NewWorkspaceAdapter() WorkspaceAdapter {
	return WorkspaceAdapter{}
}

func (a WorkspaceAdapter) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (a WorkspaceAdapter) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(codeForFSError(err)).
			WithMsg("failed to read " + path).
			WithCause(err)
	}
	return data, nil
}

func (a WorkspaceAdapter) WriteFileAtomic(path string, data []byte) error {
	if path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("write path is empty")
	}
	if err := a.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := writeTemp(path, data); err != nil {
		return err
	}
	if err := os.Rename(path+tempSuffix, path); err != nil {
		_ = os.Remove(path + tempSuffix)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to replace " + path).
			WithCause(err)
	}
	return nil
}

func (a WorkspaceAdapter) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create directory " + path).
			WithCause(err)
	}
	return nil
}

func (a WorkspaceAdapter) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove " + path).
			WithCause(err)
	}
	return nil
}

func (a WorkspaceAdapter) Rename(from string, to string) error {
	if err := os.Rename(from, to); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to rename " + from + " to " + to).
			WithCause(err)
	}
	return nil
}

func (a WorkspaceAdapter) LinkMirror(linkPath string, target string) (bool, error) {
	rel, err := filepath.Rel(filepath.Dir(linkPath), target)
	if err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to compute mirror link for " + linkPath).
			WithCause(err)
	}
	info, err := os.Lstat(linkPath)
	switch {
	case err == nil && info.Mode()&fs.ModeSymlink == 0:
		return false, nil
	case err == nil:
		current, readErr := os.Readlink(linkPath)
		if readErr == nil && current == rel {
			return true, nil
		}
		if err := os.Remove(linkPath); err != nil {
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to replace mirror link " + linkPath).
				WithCause(err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to inspect " + linkPath).
			WithCause(err)
	}
	if err := os.Symlink(rel, linkPath); err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to link " + linkPath).
			WithCause(err)
	}
	return true, nil
}

func (a WorkspaceAdapter) RemoveMirror(linkPath string) error {
	info, err := os.Lstat(linkPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to inspect " + linkPath).
			WithCause(err)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return nil
	}
	if err := os.Remove(linkPath); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove mirror link " + linkPath).
			WithCause(err)
	}
	return nil
}

func (a WorkspaceAdapter) StaleArtifacts(dirs ...string) ([]string, error) {
	var stale []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to scan " + dir).
				WithCause(err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasSuffix(name, tempSuffix) || strings.HasSuffix(name, backupSuffix) {
				stale = append(stale, filepath.Join(dir, name))
			}
		}
	}
	sort.Strings(stale)
	return stale, nil
}

func writeTemp(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path+tempSuffix, data, mode); err != nil {
		_ = os.Remove(path + tempSuffix)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write " + path + tempSuffix).
			WithCause(err)
	}
	return nil
}

func codeForFSError(err error) errbuilder.ErrCode {
	if errors.Is(err, fs.ErrNotExist) {
		return errbuilder.CodeNotFound
	}
	return errbuilder.CodeInternal
}

var _ ports.WorkspacePort = WorkspaceAdapter{}
