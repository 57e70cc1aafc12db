package app

import (
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bendis/internal/types"
)

// workspaceLayout holds the absolute locations one run acts on.
type workspaceLayout struct {
	Root    string
	Staging string
	// StagingName is the staging directory relative to Root, in slash form.
	StagingName string
}

func resolveLayout(root string, staging string) (workspaceLayout, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return workspaceLayout{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project root is required")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return workspaceLayout{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid project root " + root).
			WithCause(err)
	}
	staging = strings.TrimSpace(staging)
	if staging == "" {
		staging = types.DefaultStagingDir
	}
	if !filepath.IsAbs(staging) {
		staging = filepath.Join(absRoot, staging)
	}
	staging = filepath.Clean(staging)
	name, err := filepath.Rel(absRoot, staging)
	if err != nil || name == "." {
		return workspaceLayout{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("staging directory must be a directory other than the project root")
	}
	return workspaceLayout{
		Root:        absRoot,
		Staging:     staging,
		StagingName: filepath.ToSlash(name),
	}, nil
}

func (l workspaceLayout) inStaging(name string) string {
	return filepath.Join(l.Staging, name)
}

func (l workspaceLayout) inRoot(name string) string {
	return filepath.Join(l.Root, name)
}
