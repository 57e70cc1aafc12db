package core

import (
	"bytes"
	"fmt"
	"strings"

	"bendis/internal/types"
)

// DerivedHeaderPrefix starts every file bendis generates at the root.
const DerivedHeaderPrefix = "# Generated by bendis"

// DerivedHeader is the comment placed on top of derived root files.
func DerivedHeader(stagingName string) string {
	return fmt.Sprintf("%s from %s/. Do not edit: this file is rewritten by `bendis update`.", DerivedHeaderPrefix, stagingName)
}

// IsDerived reports whether content was produced by bendis.
func IsDerived(content []byte) bool {
	return bytes.HasPrefix(bytes.TrimPrefix(content, []byte("\ufeff")), []byte(DerivedHeaderPrefix))
}

// ArtifactState is what init found for one staging artifact.
type ArtifactState struct {
	Path   string
	Exists bool
	Blank  bool
}

// CheckInitPreconditions refuses initialization when any staging artifact
// already carries user content.
func CheckInitPreconditions(artifacts ...ArtifactState) error {
	var conflicts []string
	for _, artifact := range artifacts {
		if artifact.Exists && !artifact.Blank {
			conflicts = append(conflicts, artifact.Path)
		}
	}
	if len(conflicts) == 0 {
		return nil
	}
	return types.NewError(
		types.ErrInitConflict,
		fmt.Sprintf("refusing to initialize over non-blank files: %s", strings.Join(conflicts, ", ")),
		nil,
	)
}

// CheckRootManifestOwnership refuses to replace a root manifest that was
// not generated by bendis unless force is set.
func CheckRootManifestOwnership(path string, content []byte, exists bool, force bool) error {
	if !exists || force || IsDerived(content) || len(bytes.TrimSpace(content)) == 0 {
		return nil
	}
	return types.NewError(
		types.ErrInitConflict,
		fmt.Sprintf("%s was not generated by bendis; move its dependencies into the staging manifest or rerun with --force", path),
		nil,
	)
}
