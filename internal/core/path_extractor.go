package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"bendis/internal/types"
)

// PathExtractor classifies path dependencies relative to the project
// root. The filesystem lookups are fields so tests can fake them.
type PathExtractor struct {
	Stat         func(string) (os.FileInfo, error)
	EvalSymlinks func(string) (string, error)
}

func NewPathExtractor() PathExtractor {
	return PathExtractor{
		Stat:         os.Stat,
		EvalSymlinks: filepath.EvalSymlinks,
	}
}

// Extract splits the resolved set into git dependencies and canonicalized
// path dependencies. Relative paths are interpreted against projectRoot.
// A path outside the root must exist, otherwise it is
// PathDependencyOutsideRoot.
func (e PathExtractor) Extract(ctx context.Context, set types.ResolvedDependencySet, projectRoot string) (map[string]types.GitRef, []types.PathDependency, error) {
	root, err := e.canonicalRoot(projectRoot)
	if err != nil {
		return nil, nil, err
	}
	gitDeps := make(map[string]types.GitRef, len(set.Git))
	for name, ref := range set.Git {
		gitDeps[name] = ref
	}

	names := make([]string, 0, len(set.Path))
	for name := range set.Path {
		names = append(names, name)
	}
	sort.Strings(names)

	var pathDeps []types.PathDependency
	for _, name := range names {
		dep, err := e.classify(name, set.Path[name].Path, root)
		if err != nil {
			return nil, nil, err
		}
		log.Ctx(ctx).Debug().
			Str("dependency", name).
			Str("path", dep.Canonical).
			Bool("root_local", dep.IsRootLocal).
			Msg("path dependency classified")
		pathDeps = append(pathDeps, dep)
	}
	return gitDeps, pathDeps, nil
}

func (e PathExtractor) classify(name string, declared string, root string) (types.PathDependency, error) {
	if strings.TrimSpace(declared) == "" {
		return types.PathDependency{}, types.NewError(
			types.ErrMalformedManifest,
			fmt.Sprintf("path dependency %s has an empty path", name),
			nil,
		)
	}
	candidate := filepath.FromSlash(declared)
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(root, candidate)
	}
	candidate = filepath.Clean(candidate)

	_, statErr := e.Stat(candidate)
	exists := statErr == nil
	canonical := candidate
	if exists {
		if resolved, err := e.EvalSymlinks(candidate); err == nil {
			canonical = resolved
		}
	}

	rel, inside := relativeWithin(root, canonical)
	dep := types.PathDependency{
		Name:        name,
		Declared:    declared,
		Canonical:   canonical,
		IsRootLocal: inside,
	}
	if !inside {
		if !exists {
			return types.PathDependency{}, types.NewError(
				types.ErrPathDependencyOutsideRoot,
				fmt.Sprintf("path dependency %s points outside the project root at %s, which does not exist", name, canonical),
				statErr,
			)
		}
		return dep, nil
	}
	if filepath.IsAbs(filepath.FromSlash(declared)) {
		dep.RootRel = filepath.ToSlash(rel)
	} else {
		dep.RootRel = filepath.ToSlash(filepath.Clean(filepath.FromSlash(declared)))
		if _, ok := relativeWithin(root, filepath.Join(root, dep.RootRel)); !ok {
			dep.RootRel = filepath.ToSlash(rel)
		}
		dep.MirrorDir = topSegment(dep.RootRel)
	}
	return dep, nil
}

func topSegment(rel string) string {
	first, _, _ := strings.Cut(rel, "/")
	if first == "" || first == "." || first == ".." {
		return ""
	}
	return first
}

func (e PathExtractor) canonicalRoot(projectRoot string) (string, error) {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", types.NewError(types.ErrNotInitialized, "failed to resolve project root", err)
	}
	if resolved, err := e.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// relativeWithin returns path relative to root and whether path lies in
// root.
func relativeWithin(root string, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return rel, false
	}
	return rel, true
}
