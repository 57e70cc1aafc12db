package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"bendis/internal/policies"
	"bendis/internal/ports"
	"bendis/internal/types"
)

// OverrideReconciler merges the primary manifest, the override file and
// the staging lock into one resolved dependency set.
type OverrideReconciler struct {
	Rewriter ports.RewritePolicyPort
	// LockDir anchors relative path sources found in the lock file.
	LockDir string
}

func NewOverrideReconciler(rewriter ports.RewritePolicyPort, lockDir string) OverrideReconciler {
	return OverrideReconciler{Rewriter: rewriter, LockDir: lockDir}
}

// Reconcile builds the resolved set. Overrides win over manifest entries
// outright. Overrides may only name dependencies the manifest declares or
// the resolver locked; anything else is UnknownOverrideTarget. Locked
// packages that are neither declared nor overridden are pinned to the
// locked version. lock may be nil, in which case only the manifest counts
// as declared.
func (r OverrideReconciler) Reconcile(ctx context.Context, manifest types.Manifest, overrides types.OverrideFile, lock *types.LockFile) (types.ResolvedDependencySet, error) {
	if err := r.checkOverrideTargets(manifest, overrides, lock); err != nil {
		return types.ResolvedDependencySet{}, err
	}
	set := types.NewResolvedDependencySet()
	for _, name := range manifest.DependencyOrder {
		if err := r.apply(set, name, manifest.Dependencies[name], overrides.Overrides[name]); err != nil {
			return types.ResolvedDependencySet{}, err
		}
	}
	for _, name := range overrides.SortedOverrideNames() {
		if _, declared := manifest.Dependencies[name]; declared {
			continue
		}
		if err := r.apply(set, name, nil, overrides.Overrides[name]); err != nil {
			return types.ResolvedDependencySet{}, err
		}
	}
	transitive := 0
	if lock != nil {
		for _, name := range lock.SortedNames() {
			if _, seen := set.Origins[name]; seen {
				continue
			}
			pin := policies.PinFromLock(lock.Packages[name], r.Rewriter)
			switch ref := pin.(type) {
			case types.GitRef:
				set.SetGit(name, ref, types.OriginTransitive)
			case types.PathRef:
				set.SetPath(name, types.PathRef{Path: r.anchorLockPath(ref.Path)}, types.OriginTransitive)
			}
			transitive++
		}
	}
	log.Ctx(ctx).Debug().
		Int("git", len(set.Git)).
		Int("path", len(set.Path)).
		Int("transitive", transitive).
		Msg("dependencies reconciled")
	return set, nil
}

func (r OverrideReconciler) apply(set types.ResolvedDependencySet, name string, primary types.DependencySpec, override types.DependencySpec) error {
	entry, origin, err := policies.ApplyOverride(name, primary, override, r.Rewriter)
	if err != nil {
		return err
	}
	switch ref := entry.(type) {
	case types.GitRef:
		set.SetGit(name, ref, origin)
	case types.PathRef:
		set.SetPath(name, ref, origin)
	}
	return nil
}

func (r OverrideReconciler) checkOverrideTargets(manifest types.Manifest, overrides types.OverrideFile, lock *types.LockFile) error {
	var unknown []string
	for _, name := range overrides.SortedOverrideNames() {
		if _, ok := manifest.Dependencies[name]; ok {
			continue
		}
		if lock != nil {
			if _, ok := lock.Packages[name]; ok {
				continue
			}
		}
		unknown = append(unknown, name)
	}
	if len(unknown) == 0 {
		return nil
	}
	return types.NewError(
		types.ErrUnknownOverrideTarget,
		fmt.Sprintf("override targets not in the dependency graph: %s", strings.Join(unknown, ", ")),
		nil,
	)
}

func (r OverrideReconciler) anchorLockPath(path string) string {
	if path == "" || filepath.IsAbs(path) || r.LockDir == "" {
		return path
	}
	return filepath.Join(r.LockDir, path)
}
