package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"bendis/internal/adapters"
	"bendis/internal/core"
	"bendis/internal/policies"
	"bendis/internal/ports"
	"bendis/internal/types"
)

// updateRun carries the state of one synchronization between steps.
type updateRun struct {
	layout    workspaceLayout
	manifest  types.Manifest
	overrides types.OverrideFile
	policy    policies.RewritePolicy
	lock      ports.Releaser
	mirrors   []string
}

// Update synchronizes the project root with the staging directory. Every
// failure is reported as a *types.SyncError naming the failed step.
func (s Service) Update(ctx context.Context, req UpdateRequest) (UpdateResult, error) {
	layout, err := resolveLayout(req.Root, req.StagingDir)
	if err != nil {
		return UpdateResult{}, stepError(types.StepPrepare, err)
	}
	assert.NotEmpty(ctx, layout.Root, "project root must be resolved")
	assert.NotEmpty(ctx, layout.Staging, "staging directory must be resolved")
	logger := log.Ctx(ctx)

	run, err := s.prepareUpdate(ctx, layout, req.Force)
	if err != nil {
		return UpdateResult{}, stepError(types.StepPrepare, err)
	}
	defer s.releaseRun(ctx, run)

	logger.Info().Str("dir", layout.Staging).Msg("resolving against upstream")
	stagingLock, err := s.resolveIn(ctx, layout.Staging)
	if err != nil {
		return UpdateResult{}, stepError(types.StepResolveStaging, err)
	}

	if err := ctx.Err(); err != nil {
		return UpdateResult{}, stepError(types.StepBuildResolved, err)
	}
	reconciler := core.NewOverrideReconciler(run.policy, layout.Staging)
	set, err := reconciler.Reconcile(ctx, run.manifest, run.overrides, &stagingLock)
	if err != nil {
		return UpdateResult{}, stepError(types.StepBuildResolved, err)
	}
	_, pathDeps, err := core.NewPathExtractor().Extract(ctx, set, layout.Root)
	if err != nil {
		return UpdateResult{}, stepError(types.StepBuildResolved, err)
	}
	derived := core.PlanDerived(ctx, run.manifest, set, pathDeps)
	plan := core.PlanPlacement(pathDeps, layout.StagingName)

	if err := ctx.Err(); err != nil {
		return UpdateResult{}, stepError(types.StepWriteDerived, err)
	}
	tx, err := s.writeDerived(run, derived)
	if err != nil {
		return UpdateResult{}, stepError(types.StepWriteDerived, err)
	}

	logger.Info().Str("dir", layout.Root).Msg("resolving against mirror")
	rootLock, err := s.resolveIn(ctx, layout.Root)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			err = errors.Join(err, rollbackErr)
		}
		return UpdateResult{}, stepError(types.StepResolveRoot, err)
	}
	changed := tx.Changed()
	if err := tx.Finish(); err != nil {
		return UpdateResult{}, stepError(types.StepResolveRoot, err)
	}
	drift := core.DetectLockDrift(ctx, stagingLock, rootLock)
	for _, entry := range drift {
		logger.Warn().
			Str("dependency", entry.Name).
			Str("upstream", entry.Staging).
			Str("mirror", entry.Root).
			Msg("mirror lags upstream")
	}

	gitignoreChanged, err := s.reconcileGitignores(ctx, layout, plan)
	if err != nil {
		return UpdateResult{}, stepError(types.StepGitignore, err)
	}
	changed = append(changed, gitignoreChanged...)

	if err := s.Workspace.RemoveAll(layout.inStaging(types.CacheDirName)); err != nil {
		return UpdateResult{}, stepError(types.StepCleanup, err)
	}

	result := UpdateResult{
		Dependencies:     len(derived.Manifest) + len(derived.Overrides),
		PathDependencies: pathDeps,
		Mirrors:          run.mirrors,
		Changed:          changed,
		Drift:            drift,
		RootLocked:       len(rootLock.Packages),
		CachePresent:     s.Workspace.Exists(layout.inRoot(types.CacheDirName)),
	}
	logger.Info().
		Int("dependencies", result.Dependencies).
		Int("changed", len(result.Changed)).
		Int("drift", len(result.Drift)).
		Msg("update complete")
	return result, nil
}

// prepareUpdate takes the run lock, loads the staging artifacts, checks
// that the run may replace the root files and links root-local module
// directories into the staging directory.
func (s Service) prepareUpdate(ctx context.Context, layout workspaceLayout, force bool) (*updateRun, error) {
	if !s.Workspace.Exists(layout.Staging) {
		return nil, types.NewError(
			types.ErrNotInitialized,
			fmt.Sprintf("staging directory %s not found; run `bendis init` first", layout.Staging),
			nil,
		)
	}
	stale, err := s.Workspace.StaleArtifacts(layout.Root, layout.Staging)
	if err != nil {
		return nil, err
	}
	if len(stale) > 0 {
		return nil, types.NewError(
			types.ErrWorkspaceBusy,
			"leftovers of an interrupted run found, restore or remove them: "+strings.Join(stale, ", "),
			nil,
		)
	}
	lock, err := s.RunLock.Acquire(layout.inStaging(core.RunLockFileName))
	if err != nil {
		return nil, err
	}
	run := &updateRun{layout: layout, lock: lock}

	if err := s.loadRun(ctx, run, force); err != nil {
		s.releaseRun(ctx, run)
		return nil, err
	}
	return run, nil
}

func (s Service) loadRun(ctx context.Context, run *updateRun, force bool) error {
	layout := run.layout
	manifest, err := s.Manifests.LoadManifest(layout.inStaging(types.ManifestFileName))
	if err != nil {
		return err
	}
	overrides, err := s.Manifests.LoadOverrides(layout.inStaging(types.OverridesFileName))
	if err != nil {
		return err
	}
	policy, err := policies.NewRewritePolicy(s.Settings.RewriteRules)
	if err != nil {
		return err
	}
	run.manifest = manifest
	run.overrides = overrides
	run.policy = policy

	for _, name := range []string{types.ManifestFileName, types.OverridesFileName} {
		if err := s.checkOwnership(layout.inRoot(name), force); err != nil {
			return err
		}
	}
	if s.Settings.ManageGitignore {
		for _, path := range []string{layout.inRoot(types.GitignoreFileName), layout.inStaging(types.GitignoreFileName)} {
			if _, _, err := s.updatedGitignore(path, nil); err != nil {
				return err
			}
		}
	}

	_, declared, err := core.NewPathExtractor().Extract(ctx, declaredPaths(manifest, overrides), layout.Root)
	if err != nil {
		return err
	}
	placement := core.PlanPlacement(declared, layout.StagingName)
	for _, dir := range placement.Mirrors {
		linked, err := s.Workspace.LinkMirror(layout.inStaging(dir), layout.inRoot(dir))
		if err != nil {
			return err
		}
		if !linked {
			log.Ctx(ctx).Warn().
				Str("dir", layout.inStaging(dir)).
				Msg("staging directory holds a real directory where a module mirror belongs; leaving it in place")
			continue
		}
		run.mirrors = append(run.mirrors, dir)
	}
	return nil
}

// releaseRun removes the mirror links and drops the run lock.
func (s Service) releaseRun(ctx context.Context, run *updateRun) {
	for _, dir := range run.mirrors {
		if err := s.Workspace.RemoveMirror(run.layout.inStaging(dir)); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("dir", dir).Msg("failed to remove module mirror")
		}
	}
	run.lock.Release()
}

func (s Service) checkOwnership(path string, force bool) error {
	if !s.Workspace.Exists(path) {
		return nil
	}
	content, err := s.Workspace.ReadFile(path)
	if err != nil {
		return err
	}
	return core.CheckRootManifestOwnership(path, content, true, force)
}

// declaredPaths collects the path entries the staging resolver will see,
// with overrides taking precedence.
func declaredPaths(manifest types.Manifest, overrides types.OverrideFile) types.ResolvedDependencySet {
	set := types.NewResolvedDependencySet()
	for name, spec := range manifest.Dependencies {
		if ref, ok := spec.(types.PathRef); ok {
			set.SetPath(name, ref, types.OriginManifest)
		}
	}
	for name, spec := range overrides.Overrides {
		switch ref := spec.(type) {
		case types.PathRef:
			set.SetPath(name, ref, types.OriginOverride)
		case types.GitRef:
			delete(set.Path, name)
		}
	}
	return set
}

func (s Service) resolveIn(ctx context.Context, dir string) (types.LockFile, error) {
	if err := ctx.Err(); err != nil {
		return types.LockFile{}, err
	}
	if err := s.Resolver.Update(ctx, dir); err != nil {
		return types.LockFile{}, err
	}
	return s.Manifests.LoadLock(filepath.Join(dir, types.LockFileName))
}

// writeDerived commits the derived root manifest and override file and
// protects the root lock, so a failed root resolution can be undone.
func (s Service) writeDerived(run *updateRun, derived core.DerivedDependencies) (ports.Transaction, error) {
	layout := run.layout
	header := core.DerivedHeader(layout.StagingName)
	manifest, err := adapters.RenderManifest(header, run.manifest, derived.Manifest)
	if err != nil {
		return nil, err
	}
	overrides, err := adapters.RenderOverrides(header, run.overrides, derived.Overrides)
	if err != nil {
		return nil, err
	}

	tx := s.Transactions.Begin()
	fail := func(err error) (ports.Transaction, error) {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			err = errors.Join(err, rollbackErr)
		}
		return nil, err
	}
	if err := tx.Stage(layout.inRoot(types.ManifestFileName), manifest); err != nil {
		return fail(err)
	}
	if err := tx.Stage(layout.inRoot(types.OverridesFileName), overrides); err != nil {
		return fail(err)
	}
	if err := tx.Commit(); err != nil {
		return fail(err)
	}
	if err := tx.Protect(layout.inRoot(types.LockFileName)); err != nil {
		return fail(err)
	}
	return tx, nil
}

// reconcileGitignores updates the managed blocks at the root and in the
// staging directory and returns the files it rewrote.
func (s Service) reconcileGitignores(ctx context.Context, layout workspaceLayout, plan core.PlacementPlan) ([]string, error) {
	if !s.Settings.ManageGitignore {
		log.Ctx(ctx).Info().Msg("gitignore management disabled; skipping")
		return nil, nil
	}
	rootPath := layout.inRoot(types.GitignoreFileName)
	rootEntries, err := s.rootIgnoreEntries(rootPath, plan)
	if err != nil {
		return nil, err
	}
	targets := []struct {
		path    string
		entries []string
	}{
		{path: rootPath, entries: rootEntries},
		{path: layout.inStaging(types.GitignoreFileName), entries: plan.StagingEntries},
	}
	var changed []string
	for _, target := range targets {
		content, updated, err := s.updatedGitignore(target.path, target.entries)
		if err != nil {
			return nil, err
		}
		if !updated {
			continue
		}
		if err := s.Workspace.WriteFileAtomic(target.path, content); err != nil {
			return nil, err
		}
		log.Ctx(ctx).Debug().Str("path", target.path).Msg("ignore file updated")
		changed = append(changed, target.path)
	}
	return changed, nil
}

func (s Service) rootIgnoreEntries(path string, plan core.PlacementPlan) ([]string, error) {
	entries := append([]string(nil), plan.RootEntries...)
	if len(plan.SourceDirs) == 0 || !s.Workspace.Exists(path) {
		return entries, nil
	}
	content, err := s.Workspace.ReadFile(path)
	if err != nil {
		return nil, err
	}
	state, err := core.ParseGitignore(content)
	if err != nil {
		return nil, err
	}
	return append(entries, core.UnignoreEntries(state.UserLines(), plan.SourceDirs)...), nil
}

func stepError(step types.SyncStep, err error) error {
	return &types.SyncError{Step: step, Cause: err}
}
