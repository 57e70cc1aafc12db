package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"bendis/internal/core"
	"bendis/internal/policies"
	"bendis/internal/types"
)

// Inspect reports how the staging manifest maps onto the derived root
// files without running the resolver or writing anything.
func (s Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	layout, err := resolveLayout(req.Root, req.StagingDir)
	if err != nil {
		return InspectResult{}, err
	}
	manifest, err := s.Manifests.LoadManifest(layout.inStaging(types.ManifestFileName))
	if err != nil {
		return InspectResult{}, err
	}
	overrides, err := s.Manifests.LoadOverrides(layout.inStaging(types.OverridesFileName))
	if err != nil {
		return InspectResult{}, err
	}
	policy, err := policies.NewRewritePolicy(s.Settings.RewriteRules)
	if err != nil {
		return InspectResult{}, err
	}

	result := InspectResult{StagingDir: layout.Staging, Package: manifest.Package.Name}
	stagingLock, err := s.optionalLock(layout.inStaging(types.LockFileName))
	if err != nil {
		return InspectResult{}, err
	}
	if stagingLock != nil {
		result.StagingLocked = len(stagingLock.Packages)
	}
	rootLock, err := s.optionalLock(layout.inRoot(types.LockFileName))
	if err != nil {
		return InspectResult{}, err
	}
	if rootLock != nil {
		result.RootLocked = len(rootLock.Packages)
	}

	set, err := core.NewOverrideReconciler(policy, layout.Staging).Reconcile(ctx, manifest, overrides, stagingLock)
	if err != nil {
		return InspectResult{}, err
	}
	for _, name := range set.Names() {
		derived, _ := set.Lookup(name)
		declared, ok := overrides.Overrides[name]
		if !ok {
			declared, ok = manifest.Dependencies[name]
		}
		entry := InspectDependency{
			Name:    name,
			Derived: describeSpec(derived),
			Origin:  set.Origins[name],
		}
		if ok {
			entry.Declared = describeSpec(declared)
		}
		result.Dependencies = append(result.Dependencies, entry)
	}

	rootManifest := layout.inRoot(types.ManifestFileName)
	if s.Workspace.Exists(rootManifest) {
		content, err := s.Workspace.ReadFile(rootManifest)
		if err != nil {
			return InspectResult{}, err
		}
		result.RootDerived = core.IsDerived(content)
	}
	result.StaleArtifacts, err = s.Workspace.StaleArtifacts(layout.Root, layout.Staging)
	if err != nil {
		return InspectResult{}, err
	}
	result.ManagedRoot, err = s.managedEntries(layout.inRoot(types.GitignoreFileName))
	if err != nil {
		return InspectResult{}, err
	}
	result.ManagedStaging, err = s.managedEntries(layout.inStaging(types.GitignoreFileName))
	if err != nil {
		return InspectResult{}, err
	}
	log.Ctx(ctx).Debug().Int("dependencies", len(result.Dependencies)).Msg("workspace inspected")
	return result, nil
}

func (s Service) optionalLock(path string) (*types.LockFile, error) {
	if !s.Workspace.Exists(path) {
		return nil, nil
	}
	lock, err := s.Manifests.LoadLock(path)
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

func (s Service) managedEntries(path string) ([]string, error) {
	if !s.Workspace.Exists(path) {
		return nil, nil
	}
	content, err := s.Workspace.ReadFile(path)
	if err != nil {
		return nil, err
	}
	state, err := core.ParseGitignore(content)
	if err != nil {
		return nil, err
	}
	return state.ManagedEntries(), nil
}

func describeSpec(spec types.DependencySpec) string {
	switch ref := spec.(type) {
	case types.GitRef:
		switch {
		case ref.Version != "":
			return fmt.Sprintf("%s @ %s", ref.URL, ref.Version)
		case ref.Revision != "":
			return fmt.Sprintf("%s # %s", ref.URL, ref.Revision)
		default:
			return ref.URL
		}
	case types.PathRef:
		return "path " + ref.Path
	default:
		return ""
	}
}
