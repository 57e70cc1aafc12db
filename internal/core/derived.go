package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"bendis/internal/types"
)

// DerivedDependencies holds the entries of the two derived root files.
type DerivedDependencies struct {
	// Manifest follows the staging manifest's declaration order.
	Manifest []types.NamedDependency
	// Overrides holds overridden and transitive entries sorted by name.
	Overrides []types.NamedDependency
}

// PlanDerived lays out the derived root manifest and override file from
// the resolved set. Path entries use the reference computed by the
// extractor: root-relative for root-local modules, canonical otherwise.
func PlanDerived(ctx context.Context, manifest types.Manifest, set types.ResolvedDependencySet, pathDeps []types.PathDependency) DerivedDependencies {
	refs := make(map[string]string, len(pathDeps))
	for _, dep := range pathDeps {
		refs[dep.Name] = dep.Reference()
	}
	entry := func(name string) (types.NamedDependency, bool) {
		if ref, ok := set.Git[name]; ok {
			return types.NamedDependency{Name: name, Spec: ref}, true
		}
		if ref, ok := set.Path[name]; ok {
			if resolved, found := refs[name]; found {
				ref.Path = resolved
			}
			return types.NamedDependency{Name: name, Spec: ref}, true
		}
		return types.NamedDependency{}, false
	}

	var derived DerivedDependencies
	for _, name := range manifest.DependencyOrder {
		if dep, ok := entry(name); ok {
			derived.Manifest = append(derived.Manifest, dep)
		}
	}
	for _, name := range set.Names() {
		origin := set.Origins[name]
		if origin != types.OriginOverride && origin != types.OriginTransitive {
			continue
		}
		if dep, ok := entry(name); ok {
			derived.Overrides = append(derived.Overrides, dep)
		}
	}
	log.Ctx(ctx).Debug().
		Int("manifest", len(derived.Manifest)).
		Int("overrides", len(derived.Overrides)).
		Msg("derived dependencies planned")
	return derived
}
