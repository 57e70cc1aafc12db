package policies

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bendis/internal/ports"
	"bendis/internal/types"
)

// ApplyOverride picks the entry that goes into the resolved set for one
// dependency. An override replaces the primary entry as a whole. Git
// entries are passed through the rewrite policy, path entries never are.
func ApplyOverride(name string, primary types.DependencySpec, override types.DependencySpec, rewriter ports.RewritePolicyPort) (types.DependencySpec, types.DependencyOrigin, error) {
	origin := types.OriginManifest
	chosen := primary
	if override != nil {
		origin = types.OriginOverride
		chosen = override
	}
	switch ref := chosen.(type) {
	case types.GitRef:
		ref.URL = rewriter.Rewrite(ref.URL)
		return ref, origin, nil
	case types.PathRef:
		return ref, origin, nil
	case nil:
		return nil, origin, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("dependency %s has no source", name))
	default:
		return nil, origin, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("dependency %s has an unsupported source type %T", name, chosen))
	}
}

// PinFromLock turns a locked package into a dependency entry. The locked
// version is preferred; the revision is used when no version was locked.
func PinFromLock(pkg types.LockedPackage, rewriter ports.RewritePolicyPort) types.DependencySpec {
	if pkg.Source.Kind == types.LockSourcePath {
		return types.PathRef{Path: pkg.Source.Location}
	}
	ref := types.GitRef{URL: rewriter.Rewrite(pkg.Source.Location)}
	if pkg.Version != "" {
		ref.Version = pkg.Version
	} else {
		ref.Revision = pkg.Revision
	}
	return ref
}
