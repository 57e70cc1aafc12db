package core

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"bendis/internal/types"
)

// RunLockFileName is the advisory lock held inside the staging directory.
const RunLockFileName = ".bendis.lock"

// PlacementPlan describes how root-local modules become visible to the
// staging resolver and which paths each ignore file must cover.
type PlacementPlan struct {
	// Mirrors are top-level project directories linked into the staging
	// directory under the same name.
	Mirrors []string
	// SourceDirs are the top-level directories holding root-local
	// modules. They must stay tracked at the root.
	SourceDirs     []string
	RootEntries    []string
	StagingEntries []string
}

// PlanPlacement computes the placement for the given path dependencies.
// stagingName is the staging directory's name relative to the root; it is
// never mirrored into itself.
func PlanPlacement(pathDeps []types.PathDependency, stagingName string) PlacementPlan {
	mirrors := map[string]struct{}{}
	sources := map[string]struct{}{}
	caches := map[string]struct{}{}
	for _, dep := range pathDeps {
		if !dep.IsRootLocal || dep.RootRel == "" || dep.RootRel == "." {
			continue
		}
		top := topSegment(dep.RootRel)
		if top == "" || top == stagingName {
			continue
		}
		sources[top] = struct{}{}
		caches["/"+dep.RootRel+"/"+types.CacheDirName+"/"] = struct{}{}
		if dep.MirrorDir != "" {
			mirrors[dep.MirrorDir] = struct{}{}
		}
	}

	plan := PlacementPlan{
		Mirrors:        setToSorted(mirrors),
		SourceDirs:     setToSorted(sources),
		RootEntries:    append(RootBaseEntries(), setToSorted(caches)...),
		StagingEntries: StagingBaseEntries(),
	}
	for _, dir := range plan.Mirrors {
		plan.StagingEntries = append(plan.StagingEntries, "/"+dir)
	}
	return plan
}

func setToSorted(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for value := range set {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

// StagingBaseEntries are always ignored inside the staging directory.
func StagingBaseEntries() []string {
	return []string{"/" + types.CacheDirName + "/", "/" + RunLockFileName}
}

// RootBaseEntries are always ignored at the project root.
func RootBaseEntries() []string {
	return []string{"/" + types.CacheDirName + "/"}
}

// UnignoreEntries returns negation entries for mirrored directories that
// a user-authored ignore line would otherwise hide. Root-local modules
// are sources and must stay tracked.
func UnignoreEntries(userLines []string, dirs []string) []string {
	var out []string
	for _, dir := range dirs {
		if ignoredByUser(userLines, dir) {
			out = append(out, "!/"+dir+"/")
		}
	}
	sort.Strings(out)
	return out
}

func ignoredByUser(userLines []string, dir string) bool {
	ignored := false
	for _, raw := range userLines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		negated := strings.HasPrefix(line, "!")
		pattern := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(line, "!"), "/"), "/")
		if pattern == "" {
			continue
		}
		ok, err := doublestar.Match(pattern, dir)
		if err != nil || !ok {
			continue
		}
		ignored = !negated
	}
	return ignored
}
