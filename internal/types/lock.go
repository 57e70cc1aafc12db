package types

import "sort"

type LockSourceKind string

const (
	LockSourceGit  LockSourceKind = "Git"
	LockSourcePath LockSourceKind = "Path"
)

type LockSource struct {
	Kind     LockSourceKind
	Location string
}

type LockedPackage struct {
	Revision     string
	Version      string
	Source       LockSource
	Dependencies []string
}

// LockFile is the resolver's Bender.lock. It is read, never written.
type LockFile struct {
	Packages map[string]LockedPackage
}

func (l LockFile) SortedNames() []string {
	return sortedKeys(l.Packages)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
