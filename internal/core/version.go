package core

import (
	"context"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"
	"github.com/rs/zerolog/log"

	"bendis/internal/types"
)

// LockDrift describes a package whose root-stage lock is behind the
// version chosen against upstream. This happens when the mirror has not
// caught up with a release yet.
type LockDrift struct {
	Name    string
	Staging string
	Root    string
}

// versionCache memoizes parsed versions. Bender versions are semver,
// which PEP 440 accepts; Debian ordering covers the rest.
type versionCache struct {
	deb map[string]debversion.Version
	pep map[string]pep440.Version
}

func newVersionCache() *versionCache {
	return &versionCache{
		deb: map[string]debversion.Version{},
		pep: map[string]pep440.Version{},
	}
}

func (c *versionCache) debVersion(value string) (debversion.Version, error) {
	if parsed, ok := c.deb[value]; ok {
		return parsed, nil
	}
	parsed, err := debversion.NewVersion(value)
	if err != nil {
		return debversion.Version{}, err
	}
	c.deb[value] = parsed
	return parsed, nil
}

func (c *versionCache) pepVersion(value string) (pep440.Version, error) {
	if parsed, ok := c.pep[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		return pep440.Version{}, err
	}
	c.pep[value] = parsed
	return parsed, nil
}

// compare returns -1, 0 or 1. Versions neither scheme can parse compare
// as equal.
func (c *versionCache) compare(a string, b string) int {
	a = strings.TrimPrefix(strings.TrimSpace(a), "v")
	b = strings.TrimPrefix(strings.TrimSpace(b), "v")
	if v1, err := c.pepVersion(a); err == nil {
		if v2, err := c.pepVersion(b); err == nil {
			return v1.Compare(v2)
		}
	}
	v1, err := c.debVersion(a)
	if err != nil {
		return 0
	}
	v2, err := c.debVersion(b)
	if err != nil {
		return 0
	}
	return v1.Compare(v2)
}

// DetectLockDrift compares the staging lock (resolved against upstream)
// with the root lock (resolved against the mirror).
func DetectLockDrift(ctx context.Context, staging types.LockFile, root types.LockFile) []LockDrift {
	cache := newVersionCache()
	var drift []LockDrift
	for _, name := range staging.SortedNames() {
		want := staging.Packages[name]
		got, ok := root.Packages[name]
		if !ok {
			drift = append(drift, LockDrift{Name: name, Staging: lockLabel(want)})
			continue
		}
		if want.Version == "" || got.Version == "" {
			continue
		}
		if cache.compare(got.Version, want.Version) < 0 {
			drift = append(drift, LockDrift{Name: name, Staging: want.Version, Root: got.Version})
		}
	}
	log.Ctx(ctx).Debug().Int("drifted", len(drift)).Msg("lock drift checked")
	return drift
}

func lockLabel(pkg types.LockedPackage) string {
	if pkg.Version != "" {
		return pkg.Version
	}
	return pkg.Revision
}
