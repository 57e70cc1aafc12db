package ports

import "bendis/internal/types"

// ManifestPort loads the three resolver artifacts.
type ManifestPort interface {
	LoadManifest(path string) (types.Manifest, error)
	// LoadOverrides returns an empty override file when path does not exist.
	LoadOverrides(path string) (types.OverrideFile, error)
	LoadLock(path string) (types.LockFile, error)
}
