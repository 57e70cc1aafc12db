package adapters

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bendis/internal/ports"
	"bendis/internal/types"
)

type ManifestFileAdapter struct{}

func NewManifestFileAdapter() ManifestFileAdapter {
	return ManifestFileAdapter{}
}

func (a ManifestFileAdapter) LoadManifest(path string) (types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.Manifest{}, types.NewError(types.ErrNotInitialized, "manifest not found: "+path, err)
		}
		return types.Manifest{}, readError(path, err)
	}
	return ParseManifest(data)
}

func (a ManifestFileAdapter) LoadOverrides(path string) (types.OverrideFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.OverrideFile{Overrides: map[string]types.DependencySpec{}}, nil
		}
		return types.OverrideFile{}, readError(path, err)
	}
	return ParseOverrides(data)
}

func (a ManifestFileAdapter) LoadLock(path string) (types.LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.LockFile{}, types.NewError(types.ErrResolutionFailure, "resolver did not produce "+path, err)
	}
	return ParseLock(data)
}

func readError(path string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to read " + path).
		WithCause(err)
}

var _ ports.ManifestPort = ManifestFileAdapter{}
