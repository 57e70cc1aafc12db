package app

import (
	"bendis/internal/core"
	"bendis/internal/ports"
	"bendis/internal/types"
)

type InitRequest struct {
	Root       string
	StagingDir string
}

type InitResult struct {
	StagingDir string
	Created    []string
}

type UpdateRequest struct {
	Root       string
	StagingDir string
	// Force replaces a root manifest that bendis did not generate.
	Force bool
}

type UpdateResult struct {
	Dependencies     int
	PathDependencies []types.PathDependency
	Mirrors          []string
	Changed          []string
	Drift            []core.LockDrift
	RootLocked       int
	CachePresent     bool
}

type InspectRequest struct {
	Root       string
	StagingDir string
}

type InspectDependency struct {
	Name     string
	Declared string
	Derived  string
	Origin   types.DependencyOrigin
}

type InspectResult struct {
	StagingDir     string
	Package        string
	Dependencies   []InspectDependency
	RootDerived    bool
	StagingLocked  int
	RootLocked     int
	StaleArtifacts []string
	ManagedRoot    []string
	ManagedStaging []string
}

type MigrateRequest struct {
	Root       string
	StagingDir string
}

type MigrateResult struct {
	From     string
	To       string
	Migrated bool
}

type PassthroughRequest struct {
	Root  string
	Args  []string
	Stdio ports.Stdio
}

type ConfigRequest struct {
	Path string
}

type ConfigResult struct {
	Path     string
	Created  bool
	Settings types.Settings
}
