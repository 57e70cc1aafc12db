package types

import "gopkg.in/yaml.v3"

// Well-known file names inside the staging directory and the project root.
const (
	ManifestFileName  = "Bender.yml"
	OverridesFileName = ".bender.yml"
	LockFileName      = "Bender.lock"
	CacheDirName      = ".bender"
	GitignoreFileName = ".gitignore"
)

// DefaultStagingDir is the staging directory created by init.
const DefaultStagingDir = "bendis_workspace"

// LegacyStagingDir is the staging directory name used by older releases.
const LegacyStagingDir = ".bendis"

type PackageInfo struct {
	Name    string
	Authors []string
}

// DependencySpec is the closed set of ways a dependency can be sourced.
// GitRef and PathRef are the only implementations.
type DependencySpec interface {
	dependencySpec()
}

// GitRef points at a remote repository. At most one of Version and
// Revision is set.
type GitRef struct {
	URL      string
	Version  string
	Revision string
}

func (GitRef) dependencySpec() {}

// PathRef points at a directory on the local filesystem.
type PathRef struct {
	Path string
}

func (PathRef) dependencySpec() {}

// Manifest is a parsed Bender.yml. Document holds the full parsed YAML so
// that keys the model does not interpret survive a rewrite.
type Manifest struct {
	Package         PackageInfo
	Dependencies    map[string]DependencySpec
	DependencyOrder []string
	Sources         []string
	IncludeDirs     []string
	Document        *yaml.Node
}

// IsBlank reports whether the manifest declares no dependencies and no
// sources. A freshly initialized staging manifest is blank.
func (m Manifest) IsBlank() bool {
	return len(m.Dependencies) == 0 && len(m.Sources) == 0
}

// OverrideFile is a parsed .bender.yml.
type OverrideFile struct {
	Overrides map[string]DependencySpec
	Document  *yaml.Node
}

func (o OverrideFile) IsBlank() bool {
	return len(o.Overrides) == 0
}

// SortedOverrideNames returns override names in lexical order.
func (o OverrideFile) SortedOverrideNames() []string {
	return sortedKeys(o.Overrides)
}
