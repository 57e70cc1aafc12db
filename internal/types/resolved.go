package types

// RewriteRule maps remotes matching Pattern onto Target. Pattern is a
// glob over the scheme-less remote (host/path). A single "*" in Target
// receives the part of the remote matched by the pattern's wildcards.
type RewriteRule struct {
	Pattern string `mapstructure:"pattern" toml:"pattern" yaml:"pattern"`
	Target  string `mapstructure:"target" toml:"target" yaml:"target"`
}

// DependencyOrigin records why a dependency ended up in the resolved set.
type DependencyOrigin string

const (
	OriginManifest   DependencyOrigin = "manifest"
	OriginOverride   DependencyOrigin = "override"
	OriginTransitive DependencyOrigin = "transitive"
)

// ResolvedDependencySet is the reconciled view of all dependencies. A
// name lives in exactly one of Git and Path.
type ResolvedDependencySet struct {
	Git     map[string]GitRef
	Path    map[string]PathRef
	Origins map[string]DependencyOrigin
}

func NewResolvedDependencySet() ResolvedDependencySet {
	return ResolvedDependencySet{
		Git:     map[string]GitRef{},
		Path:    map[string]PathRef{},
		Origins: map[string]DependencyOrigin{},
	}
}

func (s ResolvedDependencySet) SetGit(name string, ref GitRef, origin DependencyOrigin) {
	delete(s.Path, name)
	s.Git[name] = ref
	s.Origins[name] = origin
}

func (s ResolvedDependencySet) SetPath(name string, ref PathRef, origin DependencyOrigin) {
	delete(s.Git, name)
	s.Path[name] = ref
	s.Origins[name] = origin
}

// Lookup returns the resolved entry for name, if any.
func (s ResolvedDependencySet) Lookup(name string) (DependencySpec, bool) {
	if ref, ok := s.Git[name]; ok {
		return ref, true
	}
	if ref, ok := s.Path[name]; ok {
		return ref, true
	}
	return nil, false
}

func (s ResolvedDependencySet) Len() int {
	return len(s.Git) + len(s.Path)
}

// Names returns every resolved name in lexical order.
func (s ResolvedDependencySet) Names() []string {
	return sortedKeys(s.Origins)
}

// PathDependency is a PathRef after canonicalization against the project
// root. It is computed on every run and never persisted.
type PathDependency struct {
	Name        string
	Declared    string
	Canonical   string
	RootRel     string
	IsRootLocal bool
	// MirrorDir is the top-level directory of a relative root-local path.
	// It must be visible from the staging directory for the staging
	// resolver to find the module.
	MirrorDir   string
}

// Reference is the path written into derived manifests: the root-relative
// path for root-local modules, the canonical absolute path otherwise.
func (p PathDependency) Reference() string {
	if p.IsRootLocal {
		return p.RootRel
	}
	return p.Canonical
}

// NamedDependency is one entry of a derived manifest, in output order.
type NamedDependency struct {
	Name string
	Spec DependencySpec
}
