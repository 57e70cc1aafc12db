package adapters

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"bendis/internal/types"
)

const (
	keyPackage      = "package"
	keyDependencies = "dependencies"
	keySources      = "sources"
	keyIncludeDirs  = "export_include_dirs"
	keyOverrides    = "overrides"
	keyGit          = "git"
	keyVersion      = "version"
	keyRevision     = "rev"
	keyPath         = "path"
	strTag          = "!!str"
)

// ParseManifest decodes a Bender.yml. Keys the model does not use are
// kept in the returned document.
func ParseManifest(data []byte) (types.Manifest, error) {
	manifest := types.Manifest{Dependencies: map[string]types.DependencySpec{}}
	doc, root, err := decodeMapping(data)
	if err != nil {
		return types.Manifest{}, malformed("manifest", err)
	}
	if root == nil {
		return manifest, nil
	}
	manifest.Document = doc
	err = walkMapping(root, func(key string, value *yaml.Node) error {
		switch key {
		case keyPackage:
			return parsePackage(value, &manifest.Package)
		case keyDependencies:
			deps, order, err := parseDependencyMap(value, keyDependencies)
			if err != nil {
				return err
			}
			manifest.Dependencies = deps
			manifest.DependencyOrder = order
		case keySources:
			return collectSources(value, &manifest.Sources)
		case keyIncludeDirs:
			dirs, err := scalarList(value, keyIncludeDirs)
			if err != nil {
				return err
			}
			manifest.IncludeDirs = dirs
		}
		return nil
	})
	if err != nil {
		return types.Manifest{}, malformed("manifest", err)
	}
	return manifest, nil
}

// ParseOverrides decodes a .bender.yml.
func ParseOverrides(data []byte) (types.OverrideFile, error) {
	overrides := types.OverrideFile{Overrides: map[string]types.DependencySpec{}}
	doc, root, err := decodeMapping(data)
	if err != nil {
		return types.OverrideFile{}, malformed("override file", err)
	}
	if root == nil {
		return overrides, nil
	}
	overrides.Document = doc
	err = walkMapping(root, func(key string, value *yaml.Node) error {
		if key != keyOverrides {
			return nil
		}
		deps, _, err := parseDependencyMap(value, keyOverrides)
		if err != nil {
			return err
		}
		overrides.Overrides = deps
		return nil
	})
	if err != nil {
		return types.OverrideFile{}, malformed("override file", err)
	}
	return overrides, nil
}

type lockDocument struct {
	Packages map[string]lockPackage `yaml:"packages"`
}

type lockPackage struct {
	Revision     *string           `yaml:"revision"`
	Version      *string           `yaml:"version"`
	Source       map[string]string `yaml:"source"`
	Dependencies []string          `yaml:"dependencies"`
}

// ParseLock decodes a Bender.lock. A lock the resolver wrote but we cannot
// read is a resolution failure, not a user error.
func ParseLock(data []byte) (types.LockFile, error) {
	var doc lockDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.LockFile{}, types.NewError(types.ErrResolutionFailure, "lock file is not valid YAML", err)
	}
	lock := types.LockFile{Packages: make(map[string]types.LockedPackage, len(doc.Packages))}
	for name, pkg := range doc.Packages {
		source, err := lockSource(name, pkg.Source)
		if err != nil {
			return types.LockFile{}, err
		}
		lock.Packages[name] = types.LockedPackage{
			Revision:     deref(pkg.Revision),
			Version:      deref(pkg.Version),
			Source:       source,
			Dependencies: pkg.Dependencies,
		}
	}
	return lock, nil
}

func lockSource(name string, source map[string]string) (types.LockSource, error) {
	git, hasGit := source[string(types.LockSourceGit)]
	path, hasPath := source[string(types.LockSourcePath)]
	switch {
	case hasGit && !hasPath && len(source) == 1:
		return types.LockSource{Kind: types.LockSourceGit, Location: git}, nil
	case hasPath && !hasGit && len(source) == 1:
		return types.LockSource{Kind: types.LockSourcePath, Location: path}, nil
	default:
		return types.LockSource{}, types.NewError(
			types.ErrResolutionFailure,
			fmt.Sprintf("lock entry %s must have exactly one Git or Path source", name),
			nil,
		)
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// RenderManifest produces the derived root Bender.yml: the staging
// document with its dependencies replaced by deps.
func RenderManifest(header string, base types.Manifest, deps []types.NamedDependency) ([]byte, error) {
	return renderWithKey(header, base.Document, keyDependencies, deps)
}

// RenderOverrides produces the derived root .bender.yml.
func RenderOverrides(header string, base types.OverrideFile, deps []types.NamedDependency) ([]byte, error) {
	return renderWithKey(header, base.Document, keyOverrides, deps)
}

func renderWithKey(header string, base *yaml.Node, key string, deps []types.NamedDependency) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode}
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if base != nil && len(base.Content) > 0 && base.Content[0].Kind == yaml.MappingNode {
		doc = cloneNode(base)
		root = doc.Content[0]
	} else {
		doc.Content = []*yaml.Node{root}
	}
	doc.HeadComment = ""

	value := dependencyMapNode(deps)
	replaced := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			root.Content[i+1] = value
			replaced = true
			break
		}
	}
	if !replaced {
		root.Content = append(root.Content, scalarNode(key, 0), value)
	}

	var buf bytes.Buffer
	if header != "" {
		buf.WriteString(header)
		buf.WriteString("\n")
	}
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

func dependencyMapNode(deps []types.NamedDependency) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if len(deps) == 0 {
		node.Style = yaml.FlowStyle
	}
	for _, dep := range deps {
		node.Content = append(node.Content, scalarNode(dep.Name, 0), dependencyNode(dep.Spec))
	}
	return node
}

func dependencyNode(spec types.DependencySpec) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}
	switch ref := spec.(type) {
	case types.GitRef:
		node.Content = append(node.Content, scalarNode(keyGit, 0), scalarNode(ref.URL, yaml.DoubleQuotedStyle))
		if ref.Version != "" {
			node.Content = append(node.Content, scalarNode(keyVersion, 0), scalarNode(ref.Version, 0))
		}
		if ref.Revision != "" {
			node.Content = append(node.Content, scalarNode(keyRevision, 0), scalarNode(ref.Revision, yaml.DoubleQuotedStyle))
		}
	case types.PathRef:
		node.Content = append(node.Content, scalarNode(keyPath, 0), scalarNode(ref.Path, yaml.DoubleQuotedStyle))
	}
	return node
}

func scalarNode(value string, style yaml.Style) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: strTag, Value: value, Style: style}
}

func cloneNode(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}
	out := *node
	out.Content = make([]*yaml.Node, len(node.Content))
	for i, child := range node.Content {
		out.Content[i] = cloneNode(child)
	}
	return &out
}

// decodeMapping parses data and returns the document plus its top-level
// mapping. Both are nil for an empty or null document.
func decodeMapping(data []byte) (*yaml.Node, *yaml.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("line %d: top level must be a mapping", root.Line)
	}
	return &doc, root, nil
}

// walkMapping visits key/value pairs and rejects duplicate keys.
func walkMapping(node *yaml.Node, visit func(key string, value *yaml.Node) error) error {
	seen := map[string]int{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
		}
		if line, dup := seen[key.Value]; dup {
			return fmt.Errorf("line %d: duplicate key %q (first defined on line %d)", key.Line, key.Value, line)
		}
		seen[key.Value] = key.Line
		if err := visit(key.Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func parsePackage(node *yaml.Node, info *types.PackageInfo) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: package must be a mapping", node.Line)
	}
	return walkMapping(node, func(key string, value *yaml.Node) error {
		switch key {
		case "name":
			if value.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: package.name must be a string", value.Line)
			}
			info.Name = value.Value
		case "authors":
			authors, err := scalarList(value, "package.authors")
			if err != nil {
				return err
			}
			info.Authors = authors
		}
		return nil
	})
}

func parseDependencyMap(node *yaml.Node, section string) (map[string]types.DependencySpec, []string, error) {
	deps := map[string]types.DependencySpec{}
	if isNull(node) {
		return deps, nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("line %d: %s must be a mapping", node.Line, section)
	}
	var order []string
	err := walkMapping(node, func(name string, value *yaml.Node) error {
		spec, err := parseDependency(name, value)
		if err != nil {
			return err
		}
		deps[name] = spec
		order = append(order, name)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return deps, order, nil
}

func parseDependency(name string, node *yaml.Node) (types.DependencySpec, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: dependency %s must be a mapping with git or path", node.Line, name)
	}
	fields := map[string]string{}
	err := walkMapping(node, func(key string, value *yaml.Node) error {
		switch key {
		case keyGit, keyVersion, keyRevision, keyPath:
		default:
			return fmt.Errorf("line %d: dependency %s has unknown field %q", value.Line, name, key)
		}
		if value.Kind != yaml.ScalarNode || isNull(value) {
			return fmt.Errorf("line %d: dependency %s field %s must be a string", value.Line, name, key)
		}
		fields[key] = value.Value
		return nil
	})
	if err != nil {
		return nil, err
	}
	git, hasGit := fields[keyGit]
	path, hasPath := fields[keyPath]
	version, hasVersion := fields[keyVersion]
	revision, hasRevision := fields[keyRevision]
	switch {
	case hasGit && hasPath:
		return nil, fmt.Errorf("line %d: dependency %s sets both git and path", node.Line, name)
	case hasPath:
		if hasVersion || hasRevision {
			return nil, fmt.Errorf("line %d: path dependency %s cannot pin a version or rev", node.Line, name)
		}
		return types.PathRef{Path: path}, nil
	case hasGit:
		if hasVersion && hasRevision {
			return nil, fmt.Errorf("line %d: dependency %s sets both version and rev", node.Line, name)
		}
		return types.GitRef{URL: git, Version: version, Revision: revision}, nil
	default:
		return nil, fmt.Errorf("line %d: dependency %s needs git or path", node.Line, name)
	}
}

// collectSources flattens plain entries and the files of nested source
// groups, in order.
func collectSources(node *yaml.Node, out *[]string) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: sources must be a list", node.Line)
	}
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			*out = append(*out, item.Value)
		case yaml.MappingNode:
			for i := 0; i+1 < len(item.Content); i += 2 {
				if item.Content[i].Value == "files" {
					if err := collectSources(item.Content[i+1], out); err != nil {
						return err
					}
				}
			}
		default:
			return fmt.Errorf("line %d: unsupported source entry", item.Line)
		}
	}
	return nil
}

func scalarList(node *yaml.Node, field string) ([]string, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: %s must be a list", node.Line, field)
	}
	var out []string
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %s entries must be strings", item.Line, field)
		}
		out = append(out, item.Value)
	}
	return out, nil
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

func malformed(what string, cause error) error {
	return types.NewError(
		types.ErrMalformedManifest,
		fmt.Sprintf("malformed %s: %s", what, strings.TrimSpace(cause.Error())),
		nil,
	)
}
