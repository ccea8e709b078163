// Package manifest models dependency manifests and loads them from JSON, YAML, or TOML files.
//
// A manifest maps dependency names to a source URL and a pinned reference:
//
//	{"dependencies": {"A": {"url": "https://example.com/a.git", "ref": "main"}}}
//
// Dependencies are kept in the order they appear in the file.
package manifest

import (
	"errors"
	"path/filepath"
	"strings"
)

const (
	// DefaultFileName is the manifest file looked up at the project root and inside every fetched dependency.
	DefaultFileName = "dependencies.json"

	dependenciesFieldNameConstant              = "dependencies"
	manifestNotFoundMessageConstant            = "manifest not found"
	manifestMalformedMessageConstant           = "malformed manifest"
	dependenciesFieldMissingMessageConstant    = `missing "dependencies" field`
	dependencyURLMissingMessageConstant        = "dependency has no url"
	duplicateDependencyMessageConstant         = "dependency declared more than once"
	dependenciesFieldNotMappingMessageConstant = `"dependencies" must map names to {url, ref}`
	invalidDependencyNameMessageConstant       = "dependency name must be a single directory name"
	currentDirectoryNameConstant               = "."
	parentDirectoryNameConstant                = ".."
	pathSeparatorCharactersConstant            = `/\`
)

// ErrManifestNotFound indicates that the manifest file does not exist.
var ErrManifestNotFound = errors.New(manifestNotFoundMessageConstant)

// ErrMalformedManifest wraps every parse or validation failure.
var ErrMalformedManifest = errors.New(manifestMalformedMessageConstant)

// ErrDependenciesFieldMissing indicates a manifest without a top-level dependencies field.
var ErrDependenciesFieldMissing = errors.New(dependenciesFieldMissingMessageConstant)

// ErrDependenciesFieldNotMapping indicates a dependencies field that is not a name → descriptor mapping.
var ErrDependenciesFieldNotMapping = errors.New(dependenciesFieldNotMappingMessageConstant)

// ErrDependencyURLMissing indicates a descriptor without a url.
var ErrDependencyURLMissing = errors.New(dependencyURLMissingMessageConstant)

// ErrDuplicateDependency indicates a name declared twice in one manifest.
var ErrDuplicateDependency = errors.New(duplicateDependencyMessageConstant)

// ErrInvalidDependencyName indicates a name that is empty, "." or "..", absolute, or contains a path separator.
var ErrInvalidDependencyName = errors.New(invalidDependencyNameMessageConstant)

// Dependency describes one external repository pinned to a reference.
type Dependency struct {
	Name      string `mapstructure:"-"`
	URL       string `mapstructure:"url"`
	Reference string `mapstructure:"ref"`
}

// TrimmedReference returns the reference without surrounding whitespace.
func (dependency Dependency) TrimmedReference() string {
	return strings.TrimSpace(dependency.Reference)
}

// Manifest is the ordered list of dependencies read from Path.
type Manifest struct {
	Path         string
	Dependencies []Dependency
}

// Names lists dependency names in manifest order.
func (manifest Manifest) Names() []string {
	names := make([]string, 0, len(manifest.Dependencies))
	for _, dependency := range manifest.Dependencies {
		names = append(names, dependency.Name)
	}
	return names
}

// Lookup returns the dependency with the given name.
func (manifest Manifest) Lookup(name string) (Dependency, bool) {
	for _, dependency := range manifest.Dependencies {
		if dependency.Name == name {
			return dependency, true
		}
	}
	return Dependency{}, false
}

// ValidateName reports ErrInvalidDependencyName unless name can be used as one directory directly
// inside the workspace.
func ValidateName(name string) error {
	switch {
	case len(strings.TrimSpace(name)) == 0, name == currentDirectoryNameConstant, name == parentDirectoryNameConstant:
		return ErrInvalidDependencyName
	case strings.ContainsAny(name, pathSeparatorCharactersConstant):
		return ErrInvalidDependencyName
	case filepath.IsAbs(name), len(filepath.VolumeName(name)) > 0:
		return ErrInvalidDependencyName
	}
	return nil
}
