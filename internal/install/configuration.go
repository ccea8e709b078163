package install

import (
	"slices"
	"strings"

	"github.com/temirov/depfetch/internal/ignorelist"
	"github.com/temirov/depfetch/internal/manifest"
	"github.com/temirov/depfetch/internal/projectfiles"
)

const (
	defaultWorkspaceDirectoryConstant = "deps"
	defaultProjectRootConstant        = "."

	manifestConfigurationKeyConstant           = "manifest"
	workspaceConfigurationKeyConstant          = "workspace"
	projectRootConfigurationKeyConstant        = "project_root"
	projectFileConfigurationKeyConstant        = "iproj_file"
	ignoreFileConfigurationKeyConstant         = "ignore_file"
	nestedManifestConfigurationKeyConstant     = "nested_manifest"
	stripVCSConfigurationKeyConstant           = "strip_vcs_metadata"
	updateProjectFilesConfigurationKeyConstant = "update_project_files"
	updateIgnoreFileConfigurationKeyConstant   = "update_ignore_file"
	sourceExtensionsConfigurationKeyConstant   = "source_extensions"
	includeExtensionsConfigurationKeyConstant  = "include_extensions"
	configurationKeySeparatorConstant          = "."
)

// CommandConfiguration captures persisted settings for the install command.
type CommandConfiguration struct {
	ManifestPath       string   `mapstructure:"manifest"`
	WorkspaceDirectory string   `mapstructure:"workspace"`
	ProjectRoot        string   `mapstructure:"project_root"`
	ProjectFilePath    string   `mapstructure:"iproj_file"`
	IgnoreFilePath     string   `mapstructure:"ignore_file"`
	NestedManifestName string   `mapstructure:"nested_manifest"`
	StripVCSMetadata   bool     `mapstructure:"strip_vcs_metadata"`
	UpdateProjectFiles bool     `mapstructure:"update_project_files"`
	UpdateIgnoreFile   bool     `mapstructure:"update_ignore_file"`
	SourceExtensions   []string `mapstructure:"source_extensions"`
	IncludeExtensions  []string `mapstructure:"include_extensions"`
}

// DefaultCommandConfiguration returns the settings used when nothing is configured.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ManifestPath:       manifest.DefaultFileName,
		WorkspaceDirectory: defaultWorkspaceDirectoryConstant,
		ProjectRoot:        defaultProjectRootConstant,
		ProjectFilePath:    projectfiles.ProjectFileName,
		IgnoreFilePath:     ignorelist.DefaultFileName,
		NestedManifestName: manifest.DefaultFileName,
		StripVCSMetadata:   false,
		UpdateProjectFiles: true,
		UpdateIgnoreFile:   true,
		SourceExtensions:   slices.Clone(projectfiles.DefaultSourceExtensions),
		IncludeExtensions:  slices.Clone(projectfiles.DefaultIncludeExtensions),
	}
}

// DefaultConfigurationValues exposes the defaults as configuration keys nested under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	values := map[string]any{
		manifestConfigurationKeyConstant:           defaults.ManifestPath,
		workspaceConfigurationKeyConstant:          defaults.WorkspaceDirectory,
		projectRootConfigurationKeyConstant:        defaults.ProjectRoot,
		projectFileConfigurationKeyConstant:        defaults.ProjectFilePath,
		ignoreFileConfigurationKeyConstant:         defaults.IgnoreFilePath,
		nestedManifestConfigurationKeyConstant:     defaults.NestedManifestName,
		stripVCSConfigurationKeyConstant:           defaults.StripVCSMetadata,
		updateProjectFilesConfigurationKeyConstant: defaults.UpdateProjectFiles,
		updateIgnoreFileConfigurationKeyConstant:   defaults.UpdateIgnoreFile,
		sourceExtensionsConfigurationKeyConstant:   defaults.SourceExtensions,
		includeExtensionsConfigurationKeyConstant:  defaults.IncludeExtensions,
	}

	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return values
	}

	prefixed := make(map[string]any, len(values))
	for key, value := range values {
		prefixed[trimmedPrefix+configurationKeySeparatorConstant+key] = value
	}
	return prefixed
}

// Sanitize trims values and restores defaults for empty path settings.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.ManifestPath = valueOrDefault(configuration.ManifestPath, defaults.ManifestPath)
	sanitized.WorkspaceDirectory = valueOrDefault(configuration.WorkspaceDirectory, defaults.WorkspaceDirectory)
	sanitized.ProjectRoot = valueOrDefault(configuration.ProjectRoot, defaults.ProjectRoot)
	sanitized.ProjectFilePath = valueOrDefault(configuration.ProjectFilePath, defaults.ProjectFilePath)
	sanitized.IgnoreFilePath = valueOrDefault(configuration.IgnoreFilePath, defaults.IgnoreFilePath)
	sanitized.NestedManifestName = valueOrDefault(configuration.NestedManifestName, defaults.NestedManifestName)
	sanitized.SourceExtensions = sanitizeList(configuration.SourceExtensions)
	sanitized.IncludeExtensions = sanitizeList(configuration.IncludeExtensions)

	return sanitized
}

func valueOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallback
	}
	return trimmed
}

func sanitizeList(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
