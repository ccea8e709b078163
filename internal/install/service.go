package install

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/depfetch/internal/ignorelist"
	"github.com/temirov/depfetch/internal/manifest"
	"github.com/temirov/depfetch/internal/projectfiles"
	"github.com/temirov/depfetch/internal/reporting"
	"github.com/temirov/depfetch/internal/resolve"
	"github.com/temirov/depfetch/internal/sanitize"
	"github.com/temirov/depfetch/internal/workspace"
)

const (
	versionControlMissingMessageConstant = "version control gateway not configured"
	subdirectoryUpdateTemplateConstant   = "failed to update %s: %w"
	includePathUpdateTemplateConstant    = "failed to update %s: %w"
	ignoreUpdateTemplateConstant         = "failed to update ignore file: %w"
	workspaceEntryTemplateConstant       = "failed to express workspace relative to %s: %w"
	ignoreAddedStatusTemplateConstant    = "Added %s to %s."
	summaryStatusTemplateConstant        = "Installed %d dependencies into %s."
	installStartedLogMessageConstant     = "install started"
	installCompletedLogMessageConstant   = "install completed"
	ignoreSkippedLogMessageConstant      = "workspace outside project root; ignore file left unchanged"
	logFieldManifestConstant             = "manifest"
	logFieldWorkspaceConstant            = "workspace"
	logFieldFetchedConstant              = "fetched"
	currentDirectoryConstant             = "."
	parentDirectoryConstant              = ".."
)

// ErrVersionControlNotConfigured indicates the service was built without a version control gateway.
var ErrVersionControlNotConfigured = errors.New(versionControlMissingMessageConstant)

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	VersionControl resolve.VersionControl
	Logger         *zap.Logger
	Reporter       reporting.Reporter
}

// Options configure one install run. Relative paths other than ProjectRoot are resolved against ProjectRoot.
type Options struct {
	ManifestPath       string
	WorkspaceDirectory string
	ProjectRoot        string
	ProjectFilePath    string
	IgnoreFilePath     string
	NestedManifestName string
	Sanitize           sanitize.Options
	UpdateProjectFiles bool
	UpdateIgnoreFile   bool
	ProjectFiles       projectfiles.Configuration
}

// OptionsFromConfiguration converts persisted settings into run options.
func OptionsFromConfiguration(configuration CommandConfiguration) Options {
	sanitized := configuration.Sanitize()
	sanitizeOptions := sanitize.DefaultOptions("")
	sanitizeOptions.StripVersionControlMetadata = sanitized.StripVCSMetadata

	return Options{
		ManifestPath:       sanitized.ManifestPath,
		WorkspaceDirectory: sanitized.WorkspaceDirectory,
		ProjectRoot:        sanitized.ProjectRoot,
		ProjectFilePath:    sanitized.ProjectFilePath,
		IgnoreFilePath:     sanitized.IgnoreFilePath,
		NestedManifestName: sanitized.NestedManifestName,
		Sanitize:           sanitizeOptions,
		UpdateProjectFiles: sanitized.UpdateProjectFiles,
		UpdateIgnoreFile:   sanitized.UpdateIgnoreFile,
		ProjectFiles: projectfiles.Configuration{
			SourceExtensions:  sanitized.SourceExtensions,
			IncludeExtensions: sanitized.IncludeExtensions,
		},
	}
}

// Result summarizes an install run.
type Result struct {
	WorkspaceDirectory string
	Fetched            []string
	Reports            []resolve.DependencyReport
	SubdirsAdded       []string
	IncludePathsAdded  []string
	IgnoreUpdated      bool
}

// Service installs the dependencies declared by a manifest.
type Service struct {
	versionControl resolve.VersionControl
	logger         *zap.Logger
	reporter       reporting.Reporter
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.VersionControl == nil {
		return nil, ErrVersionControlNotConfigured
	}
	service := &Service{
		versionControl: dependencies.VersionControl,
		logger:         dependencies.Logger,
		reporter:       reporting.Resolve(dependencies.Reporter),
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	return service, nil
}

// Install locks the workspace, resolves the manifest, and refreshes the generated project files.
func (service *Service) Install(executionContext context.Context, options Options) (Result, error) {
	projectRoot := strings.TrimSpace(options.ProjectRoot)
	if len(projectRoot) == 0 {
		projectRoot = defaultProjectRootConstant
	}
	manifestPath := resolveAgainst(projectRoot, options.ManifestPath, manifest.DefaultFileName)
	workspaceDirectory := resolveAgainst(projectRoot, options.WorkspaceDirectory, defaultWorkspaceDirectoryConstant)

	service.logger.Info(installStartedLogMessageConstant,
		zap.String(logFieldManifestConstant, manifestPath),
		zap.String(logFieldWorkspaceConstant, workspaceDirectory),
	)

	var result Result
	lockError := workspace.WithLock(workspace.LockPath(workspaceDirectory), func() error {
		var installError error
		result, installError = service.installLocked(executionContext, options, projectRoot, manifestPath, workspaceDirectory)
		return installError
	})
	if lockError != nil {
		return Result{}, lockError
	}

	service.logger.Info(installCompletedLogMessageConstant, zap.Strings(logFieldFetchedConstant, result.Fetched))
	service.reporter.Reportf(summaryStatusTemplateConstant, len(result.Fetched), workspaceDirectory)
	return result, nil
}

func (service *Service) installLocked(executionContext context.Context, options Options, projectRoot string, manifestPath string, workspaceDirectory string) (Result, error) {
	resolver, resolverError := resolve.NewResolver(
		resolve.Dependencies{
			VersionControl: service.versionControl,
			Reporter:       service.reporter,
			Logger:         service.logger,
		},
		resolve.Options{NestedManifestName: options.NestedManifestName, Sanitize: options.Sanitize},
	)
	if resolverError != nil {
		return Result{}, resolverError
	}

	resolution, resolveError := resolver.Resolve(executionContext, manifestPath, workspaceDirectory, resolve.NewVisitedSet())
	if resolveError != nil {
		return Result{}, resolveError
	}

	result := Result{
		WorkspaceDirectory: workspaceDirectory,
		Fetched:            resolution.Fetched,
		Reports:            resolution.Reports,
	}

	if options.UpdateProjectFiles {
		updater := projectfiles.NewUpdater(projectfiles.Dependencies{Logger: service.logger, Reporter: service.reporter}, options.ProjectFiles)

		subdirUpdate, subdirError := updater.UpdateSubdirList(projectRoot, workspaceDirectory)
		if subdirError != nil {
			return Result{}, fmt.Errorf(subdirectoryUpdateTemplateConstant, projectfiles.RulesFileName, subdirError)
		}
		result.SubdirsAdded = subdirUpdate.Added

		projectFilePath := resolveAgainst(projectRoot, options.ProjectFilePath, projectfiles.ProjectFileName)
		includeUpdate, includeError := updater.UpdateIncludePath(projectFilePath, workspaceDirectory)
		if includeError != nil {
			return Result{}, fmt.Errorf(includePathUpdateTemplateConstant, projectfiles.ProjectFileName, includeError)
		}
		result.IncludePathsAdded = includeUpdate.Added
	}

	if options.UpdateIgnoreFile {
		ignoreUpdated, ignoreError := service.ensureWorkspaceIgnored(projectRoot, workspaceDirectory, options.IgnoreFilePath)
		if ignoreError != nil {
			return Result{}, ignoreError
		}
		result.IgnoreUpdated = ignoreUpdated
	}

	return result, nil
}

func (service *Service) ensureWorkspaceIgnored(projectRoot string, workspaceDirectory string, ignoreFilePath string) (bool, error) {
	absoluteRoot, rootError := filepath.Abs(projectRoot)
	if rootError != nil {
		return false, fmt.Errorf(workspaceEntryTemplateConstant, projectRoot, rootError)
	}
	absoluteWorkspace, workspaceError := filepath.Abs(workspaceDirectory)
	if workspaceError != nil {
		return false, fmt.Errorf(workspaceEntryTemplateConstant, projectRoot, workspaceError)
	}
	relativeWorkspace, relativeError := filepath.Rel(absoluteRoot, absoluteWorkspace)
	if relativeError != nil || relativeWorkspace == currentDirectoryConstant || relativeWorkspace == parentDirectoryConstant ||
		strings.HasPrefix(relativeWorkspace, parentDirectoryConstant+string(filepath.Separator)) {
		service.logger.Debug(ignoreSkippedLogMessageConstant, zap.String(logFieldWorkspaceConstant, workspaceDirectory))
		return false, nil
	}

	resolvedIgnoreFilePath := resolveAgainst(projectRoot, ignoreFilePath, ignorelist.DefaultFileName)
	entry := filepath.ToSlash(relativeWorkspace)
	added, ensureError := ignorelist.EnsureIgnored(resolvedIgnoreFilePath, entry)
	if ensureError != nil {
		return false, fmt.Errorf(ignoreUpdateTemplateConstant, ensureError)
	}
	if added {
		service.reporter.Reportf(ignoreAddedStatusTemplateConstant, entry, filepath.Base(resolvedIgnoreFilePath))
	}
	return added, nil
}

func resolveAgainst(projectRoot string, candidate string, fallback string) string {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) == 0 {
		trimmed = fallback
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Join(projectRoot, trimmed)
}
