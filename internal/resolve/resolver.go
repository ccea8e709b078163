// Package resolve walks a dependency manifest, materializes every dependency into the workspace,
// and follows nested manifests found inside fetched dependencies.
//
// Nested dependencies are placed next to their parent in the same flat workspace. A dependency
// name is fetched at most once per run; later declarations of an already visited name are
// skipped, whatever URL or reference they carry.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/depfetch/internal/manifest"
	"github.com/temirov/depfetch/internal/reporting"
	"github.com/temirov/depfetch/internal/sanitize"
)

const (
	versionControlMissingMessageConstant = "version control gateway not configured"
	workspaceRequiredMessageConstant     = "workspace directory must be provided"
	workspaceCreateTemplateConstant      = "failed to create workspace %s: %w"
	dependencyClearTemplateConstant      = "failed to clear %s: %w"
	dependencyOutsideTemplateConstant    = "%w: %s is not directly inside %s"
	dependencyErrorTemplateConstant      = "dependency %q: %w"
	cloningStatusTemplateConstant        = "Cloning %s from %s..."
	checkoutStatusTemplateConstant       = "Switching %s to reference %s..."
	readyStatusTemplateConstant          = "%s is ready."
	skippedStatusTemplateConstant        = "%s already fetched, skipping."
	nestedStatusTemplateConstant         = "Resolving nested manifest %s..."
	manifestLoadedLogMessageConstant     = "manifest loaded"
	dependencyReadyLogMessageConstant    = "dependency materialized"
	dependencySkippedLogMessageConstant  = "dependency already visited"
	logFieldManifestConstant             = "manifest"
	logFieldDependencyConstant           = "dependency"
	logFieldURLConstant                  = "url"
	logFieldReferenceConstant            = "ref"
	logFieldPathConstant                 = "path"
	logFieldCountConstant                = "count"
)

// ErrVersionControlNotConfigured indicates the resolver was built without a VersionControl.
var ErrVersionControlNotConfigured = errors.New(versionControlMissingMessageConstant)

// ErrWorkspaceRequired indicates an empty workspace directory.
var ErrWorkspaceRequired = errors.New(workspaceRequiredMessageConstant)

// VersionControl fetches a repository and pins it to a reference.
type VersionControl interface {
	Fetch(executionContext context.Context, repositoryURL string, destinationPath string) error
	Checkout(executionContext context.Context, repositoryPath string, reference string) error
}

// DependencySanitizer cleans a freshly fetched dependency.
type DependencySanitizer interface {
	Sanitize(dependencyPath string, options sanitize.Options) sanitize.Report
}

// ManifestLoader reads a manifest file.
type ManifestLoader func(manifestPath string) (manifest.Manifest, error)

// Dependencies enumerates collaborators used by the Resolver. Only VersionControl is required.
type Dependencies struct {
	VersionControl VersionControl
	Sanitizer      DependencySanitizer
	Remover        sanitize.FileRemover
	LoadManifest   ManifestLoader
	Reporter       reporting.Reporter
	Logger         *zap.Logger
}

// Options configure a resolution run.
type Options struct {
	// NestedManifestName is looked up inside each fetched dependency. Defaults to manifest.DefaultFileName.
	NestedManifestName string
	// Sanitize selects the cleanup applied to each dependency. An empty WorkspaceName is
	// replaced with the base name of the workspace directory.
	Sanitize sanitize.Options
}

// DependencyReport pairs a fetched dependency with its sanitization outcome.
type DependencyReport struct {
	Name         string
	Path         string
	Sanitization sanitize.Report
}

// Result lists what a Resolve call fetched, in fetch order.
type Result struct {
	Fetched []string
	Reports []DependencyReport
}

// Resolver materializes manifests into a workspace.
type Resolver struct {
	versionControl VersionControl
	sanitizer      DependencySanitizer
	remover        sanitize.FileRemover
	loadManifest   ManifestLoader
	reporter       reporting.Reporter
	logger         *zap.Logger
	options        Options
}

// NewResolver constructs a Resolver.
func NewResolver(dependencies Dependencies, options Options) (*Resolver, error) {
	if dependencies.VersionControl == nil {
		return nil, ErrVersionControlNotConfigured
	}

	resolver := &Resolver{
		versionControl: dependencies.VersionControl,
		sanitizer:      dependencies.Sanitizer,
		remover:        dependencies.Remover,
		loadManifest:   dependencies.LoadManifest,
		reporter:       reporting.Resolve(dependencies.Reporter),
		logger:         dependencies.Logger,
		options:        options,
	}
	if resolver.logger == nil {
		resolver.logger = zap.NewNop()
	}
	if resolver.remover == nil {
		resolver.remover = sanitize.ForcedRemover{}
	}
	if resolver.loadManifest == nil {
		resolver.loadManifest = manifest.Load
	}
	if resolver.sanitizer == nil {
		resolver.sanitizer = sanitize.NewSanitizer(sanitize.Dependencies{
			Logger:   resolver.logger,
			Reporter: resolver.reporter,
			Remover:  resolver.remover,
		})
	}
	if len(strings.TrimSpace(resolver.options.NestedManifestName)) == 0 {
		resolver.options.NestedManifestName = manifest.DefaultFileName
	}
	return resolver, nil
}

// Resolve materializes every dependency of the manifest at manifestPath into workspaceDirectory and
// recurses into nested manifests. visited is shared across the whole run; a nil set starts a new one.
// The first error aborts the walk; dependencies fetched before it stay on disk.
func (resolver *Resolver) Resolve(executionContext context.Context, manifestPath string, workspaceDirectory string, visited *VisitedSet) (Result, error) {
	if len(strings.TrimSpace(workspaceDirectory)) == 0 {
		return Result{}, ErrWorkspaceRequired
	}
	if visited == nil {
		visited = NewVisitedSet()
	}

	loadedManifest, loadError := resolver.loadManifest(manifestPath)
	if loadError != nil {
		return Result{}, loadError
	}
	resolver.logger.Debug(manifestLoadedLogMessageConstant,
		zap.String(logFieldManifestConstant, manifestPath),
		zap.Int(logFieldCountConstant, len(loadedManifest.Dependencies)),
	)

	if createError := os.MkdirAll(workspaceDirectory, 0o755); createError != nil {
		return Result{}, fmt.Errorf(workspaceCreateTemplateConstant, workspaceDirectory, createError)
	}

	result := Result{}
	for _, dependency := range loadedManifest.Dependencies {
		if contextError := executionContext.Err(); contextError != nil {
			return Result{}, contextError
		}

		if visited.Contains(dependency.Name) {
			resolver.logger.Debug(dependencySkippedLogMessageConstant, zap.String(logFieldDependencyConstant, dependency.Name))
			resolver.reporter.Reportf(skippedStatusTemplateConstant, dependency.Name)
			continue
		}

		dependencyReport, materializeError := resolver.materialize(executionContext, dependency, workspaceDirectory)
		if materializeError != nil {
			return Result{}, fmt.Errorf(dependencyErrorTemplateConstant, dependency.Name, materializeError)
		}
		visited.Add(dependency.Name)
		result.Fetched = append(result.Fetched, dependency.Name)
		result.Reports = append(result.Reports, dependencyReport)

		nestedManifestPath := filepath.Join(dependencyReport.Path, resolver.options.NestedManifestName)
		if !isRegularFile(nestedManifestPath) {
			continue
		}

		resolver.reporter.Reportf(nestedStatusTemplateConstant, nestedManifestPath)
		nestedResult, nestedError := resolver.Resolve(executionContext, nestedManifestPath, workspaceDirectory, visited)
		if nestedError != nil {
			return Result{}, fmt.Errorf(dependencyErrorTemplateConstant, dependency.Name, nestedError)
		}
		result.Fetched = append(result.Fetched, nestedResult.Fetched...)
		result.Reports = append(result.Reports, nestedResult.Reports...)
	}

	return result, nil
}

func (resolver *Resolver) materialize(executionContext context.Context, dependency manifest.Dependency, workspaceDirectory string) (DependencyReport, error) {
	cleanWorkspaceDirectory := filepath.Clean(workspaceDirectory)
	dependencyPath := filepath.Join(cleanWorkspaceDirectory, dependency.Name)
	if nameError := manifest.ValidateName(dependency.Name); nameError != nil || filepath.Dir(dependencyPath) != cleanWorkspaceDirectory {
		return DependencyReport{}, fmt.Errorf(dependencyOutsideTemplateConstant, manifest.ErrInvalidDependencyName, dependencyPath, cleanWorkspaceDirectory)
	}

	if removalError := resolver.remover.RemoveAll(dependencyPath); removalError != nil {
		return DependencyReport{}, fmt.Errorf(dependencyClearTemplateConstant, dependencyPath, removalError)
	}

	resolver.reporter.Reportf(cloningStatusTemplateConstant, dependency.Name, dependency.URL)
	if fetchError := resolver.versionControl.Fetch(executionContext, dependency.URL, dependencyPath); fetchError != nil {
		return DependencyReport{}, fetchError
	}

	reference := dependency.TrimmedReference()
	resolver.reporter.Reportf(checkoutStatusTemplateConstant, dependency.Name, reference)
	if checkoutError := resolver.versionControl.Checkout(executionContext, dependencyPath, reference); checkoutError != nil {
		return DependencyReport{}, checkoutError
	}

	sanitizeOptions := resolver.options.Sanitize
	if len(sanitizeOptions.WorkspaceName) == 0 {
		sanitizeOptions.WorkspaceName = filepath.Base(cleanWorkspaceDirectory)
	}
	sanitization := resolver.sanitizer.Sanitize(dependencyPath, sanitizeOptions)

	resolver.logger.Info(dependencyReadyLogMessageConstant,
		zap.String(logFieldDependencyConstant, dependency.Name),
		zap.String(logFieldURLConstant, dependency.URL),
		zap.String(logFieldReferenceConstant, reference),
		zap.String(logFieldPathConstant, dependencyPath),
	)
	resolver.reporter.Reportf(readyStatusTemplateConstant, dependency.Name)

	return DependencyReport{Name: dependency.Name, Path: dependencyPath, Sanitization: sanitization}, nil
}

func isRegularFile(filePath string) bool {
	fileInfo, statError := os.Stat(filePath)
	return statError == nil && fileInfo.Mode().IsRegular()
}
