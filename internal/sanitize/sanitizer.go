// Package sanitize removes editor and project artifacts from freshly fetched dependencies.
//
// Every step is best effort: a deletion that fails is logged and recorded in the
// returned Report instead of aborting the run.
package sanitize

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/temirov/depfetch/internal/reporting"
)

const (
	// EditorConfigurationDirectoryName is the editor settings folder removed from dependencies.
	EditorConfigurationDirectoryName = ".vscode"
	// VersionControlMetadataDirectoryName is the git metadata folder removed when stripping is enabled.
	VersionControlMetadataDirectoryName = ".git"

	removalStartedTemplateConstant    = "Removing %s for %s..."
	removalCompletedTemplateConstant  = "Removed %s for %s (%s)."
	removalFailedTemplateConstant     = "Could not remove %s for %s: %v"
	removalFailedLogMessageConstant   = "artifact removal failed"
	targetAbsentLogMessageConstant    = "artifact not present"
	nestedWorkspaceLogMessageConstant = "emptying nested workspace directory"
	logFieldDependencyConstant        = "dependency"
	logFieldPathConstant              = "path"
	currentDirectoryNameConstant      = "."
	parentDirectoryNameConstant       = ".."
)

// ProjectFileNames lists the generated project files that dependencies must not carry into the consumer.
var ProjectFileNames = []string{"iproj.json", "Rules.mk"}

// Options selects the independent sanitization steps.
type Options struct {
	RemoveEditorConfiguration   bool
	RemoveProjectFiles          bool
	StripVersionControlMetadata bool
	EmptyNestedWorkspace        bool
	// WorkspaceName is the base name of the outer workspace directory; a directory with this
	// name inside a dependency is emptied when EmptyNestedWorkspace is set.
	WorkspaceName string
}

// DefaultOptions enables every step except stripping version-control metadata.
func DefaultOptions(workspaceName string) Options {
	return Options{
		RemoveEditorConfiguration: true,
		RemoveProjectFiles:        true,
		EmptyNestedWorkspace:      true,
		WorkspaceName:             workspaceName,
	}
}

// SkippedEntry records a path that could not be removed.
type SkippedEntry struct {
	Path string
	Err  error
}

// Report lists what a Sanitize call removed and what it had to leave behind.
type Report struct {
	Removed        []string
	Skipped        []SkippedEntry
	ReclaimedBytes uint64
}

// Clean reports whether every attempted removal succeeded.
func (report Report) Clean() bool {
	return len(report.Skipped) == 0
}

// Dependencies enumerates collaborators used by the Sanitizer. Nil fields fall back to defaults.
type Dependencies struct {
	Logger   *zap.Logger
	Reporter reporting.Reporter
	Remover  FileRemover
}

// Sanitizer performs post-fetch cleanup of a dependency directory.
type Sanitizer struct {
	logger   *zap.Logger
	reporter reporting.Reporter
	remover  FileRemover
}

// NewSanitizer constructs a Sanitizer.
func NewSanitizer(dependencies Dependencies) *Sanitizer {
	sanitizer := &Sanitizer{
		logger:   dependencies.Logger,
		reporter: reporting.Resolve(dependencies.Reporter),
		remover:  dependencies.Remover,
	}
	if sanitizer.logger == nil {
		sanitizer.logger = zap.NewNop()
	}
	if sanitizer.remover == nil {
		sanitizer.remover = ForcedRemover{}
	}
	return sanitizer
}

// Sanitize runs the selected steps against dependencyPath. Missing targets are ignored.
func (sanitizer *Sanitizer) Sanitize(dependencyPath string, options Options) Report {
	dependencyName := filepath.Base(dependencyPath)
	report := Report{}

	if options.RemoveEditorConfiguration {
		sanitizer.removeTarget(dependencyName, dependencyPath, EditorConfigurationDirectoryName, &report)
	}

	if options.RemoveProjectFiles {
		for _, projectFileName := range ProjectFileNames {
			sanitizer.removeTarget(dependencyName, dependencyPath, projectFileName, &report)
		}
	}

	if options.StripVersionControlMetadata {
		sanitizer.removeTarget(dependencyName, dependencyPath, VersionControlMetadataDirectoryName, &report)
	}

	if options.EmptyNestedWorkspace {
		sanitizer.emptyNestedWorkspace(dependencyName, dependencyPath, options.WorkspaceName, &report)
	}

	return report
}

func (sanitizer *Sanitizer) emptyNestedWorkspace(dependencyName string, dependencyPath string, workspaceName string, report *Report) {
	nestedName := filepath.Base(filepath.Clean(workspaceName))
	if len(workspaceName) == 0 || nestedName == currentDirectoryNameConstant || nestedName == parentDirectoryNameConstant || nestedName == string(filepath.Separator) {
		return
	}

	nestedPath := filepath.Join(dependencyPath, nestedName)
	nestedInfo, statError := os.Lstat(nestedPath)
	if statError != nil || !nestedInfo.IsDir() {
		return
	}

	entries, readError := os.ReadDir(nestedPath)
	if readError != nil {
		sanitizer.recordFailure(dependencyName, nestedName, nestedPath, readError, report)
		return
	}

	sanitizer.logger.Debug(nestedWorkspaceLogMessageConstant, zap.String(logFieldDependencyConstant, dependencyName), zap.String(logFieldPathConstant, nestedPath))
	for _, entry := range entries {
		sanitizer.removeTarget(dependencyName, dependencyPath, filepath.Join(nestedName, entry.Name()), report)
	}
}

func (sanitizer *Sanitizer) removeTarget(dependencyName string, dependencyPath string, relativeTarget string, report *Report) {
	targetPath := filepath.Join(dependencyPath, relativeTarget)

	if _, statError := os.Lstat(targetPath); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			sanitizer.logger.Debug(targetAbsentLogMessageConstant, zap.String(logFieldDependencyConstant, dependencyName), zap.String(logFieldPathConstant, targetPath))
			return
		}
		sanitizer.recordFailure(dependencyName, relativeTarget, targetPath, statError, report)
		return
	}

	reclaimableBytes := measureRegularFiles(targetPath)
	sanitizer.reporter.Reportf(removalStartedTemplateConstant, relativeTarget, dependencyName)

	if removalError := sanitizer.remover.RemoveAll(targetPath); removalError != nil {
		sanitizer.recordFailure(dependencyName, relativeTarget, targetPath, removalError, report)
		return
	}

	report.Removed = append(report.Removed, targetPath)
	report.ReclaimedBytes += reclaimableBytes
	sanitizer.reporter.Reportf(removalCompletedTemplateConstant, relativeTarget, dependencyName, humanize.Bytes(reclaimableBytes))
}

func (sanitizer *Sanitizer) recordFailure(dependencyName string, relativeTarget string, targetPath string, failure error, report *Report) {
	sanitizer.logger.Warn(removalFailedLogMessageConstant,
		zap.String(logFieldDependencyConstant, dependencyName),
		zap.String(logFieldPathConstant, targetPath),
		zap.Error(failure),
	)
	sanitizer.reporter.Reportf(removalFailedTemplateConstant, relativeTarget, dependencyName, failure)
	report.Skipped = append(report.Skipped, SkippedEntry{Path: targetPath, Err: failure})
}
