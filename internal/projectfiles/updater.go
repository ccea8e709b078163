// Package projectfiles keeps the generated build files of the consuming project in sync with the
// workspace: the SUBDIRS assignment of Rules.mk and the includePath list of iproj.json.
//
// Both lists are append-only. Entries are relative paths with forward slashes.
package projectfiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/temirov/depfetch/internal/jsonorder"
	"github.com/temirov/depfetch/internal/reporting"
)

const (
	// RulesFileName is the build file holding the SUBDIRS assignment.
	RulesFileName = "Rules.mk"
	// ProjectFileName is the project configuration file holding includePath.
	ProjectFileName = "iproj.json"
	// IncludePathFieldName is the iproj.json member rewritten by UpdateIncludePath.
	IncludePathFieldName = "includePath"

	projectFileMissingMessageConstant  = "project configuration file not found"
	includePathInvalidMessageConstant  = "includePath must be a list of strings"
	fileErrorTemplateConstant          = "%w: %s"
	readFailureTemplateConstant        = "failed to read %s: %w"
	writeFailureTemplateConstant       = "failed to write %s: %w"
	scanFailureTemplateConstant        = "failed to scan %s: %w"
	parseFailureTemplateConstant       = "failed to parse %s: %w"
	entriesAddedStatusTemplateConstant = "Added %d entries to %s."
	fileUpToDateLogMessageConstant     = "project file already up to date"
	fileUpdatedLogMessageConstant      = "project file updated"
	logFieldPathConstant               = "path"
	logFieldAddedConstant              = "added"
	generatedFilePermissions           = 0o644
)

// DefaultSourceExtensions lists the source member extensions whose directories are build subdirectories.
var DefaultSourceExtensions = []string{
	".rpgle", ".sqlrpgle", ".clle", ".clp", ".cmd", ".dspf", ".prtf", ".pf", ".lf",
	".sql", ".table", ".view", ".index", ".bnddir", ".srvpgm", ".pgm", ".rpgleinc",
}

// DefaultIncludeExtensions lists the include descriptor extensions whose directories join includePath.
var DefaultIncludeExtensions = []string{".rpgleinc"}

// ErrProjectFileMissing indicates that iproj.json does not exist and cannot be updated.
var ErrProjectFileMissing = errors.New(projectFileMissingMessageConstant)

// ErrIncludePathInvalid indicates an includePath member that is not a list of strings.
var ErrIncludePathInvalid = errors.New(includePathInvalidMessageConstant)

// Configuration selects the extension sets used while scanning the workspace.
type Configuration struct {
	SourceExtensions  []string
	IncludeExtensions []string
}

// DefaultConfiguration returns the built-in extension sets.
func DefaultConfiguration() Configuration {
	return Configuration{
		SourceExtensions:  slices.Clone(DefaultSourceExtensions),
		IncludeExtensions: slices.Clone(DefaultIncludeExtensions),
	}
}

// Dependencies enumerates optional collaborators.
type Dependencies struct {
	Logger   *zap.Logger
	Reporter reporting.Reporter
}

// Update describes the outcome of one rewrite.
type Update struct {
	Path    string
	Added   []string
	Entries []string
	Written bool
}

// Updater rewrites the generated project files.
type Updater struct {
	logger            *zap.Logger
	reporter          reporting.Reporter
	sourceExtensions  extensionSet
	includeExtensions extensionSet
}

// NewUpdater constructs an Updater. Empty extension lists fall back to the defaults.
func NewUpdater(dependencies Dependencies, configuration Configuration) *Updater {
	if len(configuration.SourceExtensions) == 0 {
		configuration.SourceExtensions = DefaultSourceExtensions
	}
	if len(configuration.IncludeExtensions) == 0 {
		configuration.IncludeExtensions = DefaultIncludeExtensions
	}

	updater := &Updater{
		logger:            dependencies.Logger,
		reporter:          reporting.Resolve(dependencies.Reporter),
		sourceExtensions:  newExtensionSet(configuration.SourceExtensions),
		includeExtensions: newExtensionSet(configuration.IncludeExtensions),
	}
	if updater.logger == nil {
		updater.logger = zap.NewNop()
	}
	return updater
}

// UpdateSubdirList adds every workspace directory holding source members to the SUBDIRS assignment of
// projectRoot/Rules.mk, creating the file when it does not exist. Other lines are kept unchanged.
func (updater *Updater) UpdateSubdirList(projectRoot string, workspaceDirectory string) (Update, error) {
	rulesPath := filepath.Join(projectRoot, RulesFileName)

	content, readError := os.ReadFile(rulesPath)
	fileExists := readError == nil
	if readError != nil && !errors.Is(readError, fs.ErrNotExist) {
		return Update{}, fmt.Errorf(readFailureTemplateConstant, rulesPath, readError)
	}

	directories, scanError := directoriesContaining(workspaceDirectory, updater.sourceExtensions)
	if scanError != nil {
		return Update{}, fmt.Errorf(scanFailureTemplateConstant, workspaceDirectory, scanError)
	}
	candidates, relativeError := relativeEntries(projectRoot, directories)
	if relativeError != nil {
		return Update{}, fmt.Errorf(scanFailureTemplateConstant, workspaceDirectory, relativeError)
	}

	rules := parseRules(string(content))
	merged, added := appendMissing(rules.entries, candidates)

	update := Update{Path: rulesPath, Added: added, Entries: merged}
	if fileExists && slices.Equal(merged, rules.entries) && rules.hasAssignment {
		updater.logger.Debug(fileUpToDateLogMessageConstant, zap.String(logFieldPathConstant, rulesPath))
		return update, nil
	}

	if writeError := os.WriteFile(rulesPath, []byte(rules.render(merged)), generatedFilePermissions); writeError != nil {
		return Update{}, fmt.Errorf(writeFailureTemplateConstant, rulesPath, writeError)
	}
	update.Written = true
	updater.recordWrite(update)
	return update, nil
}

// UpdateIncludePath adds every workspace directory holding include descriptors to the includePath list
// of the project file at projectFilePath. Paths are relative to the project file's directory. Other
// members keep their order. The file must exist.
func (updater *Updater) UpdateIncludePath(projectFilePath string, workspaceDirectory string) (Update, error) {
	content, readError := os.ReadFile(projectFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return Update{}, fmt.Errorf(fileErrorTemplateConstant, ErrProjectFileMissing, projectFilePath)
		}
		return Update{}, fmt.Errorf(readFailureTemplateConstant, projectFilePath, readError)
	}

	document, decodeError := jsonorder.Decode(content)
	if decodeError != nil {
		return Update{}, fmt.Errorf(parseFailureTemplateConstant, projectFilePath, decodeError)
	}

	var existing []string
	if rawIncludePath, found := document.Lookup(IncludePathFieldName); found {
		if unmarshalError := json.Unmarshal(rawIncludePath, &existing); unmarshalError != nil {
			return Update{}, fmt.Errorf(parseFailureTemplateConstant, projectFilePath, ErrIncludePathInvalid)
		}
	}

	directories, scanError := directoriesContaining(workspaceDirectory, updater.includeExtensions)
	if scanError != nil {
		return Update{}, fmt.Errorf(scanFailureTemplateConstant, workspaceDirectory, scanError)
	}
	candidates, relativeError := relativeEntries(filepath.Dir(projectFilePath), directories)
	if relativeError != nil {
		return Update{}, fmt.Errorf(scanFailureTemplateConstant, workspaceDirectory, relativeError)
	}

	merged, added := appendMissing(existing, candidates)
	update := Update{Path: projectFilePath, Added: added, Entries: merged}
	if slices.Equal(merged, existing) {
		updater.logger.Debug(fileUpToDateLogMessageConstant, zap.String(logFieldPathConstant, projectFilePath))
		return update, nil
	}

	encodedIncludePath, marshalError := json.Marshal(merged)
	if marshalError != nil {
		return Update{}, fmt.Errorf(writeFailureTemplateConstant, projectFilePath, marshalError)
	}
	encodedDocument, encodeError := document.Set(IncludePathFieldName, encodedIncludePath).Encode()
	if encodeError != nil {
		return Update{}, fmt.Errorf(writeFailureTemplateConstant, projectFilePath, encodeError)
	}
	if writeError := os.WriteFile(projectFilePath, encodedDocument, generatedFilePermissions); writeError != nil {
		return Update{}, fmt.Errorf(writeFailureTemplateConstant, projectFilePath, writeError)
	}
	update.Written = true
	updater.recordWrite(update)
	return update, nil
}

func (updater *Updater) recordWrite(update Update) {
	updater.logger.Info(fileUpdatedLogMessageConstant,
		zap.String(logFieldPathConstant, update.Path),
		zap.Strings(logFieldAddedConstant, update.Added),
	)
	if len(update.Added) > 0 {
		updater.reporter.Reportf(entriesAddedStatusTemplateConstant, len(update.Added), filepath.Base(update.Path))
	}
}
