// Package ignorelist keeps the workspace directory listed in the project's version-control ignore file.
package ignorelist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	// DefaultFileName is the ignore file updated at the project root.
	DefaultFileName = ".gitignore"

	directoryNameRequiredMessageConstant = "directory name must be provided"
	readFailureTemplateConstant          = "failed to read %s: %w"
	writeFailureTemplateConstant         = "failed to update %s: %w"
	trailingSeparatorsConstant           = `/\`
	lineBreakConstant                    = "\n"
	ignoreFilePermissions                = 0o644
)

// ErrDirectoryNameRequired indicates an empty directory name after trimming.
var ErrDirectoryNameRequired = errors.New(directoryNameRequiredMessageConstant)

// EnsureIgnored appends directoryName to the ignore file at ignoreFilePath unless a matching line exists.
// Trailing slashes and backslashes are ignored when comparing and are not written. The file is created
// when missing. It reports whether an entry was appended.
func EnsureIgnored(ignoreFilePath string, directoryName string) (bool, error) {
	entry := normalizeEntry(directoryName)
	if len(entry) == 0 {
		return false, ErrDirectoryNameRequired
	}

	content, readError := os.ReadFile(ignoreFilePath)
	if readError != nil && !errors.Is(readError, fs.ErrNotExist) {
		return false, fmt.Errorf(readFailureTemplateConstant, ignoreFilePath, readError)
	}

	for _, line := range strings.Split(string(content), lineBreakConstant) {
		if normalizeEntry(line) == entry {
			return false, nil
		}
	}

	addition := entry + lineBreakConstant
	if len(content) > 0 && !strings.HasSuffix(string(content), lineBreakConstant) {
		addition = lineBreakConstant + addition
	}

	ignoreFile, openError := os.OpenFile(ignoreFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, ignoreFilePermissions)
	if openError != nil {
		return false, fmt.Errorf(writeFailureTemplateConstant, ignoreFilePath, openError)
	}
	if _, writeError := ignoreFile.WriteString(addition); writeError != nil {
		_ = ignoreFile.Close()
		return false, fmt.Errorf(writeFailureTemplateConstant, ignoreFilePath, writeError)
	}
	if closeError := ignoreFile.Close(); closeError != nil {
		return false, fmt.Errorf(writeFailureTemplateConstant, ignoreFilePath, closeError)
	}
	return true, nil
}

func normalizeEntry(line string) string {
	return strings.TrimRight(strings.TrimSpace(line), trailingSeparatorsConstant)
}
