package projectfiles

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

const versionControlDirectoryNameConstant = ".git"

// extensionSet matches file extensions case-insensitively.
type extensionSet map[string]struct{}

func newExtensionSet(extensions []string) extensionSet {
	set := make(extensionSet, len(extensions))
	for _, extension := range extensions {
		normalized := strings.ToLower(strings.TrimSpace(extension))
		if len(normalized) == 0 {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		set[normalized] = struct{}{}
	}
	return set
}

func (set extensionSet) matches(fileName string) bool {
	_, matched := set[strings.ToLower(filepath.Ext(fileName))]
	return matched
}

// directoriesContaining walks rootDirectory in lexical order and returns every directory holding at
// least one regular file whose extension is in extensions. Each directory appears once, in the order
// its first matching file was visited. Version-control metadata directories are not descended into.
// A missing rootDirectory yields no directories.
func directoriesContaining(rootDirectory string, extensions extensionSet) ([]string, error) {
	var directories []string
	recorded := make(map[string]struct{})

	walkError := filepath.WalkDir(rootDirectory, func(entryPath string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			if entryPath == rootDirectory && errors.Is(entryError, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return entryError
		}
		if entry.IsDir() {
			if entry.Name() == versionControlDirectoryNameConstant && entryPath != rootDirectory {
				return fs.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || !extensions.matches(entry.Name()) {
			return nil
		}

		parentDirectory := filepath.Dir(entryPath)
		if _, alreadyRecorded := recorded[parentDirectory]; alreadyRecorded {
			return nil
		}
		recorded[parentDirectory] = struct{}{}
		directories = append(directories, parentDirectory)
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}
	return directories, nil
}

// relativeEntries renders directories relative to baseDirectory with forward slashes.
func relativeEntries(baseDirectory string, directories []string) ([]string, error) {
	absoluteBase, baseError := filepath.Abs(baseDirectory)
	if baseError != nil {
		return nil, baseError
	}

	entries := make([]string, 0, len(directories))
	for _, directory := range directories {
		absoluteDirectory, directoryError := filepath.Abs(directory)
		if directoryError != nil {
			return nil, directoryError
		}
		relativeDirectory, relativeError := filepath.Rel(absoluteBase, absoluteDirectory)
		if relativeError != nil {
			return nil, relativeError
		}
		entries = append(entries, filepath.ToSlash(relativeDirectory))
	}
	return entries, nil
}

// appendMissing appends candidates absent from existing and returns the merged list and the additions.
// Duplicates already present in existing are collapsed to their first occurrence.
func appendMissing(existing []string, candidates []string) ([]string, []string) {
	present := make(map[string]struct{}, len(existing)+len(candidates))
	merged := make([]string, 0, len(existing)+len(candidates))
	for _, entry := range existing {
		if _, seen := present[entry]; seen {
			continue
		}
		present[entry] = struct{}{}
		merged = append(merged, entry)
	}

	var added []string
	for _, candidate := range candidates {
		if _, seen := present[candidate]; seen {
			continue
		}
		present[candidate] = struct{}{}
		merged = append(merged, candidate)
		added = append(added, candidate)
	}
	return merged, added
}
