package sanitize

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	ownerWritableFilePermission      fs.FileMode = 0o200
	ownerTraversableDirectoryPermits fs.FileMode = 0o700
)

// FileRemover deletes a file or directory tree. Removing an absent path succeeds.
type FileRemover interface {
	RemoveAll(targetPath string) error
}

// ForcedRemover clears read-only permission bits before deleting, so git object files
// (written read-only by git) can be removed on every platform.
type ForcedRemover struct{}

// RemoveAll makes every entry under targetPath owner-writable and then removes the tree.
func (ForcedRemover) RemoveAll(targetPath string) error {
	if _, statError := os.Lstat(targetPath); errors.Is(statError, fs.ErrNotExist) {
		return nil
	}

	_ = filepath.WalkDir(targetPath, func(entryPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil || entry.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		entryInfo, infoError := entry.Info()
		if infoError != nil {
			return nil
		}

		requiredPermissions := ownerWritableFilePermission
		if entry.IsDir() {
			requiredPermissions = ownerTraversableDirectoryPermits
		}
		currentPermissions := entryInfo.Mode().Perm()
		if currentPermissions&requiredPermissions != requiredPermissions {
			_ = os.Chmod(entryPath, currentPermissions|requiredPermissions)
		}
		return nil
	})

	return os.RemoveAll(targetPath)
}

// measureRegularFiles sums the sizes of regular files under targetPath. Unreadable entries count as zero.
func measureRegularFiles(targetPath string) uint64 {
	var totalBytes uint64
	_ = filepath.WalkDir(targetPath, func(_ string, entry fs.DirEntry, walkError error) error {
		if walkError != nil || !entry.Type().IsRegular() {
			return nil
		}
		if entryInfo, infoError := entry.Info(); infoError == nil {
			totalBytes += uint64(entryInfo.Size())
		}
		return nil
	})
	return totalBytes
}
