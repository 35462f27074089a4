// Package fsops provides the filesystem operations sleuth performs on an
// OpenCart tree.
//
// Every write to a host file or to the backup tree goes through the FS
// interface so that tests can inject failures into patching, and so that
// writes to live shop files are atomic.
//
// Key features:
//   - Atomic writes using temp file + rename, preserving the target's mode
//   - Byte-identical file copies used for backups
//   - Relative path validation for backup layout derivation
package fsops

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FS provides an abstraction for filesystem operations.
type FS interface {
	// Stat returns file info, following symlinks.
	Stat(path string) (os.FileInfo, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// Remove removes a file or empty directory.
	Remove(path string) error

	// CopyFile copies a regular file from src to dst, creating parents.
	CopyFile(src, dst string) error

	// AtomicWrite writes data to path atomically using temp file + rename.
	AtomicWrite(path string, data []byte, perm os.FileMode) error

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// Exists checks if a path exists.
	Exists(path string) (bool, error)

	// ListFiles returns every regular file below root, sorted.
	// A missing root yields an empty list.
	ListFiles(root string) ([]string, error)

	// ValidateRelPath validates a relative path for safety.
	ValidateRelPath(relPath string) error
}

// RealFS implements FS using actual OS operations.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// Stat returns file info, following symlinks.
func (fs *RealFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll creates a directory and all parent directories.
func (fs *RealFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Remove removes a file or empty directory.
func (fs *RealFS) Remove(path string) error {
	return os.Remove(path)
}

// CopyFile copies a single regular file from src to dst.
// The destination keeps the source's permission bits.
func (fs *RealFS) CopyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return fmt.Errorf("cannot copy directory %q as a file", src)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer func() {
		_ = dstFile.Close()
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return dstFile.Sync()
}

// AtomicWrite writes data to path atomically using temp file + rename.
func (fs *RealFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// Temp file lives next to the target so the rename stays on one device
	tmpFile, err := os.CreateTemp(dir, ".sleuth-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	tmpFile = nil
	return nil
}

// ReadFile reads the entire contents of a file.
func (fs *RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Exists checks if a path exists.
func (fs *RealFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ListFiles returns every regular file below root in lexical order.
func (fs *RealFS) ListFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) && path == root {
				return filepath.SkipDir
			}
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// ValidateRelPath validates a relative path for safety.
// Returns an error if the path is empty, absolute, or escapes its base.
func (fs *RealFS) ValidateRelPath(relPath string) error {
	return ValidateRelPath(relPath)
}

// ValidateRelPath is the receiver-free form of RealFS.ValidateRelPath, shared
// with test fakes.
func ValidateRelPath(relPath string) error {
	cleaned := filepath.Clean(relPath)

	if cleaned == "" || cleaned == "." {
		return fmt.Errorf("invalid path: empty or current directory")
	}

	if filepath.IsAbs(cleaned) {
		return fmt.Errorf("invalid path: must be relative, got absolute path %q", cleaned)
	}

	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("invalid path: path traversal not allowed in %q", cleaned)
	}

	return nil
}
