// Package backup keeps pre-patch copies of OpenCart files.
//
// Backups mirror the host tree under a dedicated directory:
//
//	<backupDir>/<path relative to host root>.backup
//
// A backup is a byte-identical copy. Taking a second backup of the same file
// overwrites the first; callers that must keep the pristine original check
// HasBackup before calling Backup.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cartwryte/sleuth/internal/fsops"
)

// Suffix is appended to every backup file name.
const Suffix = ".backup"

var (
	// ErrNotFound indicates the file to back up does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrIOFailure indicates a copy or removal failed.
	ErrIOFailure = errors.New("backup i/o failure")

	// ErrOutsideRoot indicates a path that is not below the host root.
	ErrOutsideRoot = errors.New("path outside host root")

	// ErrUnsafeDir indicates a backup root that is not strictly below the
	// host root.
	ErrUnsafeDir = errors.New("unsafe backup directory")
)

// Manager creates, restores and removes backups.
type Manager struct {
	fs   fsops.FS
	root string
	dir  string
}

// NewManager creates a Manager for files under hostRoot, storing copies in
// backupDir.
func NewManager(fs fsops.FS, hostRoot, backupDir string) *Manager {
	return &Manager{
		fs:   fs,
		root: filepath.Clean(hostRoot),
		dir:  filepath.Clean(backupDir),
	}
}

// Dir returns the backup root directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns the deterministic backup location for a host file.
func (m *Manager) Path(filePath string) (string, error) {
	rel, err := filepath.Rel(m.root, filepath.Clean(filePath))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrOutsideRoot, filePath, err)
	}
	if err := m.fs.ValidateRelPath(rel); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrOutsideRoot, filePath, err)
	}
	return filepath.Join(m.dir, rel+Suffix), nil
}

// Backup copies filePath into the backup tree and returns the backup path.
func (m *Manager) Backup(filePath string) (string, error) {
	exists, err := m.fs.Exists(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to check %s: %v", ErrIOFailure, filePath, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filePath)
	}

	backupPath, err := m.Path(filePath)
	if err != nil {
		return "", err
	}

	if err := m.fs.MkdirAll(filepath.Dir(backupPath), 0755); err != nil {
		return "", fmt.Errorf("%w: cannot create backup directory %s: %v", ErrIOFailure, filepath.Dir(backupPath), err)
	}
	if err := m.fs.CopyFile(filePath, backupPath); err != nil {
		return "", fmt.Errorf("%w: failed to create backup %s: %v", ErrIOFailure, backupPath, err)
	}

	return backupPath, nil
}

// Restore overwrites filePath with its backup.
// Returns false without error when no backup exists.
func (m *Manager) Restore(filePath string) (bool, error) {
	backupPath, err := m.Path(filePath)
	if err != nil {
		return false, err
	}

	exists, err := m.fs.Exists(backupPath)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check %s: %v", ErrIOFailure, backupPath, err)
	}
	if !exists {
		return false, nil
	}

	if err := m.fs.CopyFile(backupPath, filePath); err != nil {
		return false, fmt.Errorf("%w: failed to restore %s: %v", ErrIOFailure, filePath, err)
	}

	return true, nil
}

// HasBackup reports whether a backup exists for filePath.
func (m *Manager) HasBackup(filePath string) bool {
	backupPath, err := m.Path(filePath)
	if err != nil {
		return false
	}
	exists, err := m.fs.Exists(backupPath)
	return err == nil && exists
}

// RemoveBackup deletes the backup of filePath. A missing backup is not an error.
func (m *Manager) RemoveBackup(filePath string) error {
	backupPath, err := m.Path(filePath)
	if err != nil {
		return err
	}
	if err := m.fs.Remove(backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to remove %s: %v", ErrIOFailure, backupPath, err)
	}
	return nil
}

// RemoveAll deletes every backup file, then the directories of the backup
// tree that are left empty. Other files in the tree are kept. A missing tree
// is not an error.
func (m *Manager) RemoveAll() error {
	if err := m.checkDir(); err != nil {
		return err
	}

	files, err := m.fs.ListFiles(m.dir)
	if err != nil {
		return fmt.Errorf("%w: failed to list backups: %v", ErrIOFailure, err)
	}

	dirs := map[string]bool{m.dir: true}
	for _, f := range files {
		if !strings.HasSuffix(f, Suffix) {
			continue
		}
		if err := m.fs.Remove(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: failed to remove %s: %v", ErrIOFailure, f, err)
		}
		for d := filepath.Dir(f); d != m.dir && strings.HasPrefix(d, m.dir); d = filepath.Dir(d) {
			dirs[d] = true
		}
	}

	// Deepest first so emptied children go before their parents
	ordered := make([]string, 0, len(dirs))
	for d := range dirs {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})

	for _, d := range ordered {
		left, err := m.fs.ListFiles(d)
		if err != nil {
			return fmt.Errorf("%w: failed to list %s: %v", ErrIOFailure, d, err)
		}
		if len(left) > 0 {
			continue
		}
		if err := m.fs.Remove(d); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: failed to remove %s: %v", ErrIOFailure, d, err)
		}
	}
	return nil
}

// checkDir rejects a backup root that is the host root or lies outside it.
func (m *Manager) checkDir() error {
	rel, err := filepath.Rel(m.root, m.dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: backup directory %s is not below %s", ErrUnsafeDir, m.dir, m.root)
	}
	return nil
}

// BackedUpFiles returns the host paths that currently have a backup, sorted.
func (m *Manager) BackedUpFiles() ([]string, error) {
	files, err := m.fs.ListFiles(m.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list backups: %v", ErrIOFailure, err)
	}

	originals := make([]string, 0, len(files))
	for _, f := range files {
		if !strings.HasSuffix(f, Suffix) {
			continue
		}
		rel, err := filepath.Rel(m.dir, strings.TrimSuffix(f, Suffix))
		if err != nil {
			continue
		}
		originals = append(originals, filepath.Join(m.root, rel))
	}

	return originals, nil
}
