package engine

import (
	"fmt"
	"time"

	"github.com/cartwryte/sleuth/internal/opencart"
	"github.com/cartwryte/sleuth/internal/planner"
)

// Report is the human-readable log of an install or uninstall.
type Report struct {
	// Success is false when any fatal error occurred
	Success bool `json:"success"`

	// Version is the detected OpenCart version (install only)
	Version string `json:"version,omitempty"`

	// Steps is the ordered list of what happened
	Steps []string `json:"steps"`

	// Errors lists every fatal error
	Errors []string `json:"errors"`
}

func newReport() *Report {
	return &Report{Steps: []string{}, Errors: []string{}}
}

func (r *Report) step(format string, args ...any) {
	r.Steps = append(r.Steps, fmt.Sprintf(format, args...))
}

func (r *Report) fail(err error) {
	r.Success = false
	r.Errors = append(r.Errors, err.Error())
}

// InstallResult represents the result of an install.
type InstallResult struct {
	Report *Report `json:"report"`

	// Plan is the generated plan
	Plan *planner.Plan `json:"plan,omitempty"`

	// Root is the OpenCart root that was targeted
	Root string `json:"root"`

	// DryRun reports that nothing was written
	DryRun bool `json:"dryRun"`

	// InstallID is the ID of the recorded install state
	InstallID string `json:"installId,omitempty"`
}

// UninstallResult represents the result of an uninstall.
type UninstallResult struct {
	Report *Report `json:"report"`

	// Plan is the generated plan
	Plan *planner.Plan `json:"plan,omitempty"`

	// Root is the OpenCart root that was targeted
	Root string `json:"root"`

	// DryRun reports that nothing was written
	DryRun bool `json:"dryRun"`
}

// StatusResult describes an OpenCart tree and sleuth's footprint in it.
type StatusResult struct {
	// Detected reports whether the root looks like an OpenCart install
	Detected bool `json:"detected"`

	// Version is the OpenCart version, empty if it could not be read
	Version string `json:"version,omitempty"`

	// MajorVersion is the first component of Version
	MajorVersion int `json:"majorVersion,omitempty"`

	// Supported reports whether install accepts this version
	Supported bool `json:"supported"`

	// Installed reports whether the autoload registration is present
	Installed bool `json:"installed"`

	// BackupCount is the number of files with a backup
	BackupCount int `json:"backupCount"`

	// BackupDir is where backups are kept
	BackupDir string `json:"backupDir"`

	// Paths are the resolved OpenCart paths
	Paths opencart.Paths `json:"paths"`

	// InstallID and InstalledAt come from the install record, if any
	InstallID   string    `json:"installId,omitempty"`
	InstalledAt time.Time `json:"installedAt,omitempty"`

	// Files is the per-file state of every patch target
	Files []FileStatus `json:"files"`

	// Error explains why Version could not be read
	Error string `json:"error,omitempty"`
}

// FileStatus is the state of one patch target.
type FileStatus struct {
	// Name is the patch name
	Name string `json:"name"`

	// Path is relative to the OpenCart root
	Path string `json:"path"`

	// Exists reports whether the file is present
	Exists bool `json:"exists"`

	// Patched reports whether the patch is currently applied
	Patched bool `json:"patched"`

	// HasBackup reports whether a pre-install copy exists
	HasBackup bool `json:"hasBackup"`

	// Drifted reports an edit since install
	Drifted bool `json:"drifted"`
}

// DiffResult represents the result of a diff operation.
type DiffResult struct {
	// Kind is "install" or "uninstall"
	Kind string `json:"kind"`

	// Root is the OpenCart root that was diffed
	Root string `json:"root"`

	// Files contains every patch target with its status
	Files []DiffFileInfo `json:"files"`
}

// DiffFileInfo is the pending change to one file.
type DiffFileInfo struct {
	// Path is relative to the OpenCart root
	Path string `json:"path"`

	// Status is "modified", "unchanged" or "missing"
	Status string `json:"status"`

	// UnifiedDiff is the patch text, empty when unchanged
	UnifiedDiff string `json:"unifiedDiff,omitempty"`

	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// ListBackupsResult lists the backups of one tree.
type ListBackupsResult struct {
	// Dir is the backup root
	Dir string `json:"dir"`

	// Backups is sorted by original path
	Backups []BackupInfo `json:"backups"`
}

// BackupInfo describes one backup.
type BackupInfo struct {
	// Path is the original file, relative to the OpenCart root
	Path string `json:"path"`

	// BackupPath is the absolute path of the copy
	BackupPath string `json:"backupPath"`

	// Size is the size of the copy in bytes
	Size int64 `json:"size"`

	// ModTime is when the copy was taken
	ModTime time.Time `json:"modTime"`
}

// RestoreResult represents the result of restoring one file.
type RestoreResult struct {
	// Path is the restored file, relative to the OpenCart root
	Path string `json:"path"`

	// BackupPath is the copy it was restored from
	BackupPath string `json:"backupPath"`
}
