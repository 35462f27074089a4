package engine

// Target identifies the OpenCart tree a request operates on.
type Target struct {
	// Root is the OpenCart public directory; empty means search upward from CWD
	Root string

	// CWD is the current working directory
	CWD string
}

// InstallRequest represents a request to install sleuth into a tree.
type InstallRequest struct {
	Target

	// DryRun performs planning only without making changes
	DryRun bool
}

// UninstallRequest represents a request to remove sleuth from a tree.
type UninstallRequest struct {
	Target

	// DryRun shows what would be restored without touching any file
	DryRun bool

	// Force restores backups even over files edited since install
	Force bool

	// KeepBackups leaves the backup directory in place afterwards
	KeepBackups bool
}

// StatusRequest represents a request for install status.
type StatusRequest struct {
	Target
}

// DiffRequest represents a request to preview pending changes as patches.
type DiffRequest struct {
	Target

	// Uninstall previews removal instead of install
	Uninstall bool

	// Context is the number of context lines per hunk (0 for the default)
	Context int
}

// ListBackupsRequest represents a request to list backups.
type ListBackupsRequest struct {
	Target
}

// RestoreRequest represents a request to restore a single file from backup.
type RestoreRequest struct {
	Target

	// Path is the file to restore, absolute or relative to the OpenCart root
	Path string
}
