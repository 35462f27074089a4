package engine

import "errors"

var (
	// ErrNotDetected indicates the target is not an OpenCart installation.
	ErrNotDetected = errors.New("opencart installation not detected")

	// ErrUnsupportedVersion indicates an OpenCart major version install does
	// not accept.
	ErrUnsupportedVersion = errors.New("unsupported opencart version")

	// ErrConflict indicates the plan has conflicts and was not executed.
	ErrConflict = errors.New("conflict detected")

	// ErrPatchFailed indicates at least one file could not be patched or
	// restored.
	ErrPatchFailed = errors.New("patching failed")

	// ErrNoBackup indicates a restore was requested for a file without backup.
	ErrNoBackup = errors.New("no backup for file")
)
