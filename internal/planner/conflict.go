package planner

import (
	"errors"
	"os"

	"github.com/cartwryte/sleuth/internal/hash"
	"github.com/cartwryte/sleuth/internal/state"
)

// DriftChecker compares patched files with the checksums recorded at install.
type DriftChecker struct {
	hasher  hash.Hasher
	install *state.InstallState
	force   bool
}

// NewDriftChecker creates a DriftChecker. A nil install state means nothing
// was recorded and no file is reported as drifted.
func NewDriftChecker(hasher hash.Hasher, install *state.InstallState, force bool) *DriftChecker {
	return &DriftChecker{
		hasher:  hasher,
		install: install,
		force:   force,
	}
}

// Drifted reports whether the file at path no longer has the content sleuth
// wrote. Files without a record, and files that no longer exist, have not
// drifted.
func (c *DriftChecker) Drifted(path, relPath string) (bool, error) {
	if c.install == nil {
		return false, nil
	}
	record, ok := c.install.Files[relPath]
	if !ok {
		return false, nil
	}

	sum, err := c.hasher.HashFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return sum != record.Checksum, nil
}

// CheckRestore returns a Conflict when restoring path from backup would
// discard edits made after install, unless force is set.
func (c *DriftChecker) CheckRestore(path, relPath string) *Conflict {
	drifted, err := c.Drifted(path, relPath)
	if err != nil {
		return &Conflict{Path: path, Reason: "Failed to hash file: " + err.Error()}
	}
	if !drifted || c.force {
		return nil
	}
	return &Conflict{
		Path:   path,
		Reason: "Modified since install; restoring the backup would discard the edits (use --force)",
	}
}
