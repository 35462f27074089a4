package state

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is bumped when the on-disk layout of InstallState changes.
const SchemaVersion = 1

// InstallState is the authoritative record of an install.
type InstallState struct {
	// Schema is the layout version of this record
	Schema int `json:"schema"`

	// ID identifies this install; a reinstall after uninstall gets a new one
	ID string `json:"id"`

	// OpenCartVersion is the version detected when patches were applied
	OpenCartVersion string `json:"openCartVersion"`

	// InstalledAt is when the install completed
	InstalledAt time.Time `json:"installedAt"`

	// Files maps paths relative to the OpenCart root to what was written
	Files map[string]FileRecord `json:"files"`
}

// FileRecord describes one file sleuth patched.
type FileRecord struct {
	// Checksum is the hash of the content sleuth wrote
	Checksum string `json:"checksum"`

	// PatchedAt is when the file was written
	PatchedAt time.Time `json:"patchedAt"`
}

// NewInstallState creates an empty record with a fresh ID.
func NewInstallState(version string, at time.Time) *InstallState {
	return &InstallState{
		Schema:          SchemaVersion,
		ID:              uuid.NewString(),
		OpenCartVersion: version,
		InstalledAt:     at,
		Files:           make(map[string]FileRecord),
	}
}

// Record adds or replaces the record for a patched file.
func (s *InstallState) Record(relPath, checksum string, at time.Time) {
	if s.Files == nil {
		s.Files = make(map[string]FileRecord)
	}
	s.Files[relPath] = FileRecord{Checksum: checksum, PatchedAt: at}
}
