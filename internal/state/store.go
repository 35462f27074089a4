package state

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cartwryte/sleuth/internal/fsops"
)

// FileName is the name of the install record inside the backup directory.
const FileName = "install.json"

// StateStore persists the install record of one OpenCart tree.
type StateStore interface {
	// Load returns the install record.
	// Returns os.ErrNotExist if nothing is installed.
	Load() (*InstallState, error)

	// Save writes the install record atomically.
	Save(state *InstallState) error

	// Delete removes the install record. A missing record is not an error.
	Delete() error
}

// FileStateStore implements StateStore with a JSON file.
type FileStateStore struct {
	fs   fsops.FS
	path string
}

// NewFileStateStore creates a store backed by the file at path.
func NewFileStateStore(fs fsops.FS, path string) *FileStateStore {
	return &FileStateStore{fs: fs, path: path}
}

// Path returns the location of the record.
func (s *FileStateStore) Path() string {
	return s.path
}

// Load reads the install record.
func (s *FileStateStore) Load() (*InstallState, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read install state: %w", err)
	}

	var st InstallState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal install state: %w", err)
	}
	if st.Schema > SchemaVersion {
		return nil, fmt.Errorf("install state schema %d is newer than supported %d", st.Schema, SchemaVersion)
	}
	if st.Files == nil {
		st.Files = make(map[string]FileRecord)
	}

	return &st, nil
}

// Save writes the install record atomically.
func (s *FileStateStore) Save(st *InstallState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal install state: %w", err)
	}

	if err := s.fs.AtomicWrite(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write install state: %w", err)
	}

	return nil
}

// Delete removes the install record.
func (s *FileStateStore) Delete() error {
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete install state: %w", err)
	}
	return nil
}
