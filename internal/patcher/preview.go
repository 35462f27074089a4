package patcher

import (
	"errors"
	"fmt"
)

// FileChange is the computed effect of one patch, before anything is written.
type FileChange struct {
	// Name is the patch name
	Name string

	// Path is the target file
	Path string

	// Before is the current content
	Before string

	// After is the content the operation would leave behind
	After string

	// Changed reports whether After differs from Before
	Changed bool

	// Missing reports that the target does not exist
	Missing bool

	// FromBackup reports that After comes from a backup restore
	FromBackup bool
}

// Preview computes what ApplyPatches would write without touching any file.
func (p *Patcher) Preview() ([]FileChange, error) {
	var changes []FileChange
	for _, pt := range p.Patches() {
		fc := FileChange{Name: pt.Name, Path: pt.Path}

		before, err := p.read(pt.Path)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			fc.Missing = true
			changes = append(changes, fc)
			continue
		}

		fc.Before = before
		fc.After, fc.Changed = pt.apply(before)
		changes = append(changes, fc)
	}
	return changes, nil
}

// PreviewRemoval computes what RemovePatches would write.
func (p *Patcher) PreviewRemoval() ([]FileChange, error) {
	var changes []FileChange
	for _, pt := range p.Patches() {
		fc := FileChange{Name: pt.Name, Path: pt.Path}

		before, err := p.read(pt.Path)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			fc.Missing = true
		}
		fc.Before = before

		if p.backups.HasBackup(pt.Path) {
			original, err := p.readBackup(pt.Path)
			if err != nil {
				return nil, err
			}
			fc.After = original
			fc.FromBackup = true
			fc.Changed = original != before
		} else if !fc.Missing {
			fc.After, fc.Changed = pt.revert(before)
		}

		changes = append(changes, fc)
	}
	return changes, nil
}

func (p *Patcher) readBackup(path string) (string, error) {
	backupPath, err := p.backups.Path(path)
	if err != nil {
		return "", err
	}
	data, err := p.fs.ReadFile(backupPath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read backup %s: %v", ErrIOFailure, backupPath, err)
	}
	return string(data), nil
}
