package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ListBackups lists every backup kept for a tree.
func (e *Engine) ListBackups(ctx context.Context, req *ListBackupsRequest) (*ListBackupsResult, error) {
	s, err := e.openShop(req.Root, req.CWD)
	if err != nil {
		return nil, err
	}

	files, err := s.backups.BackedUpFiles()
	if err != nil {
		return nil, err
	}

	result := &ListBackupsResult{Dir: s.backups.Dir(), Backups: make([]BackupInfo, 0, len(files))}
	for _, file := range files {
		backupPath, err := s.backups.Path(file)
		if err != nil {
			return nil, err
		}
		info := BackupInfo{Path: s.relPath(file), BackupPath: backupPath}
		if fi, err := e.fs.Stat(backupPath); err == nil {
			info.Size = fi.Size()
			info.ModTime = fi.ModTime()
		}
		result.Backups = append(result.Backups, info)
	}

	return result, nil
}

// Restore copies one file back from its backup. The backup and the install
// record are left alone, so a later install or uninstall still sees them.
func (e *Engine) Restore(ctx context.Context, req *RestoreRequest) (*RestoreResult, error) {
	s, err := e.openShop(req.Root, req.CWD)
	if err != nil {
		return nil, err
	}

	path := s.resolvePath(req.Path)
	backupPath, err := s.backups.Path(path)
	if err != nil {
		return nil, err
	}

	restored, err := s.backups.Restore(path)
	if err != nil {
		return nil, err
	}
	if !restored {
		return nil, fmt.Errorf("%w: %s", ErrNoBackup, s.relPath(path))
	}

	s.logger.Info("restored file", zap.String("path", path), zap.String("backup", backupPath))
	return &RestoreResult{Path: s.relPath(path), BackupPath: backupPath}, nil
}
