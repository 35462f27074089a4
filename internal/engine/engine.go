// Package engine provides the core logic behind every sleuth command.
//
// The engine sits between the CLI and the lower-level packages. For each
// request it locates the OpenCart tree, wires a detector, backup manager,
// patcher and state store for it, plans the operation and then executes it.
//
// Key components:
//   - Engine: Main orchestrator called by the CLI
//   - Install/Uninstall: Apply and remove the patches, recording state
//   - Status/Diff: Read-only inspection of a tree
//   - ListBackups/Restore: Backup maintenance
package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cartwryte/sleuth/internal/backup"
	"github.com/cartwryte/sleuth/internal/clock"
	"github.com/cartwryte/sleuth/internal/config"
	"github.com/cartwryte/sleuth/internal/fsops"
	"github.com/cartwryte/sleuth/internal/hash"
	"github.com/cartwryte/sleuth/internal/opencart"
	"github.com/cartwryte/sleuth/internal/patcher"
	"github.com/cartwryte/sleuth/internal/state"
)

// Engine orchestrates all sleuth operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs     fsops.FS
	hasher hash.Hasher
	clock  clock.Clock
	cfg    *config.Config
	logger *zap.Logger
}

// New creates a new Engine with the given dependencies.
func New(
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	cfg *config.Config,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		fs:     fs,
		hasher: hasher,
		clock:  clk,
		cfg:    cfg,
		logger: logger,
	}
}

// shop bundles the collaborators for one OpenCart tree.
type shop struct {
	root     string
	detector *opencart.Detector
	backups  *backup.Manager
	patcher  *patcher.Patcher
	state    *state.FileStateStore
	logger   *zap.Logger
}

// openShop resolves the OpenCart root, from root when given or by walking up
// from cwd, and wires the per-tree collaborators.
func (e *Engine) openShop(root, cwd string) (*shop, error) {
	if root == "" {
		found, err := opencart.FindRoot(cwd, e.cfg.SearchDepth)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotDetected, err)
		}
		root = found
	}

	detector, err := opencart.NewDetector(root)
	if err != nil {
		return nil, err
	}
	paths := detector.Paths()

	backupDir := filepath.Join(paths.System, e.cfg.BackupDir)
	if rel, err := filepath.Rel(paths.System, backupDir); err != nil || rel == "." || rel == ".." ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s is not below %s", backup.ErrUnsafeDir, backupDir, paths.System)
	}
	backups := backup.NewManager(e.fs, paths.Root, backupDir)
	logger := e.logger.With(zap.String("root", paths.Root))

	return &shop{
		root:     paths.Root,
		detector: detector,
		backups:  backups,
		patcher:  patcher.New(e.fs, detector, backups, e.cfg.Editor, logger),
		state:    state.NewFileStateStore(e.fs, filepath.Join(backupDir, state.FileName)),
		logger:   logger,
	}, nil
}

// loadState returns the install record, or nil when none exists.
func (s *shop) loadState() (*state.InstallState, error) {
	st, err := s.state.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}

// relPath returns path relative to the shop root with forward slashes.
func (s *shop) relPath(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// resolvePath accepts a path relative to the shop root or an absolute one.
func (s *shop) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.root, filepath.FromSlash(path))
}
