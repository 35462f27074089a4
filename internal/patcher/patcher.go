// Package patcher applies and removes sleuth's edits to an OpenCart tree.
//
// Each patch is a pure content transform paired with its reverse. The Patcher
// reads the target, runs the transform and only when the content changes
// takes a backup and writes the result. Transforms detect their own sentinel,
// so running ApplyPatches twice performs no writes the second time.
//
// Removal prefers restoring the backup taken before the first write. When no
// backup exists the reverse transform strips the patch from the current
// content instead.
package patcher

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cartwryte/sleuth/internal/backup"
	"github.com/cartwryte/sleuth/internal/config"
	"github.com/cartwryte/sleuth/internal/fsops"
	"github.com/cartwryte/sleuth/internal/opencart"
)

var (
	// ErrNotFound indicates a patch target does not exist.
	ErrNotFound = backup.ErrNotFound

	// ErrIOFailure indicates a read, copy or write failed.
	ErrIOFailure = backup.ErrIOFailure
)

// Patch names, in the order patches are applied.
const (
	PatchFramework     = "framework"
	PatchDefaultConfig = "default config"
	PatchCatalogConfig = "catalog config"
	PatchAdminConfig   = "admin config"
	PatchVendor        = "vendor registration"
)

// Patch is one named edit to one file.
type Patch struct {
	// Name identifies the patch in reports
	Name string

	// Path is the absolute path of the target file
	Path string

	apply  func(string) (string, bool)
	revert func(string) (string, bool)
}

// Patcher applies sleuth's patches to one OpenCart installation.
type Patcher struct {
	fs       fsops.FS
	resolver opencart.PathResolver
	backups  *backup.Manager
	editor   config.EditorConfig
	logger   *zap.Logger
}

// New creates a Patcher. A nil logger disables logging.
func New(
	fs fsops.FS,
	resolver opencart.PathResolver,
	backups *backup.Manager,
	editor config.EditorConfig,
	logger *zap.Logger,
) *Patcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Patcher{
		fs:       fs,
		resolver: resolver,
		backups:  backups,
		editor:   editor,
		logger:   logger.Named("patcher"),
	}
}

// Patches returns every patch in application order.
func (p *Patcher) Patches() []Patch {
	paths := p.resolver.Paths()
	injectDevConfig := func(content string) (string, bool) {
		return InjectDevConfig(content, p.editor)
	}

	return []Patch{
		{Name: PatchFramework, Path: paths.Framework, apply: DisableErrorHandlers, revert: RestoreErrorHandlers},
		{Name: PatchDefaultConfig, Path: paths.DefaultConfig(), apply: injectDevConfig, revert: RemoveDevConfig},
		{Name: PatchCatalogConfig, Path: paths.ActionConfig("catalog"), apply: DisableStartupError, revert: EnableStartupError},
		{Name: PatchAdminConfig, Path: paths.ActionConfig("admin"), apply: DisableStartupError, revert: EnableStartupError},
		{Name: PatchVendor, Path: paths.Loader, apply: RegisterAutoload, revert: UnregisterAutoload},
	}
}

// PatchFramework comments out the stock error handlers in framework.php.
func (p *Patcher) PatchFramework() (bool, error) {
	return p.applyNamed(PatchFramework)
}

// PatchDefaultConfig injects the editor settings into config/default.php.
func (p *Patcher) PatchDefaultConfig() (bool, error) {
	return p.applyNamed(PatchDefaultConfig)
}

// PatchActionConfig disables the startup/error action in config/<kind>.php,
// where kind is "catalog" or "admin".
func (p *Patcher) PatchActionConfig(kind string) (bool, error) {
	switch kind {
	case "catalog":
		return p.applyNamed(PatchCatalogConfig)
	case "admin":
		return p.applyNamed(PatchAdminConfig)
	default:
		return false, fmt.Errorf("unknown action config %q", kind)
	}
}

// PatchVendorRegistration registers the Sleuth namespace in vendor.php.
func (p *Patcher) PatchVendorRegistration() (bool, error) {
	return p.applyNamed(PatchVendor)
}

// ApplyPatches applies every patch. A failing file does not stop the others;
// the returned error joins all per-file failures.
func (p *Patcher) ApplyPatches() (*Report, error) {
	report := &Report{}
	for _, pt := range p.Patches() {
		report.add(p.apply(pt))
	}
	return report, report.Err()
}

// RemovePatches reverts every patch, restoring from backup where one exists.
func (p *Patcher) RemovePatches() (*Report, error) {
	report := &Report{}
	for _, pt := range p.Patches() {
		report.add(p.remove(pt))
	}
	return report, report.Err()
}

// IsInstalled reports whether vendor.php carries the autoload registration.
func (p *Patcher) IsInstalled() bool {
	data, err := p.fs.ReadFile(p.resolver.Paths().Loader)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), AutoloadSentinel)
}

func (p *Patcher) applyNamed(name string) (bool, error) {
	for _, pt := range p.Patches() {
		if pt.Name == name {
			out := p.apply(pt)
			return out.Changed, out.Err
		}
	}
	return false, fmt.Errorf("unknown patch %q", name)
}

func (p *Patcher) apply(pt Patch) Outcome {
	out := Outcome{Name: pt.Name, Path: pt.Path}

	before, err := p.read(pt.Path)
	if err != nil {
		out.Err = err
		return out
	}

	after, changed := pt.apply(before)
	if !changed {
		p.logger.Debug("already patched", zap.String("patch", pt.Name), zap.String("path", pt.Path))
		out.Action = ActionAlreadyApplied
		return out
	}

	// Only the first backup is kept so uninstall restores the pristine file
	if !p.backups.HasBackup(pt.Path) {
		backupPath, err := p.backups.Backup(pt.Path)
		if err != nil {
			out.Err = err
			return out
		}
		p.logger.Debug("backed up", zap.String("path", pt.Path), zap.String("backup", backupPath))
	}

	if err := p.write(pt.Path, after); err != nil {
		out.Err = err
		return out
	}

	p.logger.Info("patched", zap.String("patch", pt.Name), zap.String("path", pt.Path))
	out.Action = ActionPatched
	out.Changed = true
	out.Content = []byte(after)
	return out
}

func (p *Patcher) remove(pt Patch) Outcome {
	out := Outcome{Name: pt.Name, Path: pt.Path}

	if p.backups.HasBackup(pt.Path) {
		if _, err := p.backups.Restore(pt.Path); err != nil {
			out.Err = err
			return out
		}
		p.logger.Info("restored from backup", zap.String("patch", pt.Name), zap.String("path", pt.Path))
		out.Action = ActionRestored
		out.Changed = true
		return out
	}

	before, err := p.read(pt.Path)
	if err != nil {
		out.Err = err
		return out
	}

	after, changed := pt.revert(before)
	if !changed {
		out.Action = ActionUnchanged
		return out
	}
	if err := p.write(pt.Path, after); err != nil {
		out.Err = err
		return out
	}

	p.logger.Info("unpatched without backup", zap.String("patch", pt.Name), zap.String("path", pt.Path))
	out.Action = ActionUnpatched
	out.Changed = true
	out.Content = []byte(after)
	return out
}

func (p *Patcher) read(path string) (string, error) {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("%w: failed to read %s: %v", ErrIOFailure, path, err)
	}
	return string(data), nil
}

func (p *Patcher) write(path, content string) error {
	perm := os.FileMode(0644)
	if info, err := p.fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := p.fs.AtomicWrite(path, []byte(content), perm); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrIOFailure, path, err)
	}
	return nil
}
