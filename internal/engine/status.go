package engine

import (
	"context"
	"strings"

	"github.com/cartwryte/sleuth/internal/patcher"
	"github.com/cartwryte/sleuth/internal/planner"
)

// Status reports detection, version support, install state, backups and
// per-file drift for a tree. It never writes.
func (e *Engine) Status(ctx context.Context, req *StatusRequest) (*StatusResult, error) {
	s, err := e.openShop(req.Root, req.CWD)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		Detected:  s.detector.IsOpenCart(),
		Paths:     s.detector.Paths(),
		BackupDir: s.backups.Dir(),
		Files:     []FileStatus{},
	}

	if version, err := s.detector.Version(); err != nil {
		result.Error = err.Error()
	} else {
		result.Version = version
		if major, err := s.detector.MajorVersion(); err == nil {
			result.MajorVersion = major
			result.Supported = e.cfg.SupportsMajorVersion(major)
		}
	}

	result.Installed = s.patcher.IsInstalled()

	backups, err := s.backups.BackedUpFiles()
	if err != nil {
		return nil, err
	}
	result.BackupCount = len(backups)

	st, err := s.loadState()
	if err != nil {
		return nil, err
	}
	if st != nil {
		result.InstallID = st.ID
		result.InstalledAt = st.InstalledAt
	}

	changes, err := s.patcher.Preview()
	if err != nil {
		return nil, err
	}
	drift := planner.NewDriftChecker(e.hasher, st, false)

	for _, fc := range changes {
		rel := s.relPath(fc.Path)
		file := FileStatus{
			Name:      fc.Name,
			Path:      rel,
			Exists:    !fc.Missing,
			Patched:   !fc.Missing && isPatched(fc),
			HasBackup: s.backups.HasBackup(fc.Path),
		}
		if file.Exists {
			drifted, err := drift.Drifted(fc.Path, rel)
			if err != nil {
				return nil, err
			}
			file.Drifted = drifted
		}
		result.Files = append(result.Files, file)
	}

	return result, nil
}

// isPatched reports whether a previewed patch would be a no-op because it is
// already applied. A no-op on a file with nothing to patch (an action config
// without a startup/error line) does not count.
func isPatched(fc patcher.FileChange) bool {
	if fc.Changed {
		return false
	}
	switch fc.Name {
	case patcher.PatchFramework:
		return strings.Contains(fc.Before, "// set_error_handler(") || strings.Contains(fc.Before, "// set_exception_handler(")
	case patcher.PatchDefaultConfig:
		return strings.Contains(fc.Before, patcher.DevConfigSentinel)
	case patcher.PatchVendor:
		return strings.Contains(fc.Before, patcher.AutoloadSentinel)
	default:
		return strings.Contains(fc.Before, patcher.StartupErrorDisabled) || strings.Contains(fc.Before, patcher.StartupErrorSentinel)
	}
}
