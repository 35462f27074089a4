package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cartwryte/sleuth/internal/patcher"
	"github.com/cartwryte/sleuth/internal/planner"
)

// Uninstall removes sleuth from an OpenCart tree.
//
// Algorithm steps:
//  1. Preview the removal: backup restore where a backup exists, heuristic
//     unpatch otherwise.
//  2. Build the uninstall plan; files edited since install are conflicts
//     unless Force is set.
//  3. For dry runs, stop and return the plan.
//  4. Remove the patches.
//  5. On success, delete the install record and the backups.
//
// Backups are kept whenever any file fails so a later run can retry.
func (e *Engine) Uninstall(ctx context.Context, req *UninstallRequest) (*UninstallResult, error) {
	s, err := e.openShop(req.Root, req.CWD)
	if err != nil {
		return nil, err
	}

	report := newReport()
	result := &UninstallResult{Report: report, Root: s.root, DryRun: req.DryRun}

	st, err := s.loadState()
	if err != nil {
		report.fail(err)
		return result, err
	}

	changes, err := s.patcher.PreviewRemoval()
	if err != nil {
		report.fail(err)
		return result, fmt.Errorf("failed to preview removal: %w", err)
	}
	drift := planner.NewDriftChecker(e.hasher, st, req.Force)
	result.Plan = planner.BuildUninstallPlan(s.root, changes, drift)

	if result.Plan.HasConflicts() {
		for _, c := range result.Plan.Conflicts {
			report.fail(fmt.Errorf("%s: %s", s.relPath(c.Path), c.Reason))
		}
		if !req.DryRun {
			report.step("Uninstallation aborted")
			return result, ErrConflict
		}
	}

	if req.DryRun {
		for _, op := range result.Plan.Pending() {
			verb := "Would unpatch"
			if op.Type == planner.OpRestore {
				verb = "Would restore"
			}
			report.step("%s %s (%s)", verb, op.RelPath, op.Name)
		}
		report.Success = len(report.Errors) == 0
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	patchReport, removeErr := s.patcher.RemovePatches()
	e.reportUninstall(s, report, patchReport)

	if removeErr != nil {
		report.step("Uninstallation failed: %v", removeErr)
		return result, fmt.Errorf("%w: %w", ErrPatchFailed, removeErr)
	}

	if err := s.state.Delete(); err != nil {
		report.fail(err)
		return result, err
	}

	if !req.KeepBackups {
		if err := s.backups.RemoveAll(); err != nil {
			report.fail(err)
			return result, err
		}
		report.step("All backups removed")
	}

	report.Success = true
	report.step("Uninstallation completed successfully")
	s.logger.Info("uninstall completed", zap.Int("files_written", len(patchReport.Changed())))
	return result, nil
}

func (e *Engine) reportUninstall(s *shop, report *Report, patchReport *patcher.Report) {
	restored := 0
	unpatched := 0

	for _, o := range patchReport.Outcomes {
		if o.Err != nil {
			report.fail(o.Err)
			continue
		}

		switch o.Action {
		case patcher.ActionRestored:
			restored++
		case patcher.ActionUnpatched:
			unpatched++
		}

		if o.Name == patcher.PatchVendor {
			if o.Changed {
				report.step("Autoloader registration removed")
			} else {
				report.step("Autoloader registration was not present")
			}
		}
		s.logger.Debug("removal outcome", zap.String("patch", o.Name), zap.String("action", string(o.Action)))
	}

	switch {
	case restored > 0:
		report.step("Configuration restored from backup (%d files)", restored)
	case unpatched == 0:
		report.step("Configuration patches already removed")
	}
	if unpatched > 0 {
		report.step("Patches removed without backup (%d files)", unpatched)
	}
}
