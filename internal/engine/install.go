package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cartwryte/sleuth/internal/patcher"
	"github.com/cartwryte/sleuth/internal/planner"
	"github.com/cartwryte/sleuth/internal/state"
)

// Install patches an OpenCart tree so the Sleuth handler takes over.
//
// Algorithm steps:
//  1. Resolve the tree and validate it is a supported OpenCart version.
//     Nothing is written when validation fails.
//  2. Preview every patch and build the install plan.
//  3. For dry runs, stop and return the plan.
//  4. Apply the patches. Each file is backed up before its first write.
//  5. Record the checksum of every written file in the install state.
//
// A failing file does not stop the others. The result is returned alongside
// the error so the caller can show the partial report.
func (e *Engine) Install(ctx context.Context, req *InstallRequest) (*InstallResult, error) {
	s, err := e.openShop(req.Root, req.CWD)
	if err != nil {
		return nil, err
	}

	report := newReport()
	result := &InstallResult{Report: report, Root: s.root, DryRun: req.DryRun}

	if err := e.validate(s, report); err != nil {
		report.fail(err)
		report.step("Installation failed: %v", err)
		return result, err
	}

	changes, err := s.patcher.Preview()
	if err != nil {
		report.fail(err)
		return result, fmt.Errorf("failed to preview patches: %w", err)
	}
	result.Plan = planner.BuildInstallPlan(s.root, changes)

	if req.DryRun {
		for _, op := range result.Plan.Pending() {
			report.step("Would patch %s (%s)", op.RelPath, op.Name)
		}
		for _, c := range result.Plan.Conflicts {
			report.fail(fmt.Errorf("%s: %s", c.Reason, s.relPath(c.Path)))
		}
		report.Success = len(report.Errors) == 0
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	patchReport, applyErr := s.patcher.ApplyPatches()
	e.reportInstall(s, report, patchReport)

	st, err := e.recordInstall(s, report, patchReport)
	if err != nil {
		report.fail(err)
		return result, err
	}
	if st != nil {
		result.InstallID = st.ID
	}

	if applyErr != nil {
		report.step("Installation failed: %v", applyErr)
		return result, fmt.Errorf("%w: %w", ErrPatchFailed, applyErr)
	}

	report.Success = true
	report.step("Installation completed successfully")
	s.logger.Info("install completed", zap.Int("files_written", len(patchReport.Changed())))
	return result, nil
}

// validate checks detection and version support, logging both as steps.
func (e *Engine) validate(s *shop, report *Report) error {
	if !s.detector.IsOpenCart() {
		return fmt.Errorf("%w at %s", ErrNotDetected, s.root)
	}

	version, err := s.detector.Version()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotDetected, err)
	}
	report.Version = version
	report.step("Detected OpenCart version: %s", version)

	major, err := s.detector.MajorVersion()
	if err != nil || !e.cfg.SupportsMajorVersion(major) {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
	}
	report.step("OpenCart version %s is supported", version)
	return nil
}

// reportInstall turns per-file outcomes into report steps. Steps follow
// the order autoloader, configuration, error handlers regardless of the
// order the patches ran in.
func (e *Engine) reportInstall(s *shop, report *Report, patchReport *patcher.Report) {
	var autoload, handlers string
	configChanged := false
	configSeen := false

	for _, o := range patchReport.Outcomes {
		if o.Err != nil {
			report.fail(o.Err)
			continue
		}

		switch o.Name {
		case patcher.PatchVendor:
			autoload = "Autoloader registration already present"
			if o.Changed {
				autoload = "Autoloader registration installed"
			}
		case patcher.PatchFramework:
			handlers = "Error handlers already commented out"
			if o.Changed {
				handlers = "Error handlers commented out"
			}
		default:
			configSeen = true
			configChanged = configChanged || o.Changed
		}
		s.logger.Debug("patch outcome", zap.String("patch", o.Name), zap.String("action", string(o.Action)))
	}

	if autoload != "" {
		report.step("%s", autoload)
	}
	if configSeen {
		if configChanged {
			report.step("Configuration patches applied")
		} else {
			report.step("Configuration patches already applied")
		}
	}
	if handlers != "" {
		report.step("%s", handlers)
	}
}

// recordInstall merges the written files into the install state and returns
// it. Files written by an earlier run keep their records. The state is nil
// when nothing was written and no earlier install exists.
func (e *Engine) recordInstall(s *shop, report *Report, patchReport *patcher.Report) (*state.InstallState, error) {
	st, err := s.loadState()
	if err != nil {
		return nil, err
	}

	changed := patchReport.Changed()
	if len(changed) == 0 {
		return st, nil
	}

	now := e.clock.Now()
	if st == nil {
		st = state.NewInstallState(report.Version, now)
	}
	st.OpenCartVersion = report.Version

	for _, o := range changed {
		st.Record(s.relPath(o.Path), e.hasher.HashBytes(o.Content), now)
	}

	if err := s.state.Save(st); err != nil {
		return nil, err
	}
	s.logger.Debug("install state saved", zap.String("id", st.ID), zap.Int("files", len(st.Files)))
	return st, nil
}
