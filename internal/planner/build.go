package planner

import (
	"path/filepath"

	"github.com/cartwryte/sleuth/internal/patcher"
)

// BuildInstallPlan plans the writes for a set of previewed patches.
// A missing target is a conflict; an already-patched file is skipped.
func BuildInstallPlan(root string, changes []patcher.FileChange) *Plan {
	plan := NewPlan(KindInstall)

	for _, fc := range changes {
		op := newOperation(root, fc)

		switch {
		case fc.Missing:
			plan.AddConflict(Conflict{Path: fc.Path, Reason: "Patch target not found"})
			op.Type = OpSkip
		case fc.Changed:
			op.Type = OpWrite
		default:
			op.Type = OpSkip
		}

		plan.AddOperation(op)
	}

	return plan
}

// BuildUninstallPlan plans the restores and unpatches for a set of previewed
// removals, flagging files that drifted since install.
func BuildUninstallPlan(root string, changes []patcher.FileChange, drift *DriftChecker) *Plan {
	plan := NewPlan(KindUninstall)

	for _, fc := range changes {
		op := newOperation(root, fc)

		switch {
		case fc.FromBackup:
			op.Type = OpRestore
			if !fc.Changed {
				op.Type = OpSkip
			} else if !fc.Missing {
				if conflict := drift.CheckRestore(fc.Path, op.RelPath); conflict != nil {
					plan.AddConflict(*conflict)
				}
			}
		case fc.Changed:
			op.Type = OpUnpatch
		default:
			op.Type = OpSkip
		}

		plan.AddOperation(op)
	}

	return plan
}

func newOperation(root string, fc patcher.FileChange) Operation {
	rel, err := filepath.Rel(root, fc.Path)
	if err != nil {
		rel = fc.Path
	}
	return Operation{
		Name:    fc.Name,
		Path:    fc.Path,
		RelPath: filepath.ToSlash(rel),
		Before:  fc.Before,
		After:   fc.After,
	}
}
