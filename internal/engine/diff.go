package engine

import (
	"context"
	"fmt"

	"github.com/cartwryte/sleuth/internal/diff"
	"github.com/cartwryte/sleuth/internal/patcher"
	"github.com/cartwryte/sleuth/internal/planner"
)

// Diff renders the pending install (or uninstall) as unified patches without
// writing anything.
func (e *Engine) Diff(ctx context.Context, req *DiffRequest) (*DiffResult, error) {
	s, err := e.openShop(req.Root, req.CWD)
	if err != nil {
		return nil, err
	}

	var changes []patcher.FileChange
	kind := planner.KindInstall
	if req.Uninstall {
		kind = planner.KindUninstall
		changes, err = s.patcher.PreviewRemoval()
	} else {
		changes, err = s.patcher.Preview()
	}
	if err != nil {
		return nil, err
	}

	result := &DiffResult{Kind: kind, Root: s.root, Files: make([]DiffFileInfo, 0, len(changes))}
	for _, fc := range changes {
		info := DiffFileInfo{Path: s.relPath(fc.Path)}

		switch {
		case fc.Missing && !fc.FromBackup:
			info.Status = "missing"
		case !fc.Changed:
			info.Status = "unchanged"
		default:
			info.Status = "modified"
			patch, err := diff.Unified(info.Path, fc.Before, fc.After, req.Context)
			if err != nil {
				return nil, fmt.Errorf("failed to diff %s: %w", info.Path, err)
			}
			info.UnifiedDiff = patch
			info.Additions, info.Deletions = diff.Stats(patch)
		}

		result.Files = append(result.Files, info)
	}

	return result, nil
}
