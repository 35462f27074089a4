package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cartwryte/sleuth/internal/backup"
	"github.com/cartwryte/sleuth/internal/clock"
	"github.com/cartwryte/sleuth/internal/config"
	"github.com/cartwryte/sleuth/internal/fsops"
	"github.com/cartwryte/sleuth/internal/hash"
	"github.com/cartwryte/sleuth/internal/planner"
	"github.com/cartwryte/sleuth/internal/testutil"
)

const ocVersion = "4.0.2.3"

var installedAt = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(
		fsops.NewRealFS(),
		hash.NewSHA256Hasher(),
		clock.NewFakeClock(installedAt),
		config.DefaultConfig(),
		zap.NewNop(),
	)
}

func target(root string) Target {
	return Target{Root: root}
}

func TestInstall_FreshTree(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	eng := newTestEngine(t)

	result, err := eng.Install(context.Background(), &InstallRequest{Target: target(root)})
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	report := result.Report
	if !report.Success {
		t.Fatalf("expected success, errors: %v", report.Errors)
	}
	if report.Version != ocVersion {
		t.Errorf("Version = %q, want %q", report.Version, ocVersion)
	}

	wantSteps := []string{
		"Detected OpenCart version: 4.0.2.3",
		"OpenCart version 4.0.2.3 is supported",
		"Autoloader registration installed",
		"Configuration patches applied",
		"Error handlers commented out",
		"Installation completed successfully",
	}
	if strings.Join(report.Steps, "\n") != strings.Join(wantSteps, "\n") {
		t.Errorf("steps = %q, want %q", report.Steps, wantSteps)
	}

	if result.InstallID == "" {
		t.Error("expected an install ID")
	}
	if len(result.Plan.Pending()) != 5 {
		t.Errorf("expected 5 planned writes, got %d", len(result.Plan.Pending()))
	}
}

func TestInstall_SecondRunIsNoOp(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	eng := newTestEngine(t)
	ctx := context.Background()

	first, err := eng.Install(ctx, &InstallRequest{Target: target(root)})
	if err != nil {
		t.Fatal(err)
	}

	second, err := eng.Install(ctx, &InstallRequest{Target: target(root)})
	if err != nil {
		t.Fatalf("second Install failed: %v", err)
	}
	if !containsStep(second.Report.Steps, "Autoloader registration already present") ||
		!containsStep(second.Report.Steps, "Configuration patches already applied") {
		t.Errorf("unexpected steps: %v", second.Report.Steps)
	}
	if len(second.Plan.Pending()) != 0 {
		t.Errorf("second run planned writes: %+v", second.Plan.Pending())
	}
	if second.InstallID != first.InstallID {
		t.Error("install ID should survive a no-op reinstall")
	}
}

func TestInstall_NotOpenCart(t *testing.T) {
	root := t.TempDir()
	eng := newTestEngine(t)

	result, err := eng.Install(context.Background(), &InstallRequest{Target: target(root)})
	if !errors.Is(err, ErrNotDetected) {
		t.Fatalf("expected ErrNotDetected, got %v", err)
	}
	if result.Report.Success || len(result.Report.Errors) == 0 {
		t.Errorf("report should carry the failure: %+v", result.Report)
	}
}

func TestInstall_UnsupportedVersionWritesNothing(t *testing.T) {
	root := testutil.NewShop(t, "2.3.0.2")
	eng := newTestEngine(t)

	result, err := eng.Install(context.Background(), &InstallRequest{Target: target(root)})
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	if result.Report.Version != "2.3.0.2" {
		t.Errorf("Version = %q", result.Report.Version)
	}

	testutil.AssertStock(t, root, "2.3.0.2")
	backupDir := filepath.Join(root, "system", "storage", "backup", "cartwryte-sleuth")
	if _, err := os.Stat(backupDir); !os.IsNotExist(err) {
		t.Error("no backup directory should be created for an unsupported version")
	}
}

func TestInstall_UnreadableStateIsReported(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.Install(ctx, &InstallRequest{Target: target(root)}); err != nil {
		t.Fatal(err)
	}
	stateFile := filepath.Join(root, "system", "storage", "backup", "cartwryte-sleuth", "install.json")
	testutil.WriteFile(t, stateFile, "{not json")

	result, err := eng.Install(ctx, &InstallRequest{Target: target(root)})
	if err == nil {
		t.Fatal("expected an error for a corrupt install record")
	}
	if result.Report.Success || len(result.Report.Errors) == 0 {
		t.Errorf("corrupt state should be reported: %+v", result.Report)
	}
	if result.InstallID != "" {
		t.Errorf("InstallID = %q, want empty", result.InstallID)
	}
}

func TestEngine_RejectsBackupDirOutsideSystem(t *testing.T) {
	for _, dir := range []string{".", "..", "../../elsewhere"} {
		t.Run(dir, func(t *testing.T) {
			root := testutil.NewShop(t, ocVersion)
			cfg := config.DefaultConfig()
			cfg.BackupDir = dir
			eng := New(fsops.NewRealFS(), hash.NewSHA256Hasher(), clock.NewFakeClock(installedAt), cfg, zap.NewNop())
			ctx := context.Background()

			if _, err := eng.Install(ctx, &InstallRequest{Target: target(root)}); !errors.Is(err, backup.ErrUnsafeDir) {
				t.Errorf("Install: got %v, want ErrUnsafeDir", err)
			}
			if _, err := eng.Uninstall(ctx, &UninstallRequest{Target: target(root)}); !errors.Is(err, backup.ErrUnsafeDir) {
				t.Errorf("Uninstall: got %v, want ErrUnsafeDir", err)
			}
			testutil.AssertStock(t, root, ocVersion)
		})
	}
}

func TestInstall_DryRun(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	eng := newTestEngine(t)

	result, err := eng.Install(context.Background(), &InstallRequest{Target: target(root), DryRun: true})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !result.DryRun || !result.Report.Success {
		t.Errorf("unexpected result: %+v", result.Report)
	}
	if !containsStep(result.Report.Steps, "Would patch system/framework.php (framework)") {
		t.Errorf("missing dry-run step: %v", result.Report.Steps)
	}
	testutil.AssertStock(t, root, ocVersion)
}

func TestInstall_MissingFileIsPartial(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	if err := os.Remove(filepath.Join(root, "system", "config", "catalog.php")); err != nil {
		t.Fatal(err)
	}
	eng := newTestEngine(t)

	result, err := eng.Install(context.Background(), &InstallRequest{Target: target(root)})
	if !errors.Is(err, ErrPatchFailed) {
		t.Fatalf("expected ErrPatchFailed, got %v", err)
	}
	if result.Report.Success {
		t.Error("report should not be successful")
	}
	if len(result.Report.Errors) != 1 || !strings.Contains(result.Report.Errors[0], "catalog.php") {
		t.Errorf("errors should name the missing file: %v", result.Report.Errors)
	}

	// The other files were still patched
	vendor := testutil.ReadFile(t, filepath.Join(root, "system", "vendor.php"))
	if !strings.Contains(vendor, "// Cartwryte Sleuth") {
		t.Error("vendor.php should be patched despite the missing catalog config")
	}
}

func TestInstall_FindsRootFromSubdirectory(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	sub := filepath.Join(root, "catalog", "controller")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	eng := newTestEngine(t)

	result, err := eng.Install(context.Background(), &InstallRequest{Target: Target{CWD: sub}})
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if result.Root != root {
		t.Errorf("Root = %q, want %q", result.Root, root)
	}
}

func TestUninstall_RestoresStockTree(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.Install(ctx, &InstallRequest{Target: target(root)}); err != nil {
		t.Fatal(err)
	}

	result, err := eng.Uninstall(ctx, &UninstallRequest{Target: target(root)})
	if err != nil {
		t.Fatalf("Uninstall failed: %v", err)
	}
	if !result.Report.Success {
		t.Fatalf("expected success: %v", result.Report.Errors)
	}
	for _, want := range []string{
		"Configuration restored from backup (5 files)",
		"Autoloader registration removed",
		"All backups removed",
		"Uninstallation completed successfully",
	} {
		if !containsStep(result.Report.Steps, want) {
			t.Errorf("missing step %q in %v", want, result.Report.Steps)
		}
	}

	testutil.AssertStock(t, root, ocVersion)
	backupDir := filepath.Join(root, "system", "storage", "backup", "cartwryte-sleuth")
	if _, err := os.Stat(backupDir); !os.IsNotExist(err) {
		t.Error("backup directory should be gone")
	}
}

func TestUninstall_DriftIsConflict(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.Install(ctx, &InstallRequest{Target: target(root)}); err != nil {
		t.Fatal(err)
	}

	// Edit a patched file after install
	defaults := filepath.Join(root, "system", "config", "default.php")
	edited := testutil.ReadFile(t, defaults) + "$_['local_tweak'] = 1;\n"
	testutil.WriteFile(t, defaults, edited)

	result, err := eng.Uninstall(ctx, &UninstallRequest{Target: target(root)})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(result.Plan.Conflicts) != 1 {
		t.Errorf("expected one conflict, got %+v", result.Plan.Conflicts)
	}
	if got := testutil.ReadFile(t, defaults); got != edited {
		t.Error("nothing should be written when the plan has conflicts")
	}

	if _, err := eng.Uninstall(ctx, &UninstallRequest{Target: target(root), Force: true}); err != nil {
		t.Fatalf("forced Uninstall failed: %v", err)
	}
	testutil.AssertStock(t, root, ocVersion)
}

func TestUninstall_DryRunAndKeepBackups(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.Install(ctx, &InstallRequest{Target: target(root)}); err != nil {
		t.Fatal(err)
	}

	dry, err := eng.Uninstall(ctx, &UninstallRequest{Target: target(root), DryRun: true})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !containsStep(dry.Report.Steps, "Would restore system/vendor.php (vendor registration)") {
		t.Errorf("missing dry-run step: %v", dry.Report.Steps)
	}
	if !strings.Contains(testutil.ReadFile(t, filepath.Join(root, "system", "vendor.php")), "// Cartwryte Sleuth") {
		t.Fatal("dry run must not touch files")
	}

	if _, err := eng.Uninstall(ctx, &UninstallRequest{Target: target(root), KeepBackups: true}); err != nil {
		t.Fatal(err)
	}
	list, err := eng.ListBackups(ctx, &ListBackupsRequest{Target: target(root)})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Backups) != 5 {
		t.Errorf("expected 5 kept backups, got %d", len(list.Backups))
	}
}

func TestStatus(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	eng := newTestEngine(t)
	ctx := context.Background()

	before, err := eng.Status(ctx, &StatusRequest{Target: target(root)})
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !before.Detected || before.Installed || before.BackupCount != 0 {
		t.Errorf("unexpected status before install: %+v", before)
	}
	if before.MajorVersion != 4 || !before.Supported {
		t.Errorf("version support: major=%d supported=%v", before.MajorVersion, before.Supported)
	}

	if _, err := eng.Install(ctx, &InstallRequest{Target: target(root)}); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, filepath.Join(root, "system", "vendor.php"),
		testutil.ReadFile(t, filepath.Join(root, "system", "vendor.php"))+"// local edit\n")

	after, err := eng.Status(ctx, &StatusRequest{Target: target(root)})
	if err != nil {
		t.Fatal(err)
	}
	if !after.Installed || after.BackupCount != 5 {
		t.Errorf("unexpected status after install: installed=%v backups=%d", after.Installed, after.BackupCount)
	}
	if !after.InstalledAt.Equal(installedAt) || after.InstallID == "" {
		t.Errorf("install record not reported: %s %v", after.InstallID, after.InstalledAt)
	}
	for _, f := range after.Files {
		if !f.Patched || !f.HasBackup {
			t.Errorf("%s: patched=%v backup=%v", f.Path, f.Patched, f.HasBackup)
		}
		if wantDrift := f.Path == "system/vendor.php"; f.Drifted != wantDrift {
			t.Errorf("%s: drifted=%v, want %v", f.Path, f.Drifted, wantDrift)
		}
	}
}

func TestDiff(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	eng := newTestEngine(t)
	ctx := context.Background()

	result, err := eng.Diff(ctx, &DiffRequest{Target: target(root)})
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if result.Kind != planner.KindInstall || len(result.Files) != 5 {
		t.Fatalf("unexpected diff: %+v", result)
	}
	vendor := result.Files[4]
	if vendor.Status != "modified" || vendor.Additions != 3 || vendor.Deletions != 0 {
		t.Errorf("vendor diff: %+v", vendor)
	}
	if !strings.Contains(vendor.UnifiedDiff, "+// Cartwryte Sleuth") {
		t.Errorf("patch missing sentinel:\n%s", vendor.UnifiedDiff)
	}
	testutil.AssertStock(t, root, ocVersion)

	if _, err := eng.Install(ctx, &InstallRequest{Target: target(root)}); err != nil {
		t.Fatal(err)
	}

	removal, err := eng.Diff(ctx, &DiffRequest{Target: target(root), Uninstall: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range removal.Files {
		if f.Status != "modified" {
			t.Errorf("%s: status = %q, want modified", f.Path, f.Status)
		}
	}
}

func TestRestore(t *testing.T) {
	root := testutil.NewShop(t, ocVersion)
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.Restore(ctx, &RestoreRequest{Target: target(root), Path: "system/framework.php"}); !errors.Is(err, ErrNoBackup) {
		t.Errorf("expected ErrNoBackup, got %v", err)
	}

	if _, err := eng.Install(ctx, &InstallRequest{Target: target(root)}); err != nil {
		t.Fatal(err)
	}

	result, err := eng.Restore(ctx, &RestoreRequest{Target: target(root), Path: "system/framework.php"})
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if result.Path != "system/framework.php" {
		t.Errorf("Path = %q", result.Path)
	}
	if got := testutil.ReadFile(t, filepath.Join(root, "system", "framework.php")); got != testutil.Framework {
		t.Error("framework.php not restored")
	}
}

func containsStep(steps []string, want string) bool {
	for _, s := range steps {
		if s == want {
			return true
		}
	}
	return false
}
