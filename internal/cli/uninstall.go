package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartwryte/sleuth/internal/engine"
)

var (
	uninstallDryRun      bool
	uninstallForce       bool
	uninstallKeepBackups bool
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the Sleuth debug handler from an OpenCart shop",
	Long: `Restore every patched file from its backup, or remove the patch in place
when no backup exists, then delete the backups and the install record.

Files edited since install are reported as conflicts and nothing is written;
use --force to restore them anyway.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()

		t, err := target()
		if err != nil {
			return err
		}

		req := &engine.UninstallRequest{
			Target:      t,
			DryRun:      uninstallDryRun,
			Force:       uninstallForce,
			KeepBackups: uninstallKeepBackups,
		}

		result, err := eng.Uninstall(context.Background(), req)
		if jsonOutput && result != nil {
			if jerr := outputJSON(result); jerr != nil {
				return jerr
			}
			return err
		}
		if result == nil {
			return err
		}

		if result.Plan != nil && result.Plan.HasConflicts() && !uninstallDryRun {
			PrintSection("Conflicts Detected")
			for _, conflict := range result.Plan.Conflicts {
				PrintError(fmt.Sprintf("%s: %s", conflict.Path, conflict.Reason))
			}
			fmt.Println()
			PrintWarning("Use --force to restore over local edits.")
			return err
		}

		if uninstallDryRun {
			printDryRun(result.Plan, nil)
			return err
		}

		printReport("Uninstall", result.Report)
		if err == nil {
			fmt.Println()
			PrintSuccess(fmt.Sprintf("Sleuth removed from %s", result.Root))
		}
		return err
	},
}

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallDryRun, "dry-run", false, "Show what would be restored without writing")
	uninstallCmd.Flags().BoolVarP(&uninstallForce, "force", "f", false, "Restore files edited since install")
	uninstallCmd.Flags().BoolVar(&uninstallKeepBackups, "keep-backups", false, "Keep the backup directory")
}
