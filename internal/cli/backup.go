package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartwryte/sleuth/internal/engine"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Inspect and restore the backups taken by install",
	Long: `Manage the copies install takes of every file before its first change.
Backups live below system/ in the shop, mirroring the original layout.`,
}

var backupLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List backed up files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()

		t, err := target()
		if err != nil {
			return err
		}

		result, err := eng.ListBackups(context.Background(), &engine.ListBackupsRequest{Target: t})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSection("Backups")
		PrintLabelValue("Directory", result.Dir)
		fmt.Println()
		if len(result.Backups) == 0 {
			PrintEmptyState("No backups found")
			return nil
		}

		rows := make([][]string, 0, len(result.Backups))
		for _, b := range result.Backups {
			rows = append(rows, []string{
				b.Path,
				fmt.Sprintf("%d", b.Size),
				b.ModTime.Local().Format("2006-01-02 15:04:05"),
			})
		}
		PrintTable([]string{"FILE", "SIZE", "TAKEN"}, rows, nil)
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore one file from its backup",
	Long: `Copy the backup of <file> over the current file. <file> is relative to the
OpenCart root or absolute. The backup itself is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()

		t, err := target()
		if err != nil {
			return err
		}

		result, err := eng.Restore(context.Background(), &engine.RestoreRequest{Target: t, Path: args[0]})
		if err != nil {
			if errors.Is(err, engine.ErrNoBackup) && !jsonOutput {
				PrintWarning("Run 'sleuth backup ls' to see which files have backups.")
			}
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSuccess(fmt.Sprintf("Restored %s", result.Path))
		PrintLabelValue("From", result.BackupPath)
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupLsCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}
