package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cartwryte/sleuth/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the shop's OpenCart version and Sleuth install state",
	Long: `Display the detected OpenCart version, whether Sleuth is installed, and the
state of every file install patches. Files changed since install are
marked as edited.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()

		t, err := target()
		if err != nil {
			return err
		}

		result, err := eng.Status(context.Background(), &engine.StatusRequest{Target: t})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		printStatus(result)
		return nil
	},
}

func printStatus(result *engine.StatusResult) {
	PrintSection("OpenCart")
	PrintLabelValue("Root", result.Paths.Root)
	if !result.Detected {
		PrintLabelValueWithColor("Detected", "no", errorColor)
		return
	}

	if result.Version != "" {
		supported := successColor
		if !result.Supported {
			supported = errorColor
		}
		PrintLabelValueWithColor("Version", result.Version, supported)
	} else {
		PrintLabelValueWithColor("Version", result.Error, warningColor)
	}

	PrintSection("Sleuth")
	if result.Installed {
		PrintLabelValueWithColor("Installed", "yes", successColor)
	} else {
		PrintLabelValueWithColor("Installed", "no", dimColor)
	}
	if result.InstallID != "" {
		PrintLabelValue("Install ID", result.InstallID)
		PrintLabelValue("Installed At", result.InstalledAt.Local().Format("2006-01-02 15:04:05"))
	}
	PrintLabelValue("Backups", fmt.Sprintf("%s in %s", countOf(result.BackupCount, "file"), result.BackupDir))

	PrintSection("Files")
	rows := make([][]string, 0, len(result.Files))
	for _, f := range result.Files {
		rows = append(rows, []string{f.Path, fileState(f), yesNo(f.HasBackup)})
	}
	PrintTable([]string{"FILE", "STATE", "BACKUP"}, rows, func(col int, cell string) *color.Color {
		if col == 1 {
			return fileStateColor(cell)
		}
		return valueColor
	})
}

func fileState(f engine.FileStatus) string {
	switch {
	case !f.Exists:
		return "missing"
	case f.Drifted:
		return "patched, edited"
	case f.Patched:
		return "patched"
	default:
		return "stock"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
