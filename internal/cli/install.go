package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartwryte/sleuth/internal/engine"
	"github.com/cartwryte/sleuth/internal/planner"
)

var installDryRun bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the Sleuth debug handler into an OpenCart shop",
	Long: `Patch the OpenCart shop so errors are handled by Cartwryte Sleuth.

The stock error handlers in system/framework.php are commented out, editor
settings are added to config/default.php, the startup/error action is
disabled in the catalog and admin configs, and the Sleuth autoloader is
registered in system/vendor.php. Running install again changes nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()

		t, err := target()
		if err != nil {
			return err
		}

		result, err := eng.Install(context.Background(), &engine.InstallRequest{Target: t, DryRun: installDryRun})
		if jsonOutput && result != nil {
			if jerr := outputJSON(result); jerr != nil {
				return jerr
			}
			return err
		}
		if result == nil {
			return err
		}

		if installDryRun {
			printDryRun(result.Plan, result.Report)
			return err
		}

		printReport("Install", result.Report)
		if err == nil {
			fmt.Println()
			PrintSuccess(fmt.Sprintf("Sleuth installed in %s", result.Root))
		}
		return err
	},
}

func init() {
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Show what would be patched without writing")
}

// printDryRun lists the pending operations of a plan.
func printDryRun(plan *planner.Plan, report *engine.Report) {
	PrintSection("Dry Run")
	if report != nil && report.Version != "" {
		PrintLabelValue("OpenCart", report.Version)
		fmt.Println()
	}
	if plan == nil {
		return
	}

	pending := plan.Pending()
	fmt.Printf("Would change %s\n", countOf(len(pending), "file"))
	if len(pending) > 0 {
		fmt.Println()
		PrintOperations(pending)
	}

	if plan.HasConflicts() {
		fmt.Println()
		PrintSubsection("Conflicts:")
		for _, c := range plan.Conflicts {
			PrintWarning(fmt.Sprintf("%s: %s", c.Path, c.Reason))
		}
	}
}
