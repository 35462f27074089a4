package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cartwryte/sleuth/internal/engine"
)

var (
	diffUninstall  bool
	diffContext    int
	diffNameOnly   bool
	diffNameStatus bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show the changes install would make",
	Long: `Display the pending install as unified patches, one per file, without
writing anything. With --uninstall, show what uninstall would restore.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()

		t, err := target()
		if err != nil {
			return err
		}

		req := &engine.DiffRequest{
			Target:    t,
			Uninstall: diffUninstall,
			Context:   diffContext,
		}

		result, err := eng.Diff(context.Background(), req)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		return formatDiffOutput(result)
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffUninstall, "uninstall", false, "Show what uninstall would change")
	diffCmd.Flags().IntVarP(&diffContext, "unified", "U", 3, "Lines of context around each change")
	diffCmd.Flags().BoolVar(&diffNameOnly, "name-only", false, "Show only file names")
	diffCmd.Flags().BoolVar(&diffNameStatus, "name-status", false, "Show file names with status")
}

// formatDiffOutput formats the diff result for display.
func formatDiffOutput(result *engine.DiffResult) error {
	if diffNameOnly {
		return formatNameOnly(result)
	}

	if diffNameStatus {
		return formatNameStatus(result)
	}

	return formatDefaultDiff(result)
}

// formatNameOnly outputs only filenames (no status indicators).
func formatNameOnly(result *engine.DiffResult) error {
	for _, file := range changedFiles(result) {
		fmt.Println(file.Path)
	}
	return nil
}

// formatNameStatus outputs filenames with status indicators (M, ?).
func formatNameStatus(result *engine.DiffResult) error {
	for _, file := range changedFiles(result) {
		statusChar := getStatusChar(file.Status)
		switch file.Status {
		case "missing":
			_, _ = errorColor.Printf("%s\t%s\n", statusChar, file.Path)
		case "modified":
			_, _ = warningColor.Printf("%s\t%s\n", statusChar, file.Path)
		default:
			fmt.Printf("%s\t%s\n", statusChar, file.Path)
		}
	}
	return nil
}

// formatDefaultDiff outputs a git-like unified patch plus a change summary.
func formatDefaultDiff(result *engine.DiffResult) error {
	initColors()

	files := changedFiles(result)
	if len(files) == 0 {
		PrintEmptyState("No changes detected")
		return nil
	}

	fmt.Println()
	_, _ = dimColor.Printf("  %s: ", result.Kind)
	_, _ = infoColor.Printf("%s\n", result.Root)

	insertions := 0
	deletions := 0
	changed := 0

	for _, file := range files {
		fmt.Println()
		printDiffFileHeader(file)

		if file.UnifiedDiff != "" {
			printUnifiedDiff(file.UnifiedDiff)
		}

		if file.Status == "modified" {
			changed++
		}
		insertions += file.Additions
		deletions += file.Deletions
	}

	fmt.Println()
	_, _ = dimColor.Print("  ")
	fmt.Printf("%d file%s changed", changed, plural(changed))
	if insertions > 0 {
		_, _ = successColor.Printf(", %d insertion%s(+)", insertions, plural(insertions))
	}
	if deletions > 0 {
		_, _ = errorColor.Printf(", %d deletion%s(-)", deletions, plural(deletions))
	}
	if missing := len(files) - changed; missing > 0 {
		_, _ = warningColor.Printf(", %d missing", missing)
	}
	fmt.Println()

	return nil
}

func changedFiles(result *engine.DiffResult) []engine.DiffFileInfo {
	files := make([]engine.DiffFileInfo, 0, len(result.Files))
	for _, file := range result.Files {
		if file.Status != "unchanged" {
			files = append(files, file)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}

// getStatusChar returns the single-character status indicator.
func getStatusChar(status string) string {
	switch status {
	case "modified":
		return "M"
	case "missing":
		return "!"
	case "unchanged":
		return "U"
	default:
		return "?"
	}
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

func printDiffFileHeader(file engine.DiffFileInfo) {
	statusChar := getStatusChar(file.Status)
	statusClr := dimColor
	switch file.Status {
	case "missing":
		statusClr = errorColor
	case "modified":
		statusClr = warningColor
	}

	_, _ = statusClr.Printf("  %s ", statusChar)
	_, _ = headerColor.Printf("%s", file.Path)

	if file.Additions > 0 {
		_, _ = successColor.Printf("  +%d", file.Additions)
	}
	if file.Deletions > 0 {
		_, _ = errorColor.Printf("  -%d", file.Deletions)
	}
	if file.Status == "missing" {
		_, _ = dimColor.Printf("  (file not found)")
	}
	fmt.Println()

	_, _ = dimColor.Println("  " + strings.Repeat("─", 50))
}

func printUnifiedDiff(diffText string) {
	lines := strings.Split(diffText, "\n")
	for i, line := range lines {
		// Preserve trailing newline semantics from generated patches.
		if i == len(lines)-1 && line == "" {
			continue
		}

		switch {
		// Skip redundant diff header lines, already shown in file header
		case strings.HasPrefix(line, "+++ "),
			strings.HasPrefix(line, "--- "):
			continue
		case strings.HasPrefix(line, "@@"):
			_, _ = infoColor.Printf("  %s\n", line)
		case strings.HasPrefix(line, "+"):
			_, _ = successColor.Printf("  %s\n", line)
		case strings.HasPrefix(line, "-"):
			_, _ = errorColor.Printf("  %s\n", line)
		default:
			fmt.Printf("  %s\n", line)
		}
	}
}
