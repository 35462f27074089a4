package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/cartwryte/sleuth/internal/planner"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
)

// initColors disables colors for JSON output; fatih/color already turns
// them off when stdout is not a terminal.
func initColors() {
	if jsonOutput {
		color.NoColor = true
	}
}

// PrintSection prints a section header
func PrintSection(title string) {
	initColors()
	fmt.Println()
	_, _ = headerColor.Printf("▸ %s\n", title)
	fmt.Println()
}

// PrintSubsection prints a subsection header
func PrintSubsection(title string) {
	initColors()
	_, _ = infoColor.Printf("  %s\n", title)
}

// PrintSuccess prints a success message with a checkmark
func PrintSuccess(msg string) {
	initColors()
	_, _ = successColor.Printf("✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol
func PrintWarning(msg string) {
	initColors()
	_, _ = warningColor.Printf("⚠ %s\n", msg)
}

// PrintError prints an error message to stderr
func PrintError(msg string) {
	initColors()
	_, _ = errorColor.Fprintf(os.Stderr, "✗ %s\n", msg)
}

// PrintLabelValue prints a label-value pair with proper formatting
func PrintLabelValue(label, value string) {
	PrintLabelValueWithColor(label, value, valueColor)
}

// PrintLabelValueWithColor prints a label-value pair with a custom value color
func PrintLabelValueWithColor(label, value string, valueClr *color.Color) {
	initColors()
	_, _ = labelColor.Printf("  %s: ", label)
	_, _ = valueClr.Println(value)
}

// PrintSteps prints report steps, marking failures and no-ops apart from
// the steps that changed something.
func PrintSteps(steps []string) {
	initColors()
	for _, step := range steps {
		mark, clr := stepStyle(step)
		_, _ = clr.Printf("  %s %s\n", mark, step)
	}
}

func stepStyle(step string) (string, *color.Color) {
	lower := strings.ToLower(step)
	switch {
	case strings.Contains(lower, "failed"), strings.Contains(lower, "aborted"):
		return "✗", errorColor
	case strings.HasPrefix(step, "Would "):
		return "•", infoColor
	case strings.Contains(lower, "already"), strings.Contains(lower, "not present"):
		return "·", dimColor
	default:
		return "✓", successColor
	}
}

// PrintOperations lists planned file operations, one per line.
func PrintOperations(ops []planner.Operation) {
	initColors()
	width := 0
	for _, op := range ops {
		width = max(width, len(op.Type))
	}
	for _, op := range ops {
		_, _ = operationColor(op.Type).Printf("  %-*s ", width, op.Type)
		fmt.Printf("%s ", op.RelPath)
		_, _ = dimColor.Printf("(%s)\n", op.Name)
	}
}

func operationColor(opType string) *color.Color {
	switch opType {
	case planner.OpWrite:
		return successColor
	case planner.OpRestore:
		return warningColor
	case planner.OpUnpatch:
		return errorColor
	default:
		return dimColor
	}
}

// fileStateColor colors the STATE column of the status table.
func fileStateColor(state string) *color.Color {
	switch state {
	case "patched":
		return successColor
	case "patched, edited":
		return warningColor
	case "missing":
		return errorColor
	default:
		return valueColor
	}
}

// PrintTable prints a column-aligned table. cellColor picks the color of
// each cell; nil prints every cell in the value color.
func PrintTable(headers []string, rows [][]string, cellColor func(col int, cell string) *color.Color) {
	initColors()
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], len(cell))
			}
		}
	}

	fmt.Print("  ")
	for i, header := range headers {
		if i > 0 {
			fmt.Print("  ")
		}
		_, _ = headerColor.Printf("%-*s", widths[i], header)
	}
	fmt.Println()

	fmt.Print("  ")
	for i, width := range widths {
		if i > 0 {
			fmt.Print("  ")
		}
		_, _ = dimColor.Print(strings.Repeat("─", width))
	}
	fmt.Println()

	for _, row := range rows {
		fmt.Print("  ")
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				fmt.Print("  ")
			}
			clr := valueColor
			if cellColor != nil {
				clr = cellColor(i, cell)
			}
			_, _ = clr.Printf("%-*s", widths[i], cell)
		}
		fmt.Println()
	}
}

// PrintEmptyState prints a message when there's no data to show
func PrintEmptyState(msg string) {
	initColors()
	_, _ = dimColor.Printf("  %s\n", msg)
}

// countOf formats n with noun, adding an s unless n is one.
func countOf(n int, noun string) string {
	return fmt.Sprintf("%d %s%s", n, noun, plural(n))
}
