// Package diff renders unified diffs of planned file changes.
// It uses github.com/pmezard/go-difflib/difflib for the hunks.
package diff

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk.
const DefaultContext = 3

// Unified produces a unified patch for a↦b with a/ and b/ prefixed names.
// Identical inputs yield an empty string.
func Unified(name, a, b string, context int) (string, error) {
	if a == b {
		return "", nil
	}
	if context <= 0 {
		context = DefaultContext
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(a),
		B:        splitLinesKeepNL(b),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  context,
	}
	return difflib.GetUnifiedDiffString(u)
}

// Stats counts added and removed lines in a unified patch, ignoring the
// ---/+++ file headers.
func Stats(patch string) (additions, deletions int) {
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			additions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}
	return additions, deletions
}

// splitLinesKeepNL keeps the "\n" on each line so a missing final newline
// still shows up in the hunk.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
