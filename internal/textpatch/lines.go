// Package textpatch applies and reverts line-oriented edits to source files.
//
// The patcher works on plain text lines and has no notion of PHP syntax. A
// code block is delimited by counting '{' and '}' characters, so braces
// inside string literals or comments are counted too. The target files are
// known, well-formed OpenCart bootstrap files, and a block whose braces never
// balance is commented through to the end of the input rather than corrected.
//
// Key operations:
//   - CommentOutBlock / CommentOutCall / CommentOutBraceBlock: brace-depth blocks
//   - CommentLinesAfter / CommentLinesBefore: fixed windows around a match
//   - UncommentBlock: the reverse, for heuristic unpatching
//
// Every operation returns a Result whose Changed flag tells the caller whether
// anything needs to be written back.
package textpatch

import "strings"

// CommentMarker is prepended to every line the patcher comments out.
const CommentMarker = "// "

// Result is the outcome of a patch operation on a sequence of lines.
type Result struct {
	// Lines is the resulting line sequence. It never aliases the input.
	Lines []string

	// Changed reports whether any line differs from the input.
	Changed bool
}

// Split breaks file content into lines. A trailing newline does not produce
// an extra empty line; blank lines inside the content are kept.
func Split(content string) []string {
	if content == "" {
		return []string{}
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Join reassembles lines into file content terminated by a newline.
func Join(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// IsCommented reports whether a line, ignoring indentation, already starts
// with a line comment.
func IsCommented(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "//")
}

// Comment prefixes a line with CommentMarker.
func Comment(line string) string {
	return CommentMarker + line
}

// Uncomment strips one CommentMarker (or a bare "//") from the start of a line.
// Lines that are not commented are returned unchanged.
func Uncomment(line string) string {
	if strings.HasPrefix(line, CommentMarker) {
		return line[len(CommentMarker):]
	}
	if strings.HasPrefix(line, "//") {
		return line[2:]
	}
	return line
}

// BraceDelta returns the number of '{' minus the number of '}' in a line.
func BraceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}

func cloneLines(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}
