package textpatch

import "strings"

// CallTerminator closes a call-style block such as set_error_handler(...);
const CallTerminator = ");"

// CommentOutBlock comments out every block that starts on a line matched by m.
//
// Starting at the matched line, each line is commented and its brace delta
// added to a running depth. The block ends on the first line where depth is
// back to zero or below and, when terminator is non-empty, the line contains
// terminator. Without a terminator the block ends only once at least one
// opening brace has been seen, so a signature whose '{' sits on the next line
// is handled. Scanning then resumes and a later match opens a new block.
//
// Lines that are already commented never start a block, so running the same
// operation twice leaves the second Result unchanged. If braces never
// balance, commenting continues to the end of the input.
func CommentOutBlock(lines []string, m Matcher, terminator string) Result {
	out := make([]string, 0, len(lines))
	changed := false

	inBlock := false
	depth := 0
	sawBrace := false

	for _, line := range lines {
		if !inBlock {
			if IsCommented(line) || !m.Match(line) {
				out = append(out, line)
				continue
			}
			inBlock = true
			depth = 0
			sawBrace = false
		}

		depth += BraceDelta(line)
		if strings.Contains(line, "{") {
			sawBrace = true
		}
		out = append(out, Comment(line))
		changed = true

		if blockEnds(line, depth, sawBrace, terminator) {
			inBlock = false
		}
	}

	return Result{Lines: out, Changed: changed}
}

// CommentOutCall comments out a call-style block, e.g. a
// set_error_handler(function (...) { ... }); registration, ending on the line
// that balances the braces and carries ");".
func CommentOutCall(lines []string, name string) Result {
	return CommentOutBlock(lines, CallStart(name), CallTerminator)
}

// CommentOutBraceBlock comments out a brace-delimited block such as a method
// body, ending when the braces balance.
func CommentOutBraceBlock(lines []string, m Matcher) Result {
	return CommentOutBlock(lines, m, "")
}

// UncommentBlock reverses CommentOutBlock for blocks whose uncommented first
// line matches m. Only lines carrying a comment marker at column zero are
// touched; an uncommented line inside a candidate block ends it early.
func UncommentBlock(lines []string, m Matcher, terminator string) Result {
	out := make([]string, 0, len(lines))
	changed := false

	inBlock := false
	depth := 0
	sawBrace := false

	for _, line := range lines {
		commented := strings.HasPrefix(line, "//")
		if !commented {
			inBlock = false
			out = append(out, line)
			continue
		}

		text := Uncomment(line)
		if !inBlock {
			if !m.Match(text) {
				out = append(out, line)
				continue
			}
			inBlock = true
			depth = 0
			sawBrace = false
		}

		depth += BraceDelta(text)
		if strings.Contains(text, "{") {
			sawBrace = true
		}
		out = append(out, text)
		changed = true

		if blockEnds(text, depth, sawBrace, terminator) {
			inBlock = false
		}
	}

	return Result{Lines: out, Changed: changed}
}

func blockEnds(line string, depth int, sawBrace bool, terminator string) bool {
	if depth > 0 {
		return false
	}
	if terminator != "" {
		return strings.Contains(line, terminator)
	}
	return sawBrace || depth < 0
}
