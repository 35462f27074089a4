package textpatch

// CommentLinesAfter comments a window of count lines relative to the first
// line matched by m. With includeMatch the window starts at the match itself,
// otherwise on the following line. The window is clamped to the end of the
// input. Lines that are already commented are left as they are.
//
// Only the first match is processed; no match returns the input unchanged.
func CommentLinesAfter(lines []string, m Matcher, count int, includeMatch bool) Result {
	out := cloneLines(lines)

	i := firstMatch(out, m)
	if i < 0 || count <= 0 {
		return Result{Lines: out}
	}

	start := i
	if !includeMatch {
		start = i + 1
	}
	end := min(start+count-1, len(out)-1)

	return Result{Lines: out, Changed: commentRange(out, start, end)}
}

// CommentLinesBefore comments the count lines preceding the first line
// matched by m, plus the match itself when includeMatch is set. The window is
// clamped to the start of the input. Lines that are already commented are
// left as they are.
//
// Only the first match is processed; no match returns the input unchanged.
func CommentLinesBefore(lines []string, m Matcher, count int, includeMatch bool) Result {
	out := cloneLines(lines)

	i := firstMatch(out, m)
	if i < 0 {
		return Result{Lines: out}
	}

	start := max(i-count, 0)
	end := i - 1
	if includeMatch {
		end = i
	}

	return Result{Lines: out, Changed: commentRange(out, start, end)}
}

func firstMatch(lines []string, m Matcher) int {
	for i, line := range lines {
		if m.Match(line) {
			return i
		}
	}
	return -1
}

// commentRange comments lines[start..end] in place and reports whether any
// line was rewritten.
func commentRange(lines []string, start, end int) bool {
	changed := false
	for j := start; j <= end; j++ {
		if IsCommented(lines[j]) {
			continue
		}
		lines[j] = Comment(lines[j])
		changed = true
	}
	return changed
}
