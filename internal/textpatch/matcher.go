package textpatch

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher decides whether a line starts the region an operation acts on.
type Matcher interface {
	Match(line string) bool
}

// MatcherFunc adapts a plain function to the Matcher interface.
type MatcherFunc func(line string) bool

// Match calls f(line).
func (f MatcherFunc) Match(line string) bool {
	return f(line)
}

type regexpMatcher struct {
	re *regexp.Regexp
}

func (m regexpMatcher) Match(line string) bool {
	return m.re.MatchString(line)
}

func (m regexpMatcher) String() string {
	return m.re.String()
}

// Regexp returns a Matcher for a regular expression.
func Regexp(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return regexpMatcher{re: re}, nil
}

// MustRegexp is like Regexp but panics on an invalid expression.
// Intended for package-level patterns.
func MustRegexp(expr string) Matcher {
	m, err := Regexp(expr)
	if err != nil {
		panic(err)
	}
	return m
}

type literalMatcher string

func (m literalMatcher) Match(line string) bool {
	return strings.Contains(line, string(m))
}

func (m literalMatcher) String() string {
	return string(m)
}

// Literal returns a Matcher that matches lines containing s.
func Literal(s string) Matcher {
	return literalMatcher(s)
}

// CallStart matches a line that begins (after indentation) with a call to
// name, e.g. "set_error_handler(". A line already prefixed with a comment
// does not match, which is what makes re-applying a patch a no-op.
func CallStart(name string) Matcher {
	return regexpMatcher{re: regexp.MustCompile(`^\s*` + regexp.QuoteMeta(name) + `\s*\(`)}
}
