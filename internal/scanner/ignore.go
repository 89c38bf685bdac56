package scanner

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnorePattern represents a single gitignore-style pattern from a
// .pyinspectignore file.
type IgnorePattern struct {
	pattern     string // Original pattern
	glob        string // doublestar glob the pattern compiles to
	isNegation  bool   // True if pattern starts with !
	isDirectory bool   // True if pattern ends with /
	isAbsolute  bool   // True if pattern starts with / or has an inner /
}

// ParseIgnorePattern parses a gitignore-style pattern string.
//
// A pattern without a slash matches at any depth. A leading or inner slash
// anchors it to the directory holding the ignore file.
func ParseIgnorePattern(pattern string) IgnorePattern {
	p := IgnorePattern{pattern: pattern}

	if strings.HasPrefix(pattern, "!") {
		p.isNegation = true
		pattern = pattern[1:]
	}

	if strings.HasSuffix(pattern, "/") {
		p.isDirectory = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	if strings.HasPrefix(pattern, "/") {
		p.isAbsolute = true
		pattern = pattern[1:]
	} else if strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "**/") {
		p.isAbsolute = true
	}

	if !p.isAbsolute && !strings.HasPrefix(pattern, "**/") {
		pattern = "**/" + pattern
	}
	p.glob = pattern

	return p
}

// Match reports whether the file at path (slash separated, relative to the
// ignore file) is covered by the pattern. A directory pattern covers every
// file below a matching directory.
func (p IgnorePattern) Match(path string) bool {
	if !p.isDirectory {
		if ok, _ := doublestar.Match(p.glob, path); ok {
			return true
		}
	}
	ok, _ := doublestar.Match(p.glob+"/**", path)
	return ok
}

// MatchDir reports whether the directory at path is itself covered.
func (p IgnorePattern) MatchDir(path string) bool {
	ok, _ := doublestar.Match(p.glob, path)
	return ok
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.isNegation
}

// String returns the pattern as written.
func (p IgnorePattern) String() string {
	return p.pattern
}

// escapeMeta quotes the glob metacharacters in a literal path.
func escapeMeta(path string) string {
	var b strings.Builder
	for _, r := range path {
		if strings.ContainsRune(`\*?[]{}`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
