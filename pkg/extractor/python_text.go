package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/l3aro/go-pyinspect/pkg/pyast"
)

// DefaultTodoPattern matches "TODO:" comments up to the end of the line.
const DefaultTodoPattern = `TODO:.*`

// Todos returns every match of pattern in text. When the pattern has a
// single capture group, the group is returned instead of the whole match.
func Todos(text, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultTodoPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling todo pattern: %w", err)
	}

	var todos []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if re.NumSubexp() == 1 {
			todos = append(todos, m[1])
			continue
		}
		todos = append(todos, m[0])
	}
	return todos, nil
}

var placeholderPattern = regexp.MustCompile(`\{[^{}\n]+\}`)

// Placeholders returns the replacement fields of format strings found in
// text, such as "name" in "Hello, {name}". Empty fields are skipped.
func Placeholders(text string, includeBraces bool) []string {
	var fields []string
	for _, m := range placeholderPattern.FindAllString(text, -1) {
		if !includeBraces {
			m = strings.TrimSuffix(strings.TrimPrefix(m, "{"), "}")
		}
		fields = append(fields, m)
	}
	return fields
}

// Clean removes interactive interpreter prompts from code copied out of
// documentation.
func Clean(text string) string {
	text = strings.ReplaceAll(text, ">>> ", "")
	return strings.ReplaceAll(text, "... ", "")
}

var separators = regexp.MustCompile(`[\s-]+`)

// MakePythonic converts a name to snake case. Runs of capitals are kept
// together: "ET Phone Home" becomes "et_phone_home".
func MakePythonic(name string) string {
	var parts []string
	var current []rune
	prev := rune(0)
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) && !unicode.IsUpper(prev) {
			parts = append(parts, strings.TrimSpace(string(current)))
			current = current[:0]
		}
		current = append(current, r)
		prev = r
	}
	parts = append(parts, strings.TrimSpace(string(current)))

	joined := strings.ToLower(strings.Join(parts, "_"))
	return separators.ReplaceAllString(joined, "_")
}

// PrettifyTraceback puts each " File " frame of a flattened traceback on
// its own line.
func PrettifyTraceback(traceback string) string {
	return strings.ReplaceAll(traceback, " File ", "\nFile ")
}

// LineCount counts the lines of text. With ignoreEmpty, empty lines are not
// counted; lines holding only whitespace still are.
func LineCount(text string, ignoreEmpty bool) int {
	lines := pyast.SplitLines(text)
	if !ignoreEmpty {
		return len(lines)
	}

	n := 0
	for _, line := range lines {
		if line != "" {
			n++
		}
	}
	return n
}
