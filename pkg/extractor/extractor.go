// Package extractor pulls structural facts out of Python source text:
// function blocks and their metadata, exception flow through except
// clauses, imports, variables, and a handful of text utilities.
package extractor

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/l3aro/go-pyinspect/pkg/pyast"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

// ErrNoFunction is returned by the argument helpers when the text defines
// no function.
var ErrNoFunction = errors.New("unable to find function")

// Options selects which function definitions are considered.
type Options struct {
	// IgnorePrivate drops functions whose name starts with an underscore.
	IgnorePrivate bool
	// IgnoreNested restricts selection to module-level definitions.
	IgnoreNested bool
}

// PythonExtractor builds a ModuleInfo for a Python source file.
type PythonExtractor struct {
	Options
	// TodoPattern overrides DefaultTodoPattern.
	TodoPattern string
}

// NewPythonExtractor creates an extractor with the given selection options.
func NewPythonExtractor(opts Options) *PythonExtractor {
	return &PythonExtractor{Options: opts, TodoPattern: DefaultTodoPattern}
}

// Extract reads and inspects a Python file.
func (e *PythonExtractor) Extract(filePath string) (*types.ModuleInfo, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", filePath, err)
	}
	return e.ExtractFromBytes(content, filePath)
}

// ExtractFromBytes inspects Python source already in memory. The tree is
// parsed once and shared by every extraction.
func (e *PythonExtractor) ExtractFromBytes(content []byte, filePath string) (*types.ModuleInfo, error) {
	text := string(content)

	tree, err := pyast.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	blocks, err := blockDetails(tree, filterDefs(tree, e.Options))
	if err != nil {
		return nil, fmt.Errorf("extracting function blocks from %s: %w", filePath, err)
	}

	functions, err := functionsIn(tree)
	if err != nil {
		return nil, fmt.Errorf("extracting functions from %s: %w", filePath, err)
	}

	todos, err := Todos(text, e.TodoPattern)
	if err != nil {
		return nil, err
	}

	variables := variablesIn(tree)

	return &types.ModuleInfo{
		Path:      filePath,
		Docstring: docstring(tree.Root(), tree.Source),
		Functions: functions,
		Blocks:    blocks,
		Imports:   importsIn(tree),
		Handled:   handledIn(tree),
		Raised:    raisedIn(tree),
		Flows:     flowsIn(tree),
		Variables: variables,
		Constants: constantsOf(variables),
		Todos:     todos,
	}, nil
}

var importTemplate = template.Must(template.New("import").Parse(
	`from {{ .Module }} import (
{{- range .Names }}
    {{ . }},
{{- end }}
)`))

// ImportString renders a parenthesized import of every function defined in
// text, nested ones included, from module.
func ImportString(text, module string) (string, error) {
	names, err := FunctionNames(text, Options{})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	err = importTemplate.Execute(&sb, struct {
		Module string
		Names  []string
	}{module, names})
	if err != nil {
		return "", fmt.Errorf("rendering import string: %w", err)
	}
	return sb.String(), nil
}
