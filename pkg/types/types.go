// Package types defines the data structures produced by the Python extractors.
// It includes types for function blocks, arguments, exception flow, imports,
// and per-module reports.
package types

// FunctionBlock is the verbatim source of one function definition.
type FunctionBlock struct {
	Name      string `json:"name" yaml:"name" msgpack:"name"`
	Text      string `json:"text" yaml:"text" msgpack:"text"`
	StartLine int    `json:"start_line" yaml:"start_line" msgpack:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line" msgpack:"end_line"`
	Depth     int    `json:"depth" yaml:"depth" msgpack:"depth"`
	IsAsync   bool   `json:"is_async" yaml:"is_async" msgpack:"is_async"`
	// Continued is set when a trailing closing-parenthesis line was appended.
	Continued bool `json:"continued,omitempty" yaml:"continued,omitempty" msgpack:"continued,omitempty"`
}

// Function represents a function definition
type Function struct {
	Name       string   `json:"name" yaml:"name" msgpack:"name"`
	Signature  string   `json:"signature" yaml:"signature" msgpack:"signature"`
	Docstring  string   `json:"docstring" yaml:"docstring" msgpack:"docstring"`
	LineNumber int      `json:"line_number" yaml:"line_number" msgpack:"line_number"`
	EndLine    int      `json:"end_line" yaml:"end_line" msgpack:"end_line"`
	Length     int      `json:"length" yaml:"length" msgpack:"length"`
	IsAsync    bool     `json:"is_async" yaml:"is_async" msgpack:"is_async"`
	Decorators []string `json:"decorators,omitempty" yaml:"decorators,omitempty" msgpack:"decorators,omitempty"`
	NestedIn   string   `json:"nested_in,omitempty" yaml:"nested_in,omitempty" msgpack:"nested_in,omitempty"`
}

// Argument is one positional-or-keyword parameter of a function.
type Argument struct {
	Name       string `json:"name" yaml:"name" msgpack:"name"`
	Annotation string `json:"annotation,omitempty" yaml:"annotation,omitempty" msgpack:"annotation,omitempty"`
	Default    string `json:"default,omitempty" yaml:"default,omitempty" msgpack:"default,omitempty"`
	HasDefault bool   `json:"has_default" yaml:"has_default" msgpack:"has_default"`
}

// ExceptionFlow describes one exception handler: what it names and what
// leaves it.
type ExceptionFlow struct {
	LineNumber int      `json:"line_number" yaml:"line_number" msgpack:"line_number"`
	BoundName  string   `json:"bound_name,omitempty" yaml:"bound_name,omitempty" msgpack:"bound_name,omitempty"`
	Handled    []string `json:"handled" yaml:"handled" msgpack:"handled"`
	Raised     []string `json:"raised" yaml:"raised" msgpack:"raised"`
}

// Import represents an import statement
type Import struct {
	Module string   `json:"module" yaml:"module" msgpack:"module"`
	Names  []string `json:"names" yaml:"names" msgpack:"names"`
	// Aliases maps an imported name to the name it is bound to.
	Aliases    map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty" msgpack:"aliases,omitempty"`
	IsFrom     bool              `json:"is_from" yaml:"is_from" msgpack:"is_from"`
	LineNumber int               `json:"line_number" yaml:"line_number" msgpack:"line_number"`
}

// ModuleInfo contains all extracted information about a module
type ModuleInfo struct {
	Path       string          `json:"path" yaml:"path" msgpack:"path"`
	Digest     string          `json:"digest" yaml:"digest" msgpack:"digest"`
	Docstring  string          `json:"docstring,omitempty" yaml:"docstring,omitempty" msgpack:"docstring,omitempty"`
	Functions  []Function      `json:"functions" yaml:"functions" msgpack:"functions"`
	Blocks     []FunctionBlock `json:"blocks,omitempty" yaml:"blocks,omitempty" msgpack:"blocks,omitempty"`
	Imports    []Import        `json:"imports" yaml:"imports" msgpack:"imports"`
	Handled    []string        `json:"exceptions_handled" yaml:"exceptions_handled" msgpack:"exceptions_handled"`
	Raised     []string        `json:"exceptions_raised" yaml:"exceptions_raised" msgpack:"exceptions_raised"`
	Flows      []ExceptionFlow `json:"exception_flows,omitempty" yaml:"exception_flows,omitempty" msgpack:"exception_flows,omitempty"`
	Variables  []string        `json:"variables" yaml:"variables" msgpack:"variables"`
	Constants  []string        `json:"constants" yaml:"constants" msgpack:"constants"`
	Todos      []string        `json:"todos,omitempty" yaml:"todos,omitempty" msgpack:"todos,omitempty"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty" msgpack:"error,omitempty"`
}

// Report is the result of inspecting a file or a directory tree.
type Report struct {
	Root    string       `json:"root" yaml:"root" msgpack:"root"`
	Modules []ModuleInfo `json:"modules" yaml:"modules" msgpack:"modules"`
}

// Failed returns the number of modules that could not be inspected.
func (r *Report) Failed() int {
	n := 0
	for _, m := range r.Modules {
		if m.Error != "" {
			n++
		}
	}
	return n
}
