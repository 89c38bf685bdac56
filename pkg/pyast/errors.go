package pyast

import "fmt"

// ParseError is returned when source text cannot be parsed, even after the
// line-break recovery transform.
type ParseError struct {
	Line   int
	Column int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Reason)
}

// RangeError is returned when a node and all of its descendants lack line
// information.
type RangeError struct {
	Kind string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("unable to find line numbers for %s node", e.Kind)
}
