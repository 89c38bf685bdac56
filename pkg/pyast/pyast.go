// Package pyast wraps the tree-sitter Python grammar with the small set of
// tree operations the extractors need: parsing with a one-shot recovery
// transform, node selection, and line-range computation.
package pyast

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Node kinds produced by the tree-sitter Python grammar.
const (
	KindModule              = "module"
	KindFunctionDefinition  = "function_definition"
	KindDecoratedDefinition = "decorated_definition"
	KindDecorator           = "decorator"
	KindClassDefinition     = "class_definition"
	KindBlock               = "block"
	KindParameters          = "parameters"
	KindExceptClause        = "except_clause"
	KindExceptGroupClause   = "except_group_clause"
	KindRaiseStatement      = "raise_statement"
	KindIdentifier          = "identifier"
	KindAttribute           = "attribute"
	KindCall                = "call"
	KindTuple               = "tuple"
	KindParenthesized       = "parenthesized_expression"
	KindExpressionStatement = "expression_statement"
	KindString              = "string"
	KindConcatenatedString  = "concatenated_string"
	KindComment             = "comment"
	KindAsync               = "async"
)

// Tree is a parsed Python source. Source and Lines hold the text that was
// actually parsed, so Lines[i] is always tree-sitter row i.
type Tree struct {
	Source []byte
	Lines  []string

	tree *sitter.Tree
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Text returns the source text covered by node.
func (t *Tree) Text(node *sitter.Node) string {
	return Text(node, t.Source)
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// NewParser creates a new tree-sitter parser for Python.
// Parsers are not safe for concurrent use; Parse creates one per call.
func NewParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return parser
}

// Parse parses text. If the first attempt yields a tree with syntax errors,
// text is passed through Clean and parsed once more; a second failure is
// returned as a *ParseError.
func Parse(text string) (*Tree, error) {
	tree, firstErr := parseOnce(text)
	if firstErr == nil {
		return tree, nil
	}

	cleaned := Clean(text)
	tree, err := parseOnce(cleaned)
	if err != nil {
		return nil, firstErr
	}
	return tree, nil
}

func parseOnce(text string) (*Tree, error) {
	parser := NewParser()
	defer parser.Close()

	source := []byte(text)
	st, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, &ParseError{Line: 1, Column: 1, Reason: err.Error()}
	}
	if st == nil {
		return nil, &ParseError{Line: 1, Column: 1, Reason: "parser returned no tree"}
	}

	root := st.RootNode()
	if root.HasError() {
		perr := firstSyntaxError(root)
		st.Close()
		return nil, perr
	}

	return &Tree{Source: source, Lines: SplitLines(text), tree: st}, nil
}

// firstSyntaxError locates the first ERROR or MISSING node in pre-order.
func firstSyntaxError(root *sitter.Node) *ParseError {
	for _, n := range NodesOfType(root, true) {
		if n.IsError() || n.IsMissing() {
			reason := "unexpected syntax"
			if n.IsMissing() {
				reason = fmt.Sprintf("missing %s", n.Type())
			}
			return &ParseError{
				Line:   int(n.StartPoint().Row) + 1,
				Column: int(n.StartPoint().Column) + 1,
				Reason: reason,
			}
		}
	}
	return &ParseError{Line: 1, Column: 1, Reason: "unexpected syntax"}
}

// Clean escapes every literal line break so that string literals broken
// across lines become parseable single-line literals.
func Clean(text string) string {
	return strings.ReplaceAll(text, "\n", `\n`)
}

// SplitLines splits text into lines the way tree-sitter counts rows: on "\n"
// only, with a trailing "\r" removed from each line and no empty element
// after a final newline.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Text extracts the text content of a node from the source.
func Text(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > uint32(len(source)) || end > uint32(len(source)) || start > end {
		return ""
	}
	return string(source[start:end])
}

// Indentation counts the leading space characters of line. Tabs do not count.
func Indentation(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}
