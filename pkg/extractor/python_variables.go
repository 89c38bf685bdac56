package extractor

import (
	"cmp"
	"slices"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-pyinspect/pkg/pyast"
)

// VariableNames returns the names bound by assignments in text. Names are
// ordered by how deep Python's own syntax tree nests them, then by source
// position, which is the order a breadth-first walk of that tree meets them.
// A name bound several times is reported each time.
func VariableNames(text string) ([]string, error) {
	tree, err := pyast.Parse(text)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return variablesIn(tree), nil
}

type binding struct {
	name  string
	depth int
}

func variablesIn(tree *pyast.Tree) []string {
	stored := map[uint32]bool{}
	for node := range pyast.Walk(tree.Root(), nil) {
		for _, id := range storedTargets(node) {
			stored[id.StartByte()] = true
		}
	}
	if len(stored) == 0 {
		return nil
	}

	var found []binding
	collectBindings(tree.Root(), 0, stored, tree.Source, &found)
	slices.SortStableFunc(found, func(a, b binding) int {
		return cmp.Compare(a.depth, b.depth)
	})

	names := make([]string, len(found))
	for i, b := range found {
		names[i] = b.name
	}
	return names
}

// collectBindings visits node in source order, appending every stored
// identifier with its depth in Python's syntax tree.
func collectBindings(node *sitter.Node, depth int, stored map[uint32]bool, source []byte, out *[]binding) {
	if node.Type() == pyast.KindIdentifier {
		if stored[node.StartByte()] {
			*out = append(*out, binding{name: pyast.Text(node, source), depth: depth})
		}
		return
	}

	elifs := 0
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "elif_clause" {
			elifs++
		}
		collectBindings(child, depth+astLevels(node, child, elifs), stored, source, out)
	}
}

// astLevels returns how many levels child sits below parent once the tree
// is mapped onto Python's syntax tree. Wrappers with no Python node add
// none. Each elif is an If nested in the previous one's else branch, and a
// chained assignment is a single statement with several targets.
func astLevels(parent, child *sitter.Node, elifs int) int {
	switch child.Type() {
	case pyast.KindBlock, pyast.KindParenthesized, pyast.KindDecoratedDefinition,
		"with_clause", "as_pattern", "as_pattern_target", "argument_list",
		"finally_clause":
		return 0
	case "elif_clause":
		return elifs
	case "else_clause":
		if parent.Type() == "if_statement" {
			return elifs
		}
		return 0
	case pyast.KindExpressionStatement:
		if inner := child.NamedChild(0); inner != nil {
			switch inner.Type() {
			case "assignment", "augmented_assignment":
				return 0
			}
		}
	case "assignment":
		if parent.Type() == "assignment" {
			return 0
		}
	}
	return 1
}

// Constants returns the variable names whose letters are all upper case.
func Constants(text string) ([]string, error) {
	names, err := VariableNames(text)
	if err != nil {
		return nil, err
	}
	return constantsOf(names), nil
}

func constantsOf(names []string) []string {
	var constants []string
	for _, name := range names {
		if isUpper(name) {
			constants = append(constants, name)
		}
	}
	return constants
}

// storedTargets returns the identifiers a single binding node stores into.
func storedTargets(node *sitter.Node) []*sitter.Node {
	switch node.Type() {
	case "assignment", "augmented_assignment", "for_statement", "for_in_clause":
		return targets(node.ChildByFieldName("left"))
	case "named_expression":
		return targets(node.ChildByFieldName("name"))
	case "as_pattern":
		p := node.Parent()
		if p == nil || p.Type() != "with_item" {
			return nil
		}
		return targets(asTarget(node))
	}
	return nil
}

// asTarget returns the part of an as_pattern after "as".
func asTarget(node *sitter.Node) *sitter.Node {
	if alias := node.ChildByFieldName("alias"); alias != nil {
		return alias
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "as_pattern_target" {
			return child
		}
	}
	return nil
}

// targets flattens an assignment target into identifiers. Attributes and
// subscripts store into an object, not a name.
func targets(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}

	switch node.Type() {
	case pyast.KindIdentifier:
		return []*sitter.Node{node}
	case "pattern_list", "tuple_pattern", "list_pattern", "expression_list",
		"tuple", "list", "parenthesized_expression", "list_splat_pattern",
		"list_splat", "as_pattern_target":
		var ids []*sitter.Node
		for i := 0; i < int(node.NamedChildCount()); i++ {
			ids = append(ids, targets(node.NamedChild(i))...)
		}
		return ids
	}
	return nil
}

// isUpper reports whether s has at least one cased letter and no lower
// case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
