package pyast

import (
	"iter"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"
)

// lineless lists named node kinds that do not correspond to a statement or
// expression and therefore do not contribute to a line range.
var lineless = map[string]bool{
	KindComment:            true,
	"line_continuation":    true,
	"string_start":         true,
	"string_content":       true,
	"string_end":           true,
	"escape_sequence":      true,
	"escape_interpolation": true,
}

func matches(n *sitter.Node, kinds []string) bool {
	if len(kinds) == 0 {
		return true
	}
	t := n.Type()
	for _, k := range kinds {
		if t == k {
			return true
		}
	}
	return false
}

// NodesOfType returns nodes whose kind is one of kinds (every node when kinds
// is empty).
//
// With recursive set, the whole tree is visited depth-first in pre-order,
// root included. Otherwise only root and its direct children are considered;
// a child wrapped in a decorated_definition still counts as direct.
func NodesOfType(root *sitter.Node, recursive bool, kinds ...string) []*sitter.Node {
	if root == nil {
		return nil
	}

	var out []*sitter.Node
	if !recursive {
		if matches(root, kinds) {
			out = append(out, root)
		}
		for i := 0; i < int(root.ChildCount()); i++ {
			child := root.Child(i)
			if child == nil {
				continue
			}
			if child.Type() == KindDecoratedDefinition {
				if def := child.ChildByFieldName("definition"); def != nil && matches(def, kinds) {
					out = append(out, def)
					continue
				}
			}
			if matches(child, kinds) {
				out = append(out, child)
			}
		}
		return out
	}

	for n := range Walk(root, nil) {
		if matches(n, kinds) {
			out = append(out, n)
		}
	}
	return out
}

// Walk yields root and its descendants depth-first in pre-order. Nodes for
// which prune reports true are skipped together with their subtree. The
// sequence is lazy and every range over it starts a fresh traversal.
func Walk(root *sitter.Node, prune func(*sitter.Node) bool) iter.Seq[*sitter.Node] {
	return func(yield func(*sitter.Node) bool) {
		if root == nil || (prune != nil && prune(root)) {
			return
		}

		stack := []*sitter.Node{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n) {
				return
			}
			for i := int(n.ChildCount()) - 1; i >= 0; i-- {
				child := n.Child(i)
				if child == nil || (prune != nil && prune(child)) {
					continue
				}
				stack = append(stack, child)
			}
		}
	}
}

// NodesExcludingType walks root in pre-order but prunes every node of the
// given kinds: it is neither returned nor descended into.
func NodesExcludingType(root *sitter.Node, kinds ...string) []*sitter.Node {
	if len(kinds) == 0 {
		return slices.Collect(Walk(root, nil))
	}
	return slices.Collect(Walk(root, func(n *sitter.Node) bool {
		return matches(n, kinds)
	}))
}

// LineRange returns the smallest and largest 1-based starting line found on
// node and its descendants. Anonymous tokens such as a closing parenthesis,
// comments, and string fragments carry no line.
func LineRange(node *sitter.Node) (start, end int, err error) {
	if node == nil {
		return 0, 0, &RangeError{Kind: "nil"}
	}

	found := false
	for _, n := range NodesOfType(node, true) {
		if !n.IsNamed() || lineless[n.Type()] {
			continue
		}
		line := int(n.StartPoint().Row) + 1
		if !found || line < start {
			start = line
		}
		if !found || line > end {
			end = line
		}
		found = true
	}

	if !found {
		return 0, 0, &RangeError{Kind: node.Type()}
	}
	return start, end, nil
}

// Ancestors counts the ancestors of node whose kind is one of kinds.
func Ancestors(node *sitter.Node, kinds ...string) int {
	count := 0
	for p := node.Parent(); p != nil; p = p.Parent() {
		if matches(p, kinds) {
			count++
		}
	}
	return count
}
