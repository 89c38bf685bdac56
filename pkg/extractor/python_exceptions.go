package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-pyinspect/pkg/pyast"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

// ExprKind classifies an expression found in an except clause or a raise
// statement.
type ExprKind int

const (
	// ExprAbsent is a missing expression: a bare "except:" or "raise".
	ExprAbsent ExprKind = iota
	// ExprName is a plain identifier such as ValueError or e.
	ExprName
	// ExprAttribute is a dotted path such as pint.UndefinedUnitError.
	ExprAttribute
	// ExprCallName is a call on a plain identifier: ValueError("msg").
	ExprCallName
	// ExprCallAttribute is a call on a dotted path: pint.Error("msg").
	ExprCallAttribute
	// ExprTuple is a parenthesized group of expressions.
	ExprTuple
	// ExprUnknown is any other expression; it resolves to no name.
	ExprUnknown
)

func (k ExprKind) String() string {
	switch k {
	case ExprAbsent:
		return "absent"
	case ExprName:
		return "name"
	case ExprAttribute:
		return "attribute"
	case ExprCallName:
		return "call-name"
	case ExprCallAttribute:
		return "call-attribute"
	case ExprTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// Expr is a classified exception expression. Name holds the rendered
// identifier or dotted path for the name-like kinds; Elts holds the members
// of a tuple.
type Expr struct {
	Kind ExprKind
	Name string
	Elts []Expr
}

// Names returns the exception types the expression names. Only identifiers
// and dotted paths name a type; calls and unknown members of a tuple are
// skipped.
func (e Expr) Names() []string {
	switch e.Kind {
	case ExprName, ExprAttribute:
		return []string{e.Name}
	case ExprTuple:
		var names []string
		for _, elt := range e.Elts {
			if elt.Kind == ExprTuple {
				continue
			}
			names = append(names, elt.Names()...)
		}
		return names
	}
	return nil
}

func classifyExpr(node *sitter.Node, source []byte) Expr {
	if node == nil {
		return Expr{Kind: ExprAbsent}
	}

	switch node.Type() {
	case pyast.KindIdentifier:
		return Expr{Kind: ExprName, Name: pyast.Text(node, source)}
	case pyast.KindAttribute:
		if path, ok := dottedPath(node, source); ok {
			return Expr{Kind: ExprAttribute, Name: path}
		}
	case pyast.KindCall:
		fn := classifyExpr(node.ChildByFieldName("function"), source)
		switch fn.Kind {
		case ExprName:
			return Expr{Kind: ExprCallName, Name: fn.Name}
		case ExprAttribute:
			return Expr{Kind: ExprCallAttribute, Name: fn.Name}
		}
	case pyast.KindTuple:
		var elts []Expr
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == pyast.KindComment {
				continue
			}
			elts = append(elts, classifyExpr(child, source))
		}
		return Expr{Kind: ExprTuple, Elts: elts}
	case pyast.KindParenthesized:
		if inner := soleChild(node); inner != nil {
			return classifyExpr(inner, source)
		}
	}
	return Expr{Kind: ExprUnknown}
}

// handledType classifies the type clause of an except. A call there is an
// expression producing the types, not a type, so it resolves to nothing.
func handledType(node *sitter.Node, source []byte) Expr {
	return typeExpr(classifyExpr(node, source))
}

func typeExpr(e Expr) Expr {
	switch e.Kind {
	case ExprCallName, ExprCallAttribute:
		return Expr{Kind: ExprUnknown}
	case ExprTuple:
		elts := make([]Expr, len(e.Elts))
		for i, elt := range e.Elts {
			elts[i] = typeExpr(elt)
		}
		return Expr{Kind: ExprTuple, Elts: elts}
	}
	return e
}

// dottedPath renders an attribute chain whose innermost object is an
// identifier. Any other base makes the whole chain unresolvable.
func dottedPath(node *sitter.Node, source []byte) (string, bool) {
	switch node.Type() {
	case pyast.KindIdentifier:
		return pyast.Text(node, source), true
	case pyast.KindAttribute:
		base, ok := dottedPath(node.ChildByFieldName("object"), source)
		if !ok {
			return "", false
		}
		attr := node.ChildByFieldName("attribute")
		if attr == nil {
			return "", false
		}
		return base + "." + pyast.Text(attr, source), true
	}
	return "", false
}

// soleChild returns the only named, non-comment child of node.
func soleChild(node *sitter.Node) *sitter.Node {
	var only *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == pyast.KindComment {
			continue
		}
		if only != nil {
			return nil
		}
		only = child
	}
	return only
}

// Handler is an except clause.
type Handler struct {
	Node *sitter.Node
	// BoundName is the identifier after "as", or "".
	BoundName string
	Types     Expr
	Body      *sitter.Node
	// Line is the 1-based line of the "except" keyword.
	Line int

	source []byte
}

// Handlers returns every except clause in tree, nested ones included, in
// source order.
func Handlers(tree *pyast.Tree) []Handler {
	nodes := pyast.NodesOfType(tree.Root(), true, pyast.KindExceptClause, pyast.KindExceptGroupClause)

	handlers := make([]Handler, 0, len(nodes))
	for _, node := range nodes {
		handlers = append(handlers, newHandler(node, tree.Source))
	}
	return handlers
}

func newHandler(node *sitter.Node, source []byte) Handler {
	h := Handler{
		Node:   node,
		Types:  Expr{Kind: ExprAbsent},
		Line:   int(node.StartPoint().Row) + 1,
		source: source,
	}

	var exprs []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case pyast.KindBlock:
			h.Body = child
		case pyast.KindComment:
		default:
			exprs = append(exprs, child)
		}
	}
	if len(exprs) == 0 {
		return h
	}

	// "except E as e" parses either as an as_pattern or as two expressions
	// separated by the keyword, depending on the grammar version.
	if exprs[0].Type() == "as_pattern" {
		h.Types = handledType(exprs[0].NamedChild(0), source)
		h.BoundName = boundName(asTarget(exprs[0]), source)
		return h
	}

	h.Types = handledType(exprs[0], source)
	if len(exprs) > 1 {
		h.BoundName = boundName(exprs[1], source)
	}
	return h
}

func boundName(node *sitter.Node, source []byte) string {
	for node != nil && node.Type() != pyast.KindIdentifier && node.NamedChildCount() == 1 {
		node = node.NamedChild(0)
	}
	if node == nil || node.Type() != pyast.KindIdentifier {
		return ""
	}
	return pyast.Text(node, source)
}

// Handled returns the exception names the clause catches, in written order.
func (h *Handler) Handled() []string {
	return h.Types.Names()
}

// reraise stands in for a bare raise until the handled names replace it.
const reraise = "\x00reraise"

// Raised returns the exception names leaving the clause through raise
// statements anywhere beneath it. A bare raise, or a raise of the bound
// name, expands to every handled name.
func (h *Handler) Raised() []string {
	var raised []string
	for _, node := range pyast.NodesOfType(h.Node, true, pyast.KindRaiseStatement) {
		name, ok := raiseName(node, h.source)
		if !ok {
			continue
		}
		if name == reraise || (h.BoundName != "" && name == h.BoundName) {
			raised = append(raised, h.Handled()...)
			continue
		}
		raised = append(raised, name)
	}
	return raised
}

// raiseName resolves the exception of a raise statement. A bare raise yields
// the reraise marker; expressions that do not resolve report false.
func raiseName(node *sitter.Node, source []byte) (string, bool) {
	expr := classifyExpr(raisedExpr(node), source)
	switch expr.Kind {
	case ExprAbsent:
		return reraise, true
	case ExprName, ExprAttribute, ExprCallName, ExprCallAttribute:
		return expr.Name, true
	}
	return "", false
}

// raisedExpr returns the expression after "raise", skipping the "from"
// cause.
func raisedExpr(node *sitter.Node) *sitter.Node {
	cause := node.ChildByFieldName("cause")
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == pyast.KindComment {
			continue
		}
		if cause != nil && child.StartByte() == cause.StartByte() && child.EndByte() == cause.EndByte() {
			continue
		}
		return child
	}
	return nil
}

// HandledExceptions returns every exception name caught by an except clause
// in text.
func HandledExceptions(text string) ([]string, error) {
	tree, err := pyast.Parse(text)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return handledIn(tree), nil
}

func handledIn(tree *pyast.Tree) []string {
	var handled []string
	for _, h := range Handlers(tree) {
		handled = append(handled, h.Handled()...)
	}
	return handled
}

// RaisedExceptions returns every exception name raised in text: first those
// leaving each except clause, then raise statements outside any clause.
func RaisedExceptions(text string) ([]string, error) {
	tree, err := pyast.Parse(text)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return raisedIn(tree), nil
}

func raisedIn(tree *pyast.Tree) []string {
	var raised []string
	for _, h := range Handlers(tree) {
		raised = append(raised, h.Raised()...)
	}

	for _, node := range pyast.NodesExcludingType(tree.Root(), pyast.KindExceptClause, pyast.KindExceptGroupClause) {
		if node.Type() != pyast.KindRaiseStatement {
			continue
		}
		name, ok := raiseName(node, tree.Source)
		if !ok || name == reraise {
			continue
		}
		raised = append(raised, name)
	}
	return raised
}

// ExceptionFlows describes every except clause in text.
func ExceptionFlows(text string) ([]types.ExceptionFlow, error) {
	tree, err := pyast.Parse(text)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return flowsIn(tree), nil
}

func flowsIn(tree *pyast.Tree) []types.ExceptionFlow {
	handlers := Handlers(tree)
	flows := make([]types.ExceptionFlow, 0, len(handlers))
	for _, h := range handlers {
		flows = append(flows, types.ExceptionFlow{
			LineNumber: h.Line,
			BoundName:  h.BoundName,
			Handled:    nonNil(h.Handled()),
			Raised:     nonNil(h.Raised()),
		})
	}
	return flows
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
