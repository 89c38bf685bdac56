package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-pyinspect/pkg/pyast"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

// FunctionDef is a function definition located in a parsed tree.
type FunctionDef struct {
	Node *sitter.Node
	// Span is the enclosing decorated_definition when the function is
	// decorated, otherwise Node itself.
	Span    *sitter.Node
	Name    string
	IsAsync bool
	// Depth is the number of enclosing function definitions.
	Depth int
}

// FunctionDefs returns the function definitions of tree in source order.
// With ignoreNested only module-level definitions are returned.
func FunctionDefs(tree *pyast.Tree, ignoreNested bool) []FunctionDef {
	nodes := pyast.NodesOfType(tree.Root(), !ignoreNested, pyast.KindFunctionDefinition)

	defs := make([]FunctionDef, 0, len(nodes))
	for _, node := range nodes {
		defs = append(defs, FunctionDef{
			Node:    node,
			Span:    span(node),
			Name:    tree.Text(node.ChildByFieldName("name")),
			IsAsync: isAsync(node),
			Depth:   pyast.Ancestors(node, pyast.KindFunctionDefinition),
		})
	}
	return defs
}

// Private reports whether the function name starts with an underscore.
func (d FunctionDef) Private() bool {
	return strings.HasPrefix(d.Name, "_")
}

func span(node *sitter.Node) *sitter.Node {
	if p := node.Parent(); p != nil && p.Type() == pyast.KindDecoratedDefinition {
		return p
	}
	return node
}

func isAsync(node *sitter.Node) bool {
	if node.ChildCount() > 0 && node.Child(0).Type() == pyast.KindAsync {
		return true
	}
	p := node.Parent()
	return p != nil && p.Type() == "async_function_definition"
}

// selectDefs parses text and applies the private and nesting filters.
func selectDefs(text string, opts Options) (*pyast.Tree, []FunctionDef, error) {
	tree, err := pyast.Parse(text)
	if err != nil {
		return nil, nil, err
	}
	return tree, filterDefs(tree, opts), nil
}

func filterDefs(tree *pyast.Tree, opts Options) []FunctionDef {
	var defs []FunctionDef
	for _, def := range FunctionDefs(tree, opts.IgnoreNested) {
		if opts.IgnorePrivate && def.Private() {
			continue
		}
		defs = append(defs, def)
	}
	return defs
}

// FunctionBlockDetails returns the source block of every selected function
// together with its position.
func FunctionBlockDetails(text string, opts Options) ([]types.FunctionBlock, error) {
	tree, defs, err := selectDefs(text, opts)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return blockDetails(tree, defs)
}

func blockDetails(tree *pyast.Tree, defs []FunctionDef) ([]types.FunctionBlock, error) {
	blocks := make([]types.FunctionBlock, 0, len(defs))
	for _, def := range defs {
		block, err := functionBlock(tree, def)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// FunctionBlocks returns the verbatim source of every selected function.
func FunctionBlocks(text string, opts Options) ([]string, error) {
	details, err := FunctionBlockDetails(text, opts)
	if err != nil {
		return nil, err
	}

	blocks := make([]string, len(details))
	for i, d := range details {
		blocks[i] = d.Text
	}
	return blocks, nil
}

func functionBlock(tree *pyast.Tree, def FunctionDef) (types.FunctionBlock, error) {
	start, end, err := pyast.LineRange(def.Span)
	if err != nil {
		return types.FunctionBlock{}, err
	}

	lines := tree.Lines
	if end > len(lines) {
		end = len(lines)
	}
	body := lines[start-1 : end]

	block := types.FunctionBlock{
		Name:      def.Name,
		Text:      strings.Join(body, "\n"),
		StartLine: start,
		EndLine:   end,
		Depth:     def.Depth,
		IsAsync:   def.IsAsync,
	}

	// A closing parenthesis alone on the line after the block belongs to a
	// multi-line expression at the end of the body.
	if end < len(lines) && closesBlock(lines[end], body[0]) {
		block.Text += "\n" + lines[end]
		block.EndLine++
		block.Continued = true
	}
	return block, nil
}

func closesBlock(next, first string) bool {
	return strings.HasPrefix(next, " ") &&
		pyast.Indentation(next) > pyast.Indentation(first) &&
		strings.Trim(next, " ") == ")"
}

// FunctionNames returns the names of the selected functions in the same
// order as FunctionBlocks.
func FunctionNames(text string, opts Options) ([]string, error) {
	tree, defs, err := selectDefs(text, opts)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names, nil
}

// FunctionDocstrings returns the cleaned docstring of each selected function,
// or "" for a function without one.
func FunctionDocstrings(text string, opts Options) ([]string, error) {
	tree, defs, err := selectDefs(text, opts)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	docs := make([]string, len(defs))
	for i, def := range defs {
		docs[i] = docstring(def.Node.ChildByFieldName("body"), tree.Source)
	}
	return docs, nil
}

// FunctionLengths returns the number of non-empty lines in each function
// block.
func FunctionLengths(text string, opts Options) ([]int, error) {
	blocks, err := FunctionBlocks(text, opts)
	if err != nil {
		return nil, err
	}

	lengths := make([]int, len(blocks))
	for i, b := range blocks {
		lengths[i] = LineCount(b, true)
	}
	return lengths, nil
}

// Functions returns a summary of every function in text, nested ones
// included.
func Functions(text string) ([]types.Function, error) {
	tree, err := pyast.Parse(text)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return functionsIn(tree)
}

func functionsIn(tree *pyast.Tree) ([]types.Function, error) {
	defs := FunctionDefs(tree, false)
	functions := make([]types.Function, 0, len(defs))
	for _, def := range defs {
		block, err := functionBlock(tree, def)
		if err != nil {
			return nil, err
		}
		functions = append(functions, types.Function{
			Name:       def.Name,
			Signature:  signatureOf(def.Node, tree.Source),
			Docstring:  docstring(def.Node.ChildByFieldName("body"), tree.Source),
			LineNumber: block.StartLine,
			EndLine:    block.EndLine,
			Length:     LineCount(block.Text, true),
			IsAsync:    def.IsAsync,
			Decorators: decorators(def.Span, tree.Source),
			NestedIn:   enclosingFunction(def.Node, tree.Source),
		})
	}
	return functions, nil
}

// signatureOf renders "(params) -> ret" from the definition node.
func signatureOf(node *sitter.Node, source []byte) string {
	sig := pyast.Text(node.ChildByFieldName("parameters"), source)
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig += " -> " + pyast.Text(ret, source)
	}
	return sig
}

func decorators(spanNode *sitter.Node, source []byte) []string {
	if spanNode.Type() != pyast.KindDecoratedDefinition {
		return nil
	}

	var out []string
	for i := 0; i < int(spanNode.NamedChildCount()); i++ {
		child := spanNode.NamedChild(i)
		if child.Type() != pyast.KindDecorator {
			continue
		}
		out = append(out, strings.TrimPrefix(strings.TrimSpace(pyast.Text(child, source)), "@"))
	}
	return out
}

func enclosingFunction(node *sitter.Node, source []byte) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Type() == pyast.KindFunctionDefinition {
			return pyast.Text(p.ChildByFieldName("name"), source)
		}
	}
	return ""
}

// ModuleDocstring returns the cleaned docstring of the module.
func ModuleDocstring(text string) (string, error) {
	tree, err := pyast.Parse(text)
	if err != nil {
		return "", err
	}
	defer tree.Close()
	return docstring(tree.Root(), tree.Source), nil
}

// docstring returns the cleaned string literal that opens body, if any.
func docstring(body *sitter.Node, source []byte) string {
	if body == nil {
		return ""
	}

	var first *sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == pyast.KindComment {
			continue
		}
		first = child
		break
	}
	if first == nil || first.Type() != pyast.KindExpressionStatement || first.NamedChildCount() != 1 {
		return ""
	}

	expr := first.NamedChild(0)
	switch expr.Type() {
	case pyast.KindString:
		value, ok := stringValue(pyast.Text(expr, source))
		if !ok {
			return ""
		}
		return CleanDoc(value)
	case pyast.KindConcatenatedString:
		var sb strings.Builder
		for i := 0; i < int(expr.NamedChildCount()); i++ {
			value, ok := stringValue(pyast.Text(expr.NamedChild(i), source))
			if !ok {
				return ""
			}
			sb.WriteString(value)
		}
		return CleanDoc(sb.String())
	}
	return ""
}

// stringValue decodes a Python string literal. Byte strings and f-strings
// are not docstrings and report false.
func stringValue(literal string) (string, bool) {
	i := strings.IndexAny(literal, `'"`)
	if i < 0 {
		return "", false
	}
	prefix := strings.ToLower(literal[:i])
	if strings.ContainsAny(prefix, "bf") {
		return "", false
	}

	body := literal[i:]
	quote := body[:1]
	if strings.HasPrefix(body, strings.Repeat(quote, 3)) && len(body) >= 6 {
		quote = strings.Repeat(quote, 3)
	}
	if len(body) < 2*len(quote) {
		return "", false
	}
	body = body[len(quote) : len(body)-len(quote)]

	if strings.Contains(prefix, "r") {
		return body, true
	}
	return unescape(body), true
}

var escapes = map[byte]string{
	'\n': "",
	'\\': `\`,
	'\'': `'`,
	'"':  `"`,
	'a':  "\a",
	'b':  "\b",
	'f':  "\f",
	'n':  "\n",
	'r':  "\r",
	't':  "\t",
	'v':  "\v",
}

// unescape resolves the single-character escapes; anything else, including
// numeric escapes, is kept verbatim.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		if repl, ok := escapes[s[i+1]]; ok {
			sb.WriteString(repl)
			i++
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// CleanDoc normalizes docstring indentation: tabs are expanded, the first
// line is left-trimmed, the common indentation of the remaining lines is
// removed, and leading and trailing blank lines are dropped.
func CleanDoc(doc string) string {
	lines := strings.Split(expandTabs(doc), "\n")

	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}
		indent := len(line) - len(content)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) > margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var sb strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := 8 - col%8
			sb.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n', '\r':
			sb.WriteRune(r)
			col = 0
		default:
			sb.WriteRune(r)
			col++
		}
	}
	return sb.String()
}
