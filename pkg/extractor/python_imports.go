package extractor

import (
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-pyinspect/pkg/pyast"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

// Imports extracts every import statement in text, nested ones included.
//
// "import a, b as c" yields one Import per module; "from m import x as y"
// yields one Import listing every name, with aliases recorded separately.
func Imports(text string) ([]types.Import, error) {
	tree, err := pyast.Parse(text)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return importsIn(tree), nil
}

func importsIn(tree *pyast.Tree) []types.Import {
	var imports []types.Import
	for _, node := range pyast.NodesOfType(tree.Root(), true, "import_statement", "import_from_statement", "future_import_statement") {
		switch node.Type() {
		case "import_statement":
			imports = append(imports, parseImportStatement(node, tree.Source)...)
		default:
			imports = append(imports, parseImportFromStatement(node, tree.Source))
		}
	}
	return imports
}

// ImportsFromFile reads a Python file and extracts its imports.
func ImportsFromFile(path string) ([]types.Import, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Imports(string(content))
}

// parseImportStatement parses "import x" or "import x as y" statements.
// import_statement: "import" (dotted_name | aliased_import) ("," ...)*
func parseImportStatement(node *sitter.Node, source []byte) []types.Import {
	var imports []types.Import
	lineNumber := int(node.StartPoint().Row) + 1

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case "dotted_name":
			name := pyast.Text(child, source)
			imports = append(imports, types.Import{
				Module:     name,
				Names:      []string{name},
				LineNumber: lineNumber,
			})
		case "aliased_import":
			name, alias := parseAliasedImport(child, source)
			imp := types.Import{
				Module:     name,
				Names:      []string{name},
				LineNumber: lineNumber,
			}
			if alias != "" {
				imp.Aliases = map[string]string{name: alias}
			}
			imports = append(imports, imp)
		}
	}
	return imports
}

// parseImportFromStatement parses "from x import y" statements.
// import_from_statement: "from" (relative_import | dotted_name) "import"
// (wildcard_import | names)
func parseImportFromStatement(node *sitter.Node, source []byte) types.Import {
	imp := types.Import{
		IsFrom:     true,
		LineNumber: int(node.StartPoint().Row) + 1,
	}
	if node.Type() == "future_import_statement" {
		imp.Module = "__future__"
	}
	moduleNode := node.ChildByFieldName("module_name")

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case "dotted_name":
			text := pyast.Text(child, source)
			// The first dotted_name names the module unless the grammar
			// marks it with a field.
			if imp.Module == "" && (moduleNode == nil || sameNode(child, moduleNode)) {
				imp.Module = text
				continue
			}
			imp.Names = append(imp.Names, text)
		case "relative_import":
			imp.Module = pyast.Text(child, source)
		case "wildcard_import":
			imp.Names = append(imp.Names, "*")
		case "aliased_import":
			name, alias := parseAliasedImport(child, source)
			imp.Names = append(imp.Names, name)
			if alias != "" && alias != name {
				if imp.Aliases == nil {
					imp.Aliases = make(map[string]string)
				}
				imp.Aliases[name] = alias
			}
		}
	}
	return imp
}

// parseAliasedImport extracts both name and alias.
// aliased_import: dotted_name "as" identifier
func parseAliasedImport(node *sitter.Node, source []byte) (name, alias string) {
	name = pyast.Text(node.ChildByFieldName("name"), source)
	alias = pyast.Text(node.ChildByFieldName("alias"), source)
	if name != "" {
		return name, alias
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			name = pyast.Text(child, source)
		case pyast.KindIdentifier:
			alias = pyast.Text(child, source)
		}
	}
	return name, alias
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// IsRelativeImport checks if an import is relative (starts with dot).
func IsRelativeImport(module string) bool {
	return strings.HasPrefix(module, ".")
}

// RelativeLevel returns the relative import level (number of dots).
func RelativeLevel(module string) int {
	return len(module) - len(strings.TrimLeft(module, "."))
}
