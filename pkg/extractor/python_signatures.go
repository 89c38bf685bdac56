package extractor

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-pyinspect/internal/log"
	"github.com/l3aro/go-pyinspect/pkg/pyast"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

// SignatureOptions controls FunctionSignatures.
type SignatureOptions struct {
	Options
	// KeepName keeps the function name in front of the parameter list.
	KeepName bool
}

// FunctionSignatures returns the text between "def" and the trailing colon
// of each selected function.
func FunctionSignatures(text string, opts SignatureOptions) ([]string, error) {
	names, err := FunctionNames(text, opts.Options)
	if err != nil {
		return nil, err
	}

	sigs := make([]string, len(names))
	for i, name := range names {
		sigs[i] = FunctionSignature(text, name, opts.KeepName)
	}
	return sigs, nil
}

// FunctionSignature finds the first definition of name in text and returns
// its signature, or "" when no definition matches.
func FunctionSignature(text, name string, keepName bool) string {
	pattern := regexp.MustCompile(fmt.Sprintf(`def (%s\((?:.|\s)*?\).*?):`, regexp.QuoteMeta(name)))
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		log.Warn("unable to find function signature", "function", name)
		return ""
	}

	sig := m[1]
	if !keepName {
		sig = strings.TrimPrefix(sig, name)
	}
	return sig
}

// FunctionArguments returns the positional-or-keyword parameters of the
// first module-level function in text.
func FunctionArguments(text string) ([]types.Argument, error) {
	tree, err := pyast.Parse(text)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	defs := FunctionDefs(tree, true)
	if len(defs) == 0 {
		return nil, ErrNoFunction
	}
	return arguments(defs[0].Node.ChildByFieldName("parameters"), tree.Source), nil
}

// ArgumentNames returns the parameter names of the first function.
func ArgumentNames(text string) ([]string, error) {
	args, err := FunctionArguments(text)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	return names, nil
}

// ArgumentDefaults returns the default value source of every parameter of
// the first function that has one.
func ArgumentDefaults(text string) ([]string, error) {
	args, err := FunctionArguments(text)
	if err != nil {
		return nil, err
	}

	var defaults []string
	for _, a := range args {
		if a.HasDefault {
			defaults = append(defaults, a.Default)
		}
	}
	return defaults, nil
}

// ArgumentAnnotations returns the annotation of every parameter of the
// first function, "" where a parameter is unannotated.
func ArgumentAnnotations(text string) ([]string, error) {
	args, err := FunctionArguments(text)
	if err != nil {
		return nil, err
	}

	annotations := make([]string, len(args))
	for i, a := range args {
		annotations[i] = a.Annotation
	}
	return annotations, nil
}

// arguments walks a parameters node. Parameters before a "/" are
// positional-only and dropped; everything from "*" or "**" on is not
// positional-or-keyword and ends the walk.
func arguments(params *sitter.Node, source []byte) []types.Argument {
	if params == nil {
		return nil
	}

	var args []types.Argument
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Type() {
		case "/", "positional_separator":
			args = nil
		case "*", "keyword_separator", "list_splat_pattern", "dictionary_splat_pattern":
			return args
		case pyast.KindIdentifier:
			args = append(args, types.Argument{Name: pyast.Text(child, source)})
		case "typed_parameter":
			first := child.NamedChild(0)
			if first == nil || first.Type() != pyast.KindIdentifier {
				return args
			}
			args = append(args, types.Argument{
				Name:       pyast.Text(first, source),
				Annotation: pyast.Text(child.ChildByFieldName("type"), source),
			})
		case "default_parameter", "typed_default_parameter":
			args = append(args, types.Argument{
				Name:       pyast.Text(child.ChildByFieldName("name"), source),
				Annotation: pyast.Text(child.ChildByFieldName("type"), source),
				Default:    pyast.Text(child.ChildByFieldName("value"), source),
				HasDefault: true,
			})
		}
	}
	return args
}
