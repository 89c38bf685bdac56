package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-pyinspect/pkg/extractor"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

type exceptionsOutput struct {
	Handled []string `json:"handled"`
	Raised  []string `json:"raised"`
}

// exceptionsCmd represents the exceptions command
var exceptionsCmd = &cobra.Command{
	Use:   "exceptions <file|->",
	Short: "Print the exceptions handled and raised",
	Long: `Prints the exception names caught by except clauses and the names that
leave the module through raise statements. A bare raise inside a handler
counts as raising what the handler catches.

With --flows, prints one entry per except clause instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		if flows, _ := cmd.Flags().GetBool("flows"); flows {
			return printFlows(cmd, text)
		}

		handled, err := extractor.HandledExceptions(text)
		if err != nil {
			return err
		}
		raised, err := extractor.RaisedExceptions(text)
		if err != nil {
			return err
		}

		result := exceptionsOutput{Handled: nonEmpty(handled), Raised: nonEmpty(raised)}
		return printResult(cmd, result, func(w io.Writer) {
			fmt.Fprintf(w, "handled: %s\n", strings.Join(handled, ", "))
			fmt.Fprintf(w, "raised: %s\n", strings.Join(raised, ", "))
		})
	},
}

func printFlows(cmd *cobra.Command, text string) error {
	flows, err := extractor.ExceptionFlows(text)
	if err != nil {
		return err
	}
	if flows == nil {
		flows = []types.ExceptionFlow{}
	}

	return printResult(cmd, flows, func(w io.Writer) {
		for _, f := range flows {
			bound := ""
			if f.BoundName != "" {
				bound = " as " + f.BoundName
			}
			fmt.Fprintf(w, "line %d: except %s%s -> %s\n",
				f.LineNumber, strings.Join(f.Handled, ", "), bound, strings.Join(f.Raised, ", "))
		}
	})
}

// importsCmd represents the imports command
var importsCmd = &cobra.Command{
	Use:   "imports <file|->",
	Short: "Print import statements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		imports, err := extractor.Imports(text)
		if err != nil {
			return err
		}
		if imports == nil {
			imports = []types.Import{}
		}

		return printResult(cmd, imports, func(w io.Writer) {
			for _, imp := range imports {
				fmt.Fprintf(w, "%d\t%s\n", imp.LineNumber, formatImport(imp))
			}
		})
	},
}

func formatImport(imp types.Import) string {
	names := make([]string, len(imp.Names))
	for i, name := range imp.Names {
		names[i] = name
		if alias, ok := imp.Aliases[name]; ok {
			names[i] += " as " + alias
		}
	}
	if imp.IsFrom {
		return fmt.Sprintf("from %s import %s", imp.Module, strings.Join(names, ", "))
	}
	return "import " + strings.Join(names, ", ")
}

// importStringCmd represents the import-string command
var importStringCmd = &cobra.Command{
	Use:   "import-string <file|-> [module]",
	Short: "Print an import statement for every function in a file",
	Long: `Prints "from <module> import (...)" naming every function defined in the
file. The module defaults to the file name without its extension.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		module := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		if len(args) > 1 {
			module = args[1]
		}
		if module == "-" {
			return fmt.Errorf("a module name is required when reading stdin")
		}

		s, err := extractor.ImportString(text, module)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

// variablesCmd represents the variables command
var variablesCmd = &cobra.Command{
	Use:   "variables <file|->",
	Short: "Print assigned variable names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		var names []string
		if constants, _ := cmd.Flags().GetBool("constants"); constants {
			names, err = extractor.Constants(text)
		} else {
			names, err = extractor.VariableNames(text)
		}
		if err != nil {
			return err
		}
		return printLines(cmd, names)
	},
}

// todosCmd represents the todos command
var todosCmd = &cobra.Command{
	Use:   "todos <file|->",
	Short: "Print TODO comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		pattern := cfg.TodoPattern
		if cmd.Flags().Changed("pattern") {
			pattern, _ = cmd.Flags().GetString("pattern")
		}

		todos, err := extractor.Todos(text, pattern)
		if err != nil {
			return fmt.Errorf("invalid todo pattern: %w", err)
		}
		return printLines(cmd, todos)
	},
}

// placeholdersCmd represents the placeholders command
var placeholdersCmd = &cobra.Command{
	Use:   "placeholders <file|->",
	Short: "Print format-string placeholders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		braces, _ := cmd.Flags().GetBool("braces")
		return printLines(cmd, extractor.Placeholders(text, braces))
	},
}

func nonEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func init() {
	exceptionsCmd.Flags().Bool("flows", false, "Print one entry per except clause")
	variablesCmd.Flags().Bool("constants", false, "Only print names whose letters are all upper case")
	todosCmd.Flags().String("pattern", "", "Regular expression to match (default from config)")
	placeholdersCmd.Flags().Bool("braces", false, "Keep the surrounding braces")
}
