package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-pyinspect/pkg/extractor"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

// blocksCmd represents the blocks command
var blocksCmd = &cobra.Command{
	Use:   "blocks <file|->",
	Short: "Print the source text of each function",
	Long: `Prints the verbatim source of every function definition, decorators
included, in source order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		blocks, err := extractor.FunctionBlockDetails(text, selection(cmd))
		if err != nil {
			return err
		}
		if blocks == nil {
			blocks = []types.FunctionBlock{}
		}

		return printResult(cmd, blocks, func(w io.Writer) {
			for i, b := range blocks {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "# %s (lines %d-%d)\n", b.Name, b.StartLine, b.EndLine)
				fmt.Fprintln(w, b.Text)
			}
		})
	},
}

// namesCmd represents the names command
var namesCmd = &cobra.Command{
	Use:   "names <file|->",
	Short: "Print function names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		names, err := extractor.FunctionNames(text, selection(cmd))
		if err != nil {
			return err
		}
		return printLines(cmd, names)
	},
}

type namedDocstring struct {
	Name      string `json:"name"`
	Docstring string `json:"docstring"`
}

// docstringsCmd represents the docstrings command
var docstringsCmd = &cobra.Command{
	Use:   "docstrings <file|->",
	Short: "Print the cleaned docstring of each function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		opts := selection(cmd)
		names, err := extractor.FunctionNames(text, opts)
		if err != nil {
			return err
		}
		docs, err := extractor.FunctionDocstrings(text, opts)
		if err != nil {
			return err
		}

		entries := make([]namedDocstring, len(names))
		for i, name := range names {
			entries[i] = namedDocstring{Name: name, Docstring: docs[i]}
		}

		return printResult(cmd, entries, func(w io.Writer) {
			for i, name := range names {
				fmt.Fprintf(w, "%s:\n", name)
				if docs[i] == "" {
					fmt.Fprintln(w, "    (no docstring)")
					continue
				}
				fmt.Fprintln(w, indent(docs[i], "    "))
			}
		})
	},
}

// signaturesCmd represents the signatures command
var signaturesCmd = &cobra.Command{
	Use:   "signatures <file|->",
	Short: "Print the signature of each function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		keepName, _ := cmd.Flags().GetBool("keep-name")
		sigs, err := extractor.FunctionSignatures(text, extractor.SignatureOptions{
			Options:  selection(cmd),
			KeepName: keepName,
		})
		if err != nil {
			return err
		}
		return printLines(cmd, sigs)
	},
}

// lengthsCmd represents the lengths command
var lengthsCmd = &cobra.Command{
	Use:   "lengths <file|->",
	Short: "Print the number of non-blank lines in each function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		opts := selection(cmd)
		names, err := extractor.FunctionNames(text, opts)
		if err != nil {
			return err
		}
		lengths, err := extractor.FunctionLengths(text, opts)
		if err != nil {
			return err
		}

		if lengths == nil {
			lengths = []int{}
		}
		return printResult(cmd, lengths, func(w io.Writer) {
			for i, n := range lengths {
				fmt.Fprintf(w, "%s\t%d\n", names[i], n)
			}
		})
	},
}

// argsCmd represents the args command
var argsCmd = &cobra.Command{
	Use:   "args <file|->",
	Short: "Print the arguments of the first function",
	Long: `Prints the positional-or-keyword parameters of the first module-level
function with their annotation and default value, if any.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		arguments, err := extractor.FunctionArguments(text)
		if err != nil {
			return err
		}
		if arguments == nil {
			arguments = []types.Argument{}
		}

		return printResult(cmd, arguments, func(w io.Writer) {
			for _, a := range arguments {
				line := a.Name
				if a.Annotation != "" {
					line += ": " + a.Annotation
				}
				if a.HasDefault {
					line += " = " + a.Default
				}
				fmt.Fprintln(w, line)
			}
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{blocksCmd, namesCmd, docstringsCmd, signaturesCmd, lengthsCmd} {
		selectionFlags(cmd)
	}
	signaturesCmd.Flags().Bool("keep-name", false, "Keep the function name in front of the parameters")
}
