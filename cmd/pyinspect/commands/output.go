package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-pyinspect/pkg/extractor"
)

// readSource returns the text of a file path, or of standard input for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file %s: %w", path, err)
	}
	return string(data), nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// printResult writes v as indented JSON when --json is set, and otherwise
// calls text to render it.
func printResult(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	text(out)
	return nil
}

// printLines writes one item per line.
func printLines(cmd *cobra.Command, items []string) error {
	if items == nil {
		items = []string{}
	}
	return printResult(cmd, items, func(w io.Writer) {
		for _, item := range items {
			fmt.Fprintln(w, item)
		}
	})
}

// selectionFlags registers --ignore-private and --ignore-nested.
func selectionFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("ignore-private", false, "Skip functions whose name starts with an underscore")
	cmd.Flags().Bool("ignore-nested", false, "Only consider module-level functions")
}

// selection merges the selection flags over the loaded configuration.
func selection(cmd *cobra.Command) extractor.Options {
	opts := extractor.Options{
		IgnorePrivate: cfg.IgnorePrivate,
		IgnoreNested:  cfg.IgnoreNested,
	}
	if cmd.Flags().Changed("ignore-private") {
		opts.IgnorePrivate, _ = cmd.Flags().GetBool("ignore-private")
	}
	if cmd.Flags().Changed("ignore-nested") {
		opts.IgnoreNested, _ = cmd.Flags().GetBool("ignore-nested")
	}
	return opts
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
