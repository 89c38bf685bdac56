package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/l3aro/go-pyinspect/internal/config"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

// Encode writes rep to w in the given format.
func Encode(w io.Writer, rep *types.Report, format config.OutputFormat) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(rep)
	case config.FormatText, "":
		return encodeText(w, rep)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// Decode reads a msgpack-encoded report, as written by Encode.
func Decode(r io.Reader) (*types.Report, error) {
	var rep types.Report
	if err := msgpack.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &rep, nil
}

func encodeText(w io.Writer, rep *types.Report) error {
	var sb strings.Builder

	for i, m := range rep.Modules {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s  %s\n", m.Path, shortDigest(m.Digest))
		if m.Error != "" {
			fmt.Fprintf(&sb, "  error: %s\n", m.Error)
			continue
		}
		if m.Docstring != "" {
			fmt.Fprintf(&sb, "  %s\n", firstLine(m.Docstring))
		}

		if len(m.Functions) > 0 {
			sb.WriteString("  functions:\n")
			for _, f := range m.Functions {
				prefix := ""
				if f.IsAsync {
					prefix = "async "
				}
				fmt.Fprintf(&sb, "    %s%s%s  (lines %d-%d)\n", prefix, f.Name, f.Signature, f.LineNumber, f.EndLine)
			}
		}

		if len(m.Imports) > 0 {
			modules := make([]string, 0, len(m.Imports))
			for _, imp := range m.Imports {
				modules = append(modules, imp.Module)
			}
			writeList(&sb, "imports", modules)
		}
		writeList(&sb, "handled", m.Handled)
		writeList(&sb, "raised", m.Raised)
		writeList(&sb, "constants", m.Constants)
		for _, todo := range m.Todos {
			fmt.Fprintf(&sb, "  %s\n", todo)
		}
	}

	fmt.Fprintf(&sb, "\n%d modules, %d failed\n", len(rep.Modules), rep.Failed())

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "  %s: %s\n", label, strings.Join(items, ", "))
}

func shortDigest(digest string) string {
	const n = len("blake3:") + 12
	if len(digest) > n {
		return digest[:n]
	}
	return digest
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
