// Package integration provides end-to-end tests for the inspection
// pipeline: Scan → Parse → Extract → Report → Encode.
package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/l3aro/go-pyinspect/internal/config"
	"github.com/l3aro/go-pyinspect/internal/report"
	"github.com/l3aro/go-pyinspect/internal/scanner"
	"github.com/l3aro/go-pyinspect/pkg/extractor"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

func getTestProjectPath() string {
	return filepath.Join("testdata", "sample_project")
}

func moduleByPath(t *testing.T, rep *types.Report, path string) types.ModuleInfo {
	t.Helper()
	for _, m := range rep.Modules {
		if m.Path == path {
			return m
		}
	}
	t.Fatalf("module %s not in report", path)
	return types.ModuleInfo{}
}

func TestFullPipeline(t *testing.T) {
	projectPath := getTestProjectPath()

	// Step 1: Scan the project for Python files
	t.Run("ScanProject", func(t *testing.T) {
		files, err := scanner.Scan(projectPath)
		if err != nil {
			t.Fatalf("Failed to scan project: %v", err)
		}

		var paths []string
		for _, f := range files {
			paths = append(paths, f.Path)
		}

		expected := []string{
			"calculator.py",
			"legacy/broken.py",
			"main.py",
			"shapes.py",
			"tests/test_calculator.py",
			"utils.py",
		}
		if !reflect.DeepEqual(paths, expected) {
			t.Errorf("Scan() = %v, want %v", paths, expected)
		}
	})

	// Step 2: Build a report over the whole tree
	opts := report.DefaultOptions()
	opts.Workers = 3
	rep, err := report.Build(context.Background(), projectPath, opts)
	if err != nil {
		t.Fatalf("Failed to build report: %v", err)
	}

	t.Run("ReportModules", func(t *testing.T) {
		if len(rep.Modules) != 6 {
			t.Fatalf("Expected 6 modules, got %d", len(rep.Modules))
		}
		if rep.Failed() != 1 {
			t.Errorf("Failed() = %d, want 1", rep.Failed())
		}

		broken := moduleByPath(t, rep, "legacy/broken.py")
		if !strings.Contains(broken.Error, "parse error") {
			t.Errorf("broken.py error = %q, want a parse error", broken.Error)
		}
		if !strings.HasPrefix(broken.Digest, "blake3:") {
			t.Errorf("broken.py digest = %q, want blake3 digest", broken.Digest)
		}
	})

	// Step 3: Function blocks and metadata
	t.Run("Functions", func(t *testing.T) {
		calc := moduleByPath(t, rep, "calculator.py")

		var names []string
		for _, fn := range calc.Functions {
			names = append(names, fn.Name)
		}
		expected := []string{"add", "divide", "safe_divide", "calculate_power"}
		if !reflect.DeepEqual(names, expected) {
			t.Errorf("calculator.py functions = %v, want %v", names, expected)
		}

		if calc.Docstring != "Basic arithmetic with error reporting." {
			t.Errorf("module docstring = %q", calc.Docstring)
		}
		if calc.Functions[0].Docstring != "Add two numbers." {
			t.Errorf("add docstring = %q", calc.Functions[0].Docstring)
		}

		shapes := moduleByPath(t, rep, "shapes.py")
		if len(shapes.Blocks) != 3 {
			t.Fatalf("shapes.py blocks = %d, want 3", len(shapes.Blocks))
		}
		wrapper := shapes.Blocks[1]
		if wrapper.Name != "wrapper" || wrapper.Depth != 1 {
			t.Errorf("nested block = %s at depth %d, want wrapper at depth 1", wrapper.Name, wrapper.Depth)
		}
		area := shapes.Blocks[2]
		if area.StartLine != 15 || !strings.HasPrefix(area.Text, "@memoize\n") {
			t.Errorf("decorated block starts at line %d with %q", area.StartLine, area.Text)
		}

		main := moduleByPath(t, rep, "main.py")
		if len(main.Functions) != 1 || !main.Functions[0].IsAsync {
			t.Errorf("main.py functions = %+v, want one async function", main.Functions)
		}
	})

	// Step 4: A trailing closing parenthesis belongs to the block
	t.Run("ContinuationLine", func(t *testing.T) {
		utils := moduleByPath(t, rep, "utils.py")

		var block types.FunctionBlock
		for _, b := range utils.Blocks {
			if b.Name == "format_result" {
				block = b
			}
		}
		if block.Name == "" {
			t.Fatal("format_result block not found")
		}
		if !block.Continued || block.EndLine != 17 {
			t.Errorf("format_result ends at %d (continued=%t), want 17 (continued)", block.EndLine, block.Continued)
		}
		if !strings.HasSuffix(block.Text, "\n    )") {
			t.Errorf("format_result text does not end with the closing parenthesis:\n%s", block.Text)
		}
	})

	// Step 5: Exception flow
	t.Run("Exceptions", func(t *testing.T) {
		calc := moduleByPath(t, rep, "calculator.py")

		handled := []string{"ZeroDivisionError", "CalculatorError", "TypeError"}
		if !reflect.DeepEqual(calc.Handled, handled) {
			t.Errorf("handled = %v, want %v", calc.Handled, handled)
		}
		raised := []string{"CalculatorError", "CalculatorError", "TypeError"}
		if !reflect.DeepEqual(calc.Raised, raised) {
			t.Errorf("raised = %v, want %v", calc.Raised, raised)
		}
		if len(calc.Flows) != 2 || calc.Flows[0].BoundName != "exc" {
			t.Errorf("flows = %+v, want two handlers, the first bound to exc", calc.Flows)
		}

		utils := moduleByPath(t, rep, "utils.py")
		if !reflect.DeepEqual(utils.Raised, []string{"TypeError"}) {
			t.Errorf("utils.py raised = %v, want [TypeError]", utils.Raised)
		}
	})

	// Step 6: Imports, variables and TODOs
	t.Run("ModuleFacts", func(t *testing.T) {
		calc := moduleByPath(t, rep, "calculator.py")
		if !reflect.DeepEqual(calc.Variables, []string{"PRECISION", "result"}) {
			t.Errorf("variables = %v", calc.Variables)
		}
		if !reflect.DeepEqual(calc.Constants, []string{"PRECISION"}) {
			t.Errorf("constants = %v", calc.Constants)
		}

		main := moduleByPath(t, rep, "main.py")
		if len(main.Imports) != 2 || main.Imports[0].Module != "calculator" {
			t.Errorf("main.py imports = %+v", main.Imports)
		}

		utils := moduleByPath(t, rep, "utils.py")
		if !reflect.DeepEqual(utils.Todos, []string{"TODO: localise the output"}) {
			t.Errorf("utils.py todos = %v", utils.Todos)
		}
		if utils.Imports[0].Aliases["os.path"] != "osp" {
			t.Errorf("utils.py import aliases = %v", utils.Imports[0].Aliases)
		}
	})

	// Step 7: Encode and decode the report
	t.Run("EncodeReport", func(t *testing.T) {
		var buf bytes.Buffer
		if err := report.Encode(&buf, rep, config.FormatMsgpack); err != nil {
			t.Fatalf("Encode(msgpack) error: %v", err)
		}
		decoded, err := report.Decode(&buf)
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if len(decoded.Modules) != len(rep.Modules) || decoded.Failed() != rep.Failed() {
			t.Errorf("decoded report has %d modules (%d failed)", len(decoded.Modules), decoded.Failed())
		}

		buf.Reset()
		if err := report.Encode(&buf, rep, config.FormatText); err != nil {
			t.Fatalf("Encode(text) error: %v", err)
		}
		if !strings.HasSuffix(buf.String(), "6 modules, 1 failed\n") {
			t.Errorf("text report footer:\n%s", buf.String())
		}
	})
}

func TestPipelineExcludingTests(t *testing.T) {
	opts := report.DefaultOptions()
	opts.Scan.ExcludeTests = true
	opts.Extract = extractor.Options{IgnorePrivate: true, IgnoreNested: true}

	rep, err := report.Build(context.Background(), getTestProjectPath(), opts)
	if err != nil {
		t.Fatalf("Failed to build report: %v", err)
	}

	for _, m := range rep.Modules {
		if scanner.IsTestFile(m.Path) {
			t.Errorf("test module %s was not excluded", m.Path)
		}
	}

	shapes := moduleByPath(t, rep, "shapes.py")
	var names []string
	for _, b := range shapes.Blocks {
		names = append(names, b.Name)
	}
	if !reflect.DeepEqual(names, []string{"memoize", "circle_area"}) {
		t.Errorf("shapes.py blocks = %v, want top-level functions only", names)
	}

	utils := moduleByPath(t, rep, "utils.py")
	for _, b := range utils.Blocks {
		if b.Name == "_config_path" {
			t.Error("private function _config_path was not ignored")
		}
	}
}
