package scanner

import (
	"path/filepath"
	"strings"
)

// pythonExtensions lists extensions of Python source files.
var pythonExtensions = map[string]bool{
	".py":  true,
	".pyw": true,
	".pyi": true,
}

// IsPythonFile reports whether path names a Python source file.
func IsPythonFile(path string) bool {
	return pythonExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsTestFile reports whether the base name of path looks like a test module,
// i.e. contains "_test" or "test_".
func IsTestFile(path string) bool {
	name := filepath.Base(path)
	return strings.Contains(name, "_test") || strings.Contains(name, "test_")
}
