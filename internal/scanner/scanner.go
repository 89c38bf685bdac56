// Package scanner walks a directory tree looking for Python source files.
// It respects .pyinspectignore files with gitignore-style patterns, default
// directory exclusions, and include/exclude globs.
package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path     string // Relative path from root, slash separated
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	FollowSymlinks  bool     // Follow symlinks (within root only)
	DefaultExcludes []string // Default directories to exclude
	IgnoreFileName  string   // Name of the ignore file (default: .pyinspectignore)
	Include         []string // doublestar globs a file must match (default: **/*.py)
	Exclude         []string // doublestar globs that drop files and directories
	ExcludeTests    bool     // Drop test modules (see IsTestFile)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		FollowSymlinks: false,
		IgnoreFileName: ".pyinspectignore",
		Include:        []string{"**/*.py"},
		DefaultExcludes: []string{
			".git",
			"__pycache__",
			".venv",
			"venv",
			"env",
			"dist",
			"build",
			".idea",
			".vscode",
			".hg",
			".svn",
			".tox",
			".nox",
			".mypy_cache",
			".pytest_cache",
			"site-packages",
			"node_modules",
		},
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	if len(opts.Include) == 0 {
		opts.Include = []string{"**/*.py"}
	}
	return &Scanner{opts: opts}
}

// Scan recursively scans the directory at root and returns the matching
// files sorted by relative path.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	if err := s.validatePatterns(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	ignorePatterns, err := s.loadIgnorePatterns(absRoot, "")
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []FileInfo

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPathSlash := filepath.ToSlash(relPath)

		if s.opts.SkipHidden && s.isHidden(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if s.isDefaultExcluded(info.Name()) ||
				s.matchesIgnorePatterns(relPathSlash, true, ignorePatterns) ||
				s.excluded(relPathSlash+"/") {
				return filepath.SkipDir
			}
			nested, err := s.loadIgnorePatterns(path, relPathSlash)
			if err == nil && len(nested) > 0 {
				ignorePatterns = append(ignorePatterns, nested...)
			}
			return nil
		}

		if s.matchesIgnorePatterns(relPathSlash, false, ignorePatterns) {
			return nil
		}
		if !IsPythonFile(relPathSlash) || !s.included(relPathSlash) || s.excluded(relPathSlash) {
			return nil
		}
		if s.opts.ExcludeTests && IsTestFile(relPathSlash) {
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if !s.opts.FollowSymlinks {
				return nil
			}
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			realAbs, err := filepath.Abs(realPath)
			if err != nil {
				return nil
			}
			if !strings.HasPrefix(realAbs, absRoot+string(filepath.Separator)) {
				return nil
			}
			targetInfo, err := os.Stat(realPath)
			if err != nil || targetInfo.IsDir() {
				return nil
			}
			info = targetInfo
		}

		files = append(files, FileInfo{
			Path:     relPathSlash,
			FullPath: path,
			Size:     info.Size(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Scanner) validatePatterns() error {
	for _, p := range s.opts.Include {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid include pattern %q", p)
		}
	}
	for _, p := range s.opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

func (s *Scanner) included(relPath string) bool {
	for _, pattern := range s.opts.Include {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) excluded(relPath string) bool {
	for _, pattern := range s.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// isHidden checks if a file or directory name indicates it's hidden.
func (s *Scanner) isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// loadIgnorePatterns loads patterns from the ignore file in dir. Patterns
// from a nested directory are rebased onto prefix so they only match below it.
func (s *Scanner) loadIgnorePatterns(dir, prefix string) ([]IgnorePattern, error) {
	if s.opts.IgnoreFileName == "" {
		return nil, nil
	}
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []IgnorePattern
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := ParseIgnorePattern(line)
		if prefix != "" {
			p.glob = escapeMeta(prefix) + "/" + p.glob
		}
		patterns = append(patterns, p)
	}

	return patterns, scanner.Err()
}

// matchesIgnorePatterns checks if the given path should be ignored based on patterns.
// It implements gitignore semantics: patterns are checked in order, and negation
// patterns can override previous positive matches.
func (s *Scanner) matchesIgnorePatterns(relPath string, isDir bool, patterns []IgnorePattern) bool {
	ignored := false
	for _, pattern := range patterns {
		matched := pattern.Match(relPath)
		if isDir {
			matched = pattern.MatchDir(relPath)
		}
		if matched {
			ignored = !pattern.IsNegation()
		}
	}
	return ignored
}

// Scan is a convenience function that scans a directory with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}

// ScanWithOptions scans a directory with custom options.
func ScanWithOptions(root string, opts Options) ([]FileInfo, error) {
	return New(opts).Scan(root)
}

// FileNames returns the sorted base names of the Python files under root.
func FileNames(root string, excludeTests bool) ([]string, error) {
	opts := DefaultOptions()
	opts.ExcludeTests = excludeTests

	files, err := ScanWithOptions(root, opts)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f.Path))
	}
	sort.Strings(names)
	return names, nil
}

// FilesUsingFunction returns the absolute paths of Python files under root
// whose text contains a call-like occurrence of name, i.e. "name(".
func FilesUsingFunction(root, name string) ([]string, error) {
	files, err := Scan(root)
	if err != nil {
		return nil, err
	}

	needle := name + "("
	var out []string
	for _, f := range files {
		data, err := os.ReadFile(f.FullPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Path, err)
		}
		if strings.Contains(string(data), needle) {
			out = append(out, f.FullPath)
		}
	}
	return out, nil
}
