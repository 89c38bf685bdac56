// Package report inspects a Python file or directory tree and encodes the
// per-module results.
package report

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"lukechampine.com/blake3"

	"github.com/l3aro/go-pyinspect/internal/scanner"
	"github.com/l3aro/go-pyinspect/pkg/extractor"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

// Options configures Build.
type Options struct {
	Extract     extractor.Options
	TodoPattern string
	Scan        scanner.Options
	// Workers bounds the number of files inspected at once. Zero means
	// runtime.NumCPU().
	Workers int
	// OnFile, when set, is called after each file has been inspected. It
	// may be called from several goroutines at once.
	OnFile func(path string)
	// OnStart, when set, receives the number of files about to be inspected.
	OnStart func(total int)
}

// DefaultOptions returns options that inspect every Python file with the
// default scanner settings.
func DefaultOptions() Options {
	return Options{
		TodoPattern: extractor.DefaultTodoPattern,
		Scan:        scanner.DefaultOptions(),
	}
}

// Build inspects path. A regular file yields a one-module report; a
// directory is scanned and its files inspected concurrently, with modules
// kept in scan order. A file that cannot be read or parsed is recorded with
// its error and does not stop the report.
func Build(ctx context.Context, path string, opts Options) (*types.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", path, err)
	}

	rep := &types.Report{Root: path}

	if !info.IsDir() {
		if opts.OnStart != nil {
			opts.OnStart(1)
		}
		rep.Modules = []types.ModuleInfo{inspect(path, filepath.Base(path), opts)}
		if opts.OnFile != nil {
			opts.OnFile(path)
		}
		return rep, nil
	}

	files, err := scanner.ScanWithOptions(path, opts.Scan)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	if opts.OnStart != nil {
		opts.OnStart(len(files))
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	modules := make([]types.ModuleInfo, len(files))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			modules[i] = inspect(f.FullPath, f.Path, opts)
			if opts.OnFile != nil {
				mu.Lock()
				opts.OnFile(f.Path)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep.Modules = modules
	return rep, nil
}

// inspect extracts one file. display is the path recorded in the module.
func inspect(fullPath, display string, opts Options) types.ModuleInfo {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return types.ModuleInfo{Path: display, Error: err.Error()}
	}

	e := extractor.NewPythonExtractor(opts.Extract)
	if opts.TodoPattern != "" {
		e.TodoPattern = opts.TodoPattern
	}

	mod, err := e.ExtractFromBytes(content, display)
	if err != nil {
		mod = &types.ModuleInfo{Path: display, Error: err.Error()}
	}
	mod.Digest = Digest(content)
	return *mod
}

// Digest returns the blake3-256 digest of content as "blake3:<hex>".
func Digest(content []byte) string {
	sum := blake3.Sum256(content)
	return "blake3:" + hex.EncodeToString(sum[:])
}
