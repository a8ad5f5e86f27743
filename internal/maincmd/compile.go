package maincmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/mna/tickscript/analyzer"
	"github.com/mna/tickscript/cache"
	"github.com/mna/tickscript/lang/compiler"
	"github.com/mna/tickscript/lang/host"
	"github.com/mna/tickscript/lang/parser"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	store, err := c.openCache()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return CompileFiles(stdio, store, c.storageDir(), args...)
}

// openCache returns a cache.Store rooted at c.cacheDir(), or nil if
// --no-cache was passed.
func (c *Cmd) openCache() (*cache.Store, error) {
	if c.NoCache {
		return nil, nil
	}
	return cache.Open(c.cacheDir())
}

// newFileRegistry builds a host.Registry scoped to file (its base name
// is the storage module's script identity, original_source's
// macro_name), wired with the free-function builtins and every
// lang/host/stdlib module including storage.
func newFileRegistry(stdout io.Writer, storageDir, file string) (*host.Registry, error) {
	registry := host.NewRegistry()
	host.InstallBuiltins(registry, stdout)
	if err := host.InstallStdlib(registry, storageDir, filepath.Base(file)); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return registry, nil
}

// CompileFiles parses, statically analyzes, and compiles each file,
// persisting the result to store (if non-nil) keyed by source digest.
// Analyzer diagnostics are printed but never fail the build, matching
// original_source/compiler/analyzer.py's advisory-only contract.
func CompileFiles(stdio mainer.Stdio, store *cache.Store, storageDir string, files ...string) error {
	var failed bool
	for _, file := range files {
		registry, err := newFileRegistry(stdio.Stdout, storageDir, file)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}

		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}

		prog, err := parser.Parse(src)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", file, err)
			failed = true
			continue
		}

		for _, d := range analyzer.Analyze(prog, registry.Names()) {
			fmt.Fprintf(stdio.Stdout, "%s: warning: %s\n", file, d)
		}

		top, functions, err := compiler.Compile(prog)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", file, err)
			failed = true
			continue
		}

		if store != nil {
			if err := store.Set(src, top, functions); err != nil {
				fmt.Fprintf(stdio.Stderr, "%s: cache: %s\n", file, err)
				failed = true
				continue
			}
		}
		fmt.Fprintf(stdio.Stdout, "%s: ok\n", file)
	}
	if failed {
		return errors.New("compile: one or more files failed")
	}
	return nil
}
