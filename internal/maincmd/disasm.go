package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/tickscript/analyzer"
	"github.com/mna/tickscript/cache"
	"github.com/mna/tickscript/disasm"
	"github.com/mna/tickscript/lang/compiler"
	"github.com/mna/tickscript/lang/host"
	"github.com/mna/tickscript/lang/parser"
	"github.com/mna/tickscript/lang/types"
)

func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	store, err := c.openCache()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return DisasmFiles(stdio, store, c.storageDir(), args...)
}

// DisasmFiles compiles each file (or loads it from store's cache) and
// prints a disassembly of the resulting bytecode, the disasm package's
// CLI-facing counterpart to cache.Store.
func DisasmFiles(stdio mainer.Stdio, store *cache.Store, storageDir string, files ...string) error {
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

		chunk, functions := loadOrCompile(stdio, store, registry, file, src, &failed)
		if chunk == nil {
			continue
		}

		fmt.Fprintf(stdio.Stdout, "--- %s ---\n", file)
		if err := disasm.Disassemble(stdio.Stdout, chunk, functions); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", file, err)
			failed = true
		}
	}
	if failed {
		return errors.New("disasm: one or more files failed")
	}
	return nil
}

// loadOrCompile loads source from store's cache if present, otherwise
// parses, statically analyzes (diagnostics are printed, never fatal), and
// compiles it, caching the result if store is non-nil. It returns nil
// chunk on failure, having already reported the error and set *failed.
func loadOrCompile(stdio mainer.Stdio, store *cache.Store, registry *host.Registry, file string, src []byte, failed *bool) (*types.Chunk, map[string]*types.FunctionObject) {
	if store != nil {
		if top, functions, ok := store.Get(src); ok {
			return top, functions
		}
	}

	prog, err := parser.Parse(src)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", file, err)
		*failed = true
		return nil, nil
	}
	for _, d := range analyzer.Analyze(prog, registry.Names()) {
		fmt.Fprintf(stdio.Stdout, "%s: warning: %s\n", file, d)
	}

	top, functions, err := compiler.Compile(prog)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", file, err)
		*failed = true
		return nil, nil
	}
	if store != nil {
		if err := store.Set(src, top, functions); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: cache: %s\n", file, err)
			*failed = true
		}
	}
	return top, functions
}
