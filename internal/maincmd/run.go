package maincmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/tickscript/cache"
	"github.com/mna/tickscript/script"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	store, err := c.openCache()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return RunFile(ctx, stdio, store, c.storageDir(), args[0])
}

// RunFile compiles (or loads from cache) and runs file to completion:
// top-level code, init, then the tick/hotkey loop until the script exits
// or ctx is cancelled (e.g. by Ctrl-C, via mainer.CancelOnSignal).
func RunFile(ctx context.Context, stdio mainer.Stdio, store *cache.Store, storageDir, file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	registry, err := newFileRegistry(stdio.Stdout, storageDir, file)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	logger := log.New(stdio.Stderr, "", 0)
	s, err := script.New(file, src, store, registry, logger)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	if err := s.Run(ctx); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
