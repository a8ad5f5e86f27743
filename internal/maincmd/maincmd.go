// Package maincmd implements tickscript's CLI command dispatch, the Go
// analogue of original_source's `python -m macroengine <command> <file>`
// entry points, structured after nenuphar/internal/maincmd's Cmd/
// github.com/mna/mainer idiom: a single Cmd struct carries every flag,
// resolves a subcommand name to a method by reflection, and returns a
// mainer.ExitCode.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "tickscript"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler, VM and all-in-one tool for the %[1]s scripting language.

The <command> can be one of:
       tokenize                  Execute the scanner phase and print the
                                 resulting tokens.
       parse                     Execute the parser phase and print the
                                 resulting abstract syntax tree (AST).
       compile                   Execute the compiler phase and cache the
                                 resulting bytecode.
       disasm                    Compile (or load from cache) and print a
                                 disassembly of the resulting bytecode.
       run                       Compile (or load from cache) and run a
                                 script to completion.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Valid flag options for the <compile>, <disasm> and <run> commands are:
       --cache-dir DIR           Directory for the bytecode cache
                                 (default: .cache).
       --no-cache                Disable the bytecode cache entirely.
       --storage-dir DIR         Directory for the storage module's
                                 per-script key/value files (default:
                                 storage).

More information on the %[1]s repository:
       https://github.com/mna/tickscript
`, binName)
)

// Cmd is the CLI entry point, carrying the flags every subcommand needs
// plus the resolved subcommand function; it implements mainer.Cmd.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	CacheDir string `flag:"cache-dir"`
	NoCache  bool   `flag:"no-cache"`

	StorageDir string `flag:"storage-dir"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}
	if cmdName == "run" && len(c.args[1:]) != 1 {
		return errors.New("run: exactly one file must be provided")
	}

	if c.CacheDir != "" && c.NoCache {
		return errors.New("--cache-dir and --no-cache are mutually exclusive")
	}

	return nil
}

func (c *Cmd) cacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	return ".cache"
}

func (c *Cmd) storageDir() string {
	if c.StorageDir != "" {
		return c.StorageDir
	}
	return "storage"
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds mirrors nenuphar/internal/maincmd's own reflection-based
// dispatch: any exported method matching func(context.Context,
// mainer.Stdio, []string) error becomes a subcommand named after the
// method, lowercased.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
