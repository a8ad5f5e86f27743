package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/tickscript/lang/ast"
	"github.com/mna/tickscript/lang/parser"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(stdio, args...)
}

// ParseFiles parses each file and prints its AST as an indented tree.
func ParseFiles(stdio mainer.Stdio, files ...string) error {
	printer := ast.Printer{Output: stdio.Stdout}

	var failed bool
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}

		prog, perr := parser.Parse(src)
		if perr != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", file, perr)
			failed = true
		}
		if err := printer.Print(prog); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
		}
	}
	if failed {
		return errors.New("parse: one or more files failed")
	}
	return nil
}
